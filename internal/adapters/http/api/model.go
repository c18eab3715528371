package api

import (
	"errors"
	"net/http"

	"github.com/okian/sugarsignal/internal/domain/model"
)

// ModelInfoProvider describes the loaded model.
type ModelInfoProvider interface {
	ModelInfo() (ModelInfo, error)
}

// ModelHandler handles model metadata requests.
type ModelHandler struct {
	provider ModelInfoProvider
}

// NewModelHandler creates a new model handler.
func NewModelHandler(provider ModelInfoProvider) *ModelHandler {
	return &ModelHandler{provider: provider}
}

// HandleModel handles GET /model requests.
func (h *ModelHandler) HandleModel(w http.ResponseWriter, r *http.Request) {
	const op = "api.model"
	if !onlyGet(w, r, op) {
		return
	}
	info, err := h.provider.ModelInfo()
	switch {
	case errors.Is(err, model.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", WrapKind(op, ErrNotReady, err))
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "internal_error", err)
		return
	}
	writeJSON(w, http.StatusOK, info)
}
