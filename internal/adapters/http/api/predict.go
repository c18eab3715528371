package api

import (
	"errors"
	"net/http"

	"github.com/okian/sugarsignal/internal/domain/model"
	"github.com/okian/sugarsignal/pkg/logger"
	"github.com/okian/sugarsignal/pkg/metrics"
)

// validationResponse extends the error envelope with per-field issues.
type validationResponse struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Issues  []model.Issue `json:"issues"`
}

// PredictHandler serves the prediction endpoint.
type PredictHandler struct {
	deps         Predictor
	maxBodyBytes int64
	logger       logger.Logger
}

// NewPredictHandler creates a new prediction handler.
func NewPredictHandler(deps Predictor, maxBodyBytes int64, l logger.Logger) *PredictHandler {
	return &PredictHandler{deps: deps, maxBodyBytes: maxBodyBytes, logger: l}
}

// HandlePredict handles POST {mount_path} requests.
func (h *PredictHandler) HandlePredict(w http.ResponseWriter, r *http.Request) {
	const op = "api.predict"
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
		return
	}

	in, err := model.DecodeInput(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		h.rejectInput(w, op, err)
		return
	}

	resp, err := h.deps.Predict(r.Context(), in)
	switch {
	case errors.Is(err, model.ErrNotReady):
		writeError(w, http.StatusServiceUnavailable, "not_ready", WrapKind(op, ErrNotReady, err))
		return
	case err != nil:
		h.logger.Error(r.Context(), "prediction failed",
			logger.String("request_id", RequestIDFromContext(r.Context())),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "inference_error", WrapKind(op, ErrInference, err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *PredictHandler) rejectInput(w http.ResponseWriter, op string, err error) {
	var verr *model.ValidationError
	if errors.As(err, &verr) {
		for _, is := range verr.Issues {
			metrics.RecordValidationFailure(is.Field)
		}
		writeJSON(w, http.StatusUnprocessableEntity, validationResponse{
			Code:    "validation_error",
			Message: WrapKind(op, ErrValidation, err).Error(),
			Issues:  verr.Issues,
		})
		return
	}

	metrics.RecordValidationFailure("")
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(w, http.StatusRequestEntityTooLarge, "payload_too_large", WrapKind(op, ErrPayloadTooLarge, err))
		return
	}
	writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
}
