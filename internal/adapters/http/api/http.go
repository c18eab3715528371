// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/okian/sugarsignal/internal/domain/model"
	"github.com/okian/sugarsignal/internal/domain/types"
	"github.com/okian/sugarsignal/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	Predictor
	StatsProvider

	// Ready reports whether the model has been loaded.
	Ready() bool

	// ModelInfo describes the loaded model.
	ModelInfo() (ModelInfo, error)
}

// ModelInfo mirrors the read shape returned by GET /model.
type ModelInfo = types.ModelInfo

// Stats mirrors the read shape returned by GET /stats.
type Stats = types.Stats

// Server wires HTTP routes for the business API.
type Server struct {
	mountPath    string
	maxBodyBytes int64
	logger       logger.Logger

	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	modelHandler   *ModelHandler
	predictHandler *PredictHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	s := &Server{
		mountPath:    DefaultMountPath,
		maxBodyBytes: defaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.healthHandler = NewHealthHandler(deps)
	s.statsHandler = NewStatsHandler(deps)
	s.modelHandler = NewModelHandler(deps)
	s.predictHandler = NewPredictHandler(deps, s.maxBodyBytes, s.logger)
	return s
}

// MountPath returns the path the prediction endpoint is served at.
func (s *Server) MountPath() string { return s.mountPath }

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc(s.mountPath, MetricsMiddleware(s.predictHandler.HandlePredict, "predict"))
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/metrics", s.healthHandler.HandleMetrics)
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/model", MetricsMiddleware(s.modelHandler.HandleModel, "model"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// onlyGet rejects anything but GET and HEAD with 405.
func onlyGet(w http.ResponseWriter, r *http.Request, op string) bool {
	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return true
	}
	w.Header().Set("Allow", "GET, HEAD")
	writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", NewKind(op, ErrMethodNotAllowed))
	return false
}

// Predictor runs one prediction.
type Predictor interface {
	Predict(ctx context.Context, in model.InputData) (model.PredictionResponse, error)
}
