// Package service owns the process-wide model and implements the
// dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/sugarsignal/internal/adapters/artifact"
	"github.com/okian/sugarsignal/internal/adapters/cache"
	"github.com/okian/sugarsignal/internal/domain/classifier"
	"github.com/okian/sugarsignal/internal/domain/features"
	"github.com/okian/sugarsignal/internal/domain/model"
	"github.com/okian/sugarsignal/internal/domain/types"
	"github.com/okian/sugarsignal/pkg/logger"
	"github.com/okian/sugarsignal/pkg/metrics"
)

var errNoLabels = errors.New("model returned no labels")

// Service answers prediction requests with a model loaded once by Start.
type Service struct {
	mu sync.RWMutex

	// Configuration
	source    artifact.Source
	checksum  string
	cacheSize int

	// Loaded state, immutable once started
	model     classifier.Classifier
	cache     *cache.Predictions
	info      types.ModelInfo
	started   bool
	startedAt time.Time

	// Counters
	predictions     atomic.Int64
	inferenceErrors atomic.Int64
	cacheHits       atomic.Int64
	cacheMisses     atomic.Int64
	byLabel         map[int]*atomic.Int64

	logger logger.Logger
}

// New constructs a Service. Nothing is loaded until Start.
func New(opts ...Option) *Service {
	s := &Service{
		cacheSize: cache.DefaultSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start fetches, verifies and decodes the model artifact. It runs once;
// later calls return nil without reloading.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.source == nil {
		return ErrNoSource
	}

	begin := time.Now()
	s.logger.Info(ctx, "loading model", logger.String("source", s.source.Name()))

	data, err := s.source.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	digest, err := artifact.Verify(data, s.checksum)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	m, a, err := classifier.Load(data, classifier.WithFormat(classifier.FormatFromName(s.source.Name())))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}
	c, err := cache.New(cache.WithSize(s.cacheSize))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrLoad, err)
	}

	names := a.Features
	if len(names) == 0 {
		names = features.Order()
	}
	s.byLabel = make(map[int]*atomic.Int64, len(m.Classes()))
	for _, label := range m.Classes() {
		s.byLabel[label] = &atomic.Int64{}
	}

	s.model = m
	s.cache = c
	s.startedAt = time.Now()
	s.info = types.ModelInfo{
		Kind:     string(m.Kind()),
		Features: names,
		Classes:  m.Classes(),
		Source:   s.source.Name(),
		Digest:   digest,
		Bytes:    len(data),
		LoadedAt: s.startedAt.UTC(),
	}
	s.started = true

	elapsed := float64(time.Since(begin).Microseconds()) / 1000
	metrics.RecordModelLoad(s.info.Kind, digest, elapsed)
	s.logger.Info(ctx, "model loaded",
		logger.String("kind", s.info.Kind),
		logger.String("digest", digest),
		logger.Int("bytes", len(data)),
		logger.Int("cacheSize", s.cacheSize),
		logger.Float64("loadMs", elapsed),
	)
	return nil
}

// Stop releases the model. Predict returns model.ErrNotReady afterwards.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	s.cache.Purge()
	s.model = nil
	s.cache = nil
	s.started = false
	s.logger.Info(context.Background(), "model released")
}

// Ready reports whether a model is loaded.
func (s *Service) Ready() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.started
}

// Predict assembles the feature vector for in, runs it through the model as
// a one-row batch and returns the first label.
func (s *Service) Predict(ctx context.Context, in model.InputData) (model.PredictionResponse, error) {
	s.mu.RLock()
	m, c := s.model, s.cache
	s.mu.RUnlock()
	if m == nil {
		return model.PredictionResponse{}, model.ErrNotReady
	}

	vec := in.Vector()
	if label, ok := c.Get(vec); ok {
		s.cacheHits.Add(1)
		s.count(label)
		return model.PredictionResponse{Prediction: label}, nil
	}
	if c != nil {
		s.cacheMisses.Add(1)
	}

	begin := time.Now()
	labels, err := m.Predict(ctx, [][]float64{vec})
	metrics.RecordInferenceLatency(float64(time.Since(begin).Microseconds()) / 1000)
	if err == nil && len(labels) == 0 {
		err = errNoLabels
	}
	if err != nil {
		s.inferenceErrors.Add(1)
		metrics.RecordInferenceError()
		s.logger.Error(ctx, "inference failed", logger.Error(err))
		return model.PredictionResponse{}, fmt.Errorf("%w: %w", model.ErrInference, err)
	}

	label := labels[0]
	c.Add(vec, label)
	s.count(label)
	return model.PredictionResponse{Prediction: label}, nil
}

func (s *Service) count(label int) {
	s.predictions.Add(1)
	if n, ok := s.byLabel[label]; ok {
		n.Add(1)
	}
	metrics.RecordPrediction(label)
}

// ModelInfo describes the loaded model.
func (s *Service) ModelInfo() (types.ModelInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return types.ModelInfo{}, model.ErrNotReady
	}
	info := s.info
	info.Features = append([]string(nil), s.info.Features...)
	info.Classes = append([]int(nil), s.info.Classes...)
	return info, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() types.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := types.Stats{
		Started:         s.started,
		Predictions:     s.predictions.Load(),
		ByLabel:         make(map[string]int, len(s.byLabel)),
		InferenceErrors: s.inferenceErrors.Load(),
		CacheEnabled:    s.cache != nil,
		CacheHits:       s.cacheHits.Load(),
		CacheMisses:     s.cacheMisses.Load(),
		CacheEntries:    s.cache.Len(),
	}
	for label, n := range s.byLabel {
		stats.ByLabel[strconv.Itoa(label)] = int(n.Load())
	}
	if s.started {
		stats.ModelKind = s.info.Kind
		stats.UptimeSeconds = time.Since(s.startedAt).Seconds()
	}
	return stats
}
