package service

import (
	"github.com/okian/sugarsignal/internal/adapters/artifact"
	"github.com/okian/sugarsignal/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSource sets where the model artifact is read from.
func WithSource(src artifact.Source) Option {
	return func(s *Service) {
		s.source = src
	}
}

// WithChecksum requires the artifact to match a hex blake3-256 digest.
func WithChecksum(sum string) Option {
	return func(s *Service) {
		s.checksum = sum
	}
}

// WithCacheSize bounds the prediction cache. Zero disables it.
func WithCacheSize(n int) Option {
	return func(s *Service) {
		if n >= 0 {
			s.cacheSize = n
		}
	}
}
