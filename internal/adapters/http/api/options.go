package api

import "github.com/okian/sugarsignal/pkg/logger"

// DefaultMountPath is where the prediction endpoint is served by default.
const DefaultMountPath = "/predict"

// defaultMaxBodyBytes bounds a prediction request body.
const defaultMaxBodyBytes = 64 << 10

// Option applies a configuration option to the Server.
type Option func(*Server)

// WithMountPath serves the prediction endpoint at path.
func WithMountPath(path string) Option {
	return func(s *Server) {
		if path != "" {
			s.mountPath = path
		}
	}
}

// WithMaxBodyBytes bounds the size of prediction request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBodyBytes = n
		}
	}
}

// WithLogger sets the logger used by handlers.
func WithLogger(l logger.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}
