package cache

// Option applies a configuration option to the prediction cache.
type Option func(*options)

type options struct {
	size int
}

// WithSize sets the maximum number of cached predictions. Zero disables the cache.
func WithSize(n int) Option {
	return func(o *options) {
		o.size = n
	}
}
