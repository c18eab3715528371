package classifier

// Option applies a configuration option to Load.
type Option func(*loadOptions)

type loadOptions struct {
	format   Format
	expected []string
}

// WithFormat forces the artifact encoding instead of sniffing it.
func WithFormat(f Format) Option {
	return func(o *loadOptions) {
		o.format = f
	}
}

// WithExpectedFeatures overrides the column order the artifact must declare.
func WithExpectedFeatures(names []string) Option {
	return func(o *loadOptions) {
		if len(names) > 0 {
			o.expected = names
		}
	}
}
