package artifact

// Option applies a configuration option to Open.
type Option func(*options)

type options struct {
	s3       S3Config
	s3Client ObjectGetter
}

// S3Config configures access to an S3-compatible store. Empty fields fall back
// to the AWS default credential and region chain.
type S3Config struct {
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// WithS3Config sets the S3 client configuration used for s3:// URIs.
func WithS3Config(cfg S3Config) Option {
	return func(o *options) {
		o.s3 = cfg
	}
}

// WithS3Client injects a ready client for s3:// URIs.
func WithS3Client(c ObjectGetter) Option {
	return func(o *options) {
		if c != nil {
			o.s3Client = c
		}
	}
}
