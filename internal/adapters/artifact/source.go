// Package artifact fetches serialized model artifacts from where they are stored.
package artifact

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// Source yields the raw bytes of one model artifact.
type Source interface {
	// Fetch reads the whole artifact, honoring ctx for cancellation.
	Fetch(ctx context.Context) ([]byte, error)

	// Name identifies the artifact for logs and format inference.
	Name() string
}

// Open picks a Source for uri.
//
//	models/diabetes.json          local file
//	file:///srv/models/m.msgpack  local file
//	s3://bucket/path/model.json   S3-compatible object store
func Open(ctx context.Context, uri string, opts ...Option) (Source, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("%w: empty model path", ErrInvalidURI)
	}
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	if !strings.Contains(uri, "://") {
		return NewFileSource(uri), nil
	}
	u, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidURI, err)
	}
	switch u.Scheme {
	case "file":
		return NewFileSource(u.Path), nil
	case "s3":
		key := strings.TrimPrefix(u.Path, "/")
		if u.Host == "" || key == "" {
			return nil, fmt.Errorf("%w: s3 uri needs bucket and key: %s", ErrInvalidURI, uri)
		}
		if o.s3Client != nil {
			return NewS3Source(o.s3Client, u.Host, key), nil
		}
		client, err := NewS3Client(ctx, o.s3)
		if err != nil {
			return nil, err
		}
		return NewS3Source(client, u.Host, key), nil
	}
	return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURI, u.Scheme)
}
