package swagger

import (
	"bytes"
	"context"
	"net/http"
)

// documentedPredictPath is the prediction route as written in openapi.yaml.
const documentedPredictPath = "/predict"

// Option applies a configuration option to Register.
type Option func(*options)

type options struct {
	predictPath string
}

// WithPredictPath rewrites the documented prediction route to path.
func WithPredictPath(path string) Option {
	return func(o *options) {
		if path != "" {
			o.predictPath = path
		}
	}
}

// Register attaches the API docs and the OpenAPI spec routes to mux.
// Routes:
//
//	GET /api-docs      -> ReDoc HTML
//	GET /openapi.yaml  -> Embedded OpenAPI spec
func Register(_ context.Context, mux *http.ServeMux, opts ...Option) {
	if mux == nil {
		panic("mux is nil")
	}
	o := &options{predictPath: documentedPredictPath}
	for _, opt := range opts {
		opt(o)
	}

	doc := OpenAPI
	if o.predictPath != documentedPredictPath {
		doc = bytes.Replace(OpenAPI, []byte("  "+documentedPredictPath+":\n"), []byte("  "+o.predictPath+":\n"), 1)
	}

	mux.HandleFunc("/api-docs", serve("text/html; charset=utf-8", []byte(indexHTML)))
	mux.HandleFunc("/openapi.yaml", serve("application/yaml; charset=utf-8", doc))
}

// serve writes body for GET and HEAD, and 405 otherwise.
func serve(contentType string, body []byte) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", contentType)
		_, _ = w.Write(body)
	}
}

// Minimal HTML that loads ReDoc and points it at /openapi.yaml.
const indexHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>sugarsignal API Docs</title>
    <style>body{margin:0;padding:0}</style>
  </head>
  <body>
    <redoc id="redoc-container"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
    <script>Redoc.init('/openapi.yaml', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
