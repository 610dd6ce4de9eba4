// Package swagger serves the OpenAPI description of the read API.
package swagger

import (
	"context"
	"net/http"
)

// Docs routes.
const (
	DocsPath    = "/api-docs"
	OpenAPIPath = "/openapi.yaml"
)

// Register attaches the docs routes to mux: the ReDoc page and the raw
// OpenAPI document it renders. Both answer GET and HEAD only.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("swagger: nil mux")
	}
	mux.Handle(DocsPath, document{contentType: "text/html; charset=utf-8", body: []byte(redocPage)})
	mux.Handle(OpenAPIPath, document{contentType: "application/yaml; charset=utf-8", body: OpenAPI})
}

type document struct {
	contentType string
	body        []byte
}

func (d document) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", d.contentType)
	if r.Method == http.MethodHead {
		return
	}
	_, _ = w.Write(d.body)
}

// redocPage renders OpenAPIPath with the ReDoc bundle from its CDN.
const redocPage = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8">
    <title>trainlog read API</title>
  </head>
  <body style="margin:0">
    <redoc id="redoc-container"></redoc>
    <script src="https://cdn.redoc.ly/redoc/latest/bundles/redoc.standalone.js"></script>
    <script>Redoc.init('` + OpenAPIPath + `', { suppressWarnings: true }, document.getElementById('redoc-container'));</script>
  </body>
</html>`
