package server

import (
	"net/http"
	"sync"

	"github.com/amphitheatre-app/playbooks/internal/constants"
	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
	"github.com/amphitheatre-app/playbooks/internal/openapi"
)

var document = sync.OnceValue(Document)

const swaggerPage = `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <title>Playbooks API</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>window.ui = SwaggerUIBundle({url: "/openapi.json", dom_id: "#swagger-ui"});</script>
</body>
</html>
`

// handleOpenAPIJSON serves the OpenAPI document as JSON.
func (r *Router) handleOpenAPIJSON(w http.ResponseWriter, req *http.Request) {
	r.serveDocument(w, req, constants.ContentTypeJSON, (*openapi.Document).JSON)
}

// handleOpenAPIYAML serves the OpenAPI document as YAML.
func (r *Router) handleOpenAPIYAML(w http.ResponseWriter, req *http.Request) {
	r.serveDocument(w, req, constants.ContentTypeYAML, (*openapi.Document).YAML)
}

func (r *Router) serveDocument(
	w http.ResponseWriter, req *http.Request, contentType string, render func(*openapi.Document) ([]byte, error),
) {
	data, err := render(document())
	if err != nil {
		r.handleAndLogError(w, req, apperrors.ErrInternalServerError(err), "render openapi document")
		return
	}

	w.Header().Set(constants.ContentTypeHeader, contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// handleSwagger serves a Swagger UI page for the OpenAPI document.
func (r *Router) handleSwagger(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set(constants.ContentTypeHeader, constants.ContentTypeHTML)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(swaggerPage))
}
