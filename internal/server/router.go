// Package server implements the HTTP surface of the playbooks service.
package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/constants"
	"github.com/amphitheatre-app/playbooks/internal/openapi"
	"github.com/amphitheatre-app/playbooks/internal/services"
	"github.com/amphitheatre-app/playbooks/internal/telemetry"
)

// Services bundles the services the router dispatches to.
type Services struct {
	Playbooks services.Playbooks
	Files     services.Files
	Folders   services.Folders
	Logs      services.Logs
}

// Options tunes the router.
type Options struct {
	// RequestTimeout bounds every request except log streams. Zero disables it.
	RequestTimeout time.Duration
	// KeepAlive is the interval of log stream keep-alives. Zero disables them.
	KeepAlive time.Duration
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string
}

// Router is the HTTP router of the playbooks service.
type Router struct {
	router   *chi.Mux
	svc      Services
	opts     Options
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// route binds a documented endpoint to its handler.
type route struct {
	endpoint openapi.Endpoint
	// pattern is the chi pattern; empty when another route dispatches to it.
	pattern string
	handler http.HandlerFunc
	// streaming routes are exempt from the request timeout.
	streaming bool
}

// NewRouter creates a new chi router with routes configured
func NewRouter(svc Services, log *slog.Logger, opts Options) *Router {
	if log == nil {
		log = slog.Default()
	}

	r := chi.NewRouter()
	router := &Router{
		router: r,
		svc:    svc,
		opts:   opts,
		logger: log,
	}
	router.upgrader = websocket.Upgrader{CheckOrigin: router.checkOrigin}

	r.Use(middleware.RealIP)
	r.Use(router.requestIDMiddleware)
	r.Use(telemetry.Middleware(constants.ProjectName))
	r.Use(router.requestLoggingMiddleware)
	r.Use(middleware.Recoverer)
	r.Use(router.corsMiddleware)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeErrorResponse(w, errNotFound)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, api.ErrorResponse{Message: "Method Not Allowed"})
	})

	r.Get("/openapi.json", router.handleOpenAPIJSON)
	r.Get("/openapi.yaml", router.handleOpenAPIYAML)
	r.Get("/swagger", router.handleSwagger)

	routes := router.routes()
	for _, rt := range routes {
		if rt.pattern != "" && rt.streaming {
			r.Method(rt.endpoint.Method, rt.pattern, rt.handler)
		}
	}
	r.Group(func(r chi.Router) {
		r.Use(router.requestTimeoutMiddleware(opts.RequestTimeout))
		for _, rt := range routes {
			if rt.pattern != "" && !rt.streaming {
				r.Method(rt.endpoint.Method, rt.pattern, rt.handler)
			}
		}
	})

	return router
}

// routes is the route table of the service.
func (r *Router) routes() []route {
	const (
		playbook = "/v1/playbooks/{id}"
		file     = playbook + "/files/{reference}/{path}"
		folder   = playbook + "/folders/{reference}/{path}"
	)
	notFound := []int{http.StatusBadRequest, http.StatusNotFound, http.StatusInternalServerError}
	tree := []openapi.Param{
		{Name: "reference", Description: "Branch, tag or commit; defaults to the playbook's reference"},
		{Name: "recursive", Description: "List every descendant", Type: "boolean"},
	}

	return []route{
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodGet, Path: "/health", OperationID: "health", Tag: "health",
				Summary: "Health check", Response: api.HealthResponse{},
			},
			pattern: "/health", handler: r.handleHealth,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodPost, Path: "/v1/playbooks", OperationID: "createPlaybook", Tag: "playbooks",
				Summary: "Create a playbook", Request: api.CreatePlaybookRequest{}, Response: api.PlaybookSpec{},
				Status: http.StatusCreated, Errors: []int{http.StatusBadRequest, http.StatusInternalServerError},
			},
			pattern: "/v1/playbooks", handler: r.handleCreatePlaybook,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodGet, Path: playbook, OperationID: "getPlaybook", Tag: "playbooks",
				Summary: "Get a playbook", Response: api.PlaybookSpec{}, Errors: notFound,
			},
			pattern: playbook, handler: r.handleGetPlaybook,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodGet, Path: playbook + "/detail", OperationID: "getPlaybookDetail", Tag: "playbooks",
				Summary: "Get a playbook with its repository content",
				Query: []openapi.Param{
					tree[0],
					{Name: "path", Description: "File or directory inside the repository"},
					tree[1],
				},
				Response: api.PlaybookDetail{}, Errors: notFound,
			},
			pattern: playbook + "/detail", handler: r.handleGetPlaybookDetail,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodPut, Path: playbook, OperationID: "updatePlaybook", Tag: "playbooks",
				Summary: "Synchronize the playbook's primary actor", Request: api.Synchronization{},
				Status: http.StatusNoContent, Errors: notFound,
			},
			pattern: playbook, handler: r.handleUpdatePlaybook,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodPatch, Path: playbook, OperationID: "patchPlaybook", Tag: "playbooks",
				Summary: "Synchronize the playbook's primary actor", Request: api.Synchronization{},
				Status: http.StatusNoContent, Errors: notFound,
			},
			pattern: playbook, handler: r.handleUpdatePlaybook,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodDelete, Path: playbook, OperationID: "deletePlaybook", Tag: "playbooks",
				Summary: "Delete a playbook", Status: http.StatusNoContent, Errors: notFound,
			},
			pattern: playbook, handler: r.handleDeletePlaybook,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodPost, Path: playbook + "/actions/start", OperationID: "startPlaybook",
				Tag: "playbooks", Summary: "Start a playbook", Status: http.StatusNoContent, Errors: notFound,
			},
			pattern: playbook + "/actions/start", handler: r.handleStartPlaybook,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodGet, Path: playbook + "/logs", OperationID: "streamPlaybookLogs", Tag: "logs",
				Summary: "Stream the live logs of the primary actor (SSE or WebSocket)",
				ContentType: constants.ContentTypeEventStream, Errors: notFound,
			},
			pattern: playbook + "/logs", handler: r.handleLogs, streaming: true,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodGet, Path: file, OperationID: "getFile", Tag: "files",
				Summary: "Get a file", Response: api.Content{}, Errors: notFound,
			},
			pattern: playbook + "/files/{reference}/*", handler: r.handleGetFile,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodPost, Path: file, OperationID: "createFile", Tag: "files",
				Summary: "Create a file through the primary actor", Request: api.FileRequest{},
				Response: api.Content{}, Status: http.StatusCreated, Errors: notFound,
			},
			pattern: playbook + "/files/{reference}/*", handler: r.handlePostFile,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodPut, Path: file, OperationID: "updateFile", Tag: "files",
				Summary: "Update a file", Request: api.FileRequest{}, Response: api.Content{},
				Errors: []int{http.StatusNotImplemented},
			},
			pattern: playbook + "/files/{reference}/*", handler: r.handleUpdateFile,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodDelete, Path: file, OperationID: "deleteFile", Tag: "files",
				Summary: "Delete a file", Status: http.StatusNoContent, Errors: []int{http.StatusNotImplemented},
			},
			pattern: playbook + "/files/{reference}/*", handler: r.handleDeleteFile,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodPost, Path: file + "/actions/copy", OperationID: "copyFile", Tag: "files",
				Summary: "Copy a file", Request: api.DestinationRequest{}, Response: api.Content{},
				Errors: []int{http.StatusNotImplemented},
			},
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodPost, Path: file + "/actions/move", OperationID: "moveFile", Tag: "files",
				Summary: "Move a file", Request: api.DestinationRequest{}, Response: api.Content{},
				Errors: []int{http.StatusNotImplemented},
			},
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodGet, Path: playbook + "/folders/{reference}", OperationID: "getRootFolder",
				Tag: "folders", Summary: "List the repository root", Query: tree[1:],
				Response: api.Tree{}, Errors: notFound,
			},
			pattern: playbook + "/folders/{reference}", handler: r.handleGetFolder,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodGet, Path: folder, OperationID: "getFolder", Tag: "folders",
				Summary: "List a folder", Query: tree[1:], Response: api.Tree{}, Errors: notFound,
			},
			pattern: playbook + "/folders/{reference}/*", handler: r.handleGetFolder,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodPost, Path: folder, OperationID: "createFolder", Tag: "folders",
				Summary: "Create a folder", Response: api.Content{}, Status: http.StatusCreated,
				Errors: []int{http.StatusNotImplemented},
			},
			pattern: playbook + "/folders/{reference}/*", handler: r.handlePostFolder,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodDelete, Path: folder, OperationID: "deleteFolder", Tag: "folders",
				Summary: "Delete a folder", Status: http.StatusNoContent, Errors: []int{http.StatusNotImplemented},
			},
			pattern: playbook + "/folders/{reference}/*", handler: r.handleDeleteFolder,
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodPost, Path: folder + "/actions/copy", OperationID: "copyFolder", Tag: "folders",
				Summary: "Copy a folder", Request: api.DestinationRequest{}, Response: api.Content{},
				Errors: []int{http.StatusNotImplemented},
			},
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodPost, Path: folder + "/actions/move", OperationID: "moveFolder", Tag: "folders",
				Summary: "Move a folder", Request: api.DestinationRequest{}, Response: api.Content{},
				Errors: []int{http.StatusNotImplemented},
			},
		},
		{
			endpoint: openapi.Endpoint{
				Method: http.MethodGet, Path: playbook + "/tree", OperationID: "getTree", Tag: "folders",
				Summary: "List the repository tree", Query: tree, Response: api.Tree{}, Errors: notFound,
			},
			pattern: playbook + "/tree", handler: r.handleGetTree,
		},
	}
}

// Endpoints returns the documented endpoints of the service.
func Endpoints() []openapi.Endpoint {
	r := &Router{}
	routes := r.routes()
	endpoints := make([]openapi.Endpoint, 0, len(routes))
	for _, rt := range routes {
		endpoints = append(endpoints, rt.endpoint)
	}
	return endpoints
}

// Document returns the OpenAPI document of the service.
func Document() *openapi.Document {
	return openapi.Build(openapi.Info{
		Title:       "Playbooks API",
		Description: "Manage playbooks and browse their repositories.",
		Version:     *constants.GetVersion(),
	}, Endpoints())
}

// ServeHTTP implements http.Handler for use with chi router
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.router.ServeHTTP(w, req)
}

// ChiMux returns the underlying chi router for advanced usage
func (r *Router) ChiMux() *chi.Mux {
	return r.router
}

// Handler returns an http.Handler for the router
func (r *Router) Handler() http.Handler {
	return r.router
}
