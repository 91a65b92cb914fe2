package server

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/janisto/argo-greeting/internal/config"
	"github.com/janisto/argo-greeting/internal/http/health"
	"github.com/janisto/argo-greeting/internal/http/routes"
	applog "github.com/janisto/argo-greeting/internal/platform/logging"
	"github.com/janisto/argo-greeting/internal/platform/metrics"
	appmiddleware "github.com/janisto/argo-greeting/internal/platform/middleware"
	"github.com/janisto/argo-greeting/internal/platform/respond"
)

const (
	apiTitle = "Argo Greeting API"
	docsPath = "/api-docs"
)

// NewRouter builds the public handler: middleware stack, huma API and operations.
func NewRouter(cfg *config.Config, version string, m *metrics.Metrics, probe *health.Probe) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())

	router.Use(
		appmiddleware.Security(docsPath),
		appmiddleware.Vary(),
		appmiddleware.CORS(),
		appmiddleware.RequestID(),
		// RealIP trusts X-Forwarded-For; the pod only receives traffic through the ingress.
		chimiddleware.RealIP,
		chimiddleware.GetHead,
		chimiddleware.RequestSize(1<<20),
		applog.RequestLogger(cfg.ProjectID),
		applog.AccessLogger(),
		m.Middleware(),
		respond.Recoverer(),
	)

	api := humachi.New(router, apiConfig(version))
	routes.Register(api, routes.Deps{
		Recorder: m,
		Probe:    probe,
	})
	return router
}

// NewAdminRouter serves operational endpoints that stay off the public listener.
func NewAdminRouter(m *metrics.Metrics) http.Handler {
	router := chi.NewRouter()
	router.NotFound(respond.NotFoundHandler())
	router.MethodNotAllowed(respond.MethodNotAllowedHandler())
	router.Use(respond.Recoverer())
	router.Method(http.MethodGet, "/metrics", m.Handler())
	return router
}

// apiConfig is huma's default config without the schema link transformer, so
// response bodies carry only their declared fields (no "$schema" key).
func apiConfig(version string) huma.Config {
	cfg := huma.DefaultConfig(apiTitle, version)
	cfg.DocsPath = docsPath
	cfg.CreateHooks = nil
	cfg.OnAddOperation = append(cfg.OnAddOperation, advertiseCBOR)
	return cfg
}

// advertiseCBOR mirrors every application/json body in the OpenAPI document as
// application/cbor, which the cbor format registered above can produce.
func advertiseCBOR(_ *huma.OpenAPI, op *huma.Operation) {
	if op.RequestBody != nil && op.RequestBody.Content != nil {
		if mt, ok := op.RequestBody.Content["application/json"]; ok {
			op.RequestBody.Content["application/cbor"] = mt
		}
	}
	for _, resp := range op.Responses {
		if resp.Content == nil {
			continue
		}
		if mt, ok := resp.Content["application/json"]; ok {
			resp.Content["application/cbor"] = mt
		}
	}
}
