package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimd "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RouterOptions configures the ambient parts of the router.
type RouterOptions struct {
	Logger        *zap.Logger
	AllowedOrigin string
	StaticDir     string // served under /static/ when set
}

// NewRouter assembles middleware, API routes, /metrics and optional static files.
func NewRouter(h *Handler, opts RouterOptions) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(chimd.RequestID)
	r.Use(requestLogger(logger))
	r.Use(chimd.Recoverer)
	r.Use(instrument)
	r.Use(cors(opts.AllowedOrigin))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", "Not Found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", "unsupported method")
	})

	h.RegisterRoutes(r)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	if opts.StaticDir != "" {
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(opts.StaticDir))))
		r.Get("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/static/", http.StatusTemporaryRedirect)
		})
	}

	return r
}
