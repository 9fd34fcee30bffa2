package handlers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"quipwit/internal/config"
	localMiddleware "quipwit/internal/middleware"
)

// RouterOptions allows customization of router setup for tests.
type RouterOptions struct {
	DisableRateLimiting  bool
	DisableRequestLogger bool
}

// SetupRouter creates the application router with all routes and middleware.
// The websocket endpoint is mounted outside the request timeout since its
// connections are long-lived.
func SetupRouter(h *Handler, cfg *config.ServerConfig, opts *RouterOptions) *chi.Mux {
	if opts == nil {
		opts = &RouterOptions{}
	}

	r := chi.NewRouter()

	if !opts.DisableRequestLogger {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(localMiddleware.SecurityHeaders())

	if !opts.DisableRateLimiting {
		rateLimiter := localMiddleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateLimitBurst)
		r.Use(rateLimiter.Middleware())
	}

	r.Get("/ws", h.hub.ServeHTTP)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(60 * time.Second))
		r.Use(localMiddleware.RequestSizeLimiter(cfg.Server.MaxRequestSize))

		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.Dir(cfg.Server.StaticDir))))

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "/host", http.StatusFound)
		})
		r.Get("/host", h.HostPage)
		r.Get("/play", h.PlayPage)

		r.Route("/api", func(r chi.Router) {
			r.Get("/network", h.Network)
			r.Get("/config/status", h.ConfigStatus)
			r.Post("/config/apikey", h.SetAPIKey)
			r.Post("/config/test", h.TestAPIKey)
		})

		r.Get("/health/live", func(w http.ResponseWriter, req *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("OK"))
		})
		r.Get("/health/ready", h.Ready)
	})

	return r
}
