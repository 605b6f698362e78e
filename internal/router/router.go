package router

import (
	"net/http"

	"shopfront/internal/auth"
	"shopfront/internal/handler"
	"shopfront/internal/metrics"
	"shopfront/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Products  *handler.ProductHandler
	Cart      *handler.CartHandler
	Addresses *handler.AddressHandler
	Orders    *handler.OrderHandler
	Settings  *handler.SettingsHandler
}

// Options configures cross-cutting concerns.
type Options struct {
	Gate     auth.Gate
	Settings middleware.SettingsLoader
	// Metrics is optional; when nil no /metrics route is mounted.
	Metrics     *metrics.Metrics
	MetricsPath string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()
	r.NotFound(handler.NotFound)
	r.MethodNotAllowed(handler.MethodNotAllowed)

	// Recovery -> RequestID -> Logging -> CORS (-> Metrics)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware)
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, opts.Metrics.Handler())
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"healthy"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Settings(opts.Settings, logger))

		// Public catalogue and settings
		r.Get("/products", h.Products.GetAll)
		r.Get("/products/{id}", h.Products.GetByID)
		r.Get("/settings", h.Settings.Get)

		r.Group(func(r chi.Router) {
			r.Use(middleware.Authenticate(opts.Gate, logger))

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.Cart.Get)
				r.Post("/items", h.Cart.AddItem)
				r.Patch("/items/{id}", h.Cart.UpdateItem)
				r.Delete("/items/{id}", h.Cart.RemoveItem)
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", h.Addresses.List)
				r.Post("/", h.Addresses.Create)
				r.Get("/{id}", h.Addresses.Get)
				r.Put("/{id}", h.Addresses.Update)
				r.Delete("/{id}", h.Addresses.Delete)
			})

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", h.Orders.Place)
				r.Get("/", h.Orders.List)
				r.Get("/{id}", h.Orders.Get)
			})

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.RequireAdmin(logger))

				r.Get("/orders", h.Orders.AdminList)
				r.Get("/orders/{id}", h.Orders.AdminGet)
				r.Patch("/orders/{id}", h.Orders.AdminUpdate)
				r.Post("/products", h.Products.Create)
				r.Patch("/products/{id}", h.Products.Update)
				r.Put("/settings", h.Settings.Update)
			})
		})
	})

	return r
}
