// Package api assembles the HTTP surface.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"booking-api/internal/appointments"
	"booking-api/internal/authz"
	"booking-api/internal/catalog"
	"booking-api/internal/middleware"
	"booking-api/internal/transport"
	"booking-api/internal/users"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type Deps struct {
	Log            *slog.Logger
	Users          *users.Manager
	Catalog        *catalog.Manager
	Appointments   *appointments.Manager
	CORSOrigins    []string
	RequestTimeout time.Duration
	// Health reports whether the store is reachable. Nil means always healthy.
	Health func(ctx context.Context) error
}

func NewRouter(d Deps) http.Handler {
	log := d.Log
	if log == nil {
		log = slog.Default()
	}
	timeout := d.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	usersHandler := users.NewHandler(d.Users, log)
	catalogHandler := catalog.NewHandler(d.Catalog, log)
	appointmentsHandler := appointments.NewHandler(d.Appointments, log)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Recoverer)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.CORS(d.CORSOrigins))
	r.Use(chiMiddleware.Timeout(timeout))

	authenticate := middleware.Authenticate(d.Users)
	allow := middleware.Authorize

	registerRoutes := func(api chi.Router) {
		api.Get("/healthz", healthHandler(d.Health, log))

		api.Route("/auth", func(a chi.Router) {
			a.With(middleware.OptionalAuthenticate(d.Users)).Post("/register", usersHandler.Register)
			a.Post("/login", usersHandler.Login)
			a.Post("/google", usersHandler.Google)
		})

		api.Route("/users", func(u chi.Router) {
			u.Use(authenticate)
			u.With(allow(authz.ActionListUsers)).Get("/", usersHandler.List)
			u.With(allow(authz.ActionCreateUser)).Post("/", usersHandler.Create)
			u.With(allow(authz.ActionReadUser)).Get("/{id}", usersHandler.Get)
			u.With(allow(authz.ActionUpdateUser)).Put("/{id}", usersHandler.Update)
			u.With(allow(authz.ActionDeleteUser)).Delete("/{id}", usersHandler.Delete)
		})

		api.Route("/providers", func(p chi.Router) {
			p.Get("/", catalogHandler.ListProviders)
			p.Get("/{id}", catalogHandler.GetProvider)
			p.Group(func(w chi.Router) {
				w.Use(authenticate, allow(authz.ActionWriteCatalog))
				w.Post("/", catalogHandler.CreateProvider)
				w.Put("/{id}", catalogHandler.UpdateProvider)
				w.Delete("/{id}", catalogHandler.DeleteProvider)
			})
		})

		api.Route("/services", func(s chi.Router) {
			s.Get("/", catalogHandler.ListServices)
			s.Get("/{id}", catalogHandler.GetService)
			s.Group(func(w chi.Router) {
				w.Use(authenticate, allow(authz.ActionWriteCatalog))
				w.Post("/", catalogHandler.CreateService)
				w.Put("/{id}", catalogHandler.UpdateService)
				w.Delete("/{id}", catalogHandler.DeleteService)
			})
		})

		api.Route("/appointments", func(a chi.Router) {
			a.Use(authenticate)
			a.With(allow(authz.ActionReadAppointment)).Get("/", appointmentsHandler.List)
			a.With(allow(authz.ActionReadAppointment)).Get("/{id}", appointmentsHandler.Get)
			a.With(allow(authz.ActionWriteAppointment)).Post("/", appointmentsHandler.Create)
			a.With(allow(authz.ActionWriteAppointment)).Put("/{id}", appointmentsHandler.Update)
			a.With(allow(authz.ActionWriteAppointment)).Delete("/{id}", appointmentsHandler.Delete)
		})
	}

	// Routes answer at the root and under /api.
	registerRoutes(r)
	r.Route("/api", registerRoutes)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		transport.WriteError(w, http.StatusNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		transport.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed", nil)
	})

	return r
}

func healthHandler(check func(ctx context.Context) error, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				log.Error("healthz: store unreachable", slog.String("error", err.Error()))
				transport.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
				return
			}
		}
		transport.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
