// Package server assembles the REST API: middleware chain, routes and the
// permission each route requires.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ukydev/aivodrive/internal/auth"
	"github.com/ukydev/aivodrive/internal/authz"
	"github.com/ukydev/aivodrive/internal/db"
	"github.com/ukydev/aivodrive/internal/handlers"
	"github.com/ukydev/aivodrive/internal/middleware"
	"github.com/ukydev/aivodrive/internal/models"
	"github.com/ukydev/aivodrive/internal/notify"
	"github.com/ukydev/aivodrive/internal/respond"
)

// Deps are the collaborators the API is built from.
type Deps struct {
	Auth        *auth.Service
	Users       db.UserCollection
	Vehicles    db.Store[models.Vehicle]
	Drivers     db.Store[models.Driver]
	Trips       db.Store[models.Trip]
	Maintenance db.Store[models.Maintenance]
	Alerts      db.AlertCollection
	Publisher   notify.Publisher

	// Ping reports storage health for /health. Nil means always healthy.
	Ping func(ctx context.Context) error

	CORSOrigins  []string
	RateLimitRPM int
}

// NewRouter wires every endpoint under /api plus /health and /metrics.
func NewRouter(d Deps) http.Handler {
	authMW := middleware.NewAuthMiddleware(d.Auth)
	limiter := middleware.NewRateLimitMiddleware(d.RateLimitRPM)
	alerter := handlers.NewAlerter(d.Alerts, d.Publisher)

	authH := handlers.NewAuthHandler(d.Auth, d.Users)
	vehicleH := handlers.NewVehicleHandler(d.Vehicles)
	driverH := handlers.NewDriverHandler(d.Drivers)
	tripH := handlers.NewTripHandler(d.Trips, alerter)
	maintenanceH := handlers.NewMaintenanceHandler(d.Maintenance, d.Vehicles, alerter)
	alertH := handlers.NewAlertHandler(d.Alerts)
	reportH := handlers.NewReportHandler(d.Vehicles, d.Drivers, d.Trips, d.Maintenance)

	r := chi.NewRouter()
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(d.CORSOrigins))

	r.Get("/health", health(d.Ping))
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Use(limiter.RateLimit)
		r.NotFound(func(w http.ResponseWriter, r *http.Request) {
			respond.Error(w, http.StatusNotFound, "Route not found")
		})
		r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
			respond.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
		})

		r.Post("/auth/login", authH.Login)

		r.Group(func(r chi.Router) {
			r.Use(authMW.Authenticate)

			r.Get("/auth/me", authH.GetProfile)
			r.Put("/auth/profile", authH.UpdateProfile)
			r.Put("/auth/password", authH.ChangePassword)

			r.Route("/vehicles", func(r chi.Router) {
				view := r.With(authMW.RequirePermission(authz.ViewVehicles))
				view.Get("/", vehicleH.List)
				view.Get("/stats", vehicleH.Stats)
				view.Get("/{id}", vehicleH.Get)

				manage := r.With(authMW.RequirePermission(authz.ManageVehicles))
				manage.Post("/", vehicleH.Create)
				manage.Put("/{id}", vehicleH.Update)
				manage.Delete("/{id}", vehicleH.Delete)
			})

			r.Route("/drivers", func(r chi.Router) {
				view := r.With(authMW.RequirePermission(authz.ViewDrivers))
				view.Get("/", driverH.List)
				view.Get("/stats", driverH.Stats)
				view.Get("/{id}", driverH.Get)

				manage := r.With(authMW.RequirePermission(authz.ManageDrivers))
				manage.Post("/", driverH.Create)
				manage.Put("/{id}", driverH.Update)
				manage.Delete("/{id}", driverH.Delete)
			})

			// Start and complete are open to assigned drivers; the handler
			// checks the actor against the trip.
			r.Route("/trips", func(r chi.Router) {
				view := r.With(authMW.RequirePermission(authz.ViewTrips))
				view.Get("/", tripH.List)
				view.Get("/stats", tripH.Stats)
				view.Get("/{id}", tripH.Get)
				view.Post("/{id}/start", tripH.Start)
				view.Post("/{id}/complete", tripH.Complete)

				manage := r.With(authMW.RequirePermission(authz.ManageTrips))
				manage.Post("/", tripH.Create)
				manage.Put("/{id}", tripH.Update)
				manage.Delete("/{id}", tripH.Delete)
				manage.Post("/{id}/cancel", tripH.Cancel)
			})

			r.Route("/maintenance", func(r chi.Router) {
				view := r.With(authMW.RequirePermission(authz.ViewMaintenance))
				view.Get("/", maintenanceH.List)
				view.Get("/stats", maintenanceH.Stats)
				view.Get("/{id}", maintenanceH.Get)

				manage := r.With(authMW.RequirePermission(authz.ManageMaintenance))
				manage.Post("/", maintenanceH.Create)
				manage.Put("/{id}", maintenanceH.Update)
				manage.Delete("/{id}", maintenanceH.Delete)
				manage.Post("/{id}/start", maintenanceH.Start)
				manage.Post("/{id}/complete", maintenanceH.Complete)
			})

			r.Route("/alerts", func(r chi.Router) {
				r.Get("/", alertH.List)
				r.Get("/unread-count", alertH.UnreadCount)
				r.Put("/read-all", alertH.MarkAllRead)
				r.Put("/{id}/read", alertH.MarkRead)
				r.Delete("/{id}", alertH.Delete)
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(authMW.RequirePermission(authz.ViewReports))
				r.Get("/summary", reportH.Summary)
				r.Get("/trips", reportH.Trips)
			})
		})
	})

	return r
}

func health(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := ping(ctx); err != nil {
				respond.ErrorWithData(w, http.StatusServiceUnavailable, "Storage unavailable",
					map[string]string{"status": "degraded"})
				return
			}
		}
		respond.Data(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}
