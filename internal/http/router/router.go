package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lankaline/freight-api/internal/auth"
	"github.com/lankaline/freight-api/internal/config"
	"github.com/lankaline/freight-api/internal/database"
	"github.com/lankaline/freight-api/internal/domain"
	"github.com/lankaline/freight-api/internal/erp"
	"github.com/lankaline/freight-api/internal/http/handler"
	"github.com/lankaline/freight-api/internal/http/middleware"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Router struct {
	cfg                 *config.Config
	logger              *zap.Logger
	db                  *gorm.DB
	erpClient           *erp.Client
	authMiddleware      *auth.Middleware
	rateLimiter         *middleware.RateLimiter
	rateRequestHandler  *handler.RateRequestHandler
	rateCatalogHandler  *handler.RateCatalogHandler
	bookingHandler      *handler.BookingHandler
	itineraryHandler    *handler.ItineraryHandler
	customerHandler     *handler.CustomerHandler
	masterDataHandler   *handler.MasterDataHandler
	notificationHandler *handler.NotificationHandler
}

func NewRouter(
	cfg *config.Config,
	logger *zap.Logger,
	db *gorm.DB,
	erpClient *erp.Client,
	authMiddleware *auth.Middleware,
	rateLimiter *middleware.RateLimiter,
	rateRequestHandler *handler.RateRequestHandler,
	rateCatalogHandler *handler.RateCatalogHandler,
	bookingHandler *handler.BookingHandler,
	itineraryHandler *handler.ItineraryHandler,
	customerHandler *handler.CustomerHandler,
	masterDataHandler *handler.MasterDataHandler,
	notificationHandler *handler.NotificationHandler,
) *Router {
	return &Router{
		cfg:                 cfg,
		logger:              logger,
		db:                  db,
		erpClient:           erpClient,
		authMiddleware:      authMiddleware,
		rateLimiter:         rateLimiter,
		rateRequestHandler:  rateRequestHandler,
		rateCatalogHandler:  rateCatalogHandler,
		bookingHandler:      bookingHandler,
		itineraryHandler:    itineraryHandler,
		customerHandler:     customerHandler,
		masterDataHandler:   masterDataHandler,
		notificationHandler: notificationHandler,
	}
}

func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Recovery(rt.logger))
	r.Use(middleware.Logging(rt.logger))
	r.Use(middleware.SecurityHeaders(&rt.cfg.Security))
	r.Use(middleware.CORS(&rt.cfg.CORS, rt.cfg.App.Environment, rt.logger))
	r.Use(rt.rateLimiter.LimitByIP)

	// Health check (basic liveness probe)
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Database health check (readiness probe with detailed stats)
	r.Get("/health/db", func(w http.ResponseWriter, r *http.Request) {
		stats, err := database.HealthCheckWithStats(rt.db)
		if err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]interface{}{
				"status":  "unhealthy",
				"error":   err.Error(),
				"service": "database",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":  "healthy",
			"service": "database",
			"stats": map[string]interface{}{
				"max_open_connections": stats.MaxOpenConnections,
				"open_connections":     stats.OpenConnections,
				"in_use":               stats.InUse,
				"idle":                 stats.Idle,
				"wait_count":           stats.WaitCount,
				"wait_duration_ms":     stats.WaitDuration.Milliseconds(),
				"max_idle_closed":      stats.MaxIdleClosed,
				"max_lifetime_closed":  stats.MaxLifetimeClosed,
			},
		})
	})

	// Combined readiness check (checks all dependencies)
	r.Get("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := make(map[string]interface{})
		allHealthy := true

		if err := database.HealthCheck(rt.db); err != nil {
			rt.logger.Error("Database health check failed", zap.Error(err))
			checks["database"] = map[string]interface{}{
				"status": "unhealthy",
				"error":  err.Error(),
			}
			allHealthy = false
		} else {
			checks["database"] = map[string]interface{}{
				"status": "healthy",
			}
		}

		// ERP is optional and degraded ERP connectivity does not fail readiness
		checks["erp"] = rt.erpClient.HealthCheck(r.Context())

		w.Header().Set("Content-Type", "application/json")
		status := "healthy"
		if !allHealthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			status = "unhealthy"
		} else {
			w.WriteHeader(http.StatusOK)
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": status,
			"checks": checks,
		})
	})

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(rt.authMiddleware.Authenticate)

			// Rate requests
			r.Route("/rate-requests", func(r chi.Router) {
				r.Get("/", rt.rateRequestHandler.List)
				r.Get("/{id}", rt.rateRequestHandler.GetByID)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleSales, domain.RoleCSE))
					r.Post("/", rt.rateRequestHandler.Create)
					r.Put("/{id}", rt.rateRequestHandler.Update)
				})

				// Quoting is restricted to the pricing team
				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RolePricing))
					r.Post("/{id}/responses", rt.rateRequestHandler.Respond)
					r.Post("/{id}/line-quotes", rt.rateRequestHandler.CreateLineQuote)
					r.Post("/{id}/complete", rt.rateRequestHandler.Complete)
					r.Post("/{id}/reject", rt.rateRequestHandler.Reject)
				})
			})

			// Rate catalog
			r.Route("/rates", func(r chi.Router) {
				r.Get("/", rt.rateCatalogHandler.List)
				r.Get("/{id}", rt.rateCatalogHandler.GetByID)
				r.Post("/{id}/request-update", rt.rateCatalogHandler.RequestUpdate)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RolePricing))
					r.Post("/", rt.rateCatalogHandler.Create)
					r.Put("/{id}", rt.rateCatalogHandler.Update)
				})
			})

			// Bookings
			r.Route("/bookings", func(r chi.Router) {
				r.Get("/", rt.bookingHandler.List)
				r.Get("/{id}", rt.bookingHandler.GetByID)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleSales, domain.RoleCSE))
					r.Post("/", rt.bookingHandler.Create)
					r.Post("/{id}/confirm", rt.bookingHandler.Confirm)
					r.Post("/{id}/cancel", rt.bookingHandler.Cancel)
					r.Post("/{id}/ro-documents", rt.bookingHandler.AddRODocument)
					r.Post("/{id}/job", rt.bookingHandler.OpenJob)
				})
			})

			// Jobs
			r.With(rt.authMiddleware.RequireRole(domain.RoleSales, domain.RoleCSE)).
				Post("/jobs/{jobId}/completions", rt.bookingHandler.CompleteJob)

			// Itineraries
			r.Route("/itineraries", func(r chi.Router) {
				r.Get("/", rt.itineraryHandler.List)
				r.Post("/", rt.itineraryHandler.Create)
				r.Get("/{id}", rt.itineraryHandler.GetByID)
				r.Post("/{id}/submit", rt.itineraryHandler.Submit)
				r.Post("/{id}/items", rt.itineraryHandler.AddItem)
				r.Put("/{id}/items/{itemId}", rt.itineraryHandler.UpdateItem)
				r.Delete("/{id}/items/{itemId}", rt.itineraryHandler.RemoveItem)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleSBUHead))
					r.Post("/{id}/approve", rt.itineraryHandler.Approve)
					r.Post("/{id}/reject", rt.itineraryHandler.Reject)
				})
			})

			// Customers
			r.Route("/customers", func(r chi.Router) {
				r.Get("/", rt.customerHandler.List)
				r.Post("/", rt.customerHandler.Create)
				r.Get("/{id}", rt.customerHandler.GetByID)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireRole(domain.RoleMgmt))
					r.Post("/{id}/approve", rt.customerHandler.Approve)
					r.Post("/{id}/reject", rt.customerHandler.Reject)
				})
			})

			// Master data
			r.Route("/master-data", func(r chi.Router) {
				r.Get("/ports", rt.masterDataHandler.ListPorts)
				r.Get("/trade-lanes", rt.masterDataHandler.ListTradeLanes)
				r.Get("/equipment-types", rt.masterDataHandler.ListEquipmentTypes)
				r.Get("/shipping-lines", rt.masterDataHandler.ListShippingLines)
				r.Get("/trade-lanes/{id}/pricing-users", rt.masterDataHandler.ListPricingUsers)

				r.Group(func(r chi.Router) {
					r.Use(rt.authMiddleware.RequireAdmin)
					r.Post("/ports", rt.masterDataHandler.CreatePort)
					r.Post("/trade-lanes", rt.masterDataHandler.CreateTradeLane)
					r.Post("/trade-lanes/{id}/pricing-users", rt.masterDataHandler.AssignPricingUser)
					r.Post("/equipment-types", rt.masterDataHandler.CreateEquipmentType)
					r.Post("/shipping-lines", rt.masterDataHandler.CreateShippingLine)
				})
			})

			// Notifications
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", rt.notificationHandler.List)
				r.Get("/count", rt.notificationHandler.GetUnreadCount)
				r.Put("/read-all", rt.notificationHandler.MarkAllAsRead)
				r.Get("/{id}", rt.notificationHandler.GetByID)
				r.Put("/{id}/read", rt.notificationHandler.MarkAsRead)
			})
		})
	})

	return r
}
