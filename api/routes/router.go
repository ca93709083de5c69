package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/deliverly/deliverly-backend/api/controllers"
	"github.com/deliverly/deliverly-backend/api/middleware"
	"github.com/deliverly/deliverly-backend/internal/delivery"
	"github.com/deliverly/deliverly-backend/internal/notifications"
	"github.com/deliverly/deliverly-backend/internal/orders"
	"github.com/deliverly/deliverly-backend/internal/ratings"
	"github.com/deliverly/deliverly-backend/pkg/config"
	"github.com/deliverly/deliverly-backend/pkg/db"
	"github.com/deliverly/deliverly-backend/pkg/enums"
	"github.com/deliverly/deliverly-backend/pkg/logger"
	"github.com/deliverly/deliverly-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	ordersService orders.Service,
	deliveryService delivery.Service,
	ratingsService ratings.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	// A nil *redis.Client must become a nil interface so the idempotency
	// middleware can detect it and pass requests through.
	var idempotencyStore redis.IdempotencyStore
	var redisPinger redis.Pinger
	if redisClient != nil {
		idempotencyStore = redisClient
		redisPinger = redisClient
	}

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisPinger))
	})

	r.Route("/api/public", func(r chi.Router) {
		r.Get("/ping", controllers.PublicPing())
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(idempotencyStore, logg))

		r.Get("/ping", controllers.PrivatePing())

		r.Route("/v1/orders", func(r chi.Router) {
			r.Post("/", controllers.CreateOrder(ordersService, logg))
			r.Get("/", controllers.ListOrders(ordersService, logg))
			r.Get("/{orderId}", controllers.OrderDetail(ordersService, logg))
		})

		r.Route("/v1/ratings", func(r chi.Router) {
			r.Post("/", controllers.SubmitRating(ratingsService, logg))
			r.Get("/eligibility", controllers.RatingEligibility(ratingsService, logg))
		})

		r.Route("/v1/notifications", func(r chi.Router) {
			r.Get("/", controllers.ListNotifications(notificationsService, logg))
			r.Post("/{notificationId}/read", controllers.MarkNotificationRead(notificationsService, logg))
			r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
		})

		r.Route("/v1/partner", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RolePartner), logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.PartnerOrderQueue(ordersService, logg))
				r.Post("/{orderId}/status", controllers.UpdateOrderStatus(ordersService, logg))
			})
		})

		r.Route("/v1/driver", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleDriver), logg))
			r.Route("/orders", func(r chi.Router) {
				r.Get("/", controllers.DriverQueue(deliveryService, logg))
				r.Post("/{orderId}/accept", controllers.DriverAccept(deliveryService, logg))
				r.Post("/{orderId}/complete", controllers.DriverComplete(deliveryService, logg))
			})
		})

		r.Route("/v1/admin", func(r chi.Router) {
			r.Use(middleware.RequireRole(string(enums.RoleAdmin), logg))
			r.Post("/orders/{orderId}/status", controllers.UpdateOrderStatus(ordersService, logg))
		})
	})

	return r
}
