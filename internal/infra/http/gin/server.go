package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"vidaview/internal/infra/config"
	"vidaview/internal/infra/obs"
)

type Handlers struct {
	Auth           AuthHTTP
	Apartment      ApartmentHTTP
	Booking        BookingHTTP
	Payment        PaymentHTTP
	Reviews        ReviewsHTTP
	Dashboard      DashboardHTTP
	Notification   NotificationHTTP
	AuthMiddleware gin.HandlerFunc
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "Idempotency-Key"},
		ExposeHeaders: []string{
			"Content-Length",
			"Content-Type",
			"X-Request-ID",
		},
		MaxAge: 12 * time.Hour,
	}))
	if h.AuthMiddleware != nil {
		router.Use(h.AuthMiddleware)
	}

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Auth != nil {
		api.POST("/auth/register", h.Auth.Register)
		api.POST("/auth/login", h.Auth.Login)
		api.POST("/auth/logout", h.Auth.Logout)
		api.GET("/auth/me", h.Auth.Me)
	}
	if h.Apartment != nil {
		api.POST("/apartments", h.Apartment.Create)
		api.GET("/apartments", h.Apartment.List)
		api.GET("/apartments/:id", h.Apartment.Get)
		api.PUT("/apartments/:id/pricing", h.Apartment.UpdatePricing)
	}
	if h.Booking != nil {
		bookings := api.Group("/bookings")
		bookings.POST("", h.Booking.Create)
		bookings.GET("", h.Booking.List)
		bookings.GET("/:id", h.Booking.Get)
		bookings.POST("/:id/approve", h.Booking.Approve)
		bookings.POST("/:id/reject", h.Booking.Reject)
		bookings.POST("/:id/cancel", h.Booking.Cancel)
		bookings.POST("/:id/activate", h.Booking.Activate)
		bookings.POST("/:id/complete", h.Booking.Complete)
	}
	if h.Payment != nil {
		payments := api.Group("/payments")
		payments.POST("", h.Payment.Create)
		payments.GET("/booking/:booking_id", h.Payment.ListForBooking)
		payments.GET("/:id", h.Payment.Get)
		payments.POST("/:id/confirm", h.Payment.Confirm)
		payments.POST("/:id/fail", h.Payment.Fail)
		payments.POST("/:id/refund", h.Payment.Refund)
	}
	if h.Reviews != nil {
		reviews := api.Group("/reviews")
		reviews.POST("", h.Reviews.Submit)
		reviews.GET("/apartment/:id", h.Reviews.ListByApartment)
		reviews.GET("/pending", h.Reviews.ListPending)
		reviews.GET("/mine", h.Reviews.ListMine)
		reviews.POST("/:id/approve", h.Reviews.Approve)
		reviews.DELETE("/:id", h.Reviews.Delete)
	}
	if h.Dashboard != nil {
		dashboard := api.Group("/dashboard")
		dashboard.GET("/admin", h.Dashboard.Admin)
		dashboard.GET("/owner", h.Dashboard.Owner)
		dashboard.GET("/tenant", h.Dashboard.Tenant)
		dashboard.GET("/revenue-chart", h.Dashboard.RevenueChart)
		dashboard.GET("/revenue-export", h.Dashboard.RevenueExport)
	}
	if h.Notification != nil {
		notifications := api.Group("/notifications")
		notifications.GET("", h.Notification.List)
		notifications.GET("/unread-count", h.Notification.UnreadCount)
		notifications.POST("/read-all", h.Notification.MarkAllRead)
		notifications.POST("/:id/read", h.Notification.MarkRead)
	}

	return &http.Server{Addr: cfg.HTTPAddr, Handler: router}
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
