package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/roamly/roamly-backend/internal/domain"
	"github.com/roamly/roamly-backend/internal/handler"
	"github.com/roamly/roamly-backend/internal/middleware"
	"github.com/roamly/roamly-backend/internal/service"
	"github.com/roamly/roamly-backend/pkg/jwt"
)

// Handlers bundles every API handler for route registration
type Handlers struct {
	Auth         *handler.AuthHandler
	Tour         *handler.TourHandler
	Booking      *handler.BookingHandler
	Subscription *handler.SubscriptionHandler
	Payment      *handler.PaymentHandler
	Blog         *handler.BlogHandler
}

// Setup configures all /api/v1 routes
func Setup(router *gin.Engine, h *Handlers, jwtManager *jwt.Manager, subs service.SubscriptionService) {
	api := router.Group("/api/v1")
	auth := middleware.JWTAuth(jwtManager)
	hostOnly := middleware.RequireRole(domain.UserRoleHost, domain.UserRoleAdmin)
	adminOnly := middleware.RequireRole(domain.UserRoleAdmin)
	entitled := middleware.EntitlementGuard(subs)

	// Auth
	authGroup := api.Group("/auth")
	authGroup.POST("/register", h.Auth.Register)
	authGroup.POST("/login", h.Auth.Login)
	authGroup.POST("/refresh", h.Auth.Refresh)
	authGroup.GET("/me", auth, h.Auth.GetProfile)

	// Public catalog
	tours := api.Group("/tours")
	tours.GET("", h.Tour.ListTours)
	tours.GET("/:id", h.Tour.GetTour)

	plans := api.Group("/plans")
	plans.GET("", h.Subscription.ListPlans)
	plans.GET("/:id", h.Subscription.GetPlan)

	blogs := api.Group("/blogs")
	blogs.GET("", h.Blog.ListPublished)
	blogs.GET("/:id", h.Blog.GetBlog)

	// Bookings (tourist)
	bookings := api.Group("/bookings", auth)
	bookings.POST("", h.Booking.CreateBooking)
	bookings.GET("/me", h.Booking.ListMyBookings)
	bookings.GET("/me/stats", h.Booking.GetMyStats)
	bookings.GET("/:id", h.Booking.GetBooking)
	bookings.PUT("/:id", h.Booking.UpdateBooking)
	bookings.POST("/:id/cancel", h.Booking.CancelBooking)
	bookings.PATCH("/:id/status", h.Booking.UpdateBookingStatus)
	bookings.DELETE("/:id", h.Booking.DeleteBooking)
	bookings.POST("/:id/payment-intent", h.Payment.CreateBookingPaymentIntent)

	// Payments
	payments := api.Group("/payments", auth)
	payments.GET("/me", h.Payment.ListMyPayments)
	payments.GET("/:id", h.Payment.GetPayment)
	payments.POST("/:id/sync", h.Payment.SyncPaymentStatus)

	// Host console; tour and blog creation go through the entitlement guard
	host := api.Group("/host", auth, hostOnly)
	host.GET("/tours", h.Tour.ListMyTours)
	host.POST("/tours", entitled, h.Tour.CreateTour)
	host.PUT("/tours/:id", h.Tour.UpdateTour)
	host.DELETE("/tours/:id", h.Tour.DeleteTour)

	host.GET("/bookings", h.Booking.ListHostBookings)
	host.GET("/stats", h.Booking.GetHostStats)

	host.GET("/blogs", h.Blog.ListMyBlogs)
	host.POST("/blogs", entitled, h.Blog.CreateBlog)
	host.PUT("/blogs/:id", h.Blog.UpdateBlog)
	host.DELETE("/blogs/:id", h.Blog.DeleteBlog)

	host.GET("/subscription", h.Subscription.GetMySubscription)
	host.POST("/subscription", h.Subscription.Subscribe)
	host.POST("/subscription/verify", h.Subscription.VerifySession)
	host.POST("/subscription/portal", h.Subscription.CreateBillingPortal)
	host.DELETE("/subscription", h.Subscription.CancelSubscription)

	// Admin
	admin := api.Group("/admin", auth, adminOnly)
	admin.GET("/bookings", h.Booking.ListBookings)
	admin.GET("/payments", h.Payment.ListPayments)
	admin.POST("/plans", h.Subscription.CreatePlan)
	admin.PUT("/plans/:id", h.Subscription.UpdatePlan)
	admin.DELETE("/plans/:id", h.Subscription.DeactivatePlan)
	admin.GET("/subscriptions", h.Subscription.ListSubscriptions)
	admin.GET("/subscriptions/analytics", h.Subscription.GetAnalytics)
	admin.POST("/subscriptions/expire-sweep", h.Subscription.ExpireSweep)

	// Provider webhooks; signature-verified, never behind JWT
	api.POST("/webhooks/stripe", h.Subscription.Webhook)
}
