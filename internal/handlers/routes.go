package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/staynest/booking-backend/internal/middleware"
	"github.com/staynest/booking-backend/internal/models"
)

// Handlers groups the route handlers
type Handlers struct {
	User    *UserHandler
	Room    *RoomHandler
	Payment *PaymentHandler
	Booking *BookingHandler
	Health  *HealthHandler
}

// LimitFunc builds a throttle for one class of endpoint
type LimitFunc func(limitType string) gin.HandlerFunc

// RegisterRoutes mounts every endpoint. auth authenticates the caller and
// limit throttles token issuing and the endpoints that reach Stripe.
func RegisterRoutes(r gin.IRouter, h Handlers, auth gin.HandlerFunc, limit LimitFunc) {
	tokenLimit := limit("token")

	hostOnly := middleware.RequireRole(models.RoleHost)
	adminOnly := middleware.RequireRole(models.RoleAdmin)

	r.GET("/health", h.Health.Health)

	// Public
	r.POST("/jwt", tokenLimit, h.User.IssueToken)
	r.POST("/jwt/refresh", tokenLimit, h.User.RefreshToken)
	r.PUT("/user", h.User.SaveUser)
	r.GET("/rooms", h.Room.ListRooms)
	r.GET("/room/:id", h.Room.GetRoom)

	protected := r.Group("")
	protected.Use(auth)
	{
		protected.GET("/user/role/:email", h.User.GetRole)
		protected.GET("/dashboard/menu", h.User.Menu)

		protected.GET("/users", adminOnly, h.User.ListUsers)
		protected.PATCH("/users/update/:email", adminOnly, h.User.UpdateUser)

		protected.POST("/room", hostOnly, h.Room.CreateRoom)
		protected.GET("/my-listings/:email", hostOnly, h.Room.ListByHost)
		protected.PUT("/room/update/:id", hostOnly, h.Room.UpdateRoom)
		protected.DELETE("/room/:id", hostOnly, h.Room.DeleteRoom)
		protected.PATCH("/room/status/:id", h.Room.SetStatus)

		protected.POST("/create-payment-intent", limit("payment_intent"), h.Payment.CreatePaymentIntent)

		protected.POST("/booking", limit("booking"), h.Booking.CreateBooking)
		protected.GET("/my-bookings/:email", h.Booking.ListByGuest)
		protected.GET("/manage-bookings/:email", hostOnly, h.Booking.ListByHost)
		protected.DELETE("/booking/:id", h.Booking.CancelBooking)
	}
}
