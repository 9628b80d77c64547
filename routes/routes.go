package routes

import (
	"net/http"
	"time"

	"maidbook/config"
	"maidbook/handlers"
	"maidbook/middleware"
	"maidbook/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	if hb.Health != nil {
		r.GET("/health", hb.Health)
		return
	}
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Maidbook"})
	})
}

// HealthHandler reports the last recorded store health.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	if !status.Mongo || !status.Redis {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// RegisterBookingRoutes sets up the endpoints for the booking wizard.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	h := hb.Booking
	bookingGroup := r.Group("/api/booking")
	{
		bookingGroup.Use(middleware.OptionalUserAuth())
		bookingGroup.GET("/timeslots", h.TimeSlots)
		bookingGroup.POST("/session", h.StartSession)
		bookingGroup.GET("/session/:id", h.GetSession)
		bookingGroup.DELETE("/session/:id", h.CancelSession)
		if hb.History != nil {
			bookingGroup.GET("/bookings", hb.History.ListBookings)
			bookingGroup.GET("/bookings/:id", hb.History.GetBooking)
		}

		s := bookingGroup.Group("/session/:id")
		s.POST("/start", h.RetryStart)
		s.POST("/location", h.SelectLocation)
		s.POST("/plan", h.SelectPlan)
		s.POST("/answer", h.Answer)
		s.POST("/next", h.NextQuestion)
		s.POST("/schedule", h.SetSchedule)
		s.POST("/notes", h.SetNotes)
		s.POST("/review", h.ContinueToReview)
		s.POST("/address", h.SubmitAddress)
		s.POST("/signin", h.SignIn)
		s.POST("/payment/confirm", h.ConfirmPayment)
		s.POST("/payment/failed", h.PaymentFailed)
		s.POST("/persist/retry", h.RetryPersistence)
		s.POST("/back", h.Back)
		s.POST("/dismiss", h.DismissError)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, logger *zap.Logger) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RequestLogger(logger))
	r.Use(utils.ErrorHandler())
	r.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin, logger))

	RegisterHealthRoute(r, hb)
	RegisterBookingRoutes(r, hb)
}
