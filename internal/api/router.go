package api

import (
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/campuslink/facility-booking-backend/internal/auth"
	"github.com/campuslink/facility-booking-backend/internal/booking"
	bookingHttp "github.com/campuslink/facility-booking-backend/internal/booking/http"
	"github.com/campuslink/facility-booking-backend/internal/facility"
	facHttp "github.com/campuslink/facility-booking-backend/internal/facility/http"
	"github.com/campuslink/facility-booking-backend/internal/user"
	userHttp "github.com/campuslink/facility-booking-backend/internal/user/http"
)

// Config holds everything the router needs from the container.
type Config struct {
	IsProduction bool
	ProdOrigins  string

	UserService     user.Service
	FacilityService facility.Service
	BookingService  booking.Service
	JWTManager      *auth.JWTManager

	// RateLimiter is applied to booking creation; nil disables limiting.
	RateLimiter gin.HandlerFunc
}

// NewRouter initializes the HTTP router engine.
// It is responsible for assembling middleware (CORS, Logger, Auth) and registering routes for the modules.
func NewRouter(cfg Config) *gin.Engine {
	r := gin.New()

	// Global Middleware:
	// - Logger: Logs request information to the console.
	// - Recovery: Captures panics to prevent server crashes and returns a 500 error.
	r.Use(gin.Logger(), gin.Recovery())

	// Configure CORS (Cross-Origin Resource Sharing).
	corsConfig := cors.DefaultConfig()
	if cfg.IsProduction && cfg.ProdOrigins != "" {
		corsConfig.AllowOrigins = strings.Split(cfg.ProdOrigins, ",")
	} else {
		corsConfig.AllowOrigins = []string{"http://localhost:3000"}
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	r.Use(cors.New(corsConfig))

	// authMiddleware: Validates if the request contains a valid JWT.
	authMiddleware := auth.AuthRequired(cfg.JWTManager)
	// adminMiddleware: Further checks if the principal holds the admin role.
	adminMiddleware := RequireAdmin()

	// Initialize HTTP Handlers for each module (injecting Service dependencies).
	userHandler := userHttp.NewHandler(cfg.UserService, cfg.JWTManager)
	facilityHandler := facHttp.NewHandler(cfg.FacilityService)
	bookingHandler := bookingHttp.NewHandler(cfg.BookingService)

	// Register API routes under /v1
	v1 := r.Group("/v1")
	{
		userHttp.RegisterRoutes(v1, userHandler, authMiddleware)
		facHttp.RegisterRoutes(v1, facilityHandler, authMiddleware, adminMiddleware)
		bookingHttp.RegisterRoutes(v1, bookingHandler, authMiddleware, cfg.RateLimiter)
	}

	return r
}
