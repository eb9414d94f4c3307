package app

import (
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/campuslink/facility-booking-backend/internal/api"
	"github.com/campuslink/facility-booking-backend/internal/auth"
	"github.com/campuslink/facility-booking-backend/internal/booking"
	"github.com/campuslink/facility-booking-backend/internal/config"
	"github.com/campuslink/facility-booking-backend/internal/facility"
	"github.com/campuslink/facility-booking-backend/internal/notify"
	"github.com/campuslink/facility-booking-backend/internal/user"
)

// Container wires repositories, services and the HTTP router together.
type Container struct {
	Router   *gin.Engine
	Notifier notify.Notifier

	redisClient *redis.Client
}

// NewContainer builds the full dependency graph from configuration and an
// open database pool.
func NewContainer(cfg *config.Config, pool *pgxpool.Pool) (*Container, error) {
	c := &Container{}

	loc, err := time.LoadLocation(cfg.BookingTZ)
	if err != nil {
		return nil, err
	}

	hasher := auth.NewBcryptPasswordHasherWithCost(cfg.BcryptCost)
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTAccessTokenTTL)

	userRepo := user.NewPgxRepository(pool)
	userService := user.NewService(userRepo, hasher)

	facilityRepo := facility.NewPgxRepository(pool)
	facilityService := facility.NewService(facilityRepo)

	// Outcome notifications go to RabbitMQ when configured, otherwise they
	// are dropped. Booking decisions never depend on the broker being up.
	c.Notifier = notify.NoopNotifier{}
	if cfg.AMQPURL != "" {
		n, err := notify.NewRabbitMQNotifier(cfg.AMQPURL, cfg.AMQPExchange)
		if err != nil {
			log.Printf("rabbitmq unavailable, booking notifications disabled: %v", err)
		} else {
			c.Notifier = n
		}
	}

	bookingRepo := booking.NewPgxRepository(pool)
	bookingService := booking.NewService(bookingRepo, facilityService, booking.NewRoleAuthorizer(), c.Notifier, loc)

	var rateLimiter gin.HandlerFunc
	if cfg.RedisAddr != "" {
		c.redisClient = redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		rateLimiter = api.RateLimit(c.redisClient, cfg.RateLimitRequests, time.Duration(cfg.RateLimitWindowSec)*time.Second)
	}

	c.Router = api.NewRouter(api.Config{
		IsProduction:    cfg.IsProduction,
		ProdOrigins:     cfg.ProdOrigins,
		UserService:     userService,
		FacilityService: facilityService,
		BookingService:  bookingService,
		JWTManager:      jwtManager,
		RateLimiter:     rateLimiter,
	})

	return c, nil
}

// Close releases broker and cache connections owned by the container.
func (c *Container) Close() {
	if c.Notifier != nil {
		if err := c.Notifier.Close(); err != nil {
			log.Printf("failed to close notifier: %v", err)
		}
	}
	if c.redisClient != nil {
		if err := c.redisClient.Close(); err != nil {
			log.Printf("failed to close redis client: %v", err)
		}
	}
}
