package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers booking routes. The facility-scoped pair lives
// under /facilities because the slot request and the day projection are
// addressed by facility, as in the portal API. rateLimiter may be nil.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware gin.HandlerFunc, rateLimiter gin.HandlerFunc) {
	facGroup := g.Group("/facilities")
	facGroup.Use(authMiddleware)
	{
		facGroup.GET("/:id/availability", h.Availability)
		if rateLimiter != nil {
			facGroup.POST("/:id/book", rateLimiter, h.Create)
		} else {
			facGroup.POST("/:id/book", h.Create)
		}
	}

	group := g.Group("/bookings")
	group.Use(authMiddleware)
	{
		group.GET("/my", h.ListMine)
		group.GET("/pending", h.ListPending)
		group.PUT("/:bookingId/approve", h.Approve)
		group.PUT("/:bookingId/reject", h.Reject)
		group.PUT("/:bookingId/admin-override", h.Override)
		group.DELETE("/:bookingId", h.Cancel)
	}
}
