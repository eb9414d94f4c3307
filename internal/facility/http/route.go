package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers facility registry routes. Reads are open to any
// authenticated principal; seeding is admin-only.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware gin.HandlerFunc) {
	group := g.Group("/facilities")
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/nearest", h.Nearest)
		group.GET("/:id", h.Get)
	}

	adminGroup := g.Group("/facilities")
	adminGroup.Use(authMiddleware, adminMiddleware)
	{
		adminGroup.POST("", h.Create)
		adminGroup.PATCH("/:id", h.Update)
	}
}
