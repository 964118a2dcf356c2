package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes configures all API routes. metrics may be nil.
func SetupRoutes(router *gin.Engine, handler *Handler, metrics http.Handler) {
	if metrics != nil {
		router.GET("/metrics", gin.WrapH(metrics))
	}

	v1 := router.Group("/api/v1")
	{
		v1.POST("/analyze", handler.Analyze)
		v1.POST("/discover", handler.Discover)
		v1.GET("/labels", handler.Labels)
		v1.GET("/topics", handler.Topics)
	}

	if handler.rules == nil {
		return
	}
	rules := v1.Group("/rules")
	{
		rules.GET("", handler.ListRules)
		rules.POST("", handler.CreateRule)
		rules.PATCH("/:id", handler.SetRuleEnabled)
		rules.DELETE("/:id", handler.DeleteRule)
	}
}
