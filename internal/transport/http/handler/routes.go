package handler

import "github.com/gin-gonic/gin"

func SetupRoutes(router *gin.Engine, h *Handler) {
	router.GET("/health", h.Health)

	v1 := router.Group("/api/v1")
	v1.POST("/messages", h.PostMessage)
	v1.POST("/query", h.Query)

	channels := v1.Group("/channels")
	channels.GET("", h.ListChannels)
	channels.GET("/:channel/context", h.GetContext)
	channels.GET("/:channel/actions", h.ListActionItems)
	channels.POST("/:channel/actions/:index/resolve", h.ResolveActionItem)
}
