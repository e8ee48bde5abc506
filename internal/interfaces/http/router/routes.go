package router

import (
	"github.com/gin-gonic/gin"
)

// RegisterAPIRoutes 注册 /api 路由
func RegisterAPIRoutes(api *gin.RouterGroup, h *RouterHandlers) {
	videos := api.Group("/videos")
	{
		videos.POST("/rank", h.Video.Rank)
		videos.POST("/search", h.Video.Search)
	}

	viewers := api.Group("/viewers")
	{
		viewers.GET("/:vid/stats", h.Viewer.Stats)
	}
}
