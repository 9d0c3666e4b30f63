package lesson

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches lesson endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed []gin.HandlerFunc) {
	lessons := router.Group("/courses/:courseId/lessons")

	lessons.GET("", append(authed, handler.List)...)
	lessons.POST("", append(authed, handler.Create)...)
	lessons.PUT("/:lessonId", append(authed, handler.Update)...)
	lessons.DELETE("/:lessonId", append(authed, handler.Delete)...)
}
