package course

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches course endpoints to the router. Catalog reads are
// public; mutations require an authenticated instructor or admin.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed []gin.HandlerFunc) {
	courses := router.Group("/courses")

	courses.GET("", handler.List)
	courses.GET("/:courseId", handler.GetByID)
	courses.POST("", append(authed, handler.Create)...)
	courses.PUT("/:courseId", append(authed, handler.Update)...)
	courses.DELETE("/:courseId", append(authed, handler.Delete)...)
	courses.GET("/:courseId/students", append(authed, handler.EnrolledStudents)...)
}
