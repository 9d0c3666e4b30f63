package user

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches user endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed, adminOnly []gin.HandlerFunc) {
	users := router.Group("/users")

	users.GET("/me", append(authed, handler.Me)...)
	users.GET("", append(adminOnly, handler.List)...)
	users.DELETE("/:userId", append(adminOnly, handler.Delete)...)
	users.DELETE("/:userId/enrollments/:courseId", append(adminOnly, handler.RemoveEnrolledCourse)...)
}
