package dashboard

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches dashboard endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed, adminOnly []gin.HandlerFunc) {
	dash := router.Group("/dashboard")

	dash.GET("/admin", append(adminOnly, handler.GetAdminDashboard)...)
	dash.GET("/instructor", append(authed, handler.GetInstructorDashboard)...)
	dash.GET("/logs", append(adminOnly, handler.GetSystemLogs)...)
}
