package enrollment

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches enrollment and payment endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed, adminOnly []gin.HandlerFunc) {
	router.GET("/courses/:courseId/access", append(authed, handler.GetAccess)...)
	router.POST("/courses/:courseId/payments", append(authed, handler.SubmitClaim)...)
	router.GET("/enrollments/my", append(authed, handler.MyEnrollments)...)

	payments := router.Group("/payments")
	payments.GET("", append(adminOnly, handler.ListClaims)...)
	payments.POST("/:claimId/approve", append(adminOnly, handler.Approve)...)
	payments.POST("/:claimId/reject", append(adminOnly, handler.Reject)...)
}
