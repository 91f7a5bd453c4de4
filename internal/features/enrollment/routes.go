package enrollment

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches enrollment endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed []gin.HandlerFunc) {
	router.POST("/courses/:courseId/enroll", append(authed, handler.Enroll)...)

	enrollments := router.Group("/enrollments")
	enrollments.GET("", append(authed, handler.List)...)
	enrollments.GET("/:enrollmentId", append(authed, handler.GetByID)...)
	enrollments.POST("/:enrollmentId/lessons/:lessonId/complete", append(authed, handler.CompleteLesson)...)
}
