package lesson

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches lesson endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed, adminOnly []gin.HandlerFunc) {
	lessons := router.Group("/courses/:courseId/lessons")

	lessons.GET("", append(authed, handler.ListByCourse)...)
	lessons.POST("", append(adminOnly, handler.Create)...)
	lessons.PUT("/:lessonId", append(adminOnly, handler.Update)...)
	lessons.DELETE("/:lessonId", append(adminOnly, handler.Delete)...)
}
