package quiz

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches quiz catalog endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed, adminOnly []gin.HandlerFunc) {
	quizzes := router.Group("/quizzes")

	quizzes.GET("", append(authed, handler.List)...)
	quizzes.GET("/categories", append(authed, handler.ListCategories)...)
	quizzes.GET("/:quizId", append(authed, handler.GetByID)...)

	quizzes.POST("", append(adminOnly, handler.Create)...)
	quizzes.POST("/categories", append(adminOnly, handler.CreateCategory)...)
	quizzes.POST("/:quizId/questions", append(adminOnly, handler.CreateQuestion)...)
}
