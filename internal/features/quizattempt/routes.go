package quizattempt

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches quiz attempt endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed []gin.HandlerFunc) {
	router.POST("/quizzes/:quizId/attempts", append(authed, handler.Start)...)

	attempts := router.Group("/attempts")
	attempts.GET("", append(authed, handler.List)...)
	attempts.GET("/:attemptId/current", append(authed, handler.CurrentQuestion)...)
	attempts.POST("/:attemptId/answers", append(authed, handler.SubmitAnswer)...)
	attempts.GET("/:attemptId/result", append(authed, handler.Result)...)
}
