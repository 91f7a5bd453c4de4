package auth

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches authentication endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed []gin.HandlerFunc) {
	auth := router.Group("/auth")
	{
		auth.POST("/register", handler.Register)
		auth.POST("/login", handler.Login)
		auth.POST("/logout", handler.Logout)
		auth.POST("/refresh-token", handler.RefreshToken)
		auth.GET("/me", append(authed, handler.Me)...)
	}
}
