package dashboard

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches dashboard endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed, adminOnly []gin.HandlerFunc) {
	dashboard := router.Group("/dashboard")
	{
		dashboard.GET("/summary", append(authed, handler.GetLearningSummary)...)
		dashboard.GET("/admin", append(adminOnly, handler.GetAdminStats)...)
		dashboard.GET("/system-stats", append(adminOnly, handler.GetSystemStats)...)
		dashboard.GET("/logs", append(adminOnly, handler.GetSystemLogs)...)
	}
}
