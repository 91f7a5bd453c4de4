package profile

import "github.com/gin-gonic/gin"

// RegisterRoutes attaches profile endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed []gin.HandlerFunc) {
	profiles := router.Group("/profile")

	profiles.GET("", append(authed, handler.GetMine)...)
	profiles.PUT("", append(authed, handler.Update)...)
	profiles.POST("/experiences", append(authed, handler.AddExperience)...)
	profiles.POST("/educations", append(authed, handler.AddEducation)...)
	profiles.POST("/skills", append(authed, handler.AddSkill)...)
	profiles.POST("/projects", append(authed, handler.AddProject)...)
	profiles.POST("/languages", append(authed, handler.AddLanguage)...)
	profiles.POST("/certificates", append(authed, handler.AddCertificate)...)
	profiles.DELETE("/:section/:entryId", append(authed, handler.DeleteSection)...)

	router.GET("/profiles/:userId", append(authed, handler.GetByUserID)...)
}
