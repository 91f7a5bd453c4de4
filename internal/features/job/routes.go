package job

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes attaches job board endpoints to the router.
func RegisterRoutes(router *gin.RouterGroup, handler *Handler, authed, employer []gin.HandlerFunc) {
	jobs := router.Group("/jobs")

	jobs.GET("", append(authed, handler.List)...)
	jobs.GET("/:jobId", append(authed, handler.GetByID)...)
	jobs.POST("", append(employer, handler.Create)...)
	jobs.PUT("/:jobId", append(employer, handler.Update)...)
	jobs.DELETE("/:jobId", append(employer, handler.Delete)...)

	companies := router.Group("/companies")
	companies.GET("", append(authed, handler.ListCompanies)...)
	companies.GET("/:companyId", append(authed, handler.GetCompany)...)
	companies.POST("", append(employer, handler.CreateCompany)...)
}
