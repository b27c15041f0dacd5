package handler

import (
	"net/http"

	_ "findway/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes mounts every endpoint on r.
func RegisterRoutes(r gin.IRouter, nav *NavigationHandler, loc *LocationHandler, diag *DiagnosticsHandler) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})

	r.GET("/snapshot", nav.Snapshot)
	r.GET("/snapshot/stream", nav.Stream)
	r.POST("/search", nav.Search)
	r.POST("/suggestions/accept", nav.AcceptSuggestion)
	r.POST("/map/tap", nav.MapTap)
	r.POST("/destination/confirm", nav.ConfirmDestination)
	r.POST("/guidance/end", nav.EndGuidance)
	r.POST("/camera/recenter", nav.Recenter)

	r.POST("/location", loc.Publish)
	r.POST("/permission", loc.Permission)
	r.POST("/lifecycle", loc.Lifecycle)

	r.GET("/diagnostics", diag.Recent)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
