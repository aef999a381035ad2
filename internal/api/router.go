// Package api exposes the administration HTTP surface: site management,
// suggestion moderation and the banner lifecycle.
package api

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// NewRouter wires every handler under /api plus the health probe.
func NewRouter(
	sites *SiteHandler,
	suggestions *SuggestionHandler,
	banners *BannerHandler,
	logger *slog.Logger,
) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := router.Group("/api")
	{
		s := api.Group("/sites")
		{
			s.GET("", sites.List)
			s.POST("", sites.Create)
			s.GET("/selectors", sites.SuggestSelectors)
			s.GET("/:id", sites.Get)
			s.PUT("/:id", sites.Update)
			s.DELETE("/:id", sites.Delete)
			s.POST("/:id/test", sites.Test)
			s.POST("/:id/crawl", sites.Crawl)
		}

		p := api.Group("/suggested-posts")
		{
			p.GET("", suggestions.List)
			p.POST("/:id/approve", suggestions.Approve)
			p.POST("/:id/reject", suggestions.Reject)
			p.POST("/:id/convert", suggestions.Convert)
			p.DELETE("/:id", suggestions.Delete)
		}

		b := api.Group("/banners")
		{
			b.GET("", banners.List)
			b.GET("/display", banners.ListDisplayable)
			b.POST("", banners.Create)
			b.POST("/upload", banners.Upload)
			b.GET("/:id", banners.Get)
			b.PUT("/:id", banners.Update)
			b.POST("/:id/reactivate", banners.Reactivate)
			b.DELETE("/:id", banners.Delete)
		}
	}

	return router
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		status := c.Writer.Status()
		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", status,
		}
		if status >= 500 {
			logger.Error("request failed", attrs...)
		} else {
			logger.Debug("request handled", attrs...)
		}
	}
}
