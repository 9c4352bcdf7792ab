package app

import (
	"net/http"
	"path/filepath"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/garyellow/ntpu-course-master/internal/modules/course"
)

// newRouter builds the gin engine with middleware and all routes.
func (a *Application) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if a.cfg.SentryEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware(a.cfg.WebDir != ""))
	router.Use(loggingMiddleware(a.logger))

	a.registerRoutes(router)
	return router
}

func (a *Application) registerRoutes(router *gin.Engine) {
	router.GET("/livez", a.livenessCheck)
	router.HEAD("/livez", a.livenessCheck)
	router.GET("/readyz", a.readinessCheck)
	router.HEAD("/readyz", a.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	api := router.Group("/api")
	api.GET("/health", a.livenessCheck)
	api.GET("/departments", operation(course.OpDepartments), a.listDepartments)

	courses := api.Group("/courses")
	courses.GET("/all", operation(course.OpListAll), a.listAll)
	courses.GET("/search", operation(course.OpSearch), a.search)
	courses.GET("/by-class", operation(course.OpByClass), a.byClass)
	courses.POST("/recommend", operation(course.OpRecommend), a.recommend)
	courses.GET("/history", operation(course.OpHistory), a.history)
	courses.GET("/stats", operation(course.OpStats), a.stats)
	courses.GET("/:id", operation(course.OpDetail), a.detail)

	if dir := a.cfg.WebDir; dir != "" {
		router.StaticFile("/", filepath.Join(dir, "index.html"))
		router.Static("/css", filepath.Join(dir, "assets", "css"))
		router.Static("/js", filepath.Join(dir, "assets", "js"))
	}

	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Not Found"})
	})
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

// readinessCheck reports ready once a dataset has been published.
func (a *Application) readinessCheck(c *gin.Context) {
	snap, ok := a.cache.Latest()
	if !ok {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "no dataset loaded",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"source":    a.source.Name(),
		"dataset":   snap.Source(),
		"records":   snap.Len(),
		"loaded_at": snap.LoadedAt(),
		"views":     a.cache.Views(),
	})
}
