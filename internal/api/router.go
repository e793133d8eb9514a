// Package api serves a fetch.Source over HTTP as a paginated JSON list
// endpoint. The query string is the RequestParams encoding.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abelbrown/dashtable/internal/fetch"
	"github.com/abelbrown/dashtable/internal/logging"
	"github.com/abelbrown/dashtable/internal/params"
)

// NewRouter mounts GET /api/<resource> for every source plus /healthz.
func NewRouter(sources map[string]fetch.Source) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(requestLogger(), gin.Recovery())
	if err := r.SetTrustedProxies(nil); err != nil {
		logging.Warn("failed to set trusted proxies", "comp", "api", "err", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")
	for name, src := range sources {
		api.GET("/"+name, list(src))
	}
	return r
}

func list(src fetch.Source) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := params.Decode(c.Request.URL.Query())
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		page, err := src.Fetch(c.Request.Context(), p)
		switch {
		case errors.Is(err, params.ErrInvalidParams):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		case err != nil:
			logging.Error("fetch failed", "comp", "api", "path", c.Request.URL.Path, "err", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load page"})
			return
		}
		if page.Rows == nil {
			page.Rows = []fetch.Row{}
		}
		c.JSON(http.StatusOK, page)
	}
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logging.Debug("request",
			"comp", "api",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"dur", time.Since(start),
		)
	}
}
