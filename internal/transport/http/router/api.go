package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"user-directory/internal/core/config"
	"user-directory/internal/core/server"
	mdw "user-directory/internal/transport/http/middleware"
	resp "user-directory/internal/transport/http/response"
)

// NewAPIEngine builds the backend engine. mods are APIModule and/or
// LegacyModule values.
func NewAPIEngine(l *zap.Logger, cfg *config.Config, mods ...any) *gin.Engine {
	h := cfg.App.HTTP
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		server.CORS(cfg.CORS.AllowOrigins),
		mdw.RateLimit(rate.Limit(h.RateLimitRPS), h.RateLimitBurst),
		mdw.ConcurrencyLimit(h.MaxConcurrent),
		mdw.MaxBodyBytes(h.MaxBodyBytes),
		mdw.Timeout(time.Duration(h.RequestTimeoutSec)*time.Second),
		mdw.SimpleRecovery(l),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/health", func(c *gin.Context) { resp.JSON(c, resp.OK(gin.H{"ok": 1})) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.NoRoute(func(c *gin.Context) { resp.JSON(c, resp.Error(resp.CodeNotFound, "route not found")) })
	r.HandleMethodNotAllowed = true
	r.NoMethod(func(c *gin.Context) { resp.JSON(c, resp.Error(resp.CodeBadRequest, "method not allowed")) })

	api := r.Group("/api/v1")
	mountAll(r, api, mods)
	return r
}
