package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"user-directory/internal/core/config"
	"user-directory/internal/core/logger"
	"user-directory/internal/core/server"
	"user-directory/internal/web"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load("")
	if err != nil {
		panic(err)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON)
	defer cleanup()

	mode := gin.DebugMode
	if cfg.App.Env == "prod" {
		mode = gin.ReleaseMode
	}
	w := cfg.App.Web
	api := web.NewClient(w.BackendURL, time.Duration(w.BackendTimeoutSec)*time.Second)
	r := web.NewEngine(log, server.Options{Name: "web", Mode: mode}, api)

	addr := server.Addr(w.Host, w.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	log.Info("web frontend starting",
		zap.String("addr", addr),
		zap.String("open", server.HumanURL(w.Host, w.Port)),
		zap.String("backend", w.BackendURL),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("web frontend start FAILED", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("web frontend stopped gracefully")
}
