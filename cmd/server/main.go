// Rental Scout API
// @title Rental Scout API
// @version 1.0
// @description Searches for-sale listings by zipcode and enriches them in the background with mortgage cost and short-term rental projections
// @host localhost:8080
// @BasePath /

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "rentalscout/docs"
	"rentalscout/internal/app"
	"rentalscout/internal/config"
	"rentalscout/internal/handlers"
	"rentalscout/internal/middleware"
)

func main() {
	cfg := config.Load()
	gin.SetMode(cfg.GinMode)

	a, err := app.Build(cfg)
	if err != nil {
		log.Fatal("Failed to initialize:", err)
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger())

	// Configure trusted proxies for Cloudflare Tunnels
	r.SetTrustedProxies([]string{
		"127.0.0.1",
		"::1",
		"172.16.0.0/12",  // Docker networks
		"10.0.0.0/8",     // Private networks
		"192.168.0.0/16", // Private networks
	})

	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.HTTPMethodFilter(http.MethodGet, http.MethodPost, http.MethodOptions))

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"*"}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", middleware.AdminKeyHeader}
	r.Use(cors.New(corsConfig))

	if !cfg.IsRelease() {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	a.Handler.RegisterRoutes(r, a.RouteOptions())
	r.NoRoute(handlers.NoRoute)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server:", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("🛑 Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("⚠️  HTTP shutdown: %v", err)
	}
	if err := a.Shutdown(ctx); err != nil {
		log.Printf("⚠️  %v", err)
	}
	log.Println("👋 Server stopped")
}
