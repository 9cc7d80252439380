package router

import (
	"log"
	"strings"
	"time"

	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/config"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/http/handlers"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/http/middleware"
	"github.com/ScottKFraley/BladderEventTracker-sub000/internal/token"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Deps struct {
	Config   *config.Config
	Maker    *token.Maker
	Auth     *handlers.AuthHandler
	Tracking *handlers.TrackingHandler
	Users    *handlers.UserHandler
	Health   *handlers.HealthHandler
}

func New(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(middleware.SlogLoggerMiddleware())
	r.Use(gin.Recovery())

	// the API sits behind a reverse proxy; trust only localhost
	if err := r.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
		log.Fatalf("Failed to set trusted proxies: %v", err)
	}

	allowedOrigins := strings.Split(d.Config.AllowedOrigins, ",")
	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "OPTIONS", "DELETE"},
		AllowHeaders: []string{"Content-Type", "Authorization"},
		ExposeHeaders: []string{
			"Content-Length",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"X-RateLimit-Reset",
		},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))

	{
		public := r.Group("/api/v1").Use(middleware.RateLimit())
		public.GET("/ping", d.Health.Ping)
		public.GET("/warmup", d.Health.WarmUp)
	}

	{
		auth := r.Group("/api/v1/auth").Use(middleware.AuthRateLimit())
		auth.POST("/login", d.Auth.Login)
		auth.POST("/refresh", d.Auth.Refresh)
		auth.POST("/revoke", d.Auth.Revoke)

		authd := r.Group("/api/v1/auth").
			Use(middleware.AuthRateLimit()).
			Use(middleware.TokenAuth(d.Maker))
		authd.POST("/revoke-all", d.Auth.RevokeAll)
		authd.POST("/token", d.Auth.Token)
	}

	{
		protected := r.Group("/api/v1").
			Use(middleware.RateLimit()).
			Use(middleware.TokenAuth(d.Maker))

		protected.GET("/tracking/all", d.Tracking.ListEntries)
		protected.GET("/tracking/:numDays/:userId", d.Tracking.LastNDays)
		protected.GET("/tracking/summary/:numDays/:userId", d.Tracking.DailySummary)
		protected.POST("/tracking", d.Tracking.CreateEntry)

		protected.GET("/users", d.Users.List)
		protected.GET("/users/:id", d.Users.Get)
		protected.POST("/users", d.Users.Create)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{"message": "Not Found: " + c.Request.URL.Path})
	})

	return r
}
