package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gh-wrapped/wrapped-backend/config"
	"github.com/gh-wrapped/wrapped-backend/controller"
	"github.com/gh-wrapped/wrapped-backend/logger"
	"github.com/gh-wrapped/wrapped-backend/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/go-github/v66/github"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Panic("unable to load configuration")
	}

	// configure logger
	logger.Setup(*cfg)

	// setup github REST client, only used to read the current rate limit
	// the wrapped queries themselves go through GraphQL
	githubClient := github.NewClient(nil)

	if cfg.Github.Token != "" {
		log.Debug("will setup github client with authorization token")
		githubClient = githubClient.WithAuthToken(cfg.Github.Token)
	}

	// setup local rate limiter
	// execute first request to github to fetch current rate limits
	log.Debug("loading current rate limit from github")
	rateLimiter, err := service.PrimeRateLimiter(context.Background(), githubClient)
	if err != nil {
		log.WithError(err).Panic("unable to configure the github rate limiter")
	}

	// outbound graphql client with a bounded timeout
	// a call without deadline would leak the request on a hung upstream
	graphQLClient := &http.Client{
		Timeout: time.Duration(cfg.Github.RequestTimeoutSeconds) * time.Second,
	}

	// setup handlers and services
	wrappedService := service.NewWrappedService(*cfg, graphQLClient, rateLimiter)
	apiController := controller.NewAPIController(*cfg, wrappedService)

	// setup server and define all routes
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	server := &http.Server{
		Addr:    ":" + cfg.API.ListenPort,
		Handler: router,
	}

	router.Use(
		cors.New(cors.Config{
			AllowOrigins: cfg.API.AllowedOrigins,
			AllowMethods: []string{"GET"},
			AllowHeaders: []string{"Content-Type, Content-Length, Accept-Encoding, Host, accept, Origin, Cache-Control, X-Requested-With"},
			MaxAge:       12 * time.Hour,
		}),
	)

	api := router.Group("")
	{
		api.GET("/health", apiController.HealthCheck)
		api.GET("/users/:username/wrapped", apiController.GetUserWrapped)
		api.GET("/compare", apiController.CompareUsers)
	}

	// start with configuration
	go func() {
		log.Info("server listening on port " + cfg.API.ListenPort)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("error while starting server")
		}

	}()

	// create context with 15 seconds timeout
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// wait for interrupt signal to gracefully shut down the server with a timeout of 15 seconds.
	// kill default send syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	quit := make(chan os.Signal, 1)

	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("SIGINT, SIGTERM received, will shut down server ...")

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	} else {
		log.Info("Application stopped gracefully !")
	}
}
