package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hanapwede/job-recommender/internal/config"
	"github.com/hanapwede/job-recommender/internal/db"
	"github.com/hanapwede/job-recommender/internal/server"
	"github.com/hanapwede/job-recommender/internal/server/ratelimit"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the job recommendation and catalogue endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if appConfig.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL environment variable or --database-url is required")
	}
	ctx := cmd.Context()

	database, err := db.Connect(ctx, appConfig.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	var auth *config.AuthConfig
	if appConfig.Auth.Enabled() {
		auth = &appConfig.Auth
	} else {
		appLogger.Warn("bearer authentication disabled: auth.jwt_secret is not set")
	}

	rl := appConfig.RateLimit
	var rlStore ratelimit.Store
	if rl.Enabled && rl.RedisURL != "" {
		redisStore, err := ratelimit.DialRedis(ctx, rl.RedisURL)
		if err != nil {
			return err
		}
		rlStore = redisStore
		appLogger.Info("rate limiting backed by redis")
	}

	srv, err := server.New(server.Config{
		Port:           appConfig.Port,
		Options:        appConfig.Recommender.Options(),
		RateLimit:      rl.Limiter(),
		Auth:           auth,
		RateLimitStore: rlStore,
	}, database, appLogger)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start(ctx)
}
