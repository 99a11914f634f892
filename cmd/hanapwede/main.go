// Package main provides the hanapwede CLI: the recommendation API server,
// offline recommendation and evaluation runs, snapshot tooling and an MCP server.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/hanapwede/job-recommender/internal/config"
	"github.com/hanapwede/job-recommender/internal/logger"
	"github.com/hanapwede/job-recommender/internal/telemetry"
)

const app = "hanapwede"

var (
	// Used for flags.
	cfgFile      string
	logJSON      bool
	logDebug     bool
	databaseURL  string
	snapshotPath string

	appConfig    *config.Config
	appLogger    = zap.NewNop()
	appTelemetry *telemetry.Telemetry
)

// flagKeys maps CLI flags to config keys. A flag only overrides the config
// file and environment when it is set explicitly.
var flagKeys = map[string]string{
	"database-url": "database_url",
	"snapshot":     "snapshot",
	"port":         "port",
	"top-k":        "recommender.top_k",
	"threshold":    "recommender.relevance_threshold",
}

var rootCmd = &cobra.Command{
	Use:           app,
	Short:         "Accessibility-first job recommender",
	Long:          "HanapWede ranks job postings for job seekers with disabilities by disability compatibility, skills and preferences.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return initApp(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
		_ = appLogger.Sync()
		return appTelemetry.Shutdown(context.WithoutCancel(cmd.Context()))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to a JSON or YAML config file")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "JSON format for logging")
	rootCmd.PersistentFlags().BoolVar(&logDebug, "log-debug", false, "Debug level logging")
	rootCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL connection URL (default $DATABASE_URL)")
	rootCmd.PersistentFlags().StringVar(&snapshotPath, "snapshot", "", "SQLite snapshot to read instead of PostgreSQL")
}

// initApp loads configuration and builds the logger and tracer provider.
func initApp(cmd *cobra.Command) error {
	v := config.NewViper()
	if err := bindFlags(v, cmd); err != nil {
		return err
	}

	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	appConfig = cfg

	l, err := logger.New(logJSON, logDebug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	appLogger = l

	if cfg.Telemetry.ServiceVersion == "" {
		cfg.Telemetry.ServiceVersion = version
	}
	tel, err := telemetry.Setup(cmd.Context(), cfg.Telemetry)
	if err != nil {
		return err
	}
	appTelemetry = tel
	return nil
}

func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for name, key := range flagKeys {
		f := cmd.Flags().Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
