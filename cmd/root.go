package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/optisebas/paladins-match-analyzer/internal/config"
)

var (
	dbPath     string
	configPath string
	logLevel   string

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "paladins",
	Short: "paladins.guru match history analyzer",
	Long: `Crawl a player's paladins.guru match history, store every match once,
and report teammates, opponents, champions and maps for the tracked players.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (default $PALADINS_DB or the config's db_filename)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the settings file (default $PALADINS_CONFIG or config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN or ERROR (overrides the config)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(sqlCmd)
	rootCmd.AddCommand(dropCmd)
	rootCmd.AddCommand(shellCmd)
}

// setup loads .env, the settings document and the logger before any command.
func setup(cmd *cobra.Command, args []string) error {
	// A missing .env is normal.
	_ = godotenv.Load()

	if configPath == "" {
		configPath = envOr("PALADINS_CONFIG", "config.json")
	}
	var err error
	cfg, err = config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if logLevel != "" {
		cfg.Debugging.LogLevel = logLevel
	}
	level, err := config.ParseLevel(cfg.Debugging.LogLevel)
	if err != nil {
		return err
	}
	slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})))

	if dbPath == "" {
		dbPath = envOr("PALADINS_DB", cfg.Database.DBFilename)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
