package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"github.com/vietddude/stylelog"

	"github.com/vietddude/netwatch/internal/control"
	"github.com/vietddude/netwatch/internal/core/config"
)

var (
	cfgPath string
	isDebug bool
)

var rootCmd = &cobra.Command{
	Use:   "netwatch",
	Short: "Testnet status service",
	Long: `Netwatch watches a beacon chain test network: it normalizes the fork schedule,
evaluates network health and probes public RPC and checkpoint endpoints.`,
	Run: runServe,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the status service (default command)",
	Run:   runServe,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "config file (built-in Hoodi defaults when empty)")
	rootCmd.PersistentFlags().BoolVar(&isDebug, "debug", false, "enable debug logging")
	rootCmd.AddCommand(serveCmd)
}

// loadConfig loads .env, the config file and environment overrides, then sets up logging.
func loadConfig() *config.AppConfig {
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		stylelog.InitDefault()
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slogLevel := slog.LevelInfo
	switch {
	case isDebug || cfg.Logging.Level == "debug":
		slogLevel = slog.LevelDebug
	case cfg.Logging.Level == "warn":
		slogLevel = slog.LevelWarn
	case cfg.Logging.Level == "error":
		slogLevel = slog.LevelError
	}

	installLogger(os.Stderr, slogLevel, cfg.Logging.Format)
	return cfg
}

// installLogger sets the default logger. "json" writes JSON lines to w; anything else
// installs the tint handler on stderr.
func installLogger(w io.Writer, level slog.Level, format string) {
	if format == "json" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})))
		return
	}
	stylelog.InitDefault(&tint.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})
}

func runServe(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	slog.Info("Logger initialized", "level", cfg.Logging.Level, "debug", isDebug)

	app, err := control.NewApp(cfg, cfgPath)
	if err != nil {
		slog.Error("Failed to initialize netwatch", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if err := app.Start(ctx); err != nil {
		slog.Error("Failed to start netwatch", "error", err)
		os.Exit(1)
	}

	slog.Info("Netwatch started", "network", cfg.Network.Name, "endpoints", len(cfg.Endpoints))

	sig := <-sigChan
	slog.Info("Received signal, shutting down...", "signal", sig)
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		slog.Error("Error during shutdown", "error", err)
		os.Exit(1)
	}
	slog.Info("Netwatch stopped gracefully")
}

// newOneShot builds an app for a single command invocation.
func newOneShot() (*control.App, *config.AppConfig) {
	cfg := loadConfig()
	app, err := control.NewApp(cfg, "")
	if err != nil {
		slog.Error("Failed to initialize netwatch", "error", err)
		os.Exit(1)
	}
	return app, cfg
}
