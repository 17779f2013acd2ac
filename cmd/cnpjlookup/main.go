// Command cnpjlookup queries a CNPJ registry service from the terminal.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/jask/cnpjlookup/internal/config"
	"github.com/jask/cnpjlookup/internal/lookup"
	"github.com/jask/cnpjlookup/internal/metrics"
	"github.com/jask/cnpjlookup/internal/tui"
)

const (
	Version = "0.1.0"
	appName = "cnpjlookup"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type flags struct {
	configPath  string
	baseURL     string
	timeout     time.Duration
	logFile     string
	logLevel    string
	metricsAddr string
}

func rootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           appName,
		Short:         "Look up Brazilian companies by CNPJ",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runInteractive(cmd.Context(), cfg)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "Config file path (TOML)")
	pf.StringVar(&f.baseURL, "base-url", "", "Registry service base URL")
	pf.DurationVar(&f.timeout, "timeout", 0, "Per-lookup timeout")
	pf.StringVar(&f.logFile, "log-file", "", "Log file for the interactive UI")
	pf.StringVar(&f.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&f.metricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address")

	cmd.AddCommand(lookupCmd(&f), configCmd(&f), &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

// loadConfig layers explicitly set flags over file and env configuration.
func loadConfig(cmd *cobra.Command, f flags) (config.Config, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return config.Config{}, err
	}
	set := cmd.Flags().Changed
	if set("base-url") {
		cfg.Service.BaseURL = f.baseURL
	}
	if set("timeout") {
		cfg.Service.Timeout = f.timeout
	}
	if set("log-file") {
		cfg.Log.File = f.logFile
	}
	if set("log-level") {
		cfg.Log.Level = f.logLevel
	}
	if set("metrics-addr") {
		cfg.Metrics.Addr = f.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func runInteractive(ctx context.Context, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(filepath.Dir(cfg.Log.File), 0o755); err != nil {
		return fmt.Errorf("mkdir log dir: %w", err)
	}
	logFile, err := tea.LogToFile(cfg.Log.File, appName)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: parseLevel(cfg.Log.Level)}))

	m := metrics.New()
	if cfg.Metrics.Addr != "" {
		go func() {
			if err := m.Serve(ctx, cfg.Metrics.Addr); err != nil {
				logger.Error("metrics server stopped", slog.Any("error", err))
			}
		}()
	}

	client, err := newClient(cfg, logger, m)
	if err != nil {
		return err
	}

	logger.Info("starting", slog.String("base_url", cfg.Service.BaseURL), slog.String("version", Version))
	opts := []tea.ProgramOption{tea.WithContext(ctx)}
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(tui.New(ctx, client, tui.WithLogger(logger), tui.WithTransitionRecorder(m)), opts...)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}

func newClient(cfg config.Config, logger *slog.Logger, rec lookup.Recorder) (*lookup.Client, error) {
	return lookup.NewClient(cfg.Service.BaseURL,
		lookup.WithPath(cfg.Service.Path),
		lookup.WithTimeout(cfg.Service.Timeout),
		lookup.WithUserAgent(cfg.Service.UserAgent),
		lookup.WithLogger(logger),
		lookup.WithRecorder(rec),
	)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
