package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/jonathan/excel-interviewer/internal/config"
	"github.com/jonathan/excel-interviewer/internal/credentials"
	"github.com/jonathan/excel-interviewer/internal/interview"
	"github.com/jonathan/excel-interviewer/internal/logging"
	"github.com/jonathan/excel-interviewer/internal/metrics"
	"github.com/jonathan/excel-interviewer/internal/observability"
	"github.com/jonathan/excel-interviewer/internal/transport"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const defaultBaseURLHint = config.DefaultBaseURL

// cliApp carries the persistent flags and the dependencies built from them.
type cliApp struct {
	configPath  string
	baseURL     string
	logLevel    string
	metricsAddr string
	verbose     bool

	cfg       config.Config
	logger    *zap.Logger
	creds     credentials.Store
	client    *transport.Client
	service   *interview.Service
	printer   *observability.Printer
	metricSrv *http.Server
}

// setup resolves configuration (file, then flags, then environment, then defaults) and
// builds the logger, credential store and service client.
func (a *cliApp) setup(cmd *cobra.Command, _ []string) error {
	// Step 1: Load config file if provided
	var cfg config.Config
	if a.configPath != "" {
		loadedCfg, err := config.LoadConfig(a.configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loadedCfg
	}

	// Step 2: Apply CLI overrides (command-line args take priority)
	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("base-url") {
		cfg.BaseURL = a.baseURL
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = a.logLevel
	}
	if cmd.Flags().Changed("metrics-addr") {
		cfg.MetricsAddr = a.metricsAddr
	}
	if a.verbose && !cmd.Flags().Changed("log-level") {
		cfg.LogLevel = "debug"
	}

	// Step 3: Environment, then built-in defaults, fill whatever is still unset
	cfg = cfg.MergeWithDefaults(config.FromEnv())
	cfg = cfg.MergeWithDefaults(config.Defaults())
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := logging.New(cfg.LogLevel, logging.Format(cfg.LogFormat))
	if err != nil {
		return err
	}
	a.logger = logger

	credsPath := cfg.CredentialsPath
	if credsPath == "" {
		credsPath, err = credentials.DefaultPath()
		if err != nil {
			return err
		}
	}
	a.creds = credentials.NewFileStore(credsPath)

	a.client, err = transport.New(transport.Options{
		BaseURL:     cfg.BaseURL,
		Timeout:     cfg.Timeout.Std(),
		Credentials: a.creds,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	a.service = interview.NewService(a.client, a.creds, logger)
	a.printer = observability.NewPrinter(cmd.OutOrStdout())

	if cfg.MetricsAddr != "" {
		if err := a.serveMetrics(cfg.MetricsAddr); err != nil {
			return err
		}
	}

	logger.Debug("Configuration resolved",
		zap.String("base_url", cfg.BaseURL),
		zap.Duration("timeout", cfg.Timeout.Std()),
		zap.Duration("poll_interval", cfg.PollInterval.Std()),
		zap.String("credentials", credsPath))
	return nil
}

func (a *cliApp) serveMetrics(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on metrics address %s: %w", addr, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	a.metricSrv = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := a.metricSrv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	a.logger.Info("Serving metrics", zap.String("addr", ln.Addr().String()))
	return nil
}

func (a *cliApp) close() {
	if a.metricSrv != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = a.metricSrv.Shutdown(ctx)
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

// requireID trims and checks an --id flag value.
func requireID(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", fmt.Errorf("--id is required")
	}
	return id, nil
}
