// Copyright (c) 2025 Seedfast
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package cmd provides the command-line interface for xdrq.
// It implements subcommands for running XDR queries, inspecting the authenticated identity,
// and managing stored client credentials using the Cobra CLI framework.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"xdrquery/cli/internal/auth"
	"xdrquery/cli/internal/config"
	"xdrquery/cli/internal/environment"
	"xdrquery/cli/internal/httperrors"
	"xdrquery/cli/internal/keychain"
	"xdrquery/cli/internal/logging"
	"xdrquery/cli/internal/metrics"
	"xdrquery/cli/internal/model"
	"xdrquery/cli/internal/session"
)

// Global flags shared by every subcommand.
var (
	configFile   string
	envName      string
	clientID     string
	clientSecret string
	logLevel     string
	metricsFile  string
)

var (
	settings config.Config
	logger   = logging.Discard()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "xdrq",
	Short: "Run ad-hoc queries against the XDR data lake",
	Long: `xdrq authenticates with API client credentials, submits a query to the XDR query
service, waits for it to finish and prints the results as a table or JSON.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := config.Load()
		if err != nil {
			pterm.Warning.Printfln("Ignoring unreadable settings file: %v", err)
		}
		settings = s
		level := settings.LogLevel
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		logger = logging.NewLogger(level, os.Stderr)
		slog.SetDefault(logger)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return writeMetrics()
	},
}

// Execute runs the CLI application and exits with status 1 on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		_ = writeMetrics()
		pterm.Error.Println(logging.PresentError("xdrq", err))
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&configFile, "config", "c", "", "environment configuration file (JSON)")
	pf.StringVarP(&envName, "environment", "e", "", "environment name from the configuration (default: production)")
	pf.StringVar(&clientID, "client-id", "", "API client id (or "+auth.EnvClientID+")")
	pf.StringVar(&clientSecret, "client-secret", "", "API client secret (or "+auth.EnvClientSecret+")")
	pf.StringVarP(&logLevel, "log-level", "l", "info", "log level: debug, info, warn, error")
	pf.StringVar(&metricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
}

func writeMetrics() error {
	if metricsFile == "" {
		return nil
	}
	if err := metrics.WriteTextfile(metricsFile); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

// loadEnvironments reads the environment configuration named by --config or the settings
// file. It returns nil when neither names one.
func loadEnvironments() (*environment.Config, error) {
	path := configFile
	if path == "" {
		path = settings.EnvironmentsFile
	}
	if path == "" {
		return nil, nil
	}
	logger.Info("loading environment configuration", "path", path)
	return environment.Load(path)
}

func selectedEnvironment() string {
	if envName != "" {
		return envName
	}
	return settings.Environment
}

// keychainStore opens the OS keychain only when a credential is still missing.
type keychainStore struct{}

func (keychainStore) LoadClientCredentials() (model.Credentials, error) {
	km, err := keychain.GetManager()
	if err != nil {
		logger.Debug("keychain unavailable", "error", err)
		return model.Credentials{}, keychain.ErrNotFound
	}
	return km.LoadClientCredentials()
}

func resolveCredentials() (model.Credentials, error) {
	flags := model.Credentials{ClientID: clientID, ClientSecret: clientSecret}
	creds, source, err := auth.ResolveCredentials(flags, os.Getenv, keychainStore{})
	if err != nil {
		return model.Credentials{}, err
	}
	logger.Debug("client credentials resolved", "source", source)
	return creds, nil
}

// openSession builds an authenticated session from the global flags.
func openSession(ctx context.Context) (*session.Session, error) {
	envs, err := loadEnvironments()
	if err != nil {
		return nil, err
	}
	creds, err := resolveCredentials()
	if err != nil {
		return nil, err
	}
	s, err := session.New(session.Options{
		Environments: envs,
		EnvName:      selectedEnvironment(),
		Credentials:  creds,
		Logger:       logger,
	})
	if err != nil {
		return nil, err
	}

	stop := startSpinner("Authenticating")
	err = s.Open(ctx)
	stop()
	if err != nil {
		host := httperrors.ExtractHostFromURL(s.URLs().TokenURL)
		return nil, httperrors.FormatNetworkError(err, "authenticating with "+host)
	}
	return s, nil
}

func normalizeTenant(id string) string {
	return strings.TrimSpace(id)
}
