package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/teilomillet/chatintel/config"
	gwerrors "github.com/teilomillet/chatintel/errors"
	"github.com/teilomillet/chatintel/server"
	"github.com/teilomillet/chatintel/server/metrics"
	"github.com/teilomillet/chatintel/server/processing"
	"github.com/teilomillet/chatintel/server/provider"
	"go.uber.org/zap"
)

// Version is overridden at build time with -ldflags "-X main.Version=...".
var Version = "v0.1.0"

const defaultConfigFile = "chatintel.yaml"

type options struct {
	configFile string
	port       int
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "chatintel",
		Short: "ChatIntel - prompt gateway for text-completion providers",
		Long: `ChatIntel is a small HTTP service that wraps user text in a persona prompt,
forwards it to a text-completion provider and returns the answer as JSON.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	root.PersistentFlags().StringVarP(&opts.configFile, "config", "c", defaultConfigFile, "path to configuration file")

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}
	serve.Flags().IntVarP(&opts.port, "port", "p", 0, "override server.port")
	root.Flags().AddFlagSet(serve.Flags())

	validate := &cobra.Command{
		Use:   "validate",
		Short: "Validate the configuration file and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := config.LoadFile(opts.configFile); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Configuration is valid")
			return nil
		},
	}

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "chatintel %s\n", Version)
		},
	}

	modes := &cobra.Command{
		Use:   "modes",
		Short: "List the available prompt modes",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, mode := range processing.Modes() {
				fmt.Fprintln(cmd.OutOrStdout(), mode)
			}
		},
	}

	root.AddCommand(serve, validate, version, modes)
	return root
}

// loadConfig reads the configuration file. A missing file is only an error
// when it was named explicitly; otherwise the defaults are used.
func loadConfig(cmd *cobra.Command, path string) (*config.Config, bool, error) {
	cfg, err := config.LoadFile(path)
	if err == nil {
		return cfg, true, nil
	}
	if errors.Is(err, fs.ErrNotExist) && !cmd.Flags().Changed("config") {
		return config.DefaultConfig(), false, nil
	}
	return nil, false, err
}

func runServe(cmd *cobra.Command, opts *options) error {
	cfg, fromFile, err := loadConfig(cmd, opts.configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if opts.port != 0 {
		cfg.Server.Port = opts.port
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, level, err := server.NewLogger(cfg.Logging)
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()
	gwerrors.SetLogger(logger)

	if !fromFile {
		logger.Info("No config file found, using defaults", zap.String("config_path", opts.configFile))
	}

	var m *metrics.Metrics
	if cfg.Metrics.Enabled {
		m = metrics.NewMetrics()
	}

	completer, err := provider.New(cfg, logger, m)
	if err != nil {
		return fmt.Errorf("create completion provider: %w", err)
	}

	srv, err := server.New(cfg, completer, logger, m)
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	if fromFile {
		watcher, err := config.NewConfigWatcher(opts.configFile, logger)
		if err != nil {
			logger.Warn("Config reload disabled", zap.Error(err))
		} else {
			defer watcher.Close()
			srv.WatchConfig(watcher, &level)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Starting chatintel",
		zap.String("version", Version),
		zap.Int("port", cfg.Server.Port),
		zap.String("provider", cfg.Provider.Name),
		zap.String("model", cfg.Provider.Model),
	)

	if err := srv.Start(ctx); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
		return err
	}

	logger.Info("Server stopped")
	return nil
}
