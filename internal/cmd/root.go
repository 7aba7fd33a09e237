package cmd

import (
	"fmt"
	"os"

	"github.com/kyriemtx/qrsrv/internal/app"
	"github.com/kyriemtx/qrsrv/internal/config"
	"github.com/kyriemtx/qrsrv/internal/logging"
	"github.com/kyriemtx/qrsrv/internal/qr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	logLevel   string

	rootCmd = &cobra.Command{
		Use:           "qrsrv",
		Short:         "qrsrv - QR code generator and reader (HTTP service + CLI)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, app.Color("error:", "31"), err)
		os.Exit(1)
	}
}

// loadRuntime reads the config file, applies flag overrides and builds the logger.
func loadRuntime() (*config.Config, *zap.Logger, error) {
	cfg, err := config.LoadOrInit(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			return nil, nil, err
		}
	}
	log, err := logging.New(cfg.Log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func newGenerator(cfg *config.Config, log *zap.Logger) (*qr.Generator, error) {
	gc, err := cfg.Generator()
	if err != nil {
		return nil, err
	}
	return qr.NewGenerator(gc, log), nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", app.DefaultConfigPath, "config file (YAML); missing file means defaults")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "override log level (debug, info, warn, error)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(encodeCmd)
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(configCmd)
}
