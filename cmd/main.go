package main

import (
	"fmt"
	"log"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"contribgraph/config"
	"contribgraph/logger"
	"contribgraph/service"
)

var configFile string

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:           "contribgraph",
	Short:         "Render GitHub contribution graphs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the contribution graph page and JSON API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", ".env", "Config file (missing file is ignored)")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(newFetchCmd())
}

func loadConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if err := cfg.Load(configFile); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := logger.InitializeWithFile(cfg.LogLevel, logger.FileOptions{Path: cfg.LogFile}); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ser, err := service.NewService(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := ser.Close(); err != nil {
			logger.Error("Error during service shutdown", zap.Error(err))
		}
	}()

	return ser.Start()
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}
