// Package main provides the jdihsearch CLI: the HTTP server and an interactive search shell.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/jdih-search/internal/config"
	logpkg "github.com/kailas-cloud/jdih-search/internal/logger"
	"github.com/kailas-cloud/jdih-search/internal/version"
)

var (
	configPath string
	logLevel   string

	env    string
	cfg    config.Config
	logger *zap.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
		os.Exit(exitCode(err))
	}
}

var rootCmd = &cobra.Command{
	Use:   "jdihsearch",
	Short: "Hybrid keyword and semantic search over service desk solutions and JDIH regulations",
	Long: `jdihsearch answers free-text queries by combining exact keyword matches with
embedding similarity. Queries are spell-corrected against a frequency dictionary
before they are encoded.

Configuration is read from config/<ENV>.yaml (ENV defaults to "local") or from
--config. A .env file in the working directory is loaded first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if cmd.Name() == "version" {
			return nil
		}
		_ = godotenv.Load()

		env = config.GetEnv()
		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
		} else {
			cfg, err = config.Load(env)
		}
		if err != nil {
			return configError(err)
		}

		level := cfg.Logging.Level
		if logLevel != "" {
			level = logLevel
		}
		logger, err = logpkg.NewLogger(env, level)
		if err != nil {
			return configError(fmt.Errorf("create logger: %w", err))
		}
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file (overrides ENV lookup)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level override: debug, info, warn, error")
	rootCmd.Version = version.String()
}
