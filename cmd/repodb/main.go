package main

import (
	"fmt"
	"os"

	"github.com/open-edge-platform/repodb/internal/config"
	"github.com/open-edge-platform/repodb/internal/utils/logger"
	"github.com/open-edge-platform/repodb/internal/utils/security"
	"github.com/spf13/cobra"
)

// Command-line flags that can override config file settings
var (
	configFile       string = "" // Path to config file
	logLevel         string = "" // Empty means use config file value
	actualConfigFile string = "" // Actual config file path found during init
	loggerCleanup    func()
)

func main() {
	cobra.OnInitialize(initConfig)

	defer func() {
		if loggerCleanup != nil {
			loggerCleanup()
		}
	}()

	rootCmd := createRootCommand()
	security.AttachRecursive(rootCmd, security.DefaultLimits())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initConfig loads the repo config (TOML, falling back to defaults when
// configFile is unset or absent) and wires up the logger from it.
func initConfig() {
	actualConfigFile = configFile

	cfg, err := config.Load(configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	config.SetGlobal(cfg)

	_, cleanup, logErr := logger.InitWithConfig(logger.Config{
		Level:    cfg.LogLevel,
		FilePath: cfg.LogFile,
	})
	if logErr != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logger: %v\n", logErr)
		os.Exit(1)
	}
	loggerCleanup = cleanup
}

// createRootCommand creates and configures the root cobra command with all subcommands
func createRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "repodb",
		Short: "Package repository database engine",
		Long: `repodb tracks a source-built package repository's state in a
write-ahead log, resolves dependencies against recipes and the host
distribution's installed package database, and exports versioned
repository snapshots consumable by a package manager.

Use 'repodb --help' to see available commands.
Use 'repodb <command> --help' for more information about a command.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if logLevel != "" {
				cfg := config.Global()
				cfg.LogLevel = logLevel
				config.SetGlobal(cfg)
				logger.SetLogLevel(logLevel)
			}

			log := logger.Logger()
			if actualConfigFile != "" {
				log.Infof("using configuration from: %s", actualConfigFile)
			}
			cfg := config.Global()
			log.Debugf("config: repo=%s wal=%s recipe_dir=%s package_dir=%s",
				cfg.RepoName, cfg.WalPath, cfg.RecipeDir, cfg.PackageDir)
		},
	}

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "",
		"Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "",
		"Log level (debug, info, warn, error)")

	rootCmd.AddCommand(createBootstrapCommand())
	rootCmd.AddCommand(createAddPackageCommand())
	rootCmd.AddCommand(createUpdatePackageCommand())
	rootCmd.AddCommand(createRemovePackageCommand())
	rootCmd.AddCommand(createQueryCommand())
	rootCmd.AddCommand(createBuildGraphCommand())
	rootCmd.AddCommand(createExportDatabaseCommand())
	rootCmd.AddCommand(createVersionCommand())
	rootCmd.AddCommand(createConfigCommand())

	return rootCmd
}
