package main

import (
	"fmt"

	"github.com/open-edge-platform/repodb/internal/config"
	"github.com/spf13/cobra"
)

// createConfigCommand creates the config subcommand
func createConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		Long: `Manage the repository configuration.

Available commands:
  init    Initialize a new configuration file with default values`,
	}

	// Add only the init subcommand
	configCmd.AddCommand(createConfigInitCommand())

	return configCmd
}

// createConfigInitCommand creates the config init subcommand
func createConfigInitCommand() *cobra.Command {
	initCmd := &cobra.Command{
		Use:   "init [config-file]",
		Short: "Initialize a new configuration file",
		Long: `Initialize a new configuration file with default values.

If no path is specified, the config will be created in the current
directory as repo.toml.

Examples:
  # Create config in current directory
  repodb config init

  # Create config at a specific location
  repodb config init /etc/repodb/config.toml`,
		Args: cobra.MaximumNArgs(1),
		RunE: executeConfigInit,
	}

	return initCmd
}

// executeConfigInit handles the config init command logic
func executeConfigInit(cmd *cobra.Command, args []string) error {
	configPath := "repo.toml"
	if len(args) > 0 {
		configPath = args[0]
	}

	defaultConfig := config.Default()
	if err := defaultConfig.Save(configPath); err != nil {
		return fmt.Errorf("failed to save config file: %w", err)
	}

	fmt.Printf("Configuration file created at: %s\n", configPath)
	fmt.Printf("\nDefault configuration settings:\n")
	fmt.Printf("  Repo Name: %s\n", defaultConfig.RepoName)
	fmt.Printf("  WAL Path: %s\n", defaultConfig.WalPath)
	fmt.Printf("  Recipe Directory: %s\n", defaultConfig.RecipeDir)
	fmt.Printf("  Package Directory: %s\n", defaultConfig.PackageDir)
	fmt.Printf("  Log Level: %s\n", defaultConfig.LogLevel)
	fmt.Printf("\nEdit the configuration file to customize these settings.\n")

	return nil
}
