package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/mmqueue/pkg/config"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a config file",
	Long: `Write a config file with defaults and a freshly generated API key.

An existing config file is left untouched.`,
	Run: func(cmd *cobra.Command, args []string) {
		path := configPath
		if path == "" {
			path = config.GetDefaultConfigPath()
		}

		if config.ConfigExists(path) {
			fmt.Printf("Config already exists at %s\n", path)
			return
		}

		cfg, err := config.BootstrapConfig(path, queuePath)
		if err != nil {
			fmt.Printf("Error bootstrapping config: %v\n", err)
			return
		}

		fmt.Printf("Wrote config to %s (queue=%s)\n", path, cfg.Queue.Path)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
