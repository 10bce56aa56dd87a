/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/mmqueue/pkg/config"
	"github.com/ssargent/mmqueue/pkg/queue"
)

var (
	configPath string
	queuePath  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "mmq",
	Short: "mmq - persistent memory-mapped FIFO queue",
	Long: `mmq manages persistent bounded FIFO queues backed by memory-mapped
files. The queue file survives restarts; producers and consumers in
different processes coordinate through the mapped control block.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file (default: ~/.config/mmq/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&queuePath, "queue", "q", "", "Path to the queue file (overrides config)")
}

// loadConfig resolves the effective configuration: the config file if
// one exists, defaults otherwise, with flag overrides applied last.
func loadConfig() *config.Config {
	path := configPath
	if path == "" {
		path = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(path) {
		loaded, err := config.LoadConfig(path)
		if err == nil {
			cfg = loaded
		}
	}

	if queuePath != "" {
		cfg.Queue.Path = queuePath
	}

	return cfg
}

// openQueue opens the configured queue file. The config's schema id
// is only consulted at create time; opens accept whatever the file
// records so one tool can inspect foreign queues.
func openQueue(cfg *config.Config) (*queue.Queue, error) {
	return queue.Open(cfg.Queue.Path, queue.Options{})
}
