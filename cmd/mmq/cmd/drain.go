package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/mmqueue/pkg/archive"
)

var drainDir string

// drainCmd represents the drain command
var drainCmd = &cobra.Command{
	Use:   "drain",
	Short: "Drain the queue into the archive",
	Long: `Dequeue every element and store it durably in the pebble-backed
archive. Elements keep their drain order in the archive.

Example:
  mmq drain --archive-dir ./data/archive`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if drainDir != "" {
			cfg.Archive.Dir = drainDir
		}

		q, err := openQueue(cfg)
		if err != nil {
			fmt.Printf("Error opening queue: %v\n", err)
			return
		}
		defer q.Close()

		a, err := archive.Open(cfg.Archive.Dir)
		if err != nil {
			fmt.Printf("Error opening archive: %v\n", err)
			return
		}
		defer a.Close()

		n, err := a.Drain(q)
		if err != nil {
			fmt.Printf("Error draining queue (%d archived): %v\n", n, err)
			return
		}

		fmt.Printf("Archived %d elements to %s\n", n, cfg.Archive.Dir)
	},
}

func init() {
	rootCmd.AddCommand(drainCmd)
	drainCmd.Flags().StringVar(&drainDir, "archive-dir", "", "Archive directory (overrides config)")
}
