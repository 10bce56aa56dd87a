package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ssargent/mmqueue/pkg/queue"
	"github.com/ssargent/mmqueue/pkg/queuefile"
)

var (
	createCapacity  int
	createSlotSize  int
	createSchemaID  uint64
	createOverwrite bool
)

// createCmd represents the create command
var createCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a queue file",
	Long: `Create a queue file with a fixed capacity and slot size.

If the file already exists and --overwrite is not given, it must be a
valid queue file with the same capacity and slot size.

Example:
  mmq create -q ./orders.mmqf --capacity 1024 --slot-size 64 --schema-id 42`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		capacity := createCapacity
		if capacity == 0 {
			capacity = cfg.Queue.Capacity
		}
		slotSize := createSlotSize
		if slotSize == 0 {
			slotSize = cfg.Queue.SlotSize
		}
		schemaID := createSchemaID
		if schemaID == 0 {
			schemaID = cfg.Queue.SchemaID
		}

		if dir := filepath.Dir(cfg.Queue.Path); dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				fmt.Printf("Error creating queue directory: %v\n", err)
				return
			}
		}

		geom := queuefile.Geometry{SchemaID: schemaID, Capacity: capacity, SlotSize: slotSize}
		q, err := queue.Create(cfg.Queue.Path, geom, createOverwrite)
		if err != nil {
			fmt.Printf("Error creating queue: %v\n", err)
			return
		}
		defer q.Close()

		fmt.Printf("Created queue %s (capacity=%d, slot_size=%d, schema_id=%d)\n",
			cfg.Queue.Path, q.Capacity(), q.SlotSize(), q.SchemaID())
	},
}

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().IntVar(&createCapacity, "capacity", 0, "Maximum number of elements (default from config)")
	createCmd.Flags().IntVar(&createSlotSize, "slot-size", 0, "Bytes per element slot (default from config)")
	createCmd.Flags().Uint64Var(&createSchemaID, "schema-id", 0, "Schema id recorded in the file (default from config)")
	createCmd.Flags().BoolVar(&createOverwrite, "overwrite", false, "Overwrite an existing file")
}
