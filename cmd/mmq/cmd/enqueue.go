package cmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/ssargent/mmqueue/pkg/codec"
	"github.com/ssargent/mmqueue/pkg/queue"
)

var enqueueAsInt bool

// enqueueCmd represents the enqueue command
var enqueueCmd = &cobra.Command{
	Use:   "enqueue <value>",
	Short: "Enqueue one element",
	Long: `Enqueue one element into the queue.

The value is taken as raw bytes and zero-padded to the slot size. With
--int the value is parsed as a signed 64-bit integer and stored
little-endian.

Example:
  mmq enqueue --int 42`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		q, err := openQueue(cfg)
		if err != nil {
			fmt.Printf("Error opening queue: %v\n", err)
			return
		}
		defer q.Close()

		var payload []byte
		if enqueueAsInt {
			v, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				fmt.Printf("Error parsing value: %v\n", err)
				return
			}
			payload = make([]byte, q.SlotSize())
			if err := (codec.Int64Codec{}).ToBytes(v, payload); err != nil {
				fmt.Printf("Error encoding value: %v\n", err)
				return
			}
		} else {
			payload, err = codec.PadSlot([]byte(args[0]), q.SlotSize())
			if err != nil {
				fmt.Printf("Error encoding value: %v\n", err)
				return
			}
		}

		if err := q.Enqueue(payload); err != nil {
			if errors.Is(err, queue.ErrFull) {
				fmt.Println("Queue is full")
			} else {
				fmt.Printf("Error enqueueing: %v\n", err)
			}
			return
		}

		fmt.Printf("Enqueued 1 element (size=%d)\n", q.Size())
	},
}

func init() {
	rootCmd.AddCommand(enqueueCmd)
	enqueueCmd.Flags().BoolVar(&enqueueAsInt, "int", false, "Interpret the value as a signed 64-bit integer")
}
