package cmd

import (
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/mmqueue/pkg/codec"
	"github.com/ssargent/mmqueue/pkg/queue"
)

var dequeueAsInt bool

// dequeueCmd represents the dequeue command
var dequeueCmd = &cobra.Command{
	Use:   "dequeue",
	Short: "Dequeue the oldest element",
	Long: `Remove and print the oldest element in the queue.

The slot bytes are printed as hex; with --int the first 8 bytes are
decoded as a signed little-endian 64-bit integer.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		q, err := openQueue(cfg)
		if err != nil {
			fmt.Printf("Error opening queue: %v\n", err)
			return
		}
		defer q.Close()

		data, err := q.Dequeue()
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) {
				fmt.Println("Queue is empty")
			} else {
				fmt.Printf("Error dequeueing: %v\n", err)
			}
			return
		}

		printElement(data, dequeueAsInt)
		fmt.Printf("(size=%d)\n", q.Size())
	},
}

// printElement renders a slot either as an integer or as hex.
func printElement(data []byte, asInt bool) {
	if asInt {
		v, err := (codec.Int64Codec{}).FromBytes(data)
		if err != nil {
			fmt.Printf("Error decoding value: %v\n", err)
			return
		}
		fmt.Printf("%d\n", v)
		return
	}
	fmt.Printf("%s\n", hex.EncodeToString(data))
}

func init() {
	rootCmd.AddCommand(dequeueCmd)
	dequeueCmd.Flags().BoolVar(&dequeueAsInt, "int", false, "Decode the element as a signed 64-bit integer")
}
