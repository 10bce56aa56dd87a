package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/mmqueue/pkg/queue"
)

var peekAsInt bool

// peekCmd represents the peek command
var peekCmd = &cobra.Command{
	Use:   "peek",
	Short: "Print the oldest element without removing it",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		q, err := openQueue(cfg)
		if err != nil {
			fmt.Printf("Error opening queue: %v\n", err)
			return
		}
		defer q.Close()

		data, err := q.Peek()
		if err != nil {
			if errors.Is(err, queue.ErrEmpty) {
				fmt.Println("Queue is empty")
			} else {
				fmt.Printf("Error peeking: %v\n", err)
			}
			return
		}

		printElement(data, peekAsInt)
	},
}

func init() {
	rootCmd.AddCommand(peekCmd)
	peekCmd.Flags().BoolVar(&peekAsInt, "int", false, "Decode the element as a signed 64-bit integer")
}
