package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statCmd represents the stat command
var statCmd = &cobra.Command{
	Use:   "stat",
	Short: "Show queue file geometry and state",
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()

		q, err := openQueue(cfg)
		if err != nil {
			fmt.Printf("Error opening queue: %v\n", err)
			return
		}
		defer q.Close()

		fmt.Println(q.File().String())
		fmt.Printf("\tSize=%d\n", q.Size())
		fmt.Printf("\tEmpty=%v Full=%v\n", q.IsEmpty(), q.IsFull())
	},
}

func init() {
	rootCmd.AddCommand(statCmd)
}
