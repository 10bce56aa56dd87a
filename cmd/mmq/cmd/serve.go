package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ssargent/mmqueue/pkg/api"
)

var (
	servePort int
	serveBind string
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the queue over HTTP",
	Long: `Start the REST API server over the configured queue file.

Endpoints:
  POST /api/v1/queue          enqueue (base64 element)
  POST /api/v1/queue/dequeue  dequeue
  GET  /api/v1/queue/peek     peek
  GET  /api/v1/queue/stats    stats
  GET  /metrics               Prometheus metrics`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := loadConfig()
		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if serveBind != "" {
			cfg.Server.Bind = serveBind
		}

		q, err := openQueue(cfg)
		if err != nil {
			fmt.Printf("Error opening queue: %v\n", err)
			return
		}
		defer q.Close()

		serverConfig := api.ServerConfig{
			Port:   cfg.Server.Port,
			Bind:   cfg.Server.Bind,
			APIKey: cfg.Server.APIKey,
		}

		if err := api.StartServer(q, serverConfig); err != nil {
			fmt.Printf("Error starting server: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	serveCmd.Flags().StringVar(&serveBind, "bind", "", "Address to bind to (overrides config)")
}
