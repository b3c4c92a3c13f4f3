package cmd

import (
	"context"
	"time"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the web server",
	Long: `Run the web server on APP_ADDR.

The server connects to SurrealDB, ensures the schema, and, when
RELAY_ENABLED is true, republishes the messages live query on the
configured bus (PUBSUB_DRIVER=memory|nats).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = a.Close(ctx)
		}()

		s, err := a.Server()
		if err != nil {
			return err
		}
		return s.Start(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
