package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/nfrund/livechat/internal/app"
	"github.com/nfrund/livechat/internal/config"
	"github.com/nfrund/livechat/internal/logging"
	"github.com/nfrund/livechat/internal/notify"
	"github.com/nfrund/livechat/internal/session"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

// errReported marks a failure that was already shown to the user.
var errReported = errors.New("reported")

var (
	cfg *config.Config
	// fs holds the session file; tests swap in an in-memory filesystem.
	fs afero.Fs = afero.NewOsFs()
)

var rootCmd = &cobra.Command{
	Use:   "livechat",
	Short: "A minimal real-time chat",
	Long: `livechat is a small real-time chat backed by SurrealDB.

It serves the web client and doubles as a terminal client:
  livechat serve                         Run the web server
  livechat signup bob --password pw1     Create an account and sign in
  livechat send hello everyone           Post a message
  livechat watch                         Follow the latest messages

Use "livechat [command] --help" for more information about a command.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.New()
		cfg = config.New()
		return nil
	},
}

// Execute executes the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

// newApp builds the service container once the database settings are known
// to be present.
func newApp(cmd *cobra.Command) (*app.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return app.New(cmd.Context(), cfg), nil
}

func sessionStore() *session.FileStore {
	return session.NewFileStore(fs, cfg.GetHomeDir())
}

func notifier(cmd *cobra.Command) notify.Notifier {
	return notify.NewWriter(cmd.ErrOrStderr())
}
