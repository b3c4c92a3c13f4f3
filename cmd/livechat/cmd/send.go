package cmd

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/nfrund/livechat/internal/compose"
	"github.com/nfrund/livechat/internal/domain"
	"github.com/spf13/cobra"
)

var sendCmd = &cobra.Command{
	Use:   "send <text...>",
	Short: "Post a message as the signed-in user",
	Long: `Post a message as the signed-in user. The words are joined with single
spaces; a blank message is ignored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		username, ok := sessionStore().Load()
		if !ok {
			return domain.ErrNoSession
		}

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		messages, err := a.Messages()
		if err != nil {
			return err
		}

		composer := compose.New(messages, username, notifier(cmd), slog.Default())
		_, err = composer.Send(cmd.Context(), strings.Join(args, " "))
		switch {
		case errors.Is(err, domain.ErrEmptyMessage):
			return nil
		case err != nil:
			return errReported
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sendCmd)
}
