package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nfrund/livechat/internal/domain"
	"github.com/nfrund/livechat/internal/messagesync"
	"github.com/nfrund/livechat/internal/session"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow the latest messages",
	Long: `Print the latest messages, then every new one as it arrives.

The list is refetched every SYNC_INTERVAL and kept current in between by a
live query. Watching stops on Ctrl-C or when the session is cleared, for
example by "livechat logout" in another terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := sessionStore()
		username, ok := store.Load()
		if !ok {
			return domain.ErrNoSession
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close(context.Background())

		messages, err := a.Messages()
		if err != nil {
			return err
		}
		live, err := a.LiveQueries()
		if err != nil {
			return err
		}

		printer := newMessagePrinter(cmd.OutOrStdout())
		synchronizer := messagesync.New(messages, messagesync.NewLiveFeed(live, slog.Default()),
			messagesync.WithInterval(cfg.GetSyncInterval()),
			messagesync.WithLimit(cfg.GetMessageLimit()),
			messagesync.WithNotifier(notifier(cmd)),
			messagesync.WithListener(printer.Print),
		)
		if err := synchronizer.Start(ctx); err != nil {
			return err
		}
		defer synchronizer.Stop()

		fmt.Fprintf(cmd.ErrOrStderr(), "Signed in as %s. Watching messages...\n", username)

		cleared := sessionCleared(ctx, store)
		select {
		case <-ctx.Done():
		case <-cleared:
			fmt.Fprintln(cmd.ErrOrStderr(), "Session cleared, stopping.")
		}
		return nil
	},
}

// sessionCleared watches the session file when it lives on the OS
// filesystem. Otherwise the returned channel never fires.
func sessionCleared(ctx context.Context, store *session.FileStore) <-chan struct{} {
	if _, ok := fs.(*afero.OsFs); !ok {
		return nil
	}
	cleared, err := session.WatchCleared(ctx, store.Path())
	if err != nil {
		slog.Warn("Cannot watch session file", "path", store.Path(), "error", err)
		return nil
	}
	return cleared
}

// messagePrinter writes each message once, oldest first.
type messagePrinter struct {
	mu   sync.Mutex
	out  io.Writer
	seen map[string]bool
}

func newMessagePrinter(out io.Writer) *messagePrinter {
	return &messagePrinter{out: out, seen: make(map[string]bool)}
}

// Print is a messagesync.Listener.
func (p *messagePrinter) Print(st messagesync.State) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i := len(st.Messages) - 1; i >= 0; i-- {
		msg := st.Messages[i]
		if p.seen[msg.ID] {
			continue
		}
		p.seen[msg.ID] = true
		fmt.Fprintln(p.out, formatMessage(msg))
	}
}

func formatMessage(msg domain.Message) string {
	if msg.CreatedAt.IsZero() {
		return fmt.Sprintf("%s: %s", msg.UserName, msg.Content)
	}
	return fmt.Sprintf("[%s] %s: %s", msg.CreatedAt.Local().Format("Jan 2 15:04"), msg.UserName, msg.Content)
}
