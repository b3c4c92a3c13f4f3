package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// shutdownContext is cancelled on an interrupt or terminate signal, or when
// parent is done.
func shutdownContext(parent context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}
