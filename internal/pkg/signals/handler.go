// Package signals wires OS signals into command lifecycles.
package signals

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/endorses/lexmatch/internal/pkg/constants"
	"github.com/endorses/lexmatch/internal/pkg/logger"
)

// SetupHandler sets up a signal handler that cancels the provided context on SIGINT or SIGTERM.
// Returns a cleanup function that should be called when the signal handler is no longer needed
func SetupHandler(ctx context.Context, cancel context.CancelFunc) (cleanup func()) {
	sigCh := make(chan os.Signal, constants.SignalChannelBuffer)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		defer close(done)
		select {
		case sig := <-sigCh:
			logger.Info("Received signal, initiating shutdown", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return func() {
		signal.Stop(sigCh)
		cancel()
		<-done
	}
}

// SetupReloadHandler calls onReload for every SIGHUP until ctx is done.
// Returns a cleanup function that waits for the handler goroutine to exit.
func SetupReloadHandler(ctx context.Context, onReload func()) (cleanup func()) {
	sigCh := make(chan os.Signal, constants.SignalChannelBuffer)
	signal.Notify(sigCh, syscall.SIGHUP)

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case sig := <-sigCh:
				logger.Info("Received signal, reloading", "signal", sig.String())
				onReload()
			case <-ctx.Done():
				return
			}
		}
	}()

	return func() {
		signal.Stop(sigCh)
		cancel()
		<-done
	}
}
