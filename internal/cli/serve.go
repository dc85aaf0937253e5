package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/aretw0/patchbay"
	httpAdapter "github.com/aretw0/patchbay/pkg/adapters/http"
)

// ServeOptions contains all the configuration for the serve command.
type ServeOptions struct {
	EditorOptions
	LogLevel string
	Port     string
}

// shutdownTimeout gives outstanding requests a deadline for completion.
const shutdownTimeout = 5 * time.Second

// RunServe exposes one live diagram over HTTP until SIGINT or SIGTERM.
func RunServe(opts ServeOptions) error {
	logger, err := CreateLogger(opts.LogLevel, true)
	if err != nil {
		return err
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	editorOpts := opts.EditorOptions.Env()
	editorOpts.Metrics = true

	streams := httpAdapter.NewStreamManager()
	components, err := BuildEditor(sigCtx, editorOpts, logger,
		patchbay.WithPrompter(httpAdapter.Prompter{}),
		patchbay.WithPresenter(httpAdapter.Presenter{Streams: streams}),
		patchbay.WithInteractionObserver(streams.ObserveInteraction),
	)
	if err != nil {
		return err
	}
	defer components.Close()

	sub, err := components.Subscribe(sigCtx)
	if err != nil {
		return fmt.Errorf("failed to subscribe to ingestion messages: %w", err)
	}
	if sub != nil {
		defer sub.Close()
	}

	srv := &http.Server{
		Addr: ":" + opts.Port,
		Handler: httpAdapter.NewHandler(components.Editor,
			httpAdapter.WithStreams(streams),
			httpAdapter.WithMetrics(components.Metrics),
			httpAdapter.WithLogger(logger),
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for errors coming from the listener.
	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting patchbay server", "addr", srv.Addr, "version", patchbay.Version)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-sigCtx.Done():
		logger.Info("Start shutdown", "signal", fmt.Sprint(sigCtx.Signal()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil {
				logger.Error("Error killing server", "err", err)
			}
		}
		components.Editor.Controller().Wait()

		if opts.Load != "" {
			if err := components.Editor.SaveDiagram(ctx, opts.Load); err != nil {
				logger.Error("Autosave failed", "diagram_id", opts.Load, "err", err)
			}
		}
		logger.Info("patchbay server stopped gracefully")
		return nil
	}
}
