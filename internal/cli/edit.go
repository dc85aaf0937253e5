package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/patchbay"
	"github.com/aretw0/patchbay/internal/presentation/tui"
)

// EditOptions contains all the configuration for the edit command.
type EditOptions struct {
	EditorOptions
	LogLevel string
	Headless bool // no banner, prompts or markdown rendering
	Input    io.Reader
	Output   io.Writer
}

// RunEdit opens an interactive editing session on the terminal.
func RunEdit(opts EditOptions) error {
	logger, err := CreateLogger(opts.LogLevel, false)
	if err != nil {
		return err
	}
	if opts.Input == nil {
		opts.Input = os.Stdin
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}

	sigCtx := NewSignalContext(context.Background())
	defer sigCtx.Cancel()

	runner := patchbay.NewRunner(NewInterruptibleReader(opts.Input, sigCtx.Done()), opts.Output)
	runner.Headless = opts.Headless
	interactive := !opts.Headless && isTerminalWriter(opts.Output)
	if interactive {
		runner.Renderer = tui.NewRenderer()
		tui.PrintBanner(opts.Output, patchbay.Version)
	}

	components, err := BuildEditor(sigCtx, opts.EditorOptions.Env(), logger,
		patchbay.WithPrompter(runner),
		patchbay.WithPresenter(runner),
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

	if opts.Load != "" && !opts.Headless {
		printSystemMessage(opts.Output, "Diagram '%s' open (%d devices).", opts.Load, len(components.Editor.Store().Nodes()))
	}

	runErr := runner.Run(sigCtx, components.Editor)
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	// Autosave the opened diagram on the way out.
	if opts.Load != "" {
		if err := components.Editor.SaveDiagram(context.WithoutCancel(sigCtx), opts.Load); err != nil {
			logger.Error("Autosave failed", "diagram_id", opts.Load, "err", err)
		} else if !opts.Headless {
			printSystemMessage(opts.Output, "Diagram '%s' saved.", opts.Load)
		}
	}
	if sigCtx.Signal() != nil && !opts.Headless {
		fmt.Fprintln(opts.Output)
		printSystemMessage(opts.Output, "Interrupted.")
	}

	return handleExecutionError(runErr)
}

func isTerminalWriter(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && IsTerminal(f)
}
