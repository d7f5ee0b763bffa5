package cli

import (
	"context"
	"fmt"
	"time"

	"cvforge/internal/common"
	"cvforge/internal/errors"
	"cvforge/internal/render"

	"github.com/spf13/cobra"
)

var previewCmd = &cobra.Command{
	Use:   "preview [profile-file]",
	Short: "Render a profile to a PDF preview",
	Long: `Render a profile document to PDF through the rendering backend.
The command takes one argument: the path to your profile file in JSON format.

With --watch, the command keeps running and re-renders the PDF every time
the profile file changes, so an open PDF viewer works as a live preview.`,
	Args: cobra.ExactArgs(1),
	RunE: runPreview,
}

var (
	previewOutputFile string
	previewWatch      bool
	previewDebounce   time.Duration
)

func init() {
	previewCmd.Flags().StringVarP(&previewOutputFile, "output", "o", "resume.pdf", "Output PDF file path")
	previewCmd.Flags().BoolVarP(&previewWatch, "watch", "w", false, "Re-render whenever the profile file changes")
	previewCmd.Flags().DurationVar(&previewDebounce, "debounce", time.Second, "Debounce delay for watch mode")
}

func runPreview(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	renderer := render.NewClient(cfg, logger)
	outputHandler := common.NewOutputHandler(logger)
	profileFile := args[0]

	renderOnce := func(ctx context.Context) error {
		return common.RunBackendCommand(
			ctx,
			logger,
			profileFile,
			renderer.GeneratePreview,
			func(pdf []byte) error {
				return outputHandler.HandlePDF(pdf, previewOutputFile)
			},
		)
	}

	if err := renderOnce(cmd.Context()); err != nil {
		return fmt.Errorf("failed to generate preview: %w", err)
	}
	logger.Info("Preview generated successfully", "output", previewOutputFile)

	if !previewWatch {
		return nil
	}

	return watchAndRender(cmd.Context(), profileFile, renderOnce, logger)
}

// watchAndRender re-renders the preview on every profile file change
// until the context is canceled.
func watchAndRender(ctx context.Context, profileFile string, renderOnce func(context.Context) error, logger *errors.Logger) error {
	watcher, err := common.NewProfileWatcher(profileFile, previewDebounce, func() {
		if err := renderOnce(ctx); err != nil {
			logger.LogError(err, "Failed to re-render preview", "file", profileFile)
			return
		}
		logger.Info("Preview re-rendered", "output", previewOutputFile)
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create profile watcher: %w", err)
	}

	if err := watcher.Start(); err != nil {
		return fmt.Errorf("failed to start profile watcher: %w", err)
	}
	defer func() {
		if err := watcher.Stop(); err != nil {
			logger.LogError(err, "Failed to stop profile watcher")
		}
	}()

	fmt.Printf("Watching %s, press Ctrl+C to stop\n", profileFile)
	<-ctx.Done()
	return nil
}
