package cli

import (
	"context"
	"fmt"
	"strings"

	"cvforge/internal/common"
	"cvforge/internal/render"
	"cvforge/internal/types"

	"github.com/spf13/cobra"
)

var tailorCmd = &cobra.Command{
	Use:   "tailor [profile-file] [job-description-file]",
	Short: "Tailor a profile for a specific job description",
	Long: `Tailor your profile for a specific job description through the rendering
backend. The command takes two arguments: the path to your profile file in
JSON format and the path to the job description file in plain text.

The backend returns a tailored PDF and a matching cover letter. The PDF is
written to the output file; the cover letter goes to stdout unless --letter
names a file.`,
	Args: cobra.ExactArgs(2),
	RunE: runTailor,
}

var (
	tailorOutputFile string
	tailorLetterFile string
)

func init() {
	tailorCmd.Flags().StringVarP(&tailorOutputFile, "output", "o", "tailored.pdf", "Output PDF file path")
	tailorCmd.Flags().StringVar(&tailorLetterFile, "letter", "", "Cover letter output file path (default: stdout)")
}

func runTailor(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	renderer := render.NewClient(cfg, logger)
	fileProcessor := common.NewFileProcessor(logger)
	outputHandler := common.NewOutputHandler(logger)

	contents, err := fileProcessor.ValidateAndReadFiles(args[1])
	if err != nil {
		return err
	}
	jobDescription := contents[0]
	if strings.TrimSpace(jobDescription) == "" {
		return fmt.Errorf("job description file %s is empty", args[1])
	}

	logger.Info("Starting profile tailoring",
		"profile_file", args[0],
		"job_chars", len(jobDescription))

	tailorOperation := func(ctx context.Context, p types.Profile) (*types.TailorResult, error) {
		return renderer.Tailor(ctx, p, jobDescription)
	}

	handleOutput := func(result *types.TailorResult) error {
		if err := outputHandler.HandlePDF(result.PDF, tailorOutputFile); err != nil {
			return err
		}
		return outputHandler.HandleText(result.CoverLetter, tailorLetterFile)
	}

	err = common.RunBackendCommand(
		cmd.Context(),
		logger,
		args[0],
		tailorOperation,
		handleOutput,
	)

	if err != nil {
		return fmt.Errorf("failed to tailor profile: %w", err)
	}
	logger.Info("Profile tailoring completed successfully", "output", tailorOutputFile)
	return nil
}
