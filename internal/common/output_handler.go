package common

import (
	"fmt"
	"os"

	"cvforge/internal/errors"
	"cvforge/internal/utils"
)

// OutputHandler handles writing rendered artifacts to files or stdout
type OutputHandler struct {
	fileProcessor *FileProcessor
	logger        *errors.Logger
}

// NewOutputHandler creates a new output handler
func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		fileProcessor: NewFileProcessor(logger),
		logger:        logger,
	}
}

// HandlePDF writes PDF bytes to the output file. PDFs are binary so an
// output file is mandatory.
func (oh *OutputHandler) HandlePDF(pdf []byte, outputFile string) error {
	if outputFile == "" {
		return errors.NewValidationError("OUTPUT_FILE_REQUIRED",
			"PDF output requires an output file, refusing to write binary data to stdout", nil)
	}

	if err := oh.fileProcessor.ValidateOutputFile(outputFile); err != nil {
		return err
	}

	if err := oh.fileProcessor.WriteBinaryFile(outputFile, pdf); err != nil {
		return err // Error already wrapped by WriteBinaryFile
	}

	oh.logger.Info("PDF written successfully",
		"file", outputFile, "size", utils.FormatFileSize(int64(len(pdf))))
	return nil
}

// HandleText writes text output to the specified file, or stdout when
// no file is given.
func (oh *OutputHandler) HandleText(text, outputFile string) error {
	if err := oh.fileProcessor.ValidateOutputFile(outputFile); err != nil {
		return err
	}

	if outputFile != "" {
		if err := oh.fileProcessor.WriteFile(outputFile, text); err != nil {
			return err // Error already wrapped by WriteFile
		}
		oh.logger.Info("Output written successfully", "file", outputFile)
		return nil
	}

	if _, err := fmt.Fprintln(os.Stdout, text); err != nil {
		return errors.NewIOError("FILE_WRITE_FAILED", "Cannot write to stdout", err)
	}
	return nil
}
