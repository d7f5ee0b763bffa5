package common

import (
	"context"

	"cvforge/internal/errors"
	"cvforge/internal/types"
)

// BackendOperationFunc is a generic function signature for any rendering
// backend operation taking a profile document.
type BackendOperationFunc[Output any] func(context.Context, types.Profile) (Output, error)

// HandleOutputFunc defines how to deliver the operation result.
type HandleOutputFunc[Output any] func(Output) error

// RunBackendCommand encapsulates the common logic for profile-file-based
// CLI commands: read and decode the profile, gate on submit validation,
// call the backend, deliver the result.
func RunBackendCommand[Output any](
	ctx context.Context,
	logger *errors.Logger,
	profileFile string,
	operation BackendOperationFunc[Output],
	handleOutput HandleOutputFunc[Output],
) error {
	fileProcessor := NewFileProcessor(logger)

	prof, err := fileProcessor.ReadProfile(profileFile)
	if err != nil {
		return err
	}

	if err := EnsureSubmittable(prof); err != nil {
		return err
	}

	result, err := operation(ctx, prof)
	if err != nil {
		return err
	}

	return handleOutput(result)
}
