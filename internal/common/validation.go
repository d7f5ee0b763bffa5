package common

import (
	"fmt"
	"strings"

	"cvforge/internal/errors"
	"cvforge/internal/profile"
	"cvforge/internal/types"
)

// EnsureSubmittable gates backend submission on the required fields of a
// profile document. All missing fields are reported at once.
func EnsureSubmittable(p types.Profile) error {
	fieldErrors := profile.ValidateForSubmit(p)
	if len(fieldErrors) == 0 {
		return nil
	}

	paths := make([]string, len(fieldErrors))
	for i, fe := range fieldErrors {
		paths[i] = fe.Path
	}

	return errors.NewValidationError(errors.ErrCodeRequiredField,
		fmt.Sprintf("Profile has %d missing required fields: %s",
			len(fieldErrors), strings.Join(paths, ", ")), nil).
		WithContext("fields", paths)
}
