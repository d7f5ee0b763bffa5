package profile

import (
	"fmt"
	"strings"

	"cvforge/internal/errors"
	"cvforge/internal/types"
)

// FieldError flags a single field that blocks submission.
type FieldError struct {
	Path    string `json:"path"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ValidateForSubmit checks the fields required before a profile may be
// sent for rendering or tailoring. An empty result means the profile is
// submittable. Validation never mutates the profile and is independent
// of normalization.
func ValidateForSubmit(p types.Profile) []FieldError {
	var errs []FieldError

	errs = appendRequired(errs, "contact_info.name", p.ContactInfo.Name, "name is required")
	errs = appendRequired(errs, "contact_info.email", p.ContactInfo.Email, "email is required")
	errs = appendRequired(errs, "contact_info.phone", p.ContactInfo.Phone, "phone is required")

	for i, e := range p.Experience {
		errs = appendRequired(errs, fmt.Sprintf("experience.%d.company", i), e.Company, "company is required")
		errs = appendRequired(errs, fmt.Sprintf("experience.%d.role", i), e.Role, "role is required")
		errs = appendRequired(errs, fmt.Sprintf("experience.%d.start_date", i), e.StartDate, "start date is required")
	}
	for i, e := range p.Education {
		errs = appendRequired(errs, fmt.Sprintf("education.%d.institution", i), e.Institution, "institution is required")
		errs = appendRequired(errs, fmt.Sprintf("education.%d.degree", i), e.Degree, "degree is required")
		errs = appendRequired(errs, fmt.Sprintf("education.%d.year", i), e.Year, "year is required")
	}
	for i, g := range p.Skills {
		errs = appendRequired(errs, fmt.Sprintf("skills.%d.category", i), g.Category, "category is required")
	}
	for i, c := range p.Certifications {
		errs = appendRequired(errs, fmt.Sprintf("certifications.%d.name", i), c.Name, "name is required")
		errs = appendRequired(errs, fmt.Sprintf("certifications.%d.issuer", i), c.Issuer, "issuer is required")
		errs = appendRequired(errs, fmt.Sprintf("certifications.%d.date", i), c.Date, "date is required")
	}

	return errs
}

func appendRequired(errs []FieldError, path, value, message string) []FieldError {
	if strings.TrimSpace(value) != "" {
		return errs
	}
	return append(errs, FieldError{
		Path:    path,
		Code:    errors.ErrCodeRequiredField,
		Message: message,
	})
}
