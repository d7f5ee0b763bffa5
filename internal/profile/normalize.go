package profile

import "cvforge/internal/types"

// Normalize converts an edit-shape profile into the submission shape
// the rendering backend expects. It is a pure function: the input is
// never mutated, and applying it twice yields the same result.
//
// Transformations:
//   - experience description points: raw text split on newlines, each
//     line trimmed, blank lines dropped
//   - skill items: raw text split on commas, each item trimmed, blanks
//     dropped; an already-split list is left alone
//   - current roles: end date cleared so stale values cannot leak into
//     rendered output
//
// Everything else passes through unchanged.
func Normalize(p types.Profile) types.Profile {
	out := p.Clone()

	for i := range out.Experience {
		out.Experience[i].DescriptionPoints = out.Experience[i].DescriptionPoints.Split()
		if out.Experience[i].IsCurrent {
			out.Experience[i].EndDate = ""
		}
	}
	for i := range out.Skills {
		out.Skills[i].Items = out.Skills[i].Items.Normalized()
	}

	return out
}
