package profile

import (
	"reflect"
	"testing"

	"cvforge/internal/types"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		setup func() types.Profile
		check func(t *testing.T, out types.Profile)
	}{
		{
			name: "raw bullets are split and trimmed",
			setup: func() types.Profile {
				p := types.NewProfile()
				p.Experience[0].DescriptionPoints = types.RawBullets("  Led migration \n\n Cut costs  \n")
				return p
			},
			check: func(t *testing.T, out types.Profile) {
				expected := []string{"Led migration", "Cut costs"}
				if !reflect.DeepEqual(out.Experience[0].DescriptionPoints.Lines, expected) {
					t.Errorf("Expected bullets %v, got %v", expected, out.Experience[0].DescriptionPoints.Lines)
				}
			},
		},
		{
			name: "raw skill items are split on commas",
			setup: func() types.Profile {
				p := types.NewProfile()
				p.Skills[0].Items = types.RawItems("Go, Rust ,  C++")
				return p
			},
			check: func(t *testing.T, out types.Profile) {
				expected := []string{"Go", "Rust", "C++"}
				if !reflect.DeepEqual(out.Skills[0].Items.Tags, expected) {
					t.Errorf("Expected tags %v, got %v", expected, out.Skills[0].Items.Tags)
				}
			},
		},
		{
			name: "current role loses its end date",
			setup: func() types.Profile {
				p := types.NewProfile()
				p.Experience[0].IsCurrent = true
				p.Experience[0].EndDate = "2024-01"
				return p
			},
			check: func(t *testing.T, out types.Profile) {
				if out.Experience[0].EndDate != "" {
					t.Errorf("Expected empty end date, got %q", out.Experience[0].EndDate)
				}
			},
		},
		{
			name: "past role keeps its end date",
			setup: func() types.Profile {
				p := types.NewProfile()
				p.Experience[0].IsCurrent = false
				p.Experience[0].EndDate = "2024-01"
				return p
			},
			check: func(t *testing.T, out types.Profile) {
				if out.Experience[0].EndDate != "2024-01" {
					t.Errorf("Expected end date preserved, got %q", out.Experience[0].EndDate)
				}
			},
		},
		{
			name: "already-split skill items pass through unchanged",
			setup: func() types.Profile {
				p := types.NewProfile()
				p.Skills[0].Items = types.ItemTags(" Go ", "Rust")
				return p
			},
			check: func(t *testing.T, out types.Profile) {
				expected := []string{" Go ", "Rust"}
				if !reflect.DeepEqual(out.Skills[0].Items.Tags, expected) {
					t.Errorf("Expected tags %v, got %v", expected, out.Skills[0].Items.Tags)
				}
			},
		},
		{
			name: "other fields pass through unchanged",
			setup: func() types.Profile {
				p := types.NewProfile()
				p.Certifications = nil
				p.FontStyle = ""
				return p
			},
			check: func(t *testing.T, out types.Profile) {
				if out.Certifications != nil {
					t.Errorf("Expected certifications untouched, got %#v", out.Certifications)
				}
				if out.FontStyle != "" {
					t.Errorf("Expected font style untouched, got %q", out.FontStyle)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, Normalize(tt.setup()))
		})
	}
}

func TestNormalizeDoesNotMutateInput(t *testing.T) {
	p := types.NewProfile()
	p.Experience[0].DescriptionPoints = types.RawBullets("A\nB")
	p.Experience[0].IsCurrent = true
	p.Experience[0].EndDate = "2024-01"
	p.Skills[0].Items = types.RawItems("Go, Rust")

	Normalize(p)

	if p.Experience[0].DescriptionPoints.IsSplit() {
		t.Error("Input bullets should still be in raw form")
	}
	if p.Experience[0].EndDate != "2024-01" {
		t.Errorf("Input end date changed to %q", p.Experience[0].EndDate)
	}
	if p.Skills[0].Items.IsTagged() {
		t.Error("Input skill items should still be in raw form")
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	p := types.NewProfile()
	p.Experience[0].DescriptionPoints = types.RawBullets("  A \n B ")
	p.Experience[0].IsCurrent = true
	p.Experience[0].EndDate = "2024-01"
	p.Skills[0].Items = types.RawItems("Go, Rust")
	p.FontStyle = ""

	once := Normalize(p)
	twice := Normalize(once)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Normalize is not idempotent:\nonce:  %#v\ntwice: %#v", once, twice)
	}
}
