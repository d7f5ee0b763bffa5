package common

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"cvforge/internal/errors"
	"cvforge/internal/types"
)

func newTestProcessor(t *testing.T) *FileProcessor {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return NewFileProcessor(logger)
}

func TestReadProfile(t *testing.T) {
	fp := newTestProcessor(t)

	t.Run("valid profile file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "profile.json")
		content := `{
  "contact_info": {"name": "Jo", "email": "jo@example.com", "phone": "555-0100"},
  "summary": "Engineer",
  "experience": [{"role": "Dev", "company": "Acme", "start_date": "2020-01", "end_date": "", "is_current": true, "description_points": "Built things\nShipped things"}],
  "education": [],
  "skills": [{"category": "Languages", "items": ["Go", "Rust"]}],
  "font_style": "modern"
}`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("Failed to write fixture: %v", err)
		}

		p, err := fp.ReadProfile(path)
		if err != nil {
			t.Fatalf("ReadProfile failed: %v", err)
		}
		if p.ContactInfo.Name != "Jo" {
			t.Errorf("Expected name Jo, got %q", p.ContactInfo.Name)
		}
		if p.Experience[0].DescriptionPoints.IsSplit() {
			t.Error("String description points should decode in raw form")
		}
		if !p.Skills[0].Items.IsTagged() {
			t.Error("Array skill items should decode in tag form")
		}

		// Decoded entries get fresh keys
		if p.Experience[0].Key == "" {
			t.Error("Expected a key on the decoded experience entry")
		}
		if p.Skills[0].Key == "" {
			t.Error("Expected a key on the decoded skill group")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := fp.ReadProfile(filepath.Join(t.TempDir(), "nope.json"))
		if err == nil {
			t.Fatal("Expected error for missing file")
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "broken.json")
		if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
			t.Fatalf("Failed to write fixture: %v", err)
		}

		_, err := fp.ReadProfile(path)
		if err == nil {
			t.Fatal("Expected error for invalid JSON")
		}
		appErr, ok := err.(*errors.AppError)
		if !ok {
			t.Fatalf("Expected AppError, got %T", err)
		}
		if appErr.Code != errors.ErrCodeInvalidFormat {
			t.Errorf("Expected code %s, got %s", errors.ErrCodeInvalidFormat, appErr.Code)
		}
	})
}

func TestWriteAndReadProfileRoundTrip(t *testing.T) {
	fp := newTestProcessor(t)
	path := filepath.Join(t.TempDir(), "out", "profile.json")

	original := types.NewProfile()
	original.ContactInfo.Name = "Jo"
	original.Summary = "Engineer"
	original.Skills[0].Category = "Languages"
	original.Skills[0].Items = types.ItemTags("Go", "Rust")

	if err := fp.WriteProfile(path, original); err != nil {
		t.Fatalf("WriteProfile failed: %v", err)
	}

	loaded, err := fp.ReadProfile(path)
	if err != nil {
		t.Fatalf("ReadProfile failed: %v", err)
	}
	if loaded.ContactInfo.Name != "Jo" || loaded.Summary != "Engineer" {
		t.Errorf("Round trip lost data: %#v", loaded.ContactInfo)
	}
	if !loaded.Skills[0].Items.IsTagged() || len(loaded.Skills[0].Items.Tags) != 2 {
		t.Errorf("Round trip lost skill tags: %#v", loaded.Skills[0].Items)
	}
}

func TestEnsureSubmittable(t *testing.T) {
	t.Run("complete profile passes", func(t *testing.T) {
		p := types.NewProfile()
		p.ContactInfo = types.ContactInfo{Name: "Jo", Email: "jo@example.com", Phone: "555-0100"}
		p.Experience[0].Company = "Acme"
		p.Experience[0].Role = "Engineer"
		p.Experience[0].StartDate = "2020-01"
		p.Education[0].Institution = "MIT"
		p.Education[0].Degree = "BSc"
		p.Education[0].Year = "2019"
		p.Skills[0].Category = "Languages"

		if err := EnsureSubmittable(p); err != nil {
			t.Errorf("Expected no error but got: %v", err)
		}
	})

	t.Run("aggregates all missing fields", func(t *testing.T) {
		err := EnsureSubmittable(types.NewProfile())
		if err == nil {
			t.Fatal("Expected error for blank profile")
		}

		appErr, ok := err.(*errors.AppError)
		if !ok {
			t.Fatalf("Expected AppError, got %T", err)
		}
		if appErr.Code != errors.ErrCodeRequiredField {
			t.Errorf("Expected code %s, got %s", errors.ErrCodeRequiredField, appErr.Code)
		}

		// Blank profile misses contact info, experience, education and skills fields
		if !strings.Contains(appErr.Message, "10 missing required fields") {
			t.Errorf("Expected all missing fields counted, got %q", appErr.Message)
		}
		fields, ok := appErr.Context["fields"].([]string)
		if !ok {
			t.Fatal("Expected fields context on the error")
		}
		if len(fields) != 10 {
			t.Errorf("Expected 10 field paths, got %d: %v", len(fields), fields)
		}
	})
}
