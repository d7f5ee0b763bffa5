package types

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestBulletTextUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expected    BulletText
	}{
		{
			name:     "plain string stays raw",
			input:    `"Built the thing\nShipped the thing"`,
			expected: BulletText{Raw: "Built the thing\nShipped the thing"},
		},
		{
			name:     "array becomes split lines",
			input:    `["Built the thing","Shipped the thing"]`,
			expected: BulletText{Lines: []string{"Built the thing", "Shipped the thing"}},
		},
		{
			name:     "empty array keeps split form",
			input:    `[]`,
			expected: BulletText{Lines: []string{}},
		},
		{
			name:     "empty string stays raw",
			input:    `""`,
			expected: BulletText{Raw: ""},
		},
		{
			name:        "number is rejected",
			input:       `42`,
			expectError: true,
		},
		{
			name:        "object is rejected",
			input:       `{"lines":["x"]}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b BulletText
			err := json.Unmarshal([]byte(tt.input), &b)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if !reflect.DeepEqual(b, tt.expected) {
				t.Errorf("Expected %#v, got %#v", tt.expected, b)
			}
		})
	}
}

func TestBulletTextMarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    BulletText
		expected string
	}{
		{
			name:     "raw form emits string",
			value:    RawBullets("line one\nline two"),
			expected: `"line one\nline two"`,
		},
		{
			name:     "split form emits array",
			value:    Bullets("line one", "line two"),
			expected: `["line one","line two"]`,
		},
		{
			name:     "empty split form emits empty array",
			value:    Bullets(),
			expected: `[]`,
		},
		{
			name:     "zero value emits empty string",
			value:    BulletText{},
			expected: `""`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if string(data) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(data))
			}
		})
	}
}

func TestBulletTextSplit(t *testing.T) {
	tests := []struct {
		name     string
		value    BulletText
		expected []string
	}{
		{
			name:     "raw text splits on newlines",
			value:    RawBullets("Led migration\nCut costs"),
			expected: []string{"Led migration", "Cut costs"},
		},
		{
			name:     "lines are trimmed and blanks dropped",
			value:    RawBullets("  A  \n\n B \n   \nC"),
			expected: []string{"A", "B", "C"},
		},
		{
			name:     "empty raw yields empty list",
			value:    RawBullets(""),
			expected: []string{},
		},
		{
			name:     "already split is re-trimmed only",
			value:    Bullets("  A  ", "", "B"),
			expected: []string{"A", "B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.value.Split()
			if !got.IsSplit() {
				t.Fatal("Split result should hold the split form")
			}
			if !reflect.DeepEqual(got.Lines, tt.expected) {
				t.Errorf("Expected lines %v, got %v", tt.expected, got.Lines)
			}

			// Splitting the result again must change nothing
			again := got.Split()
			if !reflect.DeepEqual(again, got) {
				t.Errorf("Split is not idempotent: %#v then %#v", got, again)
			}
		})
	}
}

func TestSkillItemsUnmarshalJSON(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
		expected    SkillItems
	}{
		{
			name:     "plain string stays raw",
			input:    `"Go, Rust, C++"`,
			expected: SkillItems{Raw: "Go, Rust, C++"},
		},
		{
			name:     "array becomes tags",
			input:    `["Go","Rust"]`,
			expected: SkillItems{Tags: []string{"Go", "Rust"}},
		},
		{
			name:     "empty array keeps tag form",
			input:    `[]`,
			expected: SkillItems{Tags: []string{}},
		},
		{
			name:        "object is rejected",
			input:       `{"tags":["Go"]}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var s SkillItems
			err := json.Unmarshal([]byte(tt.input), &s)

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error but got none")
				}
				return
			}
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if !reflect.DeepEqual(s, tt.expected) {
				t.Errorf("Expected %#v, got %#v", tt.expected, s)
			}
		})
	}
}

func TestSkillItemsMarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		value    SkillItems
		expected string
	}{
		{
			name:     "raw form emits string",
			value:    RawItems("Go, Rust"),
			expected: `"Go, Rust"`,
		},
		{
			name:     "tag form emits array",
			value:    ItemTags("Go", "Rust"),
			expected: `["Go","Rust"]`,
		},
		{
			name:     "empty tag form emits empty array",
			value:    ItemTags(),
			expected: `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.value)
			if err != nil {
				t.Fatalf("Expected no error but got: %v", err)
			}
			if string(data) != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, string(data))
			}
		})
	}
}

func TestSkillItemsAdd(t *testing.T) {
	tests := []struct {
		name     string
		start    SkillItems
		tag      string
		added    bool
		expected []string
	}{
		{
			name:     "adds to tag list",
			start:    ItemTags("Go"),
			tag:      "Rust",
			added:    true,
			expected: []string{"Go", "Rust"},
		},
		{
			name:     "trims before adding",
			start:    ItemTags("Go"),
			tag:      "  Rust  ",
			added:    true,
			expected: []string{"Go", "Rust"},
		},
		{
			name:     "rejects duplicate",
			start:    ItemTags("Go", "Rust"),
			tag:      "Rust",
			added:    false,
			expected: []string{"Go", "Rust"},
		},
		{
			name:     "rejects empty after trim",
			start:    ItemTags("Go"),
			tag:      "   ",
			added:    false,
			expected: []string{"Go"},
		},
		{
			name:     "converts raw text before adding",
			start:    RawItems("Go, Rust ,  C++"),
			tag:      "Zig",
			added:    true,
			expected: []string{"Go", "Rust", "C++", "Zig"},
		},
		{
			name:     "duplicate inside raw text is rejected",
			start:    RawItems("Go, Rust"),
			tag:      "Go",
			added:    false,
			expected: []string{"Go", "Rust"},
		},
		{
			name:     "adding to empty raw starts the list",
			start:    RawItems(""),
			tag:      "Go",
			added:    true,
			expected: []string{"Go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.start
			added := s.Add(tt.tag)

			if added != tt.added {
				t.Errorf("Expected added=%v, got %v", tt.added, added)
			}
			if !s.IsTagged() {
				t.Fatal("Add should leave the value in tag form")
			}
			if !reflect.DeepEqual(s.Tags, tt.expected) {
				t.Errorf("Expected tags %v, got %v", tt.expected, s.Tags)
			}
		})
	}
}

func TestSkillItemsRemove(t *testing.T) {
	tests := []struct {
		name     string
		start    SkillItems
		tag      string
		removed  bool
		expected []string
	}{
		{
			name:     "removes matching tag",
			start:    ItemTags("Go", "Rust", "C++"),
			tag:      "Rust",
			removed:  true,
			expected: []string{"Go", "C++"},
		},
		{
			name:     "missing tag is a no-op",
			start:    ItemTags("Go"),
			tag:      "Rust",
			removed:  false,
			expected: []string{"Go"},
		},
		{
			name:     "converts raw text before removing",
			start:    RawItems("Go, Rust"),
			tag:      "Go",
			removed:  true,
			expected: []string{"Rust"},
		},
		{
			name:     "removes only the first match",
			start:    ItemTags("Go", "Rust", "Go"),
			tag:      "Go",
			removed:  true,
			expected: []string{"Rust", "Go"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.start
			removed := s.Remove(tt.tag)

			if removed != tt.removed {
				t.Errorf("Expected removed=%v, got %v", tt.removed, removed)
			}
			if !reflect.DeepEqual(s.Tags, tt.expected) {
				t.Errorf("Expected tags %v, got %v", tt.expected, s.Tags)
			}
		})
	}
}

func TestSkillItemsNormalized(t *testing.T) {
	tests := []struct {
		name     string
		value    SkillItems
		expected []string
	}{
		{
			name:     "raw text splits on commas",
			value:    RawItems("Go, Rust ,  C++"),
			expected: []string{"Go", "Rust", "C++"},
		},
		{
			name:     "empty raw yields empty list",
			value:    RawItems(""),
			expected: []string{},
		},
		{
			name:     "tag list passes through unchanged",
			value:    ItemTags(" Go ", "", "Rust"),
			expected: []string{" Go ", "", "Rust"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.value.Normalized()
			if !got.IsTagged() {
				t.Fatal("Normalized result should hold the tag form")
			}
			if !reflect.DeepEqual(got.Tags, tt.expected) {
				t.Errorf("Expected tags %v, got %v", tt.expected, got.Tags)
			}

			again := got.Normalized()
			if !reflect.DeepEqual(again, got) {
				t.Errorf("Normalized is not idempotent: %#v then %#v", got, again)
			}
		})
	}

	t.Run("result does not alias the input tags", func(t *testing.T) {
		in := ItemTags("Go", "Rust")
		got := in.Normalized()
		got.Tags[0] = "Zig"
		if in.Tags[0] != "Go" {
			t.Errorf("Input tags mutated: %v", in.Tags)
		}
	})
}
