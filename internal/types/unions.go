package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// BulletText holds the description of an experience entry in one of two
// shapes: raw multiline text as typed, or a split list of bullet lines.
// Exactly one shape is active; Lines non-nil means the split form.
type BulletText struct {
	Raw   string
	Lines []string
}

// RawBullets wraps free-form multiline text.
func RawBullets(s string) BulletText {
	return BulletText{Raw: s}
}

// Bullets wraps an already-split list of bullet lines.
func Bullets(lines ...string) BulletText {
	if lines == nil {
		lines = []string{}
	}
	return BulletText{Lines: lines}
}

// IsSplit reports whether the value holds the split list form.
func (b BulletText) IsSplit() bool {
	return b.Lines != nil
}

func (b BulletText) clone() BulletText {
	if b.Lines == nil {
		return b
	}
	return BulletText{Lines: append([]string(nil), b.Lines...)}
}

// MarshalJSON emits an array for the split form and a plain string for
// raw text, matching what editors submit and documents store.
func (b BulletText) MarshalJSON() ([]byte, error) {
	if b.Lines != nil {
		return json.Marshal(b.Lines)
	}
	return json.Marshal(b.Raw)
}

// UnmarshalJSON accepts either a string or an array of strings.
func (b *BulletText) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var lines []string
		if err := json.Unmarshal(data, &lines); err != nil {
			return err
		}
		if lines == nil {
			lines = []string{}
		}
		*b = BulletText{Lines: lines}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("description points must be a string or a list of strings: %w", err)
	}
	*b = BulletText{Raw: raw}
	return nil
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (b BulletText) MarshalBSONValue() (byte, []byte, error) {
	if b.Lines != nil {
		t, data, err := bson.MarshalValue(b.Lines)
		return byte(t), data, err
	}
	t, data, err := bson.MarshalValue(b.Raw)
	return byte(t), data, err
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler, accepting both
// shapes so documents written by older clients still load.
func (b *BulletText) UnmarshalBSONValue(t byte, data []byte) error {
	switch bson.Type(t) {
	case bson.TypeString:
		var raw string
		if err := bson.UnmarshalValue(bson.Type(t), data, &raw); err != nil {
			return err
		}
		*b = BulletText{Raw: raw}
		return nil
	case bson.TypeArray:
		var lines []string
		if err := bson.UnmarshalValue(bson.Type(t), data, &lines); err != nil {
			return err
		}
		if lines == nil {
			lines = []string{}
		}
		*b = BulletText{Lines: lines}
		return nil
	case bson.TypeNull:
		*b = BulletText{}
		return nil
	default:
		return fmt.Errorf("description points must be a string or a list of strings, got BSON type %v", bson.Type(t))
	}
}

// SkillItems holds the items of a skill group in one of two shapes:
// raw comma-separated text, or an ordered list of unique tags.
// Lines up with BulletText: Tags non-nil means the tag form.
type SkillItems struct {
	Raw  string
	Tags []string
}

// RawItems wraps free-form comma-separated text.
func RawItems(s string) SkillItems {
	return SkillItems{Raw: s}
}

// ItemTags wraps an ordered tag list. Duplicates are not filtered here;
// use Add for interactive entry semantics.
func ItemTags(tags ...string) SkillItems {
	if tags == nil {
		tags = []string{}
	}
	return SkillItems{Tags: tags}
}

// IsTagged reports whether the value holds the tag list form.
func (s SkillItems) IsTagged() bool {
	return s.Tags != nil
}

func (s SkillItems) clone() SkillItems {
	if s.Tags == nil {
		return s
	}
	return SkillItems{Tags: append([]string(nil), s.Tags...)}
}

// Add appends a tag after trimming, converting the raw form to tags
// first. Empty and duplicate tags are rejected; order is append order.
func (s *SkillItems) Add(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	if s.Tags == nil {
		s.Tags = splitAndTrim(s.Raw, ",")
		s.Raw = ""
	}
	for _, existing := range s.Tags {
		if existing == tag {
			return false
		}
	}
	s.Tags = append(s.Tags, tag)
	return true
}

// Remove deletes the first tag equal to the given value, converting the
// raw form to tags first. Returns whether a tag was removed.
func (s *SkillItems) Remove(tag string) bool {
	if s.Tags == nil {
		s.Tags = splitAndTrim(s.Raw, ",")
		s.Raw = ""
	}
	for i, existing := range s.Tags {
		if existing == tag {
			s.Tags = append(s.Tags[:i], s.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// MarshalJSON emits an array for the tag form and a plain string for
// raw text.
func (s SkillItems) MarshalJSON() ([]byte, error) {
	if s.Tags != nil {
		return json.Marshal(s.Tags)
	}
	return json.Marshal(s.Raw)
}

// UnmarshalJSON accepts either a string or an array of strings.
func (s *SkillItems) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var tags []string
		if err := json.Unmarshal(data, &tags); err != nil {
			return err
		}
		if tags == nil {
			tags = []string{}
		}
		*s = SkillItems{Tags: tags}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("skill items must be a string or a list of strings: %w", err)
	}
	*s = SkillItems{Raw: raw}
	return nil
}

// MarshalBSONValue implements bson.ValueMarshaler.
func (s SkillItems) MarshalBSONValue() (byte, []byte, error) {
	if s.Tags != nil {
		t, data, err := bson.MarshalValue(s.Tags)
		return byte(t), data, err
	}
	t, data, err := bson.MarshalValue(s.Raw)
	return byte(t), data, err
}

// UnmarshalBSONValue implements bson.ValueUnmarshaler.
func (s *SkillItems) UnmarshalBSONValue(t byte, data []byte) error {
	switch bson.Type(t) {
	case bson.TypeString:
		var raw string
		if err := bson.UnmarshalValue(bson.Type(t), data, &raw); err != nil {
			return err
		}
		*s = SkillItems{Raw: raw}
		return nil
	case bson.TypeArray:
		var tags []string
		if err := bson.UnmarshalValue(bson.Type(t), data, &tags); err != nil {
			return err
		}
		if tags == nil {
			tags = []string{}
		}
		*s = SkillItems{Tags: tags}
		return nil
	case bson.TypeNull:
		*s = SkillItems{}
		return nil
	default:
		return fmt.Errorf("skill items must be a string or a list of strings, got BSON type %v", bson.Type(t))
	}
}

// Split returns the split form: raw text broken on newlines with each
// line trimmed and blank lines dropped. Already-split values are
// re-trimmed the same way, so applying Split twice changes nothing.
func (b BulletText) Split() BulletText {
	if b.Lines != nil {
		return BulletText{Lines: trimAndFilter(b.Lines)}
	}
	return BulletText{Lines: splitAndTrim(b.Raw, "\n")}
}

// Normalized returns the tag form: raw text broken on commas with each
// item trimmed and blanks dropped. A value already in tag form passes
// through unchanged, so applying Normalized twice changes nothing. The
// returned tags never alias the input.
func (s SkillItems) Normalized() SkillItems {
	if s.Tags != nil {
		tags := make([]string, len(s.Tags))
		copy(tags, s.Tags)
		return SkillItems{Tags: tags}
	}
	return SkillItems{Tags: splitAndTrim(s.Raw, ",")}
}

func trimAndFilter(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// splitAndTrim splits on the separator, trims each piece and drops
// blanks. A blank input yields an empty, non-nil slice.
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
