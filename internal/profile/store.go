package profile

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"cvforge/internal/errors"
	"cvforge/internal/types"
)

// List section names accepted by AppendEntry and RemoveEntry.
const (
	SectionExperience     = "experience"
	SectionEducation      = "education"
	SectionSkills         = "skills"
	SectionCertifications = "certifications"
)

// Store holds the working copy of a profile while it is being edited.
// Entries keep their keys across every mutation, so a key obtained from
// AppendEntry stays valid no matter how the surrounding list shifts.
// All methods are safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	profile types.Profile
}

// NewStore creates a store seeded with the blank starting document.
func NewStore() *Store {
	return &Store{profile: types.NewProfile()}
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() types.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile.Clone()
}

// ReplaceAll swaps in a whole document, as happens when a remote load
// succeeds after sign-in. Entries without keys get fresh ones, and the
// sections that must never be empty are reseeded with a blank entry.
func (s *Store) ReplaceAll(p types.Profile) {
	p = p.Clone()
	p.EnsureKeys()
	if len(p.Experience) == 0 {
		p.Experience = []types.Experience{types.BlankExperience()}
	}
	if len(p.Education) == 0 {
		p.Education = []types.Education{types.BlankEducation()}
	}
	if len(p.Skills) == 0 {
		p.Skills = []types.SkillGroup{types.BlankSkillGroup()}
	}
	if p.Certifications == nil {
		p.Certifications = []types.Certification{}
	}
	if p.FontStyle == "" {
		p.FontStyle = types.FontStyleModern
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile = p
}

// Get reads a single field by its dotted path, e.g. "summary",
// "contact_info.email" or "experience.0.company".
func (s *Store) Get(path string) (any, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	section, index, field, err := parsePath(path)
	if err != nil {
		return nil, err
	}

	switch section {
	case "summary":
		return s.profile.Summary, nil
	case "font_style":
		return s.profile.FontStyle, nil
	case "contact_info":
		return getContactField(s.profile.ContactInfo, field, path)
	case SectionExperience:
		if index < 0 || index >= len(s.profile.Experience) {
			return nil, pathError(path, "entry index out of range")
		}
		return getExperienceField(s.profile.Experience[index], field, path)
	case SectionEducation:
		if index < 0 || index >= len(s.profile.Education) {
			return nil, pathError(path, "entry index out of range")
		}
		return getEducationField(s.profile.Education[index], field, path)
	case SectionSkills:
		if index < 0 || index >= len(s.profile.Skills) {
			return nil, pathError(path, "entry index out of range")
		}
		return getSkillField(s.profile.Skills[index], field, path)
	case SectionCertifications:
		if index < 0 || index >= len(s.profile.Certifications) {
			return nil, pathError(path, "entry index out of range")
		}
		return getCertificationField(s.profile.Certifications[index], field, path)
	default:
		return nil, pathError(path, "unknown section")
	}
}

// Set writes a single field by its dotted path. Values are plain
// strings; boolean fields accept the forms strconv.ParseBool accepts.
// No validation happens here beyond path resolution.
func (s *Store) Set(path, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	section, index, field, err := parsePath(path)
	if err != nil {
		return err
	}

	switch section {
	case "summary":
		s.profile.Summary = value
		return nil
	case "font_style":
		s.profile.FontStyle = value
		return nil
	case "contact_info":
		return setContactField(&s.profile.ContactInfo, field, value, path)
	case SectionExperience:
		if index < 0 || index >= len(s.profile.Experience) {
			return pathError(path, "entry index out of range")
		}
		return setExperienceField(&s.profile.Experience[index], field, value, path)
	case SectionEducation:
		if index < 0 || index >= len(s.profile.Education) {
			return pathError(path, "entry index out of range")
		}
		return setEducationField(&s.profile.Education[index], field, value, path)
	case SectionSkills:
		if index < 0 || index >= len(s.profile.Skills) {
			return pathError(path, "entry index out of range")
		}
		return setSkillField(&s.profile.Skills[index], field, value, path)
	case SectionCertifications:
		if index < 0 || index >= len(s.profile.Certifications) {
			return pathError(path, "entry index out of range")
		}
		return setCertificationField(&s.profile.Certifications[index], field, value, path)
	default:
		return pathError(path, "unknown section")
	}
}

// AppendEntry adds a blank entry to the named list section and returns
// its key.
func (s *Store) AppendEntry(section string) (types.EntryKey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch section {
	case SectionExperience:
		e := types.BlankExperience()
		s.profile.Experience = append(s.profile.Experience, e)
		return e.Key, nil
	case SectionEducation:
		e := types.BlankEducation()
		s.profile.Education = append(s.profile.Education, e)
		return e.Key, nil
	case SectionSkills:
		g := types.BlankSkillGroup()
		s.profile.Skills = append(s.profile.Skills, g)
		return g.Key, nil
	case SectionCertifications:
		c := types.BlankCertification()
		s.profile.Certifications = append(s.profile.Certifications, c)
		return c.Key, nil
	default:
		return "", pathError(section, "unknown list section")
	}
}

// RemoveEntry deletes the entry with the given key from the named list
// section. Experience, education and skills never drop to zero entries:
// removing the last one resets it to a blank template instead.
func (s *Store) RemoveEntry(section string, key types.EntryKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch section {
	case SectionExperience:
		for i, e := range s.profile.Experience {
			if e.Key == key {
				if len(s.profile.Experience) == 1 {
					s.profile.Experience[0] = types.BlankExperience()
				} else {
					s.profile.Experience = append(s.profile.Experience[:i], s.profile.Experience[i+1:]...)
				}
				return nil
			}
		}
	case SectionEducation:
		for i, e := range s.profile.Education {
			if e.Key == key {
				if len(s.profile.Education) == 1 {
					s.profile.Education[0] = types.BlankEducation()
				} else {
					s.profile.Education = append(s.profile.Education[:i], s.profile.Education[i+1:]...)
				}
				return nil
			}
		}
	case SectionSkills:
		for i, g := range s.profile.Skills {
			if g.Key == key {
				if len(s.profile.Skills) == 1 {
					s.profile.Skills[0] = types.BlankSkillGroup()
				} else {
					s.profile.Skills = append(s.profile.Skills[:i], s.profile.Skills[i+1:]...)
				}
				return nil
			}
		}
	case SectionCertifications:
		for i, c := range s.profile.Certifications {
			if c.Key == key {
				s.profile.Certifications = append(s.profile.Certifications[:i], s.profile.Certifications[i+1:]...)
				return nil
			}
		}
	default:
		return pathError(section, "unknown list section")
	}
	return errors.NewValidationError(errors.ErrCodeInvalidPath,
		fmt.Sprintf("no entry with key %q in %s", key, section), nil)
}

// AddSkillTag appends a tag to a skill group's items with interactive
// entry semantics: trimmed, duplicates rejected, append order kept.
func (s *Store) AddSkillTag(index int, tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.profile.Skills) {
		return false, pathError(fmt.Sprintf("skills.%d", index), "entry index out of range")
	}
	return s.profile.Skills[index].Items.Add(tag), nil
}

// RemoveSkillTag removes a tag from a skill group's items.
func (s *Store) RemoveSkillTag(index int, tag string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.profile.Skills) {
		return false, pathError(fmt.Sprintf("skills.%d", index), "entry index out of range")
	}
	return s.profile.Skills[index].Items.Remove(tag), nil
}

// EntryKeys returns the keys of the named list section in order.
func (s *Store) EntryKeys(section string) ([]types.EntryKey, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	switch section {
	case SectionExperience:
		keys := make([]types.EntryKey, len(s.profile.Experience))
		for i, e := range s.profile.Experience {
			keys[i] = e.Key
		}
		return keys, nil
	case SectionEducation:
		keys := make([]types.EntryKey, len(s.profile.Education))
		for i, e := range s.profile.Education {
			keys[i] = e.Key
		}
		return keys, nil
	case SectionSkills:
		keys := make([]types.EntryKey, len(s.profile.Skills))
		for i, g := range s.profile.Skills {
			keys[i] = g.Key
		}
		return keys, nil
	case SectionCertifications:
		keys := make([]types.EntryKey, len(s.profile.Certifications))
		for i, c := range s.profile.Certifications {
			keys[i] = c.Key
		}
		return keys, nil
	default:
		return nil, pathError(section, "unknown list section")
	}
}

func parsePath(path string) (section string, index int, field string, err error) {
	parts := strings.Split(path, ".")
	switch len(parts) {
	case 1:
		return parts[0], -1, "", nil
	case 2:
		return parts[0], -1, parts[1], nil
	case 3:
		idx, convErr := strconv.Atoi(parts[1])
		if convErr != nil {
			return "", 0, "", pathError(path, "entry index must be a number")
		}
		return parts[0], idx, parts[2], nil
	default:
		return "", 0, "", pathError(path, "expected section[.index].field")
	}
}

func pathError(path, reason string) error {
	return errors.NewValidationError(errors.ErrCodeInvalidPath,
		fmt.Sprintf("invalid field path %q: %s", path, reason), nil)
}

func getContactField(c types.ContactInfo, field, path string) (any, error) {
	switch field {
	case "name":
		return c.Name, nil
	case "email":
		return c.Email, nil
	case "phone":
		return c.Phone, nil
	case "linkedin":
		return c.LinkedIn, nil
	case "github":
		return c.GitHub, nil
	case "portfolio_url":
		return c.PortfolioURL, nil
	default:
		return nil, pathError(path, "unknown field")
	}
}

func setContactField(c *types.ContactInfo, field, value, path string) error {
	switch field {
	case "name":
		c.Name = value
	case "email":
		c.Email = value
	case "phone":
		c.Phone = value
	case "linkedin":
		c.LinkedIn = value
	case "github":
		c.GitHub = value
	case "portfolio_url":
		c.PortfolioURL = value
	default:
		return pathError(path, "unknown field")
	}
	return nil
}

func getExperienceField(e types.Experience, field, path string) (any, error) {
	switch field {
	case "role":
		return e.Role, nil
	case "company":
		return e.Company, nil
	case "start_date":
		return e.StartDate, nil
	case "end_date":
		return e.EndDate, nil
	case "is_current":
		return e.IsCurrent, nil
	case "description_points":
		return e.DescriptionPoints, nil
	default:
		return nil, pathError(path, "unknown field")
	}
}

func setExperienceField(e *types.Experience, field, value, path string) error {
	switch field {
	case "role":
		e.Role = value
	case "company":
		e.Company = value
	case "start_date":
		e.StartDate = value
	case "end_date":
		e.EndDate = value
	case "is_current":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return pathError(path, "value must be a boolean")
		}
		e.IsCurrent = b
	case "description_points":
		e.DescriptionPoints = types.RawBullets(value)
	default:
		return pathError(path, "unknown field")
	}
	return nil
}

func getEducationField(e types.Education, field, path string) (any, error) {
	switch field {
	case "degree":
		return e.Degree, nil
	case "institution":
		return e.Institution, nil
	case "year":
		return e.Year, nil
	case "details":
		return e.Details, nil
	case "description":
		return e.Description, nil
	default:
		return nil, pathError(path, "unknown field")
	}
}

func setEducationField(e *types.Education, field, value, path string) error {
	switch field {
	case "degree":
		e.Degree = value
	case "institution":
		e.Institution = value
	case "year":
		e.Year = value
	case "details":
		e.Details = value
	case "description":
		e.Description = value
	default:
		return pathError(path, "unknown field")
	}
	return nil
}

func getSkillField(g types.SkillGroup, field, path string) (any, error) {
	switch field {
	case "category":
		return g.Category, nil
	case "items":
		return g.Items, nil
	default:
		return nil, pathError(path, "unknown field")
	}
}

func setSkillField(g *types.SkillGroup, field, value, path string) error {
	switch field {
	case "category":
		g.Category = value
	case "items":
		g.Items = types.RawItems(value)
	default:
		return pathError(path, "unknown field")
	}
	return nil
}

func getCertificationField(c types.Certification, field, path string) (any, error) {
	switch field {
	case "name":
		return c.Name, nil
	case "issuer":
		return c.Issuer, nil
	case "date":
		return c.Date, nil
	case "url":
		return c.URL, nil
	default:
		return nil, pathError(path, "unknown field")
	}
}

func setCertificationField(c *types.Certification, field, value, path string) error {
	switch field {
	case "name":
		c.Name = value
	case "issuer":
		c.Issuer = value
	case "date":
		c.Date = value
	case "url":
		c.URL = value
	default:
		return pathError(path, "unknown field")
	}
	return nil
}
