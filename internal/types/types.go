package types

import "github.com/google/uuid"

// Font styles accepted by the rendering backend.
const (
	FontStyleModern  = "modern"
	FontStyleClassic = "classic"
)

// EntryKey identifies a list entry independently of its position.
// Keys are bookkeeping for editors and never travel on the wire.
type EntryKey string

// NewEntryKey returns a fresh opaque entry key.
func NewEntryKey() EntryKey {
	return EntryKey(uuid.NewString())
}

// ContactInfo represents the contact block of a resume
type ContactInfo struct {
	Name         string `json:"name" bson:"name"`
	Email        string `json:"email" bson:"email"`
	Phone        string `json:"phone" bson:"phone"`
	LinkedIn     string `json:"linkedin,omitempty" bson:"linkedin,omitempty"`
	GitHub       string `json:"github,omitempty" bson:"github,omitempty"`
	PortfolioURL string `json:"portfolio_url,omitempty" bson:"portfolio_url,omitempty"`
}

// Experience represents a single work history entry
type Experience struct {
	Key               EntryKey   `json:"-" bson:"-"`
	Role              string     `json:"role" bson:"role"`
	Company           string     `json:"company" bson:"company"`
	StartDate         string     `json:"start_date" bson:"start_date"`
	EndDate           string     `json:"end_date" bson:"end_date"`
	IsCurrent         bool       `json:"is_current" bson:"is_current"`
	DescriptionPoints BulletText `json:"description_points" bson:"description_points"`
}

// Education represents a single education entry
type Education struct {
	Key         EntryKey `json:"-" bson:"-"`
	Degree      string   `json:"degree" bson:"degree"`
	Institution string   `json:"institution" bson:"institution"`
	Year        string   `json:"year" bson:"year"`
	Details     string   `json:"details,omitempty" bson:"details,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
}

// SkillGroup represents a named category of skills
type SkillGroup struct {
	Key      EntryKey   `json:"-" bson:"-"`
	Category string     `json:"category" bson:"category"`
	Items    SkillItems `json:"items" bson:"items"`
}

// Certification represents a single certification entry
type Certification struct {
	Key    EntryKey `json:"-" bson:"-"`
	Name   string   `json:"name" bson:"name"`
	Issuer string   `json:"issuer" bson:"issuer"`
	Date   string   `json:"date" bson:"date"`
	URL    string   `json:"url,omitempty" bson:"url,omitempty"`
}

// Profile represents the full resume document exchanged with the
// rendering backend and persisted per user
type Profile struct {
	ContactInfo    ContactInfo     `json:"contact_info" bson:"contact_info"`
	Summary        string          `json:"summary" bson:"summary"`
	Experience     []Experience    `json:"experience" bson:"experience"`
	Education      []Education     `json:"education" bson:"education"`
	Skills         []SkillGroup    `json:"skills" bson:"skills"`
	Certifications []Certification `json:"certifications" bson:"certifications"`
	FontStyle      string          `json:"font_style" bson:"font_style"`
}

// TailorResult represents the output of a tailoring run: the rendered
// PDF and the generated cover letter, always both or neither
type TailorResult struct {
	PDF         []byte
	CoverLetter string
}

// BlankExperience returns an empty experience entry with a fresh key.
func BlankExperience() Experience {
	return Experience{Key: NewEntryKey()}
}

// BlankEducation returns an empty education entry with a fresh key.
func BlankEducation() Education {
	return Education{Key: NewEntryKey()}
}

// BlankSkillGroup returns an empty skill group with a fresh key.
func BlankSkillGroup() SkillGroup {
	return SkillGroup{Key: NewEntryKey()}
}

// BlankCertification returns an empty certification entry with a fresh key.
func BlankCertification() Certification {
	return Certification{Key: NewEntryKey()}
}

// NewProfile returns the starting document for a new user: one blank
// entry in each of the floored sections and the default font style.
func NewProfile() Profile {
	return Profile{
		Experience:     []Experience{BlankExperience()},
		Education:      []Education{BlankEducation()},
		Skills:         []SkillGroup{BlankSkillGroup()},
		Certifications: []Certification{},
		FontStyle:      FontStyleModern,
	}
}

// EnsureKeys assigns fresh keys to any entries that lack one. Called
// after decoding from JSON or BSON, where keys are never carried.
func (p *Profile) EnsureKeys() {
	for i := range p.Experience {
		if p.Experience[i].Key == "" {
			p.Experience[i].Key = NewEntryKey()
		}
	}
	for i := range p.Education {
		if p.Education[i].Key == "" {
			p.Education[i].Key = NewEntryKey()
		}
	}
	for i := range p.Skills {
		if p.Skills[i].Key == "" {
			p.Skills[i].Key = NewEntryKey()
		}
	}
	for i := range p.Certifications {
		if p.Certifications[i].Key == "" {
			p.Certifications[i].Key = NewEntryKey()
		}
	}
}

// Clone returns a deep copy of the profile. Entry keys are preserved.
func (p Profile) Clone() Profile {
	out := p
	out.Experience = make([]Experience, len(p.Experience))
	for i, e := range p.Experience {
		e.DescriptionPoints = e.DescriptionPoints.clone()
		out.Experience[i] = e
	}
	if p.Education != nil {
		out.Education = append([]Education{}, p.Education...)
	}
	out.Skills = make([]SkillGroup, len(p.Skills))
	for i, s := range p.Skills {
		s.Items = s.Items.clone()
		out.Skills[i] = s
	}
	if p.Certifications != nil {
		out.Certifications = append([]Certification{}, p.Certifications...)
	}
	return out
}
