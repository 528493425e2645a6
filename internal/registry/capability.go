// ABOUTME: Capability record type held by the registry
// ABOUTME: Name is the registry key and is omitted from the JSON body

package registry

// Capability is a named consulting skill area and its consultant roster.
type Capability struct {
	Name              string   `json:"-" yaml:"name"`
	Description       string   `json:"description" yaml:"description"`
	PracticeArea      string   `json:"practice_area" yaml:"practice_area"`
	SkillLevels       []string `json:"skill_levels" yaml:"skill_levels"`
	Certifications    []string `json:"certifications" yaml:"certifications"`
	IndustryVerticals []string `json:"industry_verticals" yaml:"industry_verticals"`
	Capacity          int      `json:"capacity" yaml:"capacity"`
	Consultants       Roster   `json:"consultants" yaml:"consultants"`
}

// Clone returns a deep copy so callers never share slices with the registry.
func (c *Capability) Clone() Capability {
	return Capability{
		Name:              c.Name,
		Description:       c.Description,
		PracticeArea:      c.PracticeArea,
		SkillLevels:       cloneStrings(c.SkillLevels),
		Certifications:    cloneStrings(c.Certifications),
		IndustryVerticals: cloneStrings(c.IndustryVerticals),
		Capacity:          c.Capacity,
		Consultants:       c.Consultants.Clone(),
	}
}

func cloneStrings(in []string) []string {
	if in == nil {
		return []string{}
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
