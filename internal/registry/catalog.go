// ABOUTME: Seed catalog for the registry: the built-in capability set and an optional file loader
// ABOUTME: Catalog files are YAML sequences or JSON arrays of capabilities with a name field

package registry

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

var defaultSkillLevels = []string{"Emerging", "Proficient", "Advanced", "Expert"}

func mustRoster(emails ...string) Roster {
	r, err := NewRoster(emails...)
	if err != nil {
		panic(err)
	}
	return r
}

// DefaultCatalog returns the built-in capabilities. Each call returns fresh records.
func DefaultCatalog() []Capability {
	return []Capability{
		{
			Name:              "Cloud Architecture",
			Description:       "Design and implement scalable cloud solutions using AWS, Azure, and GCP",
			PracticeArea:      "Technology",
			SkillLevels:       cloneStrings(defaultSkillLevels),
			Certifications:    []string{"AWS Solutions Architect", "Azure Architect Expert"},
			IndustryVerticals: []string{"Healthcare", "Financial Services", "Retail"},
			Capacity:          40,
			Consultants:       mustRoster("alice.smith@slalom.com", "bob.johnson@slalom.com"),
		},
		{
			Name:              "Data Analytics",
			Description:       "Advanced data analysis, visualization, and machine learning solutions",
			PracticeArea:      "Technology",
			SkillLevels:       cloneStrings(defaultSkillLevels),
			Certifications:    []string{"Tableau Desktop Specialist", "Power BI Expert", "Google Analytics"},
			IndustryVerticals: []string{"Retail", "Healthcare", "Manufacturing"},
			Capacity:          35,
			Consultants:       mustRoster("emma.davis@slalom.com", "sophia.wilson@slalom.com"),
		},
		{
			Name:              "DevOps Engineering",
			Description:       "CI/CD pipeline design, infrastructure automation, and containerization",
			PracticeArea:      "Technology",
			SkillLevels:       cloneStrings(defaultSkillLevels),
			Certifications:    []string{"Docker Certified Associate", "Kubernetes Admin", "Jenkins Certified"},
			IndustryVerticals: []string{"Technology", "Financial Services"},
			Capacity:          30,
			Consultants:       mustRoster("john.brown@slalom.com", "olivia.taylor@slalom.com"),
		},
		{
			Name:              "Digital Strategy",
			Description:       "Digital transformation planning and strategic technology roadmaps",
			PracticeArea:      "Strategy",
			SkillLevels:       cloneStrings(defaultSkillLevels),
			Certifications:    []string{"Digital Transformation Certificate", "Agile Certified Practitioner"},
			IndustryVerticals: []string{"Healthcare", "Financial Services", "Government"},
			Capacity:          25,
			Consultants:       mustRoster("liam.anderson@slalom.com", "noah.martinez@slalom.com"),
		},
		{
			Name:              "Change Management",
			Description:       "Organizational change leadership and adoption strategies",
			PracticeArea:      "Operations",
			SkillLevels:       cloneStrings(defaultSkillLevels),
			Certifications:    []string{"Prosci Certified", "Lean Six Sigma Black Belt"},
			IndustryVerticals: []string{"Healthcare", "Manufacturing", "Government"},
			Capacity:          20,
			Consultants:       mustRoster("ava.garcia@slalom.com", "mia.rodriguez@slalom.com"),
		},
		{
			Name:              "UX/UI Design",
			Description:       "User experience design and digital product innovation",
			PracticeArea:      "Technology",
			SkillLevels:       cloneStrings(defaultSkillLevels),
			Certifications:    []string{"Adobe Certified Expert", "Google UX Design Certificate"},
			IndustryVerticals: []string{"Retail", "Healthcare", "Technology"},
			Capacity:          30,
			Consultants:       mustRoster("amelia.lee@slalom.com", "harper.white@slalom.com"),
		},
		{
			Name:              "Cybersecurity",
			Description:       "Information security strategy, risk assessment, and compliance",
			PracticeArea:      "Technology",
			SkillLevels:       cloneStrings(defaultSkillLevels),
			Certifications:    []string{"CISSP", "CISM", "CompTIA Security+"},
			IndustryVerticals: []string{"Financial Services", "Healthcare", "Government"},
			Capacity:          25,
			Consultants:       mustRoster("ella.clark@slalom.com", "scarlett.lewis@slalom.com"),
		},
		{
			Name:              "Business Intelligence",
			Description:       "Enterprise reporting, data warehousing, and business analytics",
			PracticeArea:      "Technology",
			SkillLevels:       cloneStrings(defaultSkillLevels),
			Certifications:    []string{"Microsoft BI Certification", "Qlik Sense Certified"},
			IndustryVerticals: []string{"Retail", "Manufacturing", "Financial Services"},
			Capacity:          35,
			Consultants:       mustRoster("james.walker@slalom.com", "benjamin.hall@slalom.com"),
		},
		{
			Name:              "Agile Coaching",
			Description:       "Agile transformation and team coaching for scaled delivery",
			PracticeArea:      "Operations",
			SkillLevels:       cloneStrings(defaultSkillLevels),
			Certifications:    []string{"Certified Scrum Master", "SAFe Agilist", "ICAgile Certified"},
			IndustryVerticals: []string{"Technology", "Financial Services", "Healthcare"},
			Capacity:          20,
			Consultants:       mustRoster("charlotte.young@slalom.com", "henry.king@slalom.com"),
		},
	}
}

// LoadCatalog reads a capability list from path. JSON is parsed with the YAML
// decoder, so either format works.
func LoadCatalog(path string) ([]Capability, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file: %w", err)
	}
	return ParseCatalog(data)
}

// ParseCatalog decodes a capability list.
func ParseCatalog(data []byte) ([]Capability, error) {
	var caps []Capability
	if err := yaml.Unmarshal(data, &caps); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	for i, c := range caps {
		if c.Name == "" {
			return nil, fmt.Errorf("catalog entry %d: name is required", i)
		}
	}
	return caps, nil
}
