package ranking

import (
	"strings"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/intent"
)

// Course is a known course with the phrases that name it in free text.
type Course struct {
	Name    string   `mapstructure:"name" json:"name"`
	Aliases []string `mapstructure:"aliases" json:"aliases"`
}

// CourseCatalog detects course names in text by whole-word alias matching.
type CourseCatalog struct {
	courses []Course
}

// DefaultCourses returns the courses offered on the site.
func DefaultCourses() []Course {
	return []Course{
		{Name: "Product Management", Aliases: []string{"product management"}},
		{Name: "Data Analyst", Aliases: []string{"data analyst"}},
		{Name: "Business Analyst", Aliases: []string{"business analyst"}},
		{Name: "UI UX Design", Aliases: []string{"ui ux", "ui/ux"}},
	}
}

// NewCourseCatalog creates a catalog. A course's own name always counts as an alias.
func NewCourseCatalog(courses []Course) *CourseCatalog {
	catalog := &CourseCatalog{}
	for _, c := range courses {
		if strings.TrimSpace(c.Name) == "" {
			continue
		}
		aliases := []string{normalize(c.Name)}
		for _, a := range c.Aliases {
			if n := normalize(a); n != "" {
				aliases = append(aliases, n)
			}
		}
		catalog.courses = append(catalog.courses, Course{Name: c.Name, Aliases: aliases})
	}
	return catalog
}

// Courses returns the catalog entries with normalized aliases.
func (c *CourseCatalog) Courses() []Course {
	return append([]Course(nil), c.courses...)
}

// Match returns the course named in text, or "". When several courses are
// named the earliest mention wins, and a longer alias wins at the same position.
func (c *CourseCatalog) Match(text string) string {
	padded := " " + normalize(text) + " "

	best, bestPos, bestLen := "", -1, 0
	for _, course := range c.courses {
		for _, alias := range course.Aliases {
			pos := strings.Index(padded, " "+alias+" ")
			if pos < 0 {
				continue
			}
			if bestPos < 0 || pos < bestPos || (pos == bestPos && len(alias) > bestLen) {
				best, bestPos, bestLen = course.Name, pos, len(alias)
			}
		}
	}
	return best
}

// SameCourse reports whether a chunk's cohort name belongs to target.
// target may be a catalog name, an alias or a cohort name from an earlier answer.
func (c *CourseCatalog) SameCourse(cohortName string, target string) bool {
	a, b := c.Match(cohortName), c.Match(target)
	if a != "" && b != "" {
		return a == b
	}

	na, nb := normalize(cohortName), normalize(target)
	if na == "" || nb == "" {
		return false
	}
	return strings.Contains(" "+na+" ", " "+nb+" ") || strings.Contains(" "+nb+" ", " "+na+" ")
}

func normalize(text string) string {
	return strings.Join(intent.Tokens(text), " ")
}
