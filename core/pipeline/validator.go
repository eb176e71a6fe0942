package pipeline

import (
	"fmt"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// Issue is a problem found in scraped course data.
// Warnings do not make a course invalid.
type Issue struct {
	SourceURL string `json:"source_url"`
	Message   string `json:"message"`
	Warning   bool   `json:"warning"`
}

func (i Issue) String() string {
	if i.Warning {
		return fmt.Sprintf("warning: %s (%s)", i.Message, i.SourceURL)
	}
	return fmt.Sprintf("%s (%s)", i.Message, i.SourceURL)
}

// ValidationReport summarizes ValidateCourses.
type ValidationReport struct {
	TotalCourses   int     `json:"total_courses"`
	ValidCourses   int     `json:"valid_courses"`
	InvalidCourses int     `json:"invalid_courses"`
	Issues         []Issue `json:"issues"`
}

// ValidateCourse reports the fields a course should have but lacks.
// A missing start date is only a warning since the site loads it dynamically.
func ValidateCourse(course *model.CourseData) []Issue {
	url := course.SourceURL
	if url == "" {
		url = "unknown"
	}

	var issues []Issue
	missing := func(what string) {
		issues = append(issues, Issue{SourceURL: url, Message: "missing " + what})
	}

	if course.Cohort.CohortName == "" {
		missing("cohort name")
	}
	if course.Batch.Cost == "" {
		missing("cost")
	}
	if course.Batch.CourseType == "" {
		missing("course type")
	}
	if course.Batch.BatchStartDate == "" {
		issues = append(issues, Issue{SourceURL: url, Message: "no start date", Warning: true})
	}
	if len(nonEmpty(course.Curriculum.Curriculum)) == 0 {
		missing("curriculum")
	}

	return issues
}

// ValidateCourses validates every course. A course is valid when it has no
// issue other than warnings.
func ValidateCourses(courses []model.CourseData) ValidationReport {
	report := ValidationReport{TotalCourses: len(courses)}
	for i := range courses {
		issues := ValidateCourse(&courses[i])
		valid := true
		for _, issue := range issues {
			if !issue.Warning {
				valid = false
			}
		}
		if valid {
			report.ValidCourses++
		} else {
			report.InvalidCourses++
		}
		report.Issues = append(report.Issues, issues...)
	}
	return report
}

// CheckConsistency reports duplicate source URLs and cohort names that map
// to more than one URL.
func CheckConsistency(courses []model.CourseData) []Issue {
	var issues []Issue

	seenURL := map[string]bool{}
	for _, course := range courses {
		if seenURL[course.SourceURL] {
			issues = append(issues, Issue{SourceURL: course.SourceURL, Message: "duplicate source url"})
		}
		seenURL[course.SourceURL] = true
	}

	urlByName := map[string]string{}
	for _, course := range courses {
		name := course.Cohort.CohortName
		if name == "" {
			continue
		}
		if url, ok := urlByName[name]; ok {
			if url != course.SourceURL {
				issues = append(issues, Issue{
					SourceURL: course.SourceURL,
					Message:   fmt.Sprintf("duplicate cohort name %q with different urls", name),
				})
			}
			continue
		}
		urlByName[name] = course.SourceURL
	}

	return issues
}
