package model

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
)

// Course is a scraped course page. Chunks reference it by ID.
type Course struct {
	ID        int       `json:"id"`
	RID       uuid.UUID `json:"rid"`
	Name      string    `json:"name"`
	SourceURL string    `json:"source_url"`
	Metadata  Metadata  `json:"metadata,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CourseData is one record of the processed scraper output.
type CourseData struct {
	SourceURL string `json:"source_url"`
	Cohort    struct {
		CohortName        string `json:"cohort_name"`
		CohortDescription string `json:"cohort_description"`
	} `json:"cohort"`
	Batch struct {
		BatchStartDate string `json:"batch_start_date"`
		Cost           string `json:"cost"`
		CourseType     string `json:"course_type"`
	} `json:"batch"`
	PaymentOptions struct {
		EMIOptions []string `json:"emi_options"`
	} `json:"payment_options"`
	Curriculum struct {
		Curriculum []string `json:"curriculum"`
	} `json:"curriculum"`
	MentorsInstructors struct {
		Instructors []string `json:"instructors"`
		Mentors     []string `json:"mentors"`
	} `json:"mentors_instructors"`
	Placements struct {
		PlacementText string `json:"placement_text"`
	} `json:"placements"`
	Reviews struct {
		Reviews []string `json:"reviews"`
	} `json:"reviews"`
}

// Name returns the cohort name, or "Unknown" when the scraper found none.
func (c *CourseData) Name() string {
	if c.Cohort.CohortName == "" {
		return "Unknown"
	}
	return c.Cohort.CohortName
}

// NewCoursesFromFile reads a JSON array of course records.
func NewCoursesFromFile(filePath string) ([]CourseData, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var courses []CourseData
	if err := json.Unmarshal(content, &courses); err != nil {
		return nil, err
	}
	return courses, nil
}
