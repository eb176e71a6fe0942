package model

import (
	"time"

	"github.com/google/uuid"
)

// ChunkType is the semantic type of a chunk. Every chunk has exactly one.
type ChunkType string

const (
	ChunkTypeCohort     ChunkType = "cohort"
	ChunkTypeBatch      ChunkType = "batch"
	ChunkTypePayment    ChunkType = "payment"
	ChunkTypeCurriculum ChunkType = "curriculum"
	ChunkTypeMentors    ChunkType = "mentors_instructors"
	ChunkTypePlacements ChunkType = "placements"
	ChunkTypeReviews    ChunkType = "reviews"
)

// ChunkTypes lists all known chunk types.
var ChunkTypes = []ChunkType{
	ChunkTypeCohort,
	ChunkTypeBatch,
	ChunkTypePayment,
	ChunkTypeCurriculum,
	ChunkTypeMentors,
	ChunkTypePlacements,
	ChunkTypeReviews,
}

// Valid reports whether t is one of the known chunk types.
func (t ChunkType) Valid() bool {
	for _, known := range ChunkTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Metadata keys for the typed chunk fields.
const (
	MetadataCost           = "cost"
	MetadataBatchStartDate = "batch_start_date"
	MetadataCourseType     = "course_type"
	MetadataEMIOptions     = "emi_options"
	MetadataInstructors    = "instructors"
	MetadataMentors        = "mentors"
	MetadataItemIndex      = "item_index"
)

// Chunk is an immutable unit of course knowledge with one source URL.
type Chunk struct {
	ID         int       `json:"id"`
	RID        uuid.UUID `json:"rid"`
	CourseID   *int      `json:"course_id,omitempty"`
	Content    string    `json:"content"`
	Type       ChunkType `json:"type"`
	CohortName string    `json:"cohort_name"`
	SourceURL  string    `json:"source_url"`
	Field      string    `json:"field"`
	Embedding  []float32 `json:"embedding,omitempty"`
	Metadata   Metadata  `json:"metadata,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// Cost returns the course cost as scraped, or "" when unknown.
func (c *Chunk) Cost() string {
	return c.Metadata.String(MetadataCost)
}

// BatchStartDate returns the start date of the next batch, or "" when unknown.
func (c *Chunk) BatchStartDate() string {
	return c.Metadata.String(MetadataBatchStartDate)
}

// CourseType returns the course format, e.g. "Live" or "Self-paced".
func (c *Chunk) CourseType() string {
	return c.Metadata.String(MetadataCourseType)
}

// EMIOptions returns the EMI plans listed for the course.
func (c *Chunk) EMIOptions() []string {
	return c.Metadata.Strings(MetadataEMIOptions)
}

// Instructors returns the instructor names.
func (c *Chunk) Instructors() []string {
	return c.Metadata.Strings(MetadataInstructors)
}

// Mentors returns the mentor names.
func (c *Chunk) Mentors() []string {
	return c.Metadata.Strings(MetadataMentors)
}
