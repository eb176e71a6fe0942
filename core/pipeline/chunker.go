package pipeline

import (
	"fmt"
	"strings"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// MaxReviewsPerChunk bounds the reviews folded into the single reviews chunk.
const MaxReviewsPerChunk = 3

// CourseChunker creates a chunker that emits one chunk per course section.
//
// Per course it produces a cohort chunk, a batch chunk when any batch detail is
// known, a payment chunk when EMI options exist, one curriculum chunk per item,
// a mentors chunk when instructors or mentors are listed, a placements chunk and
// a reviews chunk built from the first reviews.
func CourseChunker() ChunkFunc {
	return func(course *model.CourseData) ([]*model.Chunk, error) {
		if course == nil {
			return nil, fmt.Errorf("course is nil")
		}

		name := course.Name()
		var chunks []*model.Chunk
		add := func(chunkType model.ChunkType, field string, content string, metadata model.Metadata) {
			if metadata == nil {
				metadata = model.Metadata{}
			}
			chunks = append(chunks, &model.Chunk{
				Content:    strings.TrimSpace(content),
				Type:       chunkType,
				CohortName: name,
				SourceURL:  course.SourceURL,
				Field:      field,
				Metadata:   metadata,
			})
		}

		add(
			model.ChunkTypeCohort,
			"cohort_info",
			fmt.Sprintf("Cohort: %s\nDescription: %s", course.Cohort.CohortName, course.Cohort.CohortDescription),
			nil,
		)

		batch := course.Batch
		if batch.BatchStartDate != "" || batch.Cost != "" || batch.CourseType != "" {
			var sb strings.Builder
			fmt.Fprintf(&sb, "Batch Information for %s:\n", name)
			if batch.BatchStartDate != "" {
				fmt.Fprintf(&sb, "Start Date: %s\n", batch.BatchStartDate)
			}
			if batch.Cost != "" {
				fmt.Fprintf(&sb, "Cost: %s\n", batch.Cost)
			}
			if batch.CourseType != "" {
				fmt.Fprintf(&sb, "Course Type: %s", batch.CourseType)
			}
			add(model.ChunkTypeBatch, "batch_info", sb.String(), model.Metadata{
				model.MetadataCost:           batch.Cost,
				model.MetadataBatchStartDate: batch.BatchStartDate,
				model.MetadataCourseType:     batch.CourseType,
			})
		}

		if emi := nonEmpty(course.PaymentOptions.EMIOptions); len(emi) > 0 {
			var sb strings.Builder
			fmt.Fprintf(&sb, "Payment Options for %s:\nEMI Options:\n", name)
			for _, option := range emi {
				fmt.Fprintf(&sb, "- %s\n", option)
			}
			add(model.ChunkTypePayment, "payment_options", sb.String(), model.Metadata{
				model.MetadataEMIOptions: emi,
			})
		}

		for i, item := range nonEmpty(course.Curriculum.Curriculum) {
			add(model.ChunkTypeCurriculum, "curriculum", fmt.Sprintf("Curriculum for %s: %s", name, item), model.Metadata{
				model.MetadataItemIndex: i,
			})
		}

		instructors := nonEmpty(course.MentorsInstructors.Instructors)
		mentors := nonEmpty(course.MentorsInstructors.Mentors)
		if len(instructors) > 0 || len(mentors) > 0 {
			var sb strings.Builder
			fmt.Fprintf(&sb, "Instructors and Mentors for %s:\n", name)
			if len(instructors) > 0 {
				fmt.Fprintf(&sb, "Instructors: %s\n", strings.Join(instructors, ", "))
			}
			if len(mentors) > 0 {
				fmt.Fprintf(&sb, "Mentors: %s", strings.Join(mentors, ", "))
			}
			add(model.ChunkTypeMentors, "mentors_instructors", sb.String(), model.Metadata{
				model.MetadataInstructors: instructors,
				model.MetadataMentors:     mentors,
			})
		}

		if text := strings.TrimSpace(course.Placements.PlacementText); text != "" {
			add(model.ChunkTypePlacements, "placements", fmt.Sprintf("Placement Information for %s: %s", name, text), nil)
		}

		if reviews := nonEmpty(course.Reviews.Reviews); len(reviews) > 0 {
			if len(reviews) > MaxReviewsPerChunk {
				reviews = reviews[:MaxReviewsPerChunk]
			}
			add(model.ChunkTypeReviews, "reviews", fmt.Sprintf("Reviews for %s: %s", name, strings.Join(reviews, "\n")), nil)
		}

		return chunks, nil
	}
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
