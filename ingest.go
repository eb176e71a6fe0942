package chatbot

import (
	"context"
	"log/slog"

	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/core/pipeline"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
)

// IngestReport summarizes a knowledge base build.
type IngestReport struct {
	Courses int              `json:"courses"`
	Chunks  int              `json:"chunks"`
	Issues  []pipeline.Issue `json:"issues,omitempty"`
}

// IngestFile builds the knowledge base from a JSON file of course records.
func (c *Chatbot) IngestFile(ctx context.Context, path string, reset bool) (*IngestReport, error) {
	courses, err := model.NewCoursesFromFile(path)
	if err != nil {
		return nil, helper.NewError("read courses", err)
	}
	return c.IngestCourses(ctx, courses, reset)
}

// IngestCourses chunks, embeds and stores courses. With reset the existing
// knowledge base is cleared first. Data issues are logged and reported but
// do not stop the build.
func (c *Chatbot) IngestCourses(ctx context.Context, courses []model.CourseData, reset bool) (*IngestReport, error) {
	validation := pipeline.ValidateCourses(courses)
	report := &IngestReport{Issues: append(validation.Issues, pipeline.CheckConsistency(courses)...)}
	for _, issue := range report.Issues {
		if issue.Warning {
			c.log.Debug("Course data warning", slog.String("source_url", issue.SourceURL), slog.String("issue", issue.Message))
		} else {
			c.log.Warn("Course data issue", slog.String("source_url", issue.SourceURL), slog.String("issue", issue.Message))
		}
	}

	if reset {
		if err := c.Store.Clear(ctx); err != nil {
			return report, helper.NewError("clear knowledge base", err)
		}
		if c.Courses != nil {
			if _, err := c.Courses.DeleteAllCourses(ctx); err != nil {
				return report, helper.NewError("delete courses", err)
			}
		}
		c.log.Info("Cleared knowledge base")
	}

	for i := range courses {
		course := &courses[i]

		chunks, err := c.Pipeline.Process(ctx, course)
		if err != nil {
			return report, helper.NewError("process course", err)
		}

		if c.Courses != nil {
			row := &model.Course{
				Name:      course.Name(),
				SourceURL: course.SourceURL,
				Metadata: model.Metadata{
					model.MetadataCourseType:     course.Batch.CourseType,
					model.MetadataCost:           course.Batch.Cost,
					model.MetadataBatchStartDate: course.Batch.BatchStartDate,
				},
			}
			if err := c.Courses.UpsertCourse(ctx, row); err != nil {
				return report, helper.NewError("upsert course", err)
			}
			for _, chunk := range chunks {
				chunk.CourseID = &row.ID
			}
		}

		if err := c.Store.Insert(ctx, chunks); err != nil {
			return report, helper.NewError("insert chunks", err)
		}

		report.Courses++
		report.Chunks += len(chunks)
		c.log.Info("Ingested course", slog.String("name", course.Name()), slog.Int("chunks", len(chunks)))
	}

	return report, nil
}
