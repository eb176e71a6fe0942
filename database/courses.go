package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/helper"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/model"
	"github.com/ritikaa26imp-cmyk/nextleap-chatbot-v1/sql"
)

// CoursesDBHandlerFunctions defines the interface for Courses database operations.
type CoursesDBHandlerFunctions interface {
	UpsertCourse(ctx context.Context, course *model.Course) error
	SelectCourse(ctx context.Context, rid uuid.UUID) (*model.Course, error)
	SelectAllCourses(ctx context.Context) ([]*model.Course, error)
	DeleteCourse(ctx context.Context, rid uuid.UUID) error
	DeleteAllCourses(ctx context.Context) (int64, error)
}

// CoursesDBHandler handles course-related database operations
type CoursesDBHandler struct {
	db *helper.Database
}

// NewCoursesDBHandler creates a new courses database handler.
// It loads the course-related SQL functions and creates the table.
// If force is true, it will reload the SQL functions even if they already exist.
func NewCoursesDBHandler(db *helper.Database, force bool) (*CoursesDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	coursesDbHandler := &CoursesDBHandler{
		db: db,
	}

	err := sql.LoadCoursesSql(coursesDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load courses sql", err)
	}

	err = coursesDbHandler.CreateTable()
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized CoursesDBHandler")

	return coursesDbHandler, nil
}

// CreateTable creates the 'courses' table in the database.
// If the table already exists, it does not create it again.
func (h *CoursesDBHandler) CreateTable() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_courses();`)
	if err != nil {
		return helper.NewError("init courses", err)
	}

	h.db.Logger.Debug("Checked/created table courses")

	return nil
}

// UpsertCourse inserts a course or updates the one with the same source URL.
func (h *CoursesDBHandler) UpsertCourse(ctx context.Context, course *model.Course) error {
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM upsert_course($1, $2, $3)`,
		course.Name,
		course.SourceURL,
		course.Metadata,
	)

	err := row.Scan(
		&course.ID,
		&course.RID,
		&course.Name,
		&course.SourceURL,
		&course.Metadata,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return helper.NewError("scan", err)
	}

	return nil
}

// SelectCourse retrieves a course by RID
func (h *CoursesDBHandler) SelectCourse(ctx context.Context, rid uuid.UUID) (*model.Course, error) {
	course := &model.Course{}
	row := h.db.Instance.QueryRowContext(
		ctx,
		`SELECT * FROM select_course($1)`,
		rid,
	)

	err := row.Scan(
		&course.ID,
		&course.RID,
		&course.Name,
		&course.SourceURL,
		&course.Metadata,
		&course.CreatedAt,
		&course.UpdatedAt,
	)
	if err != nil {
		return nil, helper.NewError("scan", err)
	}

	return course, nil
}

// SelectAllCourses retrieves all courses ordered by name
func (h *CoursesDBHandler) SelectAllCourses(ctx context.Context) ([]*model.Course, error) {
	rows, err := h.db.Instance.QueryContext(ctx, `SELECT * FROM select_all_courses()`)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var courses []*model.Course
	for rows.Next() {
		course := &model.Course{}
		err := rows.Scan(
			&course.ID,
			&course.RID,
			&course.Name,
			&course.SourceURL,
			&course.Metadata,
			&course.CreatedAt,
			&course.UpdatedAt,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		courses = append(courses, course)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return courses, nil
}

// DeleteCourse deletes a course and, by cascade, its chunks
func (h *CoursesDBHandler) DeleteCourse(ctx context.Context, rid uuid.UUID) error {
	_, err := h.db.Instance.ExecContext(
		ctx,
		`SELECT delete_course($1)`,
		rid,
	)
	if err != nil {
		return helper.NewError("exec", err)
	}
	return nil
}

// DeleteAllCourses removes every course and returns how many were deleted.
func (h *CoursesDBHandler) DeleteAllCourses(ctx context.Context) (int64, error) {
	var deleted int64
	err := h.db.Instance.QueryRowContext(ctx, `SELECT delete_all_courses()`).Scan(&deleted)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return deleted, nil
}
