package sql

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
)

//go:embed init.sql
var initSQL string

//go:embed courses.sql
var coursesSQL string

//go:embed chunks.sql
var chunksSQL string

// Function lists for verification
var CoursesFunctions = []string{
	"init_courses",
	"upsert_course",
	"select_course",
	"select_all_courses",
	"delete_course",
	"delete_all_courses",
}

var ChunksFunctions = []string{
	"init_chunks",
	"insert_chunk",
	"select_chunk",
	"select_chunks_by_course",
	"select_chunks_by_similarity",
	"count_chunks",
	"delete_chunk",
	"delete_all_chunks",
}

// Init intializes db extensions
func Init(db *sql.DB) error {
	_, err := db.Exec(initSQL)
	if err != nil {
		return fmt.Errorf("error executing schema SQL: %w", err)
	}

	slog.Debug("database extensions initialized")
	return nil
}

// LoadCoursesSql loads course-related SQL functions
func LoadCoursesSql(db *sql.DB, force bool) error {
	return loadSql(db, "courses", coursesSQL, CoursesFunctions, force)
}

// LoadChunksSql loads chunk-related SQL functions
func LoadChunksSql(db *sql.DB, force bool) error {
	return loadSql(db, "chunks", chunksSQL, ChunksFunctions, force)
}

// LoadAllSql loads all SQL functions. Courses come first since chunks reference them.
func LoadAllSql(db *sql.DB, force bool) error {
	if err := LoadCoursesSql(db, force); err != nil {
		return err
	}

	if err := LoadChunksSql(db, force); err != nil {
		return err
	}

	return nil
}

func loadSql(db *sql.DB, name string, script string, functions []string, force bool) error {
	if !force {
		exist, err := checkFunctions(db, functions)
		if err != nil {
			return fmt.Errorf("error checking existing %s functions: %w", name, err)
		}
		if exist {
			return nil
		}
	}

	_, err := db.Exec(script)
	if err != nil {
		return fmt.Errorf("error executing %s SQL: %w", name, err)
	}

	exist, err := checkFunctions(db, functions)
	if err != nil {
		return fmt.Errorf("error checking existing functions: %w", err)
	}
	if !exist {
		return fmt.Errorf("not all required %s SQL functions were created", name)
	}

	slog.Debug("SQL functions loaded", slog.String("group", name))
	return nil
}

// checkFunctions verifies that all required functions exist in the database
func checkFunctions(db *sql.DB, sqlFunctions []string) (bool, error) {
	var allExist bool
	for _, f := range sqlFunctions {
		err := db.QueryRow(
			`SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);`,
			f,
		).Scan(&allExist)
		if err != nil {
			return false, fmt.Errorf("error checking existence of function %s: %w", f, err)
		}
		if !allExist {
			slog.Debug("function does not exist", slog.String("function", f))
			break
		}
	}
	return allExist, nil
}
