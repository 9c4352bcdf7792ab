package ingest

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/garyellow/ntpu-course-master/internal/catalog"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

// coursesQuery reads the dataset table in insertion order.
const coursesQuery = "SELECT * FROM courses ORDER BY rowid"

func loadSQLite(ctx context.Context, path string) ([]string, []catalog.Course, error) {
	conn, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, coursesQuery)
	if err != nil {
		return nil, nil, fmt.Errorf("query courses: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, nil, fmt.Errorf("read columns: %w", err)
	}

	values := make([]any, len(columns))
	dest := make([]any, len(columns))
	for i := range values {
		dest[i] = &values[i]
	}

	var courses []catalog.Course
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return nil, nil, fmt.Errorf("scan course: %w", err)
		}
		var c catalog.Course
		for i, name := range columns {
			c.Set(name, catalog.FieldOf(values[i]))
		}
		courses = append(courses, c)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("iterate courses: %w", err)
	}
	return columns, courses, nil
}
