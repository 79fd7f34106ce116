package testutil

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"testing"

	"github.com/xxxsen/advisor/internal/config"
	"github.com/xxxsen/advisor/internal/db"
)

// OpenTestDB connects to the postgres instance named by TEST_DB_HOST, applies
// migrations and empties the advising tables. The test is skipped when the
// variable is unset.
func OpenTestDB(t *testing.T) (*sql.DB, func()) {
	t.Helper()
	host := os.Getenv("TEST_DB_HOST")
	if host == "" {
		t.Skip("TEST_DB_HOST not set, skipping postgres test")
	}
	conn, err := db.Open(config.DatabaseConfig{
		Host:     host,
		Port:     5432,
		User:     "advisor",
		Password: "advisor_pass",
		DBName:   "advisor_test",
		SSLMode:  "disable",
	})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.ApplyMigrations(context.Background(), conn); err != nil {
		t.Fatalf("migrations: %v", err)
	}
	tables := []string{
		"planned_courses", "student_course_history", "course_prerequisites", "degree_requirement_categories",
		"students", "courses", "degree_programs", "admins", "bulletins", "supporting_documents",
	}
	if _, err := conn.Exec("TRUNCATE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE"); err != nil {
		t.Fatalf("truncate: %v", err)
	}
	return conn, func() {
		_ = conn.Close()
	}
}

// MustExec runs seed statements and fails the test on the first error.
func MustExec(t *testing.T, conn *sql.DB, stmts ...string) {
	t.Helper()
	for _, stmt := range stmts {
		if _, err := conn.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
}
