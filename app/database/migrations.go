package database

import (
	"database/sql"
	"fmt"

	"go.uber.org/zap"
)

type migration struct {
	name  string
	query string
}

// Every statement is idempotent and valid on postgres and sqlite3.
var migrations = []migration{
	{"create schools", `
		CREATE TABLE IF NOT EXISTS schools (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			code TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"create users", `
		CREATE TABLE IF NOT EXISTS users (
			id TEXT PRIMARY KEY,
			school_id TEXT REFERENCES schools(id),
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			phone TEXT,
			role TEXT NOT NULL,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"create classes", `
		CREATE TABLE IF NOT EXISTS classes (
			id TEXT PRIMARY KEY,
			school_id TEXT NOT NULL REFERENCES schools(id),
			name TEXT NOT NULL,
			code TEXT NOT NULL,
			teacher_id TEXT REFERENCES users(id),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"create students", `
		CREATE TABLE IF NOT EXISTS students (
			id TEXT PRIMARY KEY,
			school_id TEXT NOT NULL REFERENCES schools(id),
			admission_no TEXT NOT NULL,
			first_name TEXT NOT NULL,
			last_name TEXT NOT NULL,
			gender TEXT,
			date_of_birth DATE,
			class_id TEXT REFERENCES classes(id),
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"create attendance", `
		CREATE TABLE IF NOT EXISTS attendance (
			id TEXT PRIMARY KEY,
			school_id TEXT NOT NULL REFERENCES schools(id),
			student_id TEXT NOT NULL REFERENCES students(id),
			class_id TEXT REFERENCES classes(id),
			date DATE NOT NULL,
			status TEXT NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`},
	{"create fee_types", `
		CREATE TABLE IF NOT EXISTS fee_types (
			id TEXT PRIMARY KEY,
			school_id TEXT NOT NULL REFERENCES schools(id),
			name TEXT NOT NULL,
			code TEXT NOT NULL
		)`},
	{"create fees", `
		CREATE TABLE IF NOT EXISTS fees (
			id TEXT PRIMARY KEY,
			school_id TEXT NOT NULL REFERENCES schools(id),
			student_id TEXT NOT NULL REFERENCES students(id),
			fee_type_id TEXT REFERENCES fee_types(id),
			title TEXT NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			balance NUMERIC(12,2) NOT NULL,
			currency TEXT NOT NULL DEFAULT 'UGX',
			paid BOOLEAN NOT NULL DEFAULT FALSE,
			due_date DATE NOT NULL,
			paid_at TIMESTAMP
		)`},
	{"create payments", `
		CREATE TABLE IF NOT EXISTS payments (
			id TEXT PRIMARY KEY,
			school_id TEXT NOT NULL REFERENCES schools(id),
			student_id TEXT NOT NULL REFERENCES students(id),
			reference TEXT NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			method TEXT NOT NULL,
			status TEXT NOT NULL,
			paid_at TIMESTAMP NOT NULL
		)`},
	{"create expenses", `
		CREATE TABLE IF NOT EXISTS expenses (
			id TEXT PRIMARY KEY,
			school_id TEXT NOT NULL REFERENCES schools(id),
			title TEXT NOT NULL,
			category TEXT NOT NULL,
			amount NUMERIC(12,2) NOT NULL,
			currency TEXT NOT NULL DEFAULT 'UGX',
			date DATE NOT NULL,
			notes TEXT
		)`},
	{"index students by school", `CREATE INDEX IF NOT EXISTS idx_students_school ON students (school_id)`},
	{"index attendance by date", `CREATE INDEX IF NOT EXISTS idx_attendance_date ON attendance (school_id, date)`},
	{"index fees by student", `CREATE INDEX IF NOT EXISTS idx_fees_student ON fees (student_id)`},
}

// RunMigrations creates any missing tables and indexes.
func RunMigrations(db *sql.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Info("Running database migrations...")

	for _, m := range migrations {
		if _, err := db.Exec(m.query); err != nil {
			logger.Error("Migration failed", zap.String("migration", m.name), zap.Error(err))
			return fmt.Errorf("migration %q: %w", m.name, err)
		}
		logger.Debug("Migration applied", zap.String("migration", m.name))
	}

	logger.Info("Database migrations completed successfully", zap.Int("count", len(migrations)))
	return nil
}
