package database

import (
	"database/sql"
	"fmt"

	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
)

// Sources maps resource names to their data sources.
type Sources map[string]listing.DataSource

// Get returns the source registered for name.
func (s Sources) Get(name string) (listing.DataSource, bool) {
	src, ok := s[name]
	return src, ok
}

// NewSources registers a SQL source for every table-backed resource and a fixture
// source for the rest.
func NewSources(db *sql.DB) (Sources, error) {
	sources := make(Sources, len(resourceQueries)+len(fixtureResources))
	for name, query := range resourceQueries {
		sources[name] = &SQLSource{DB: db, Query: query}
	}
	for _, name := range fixtureResources {
		f, err := LoadFixture(name)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		sources[name] = f
	}
	return sources, nil
}

// The queries run unchanged on postgres and sqlite3.
var resourceQueries = map[string]string{
	"students": `
		SELECT s.id, s.school_id, s.admission_no, s.first_name, s.last_name,
			s.first_name || ' ' || s.last_name AS full_name,
			s.gender, s.date_of_birth,
			CASE WHEN s.is_active THEN 'active' ELSE 'inactive' END AS status,
			c.id AS "class.id", c.name AS "class.name", c.code AS "class.code",
			s.created_at
		FROM students s
		LEFT JOIN classes c ON s.class_id = c.id
		ORDER BY s.first_name, s.last_name`,

	"teachers": `
		SELECT u.id, u.school_id, u.first_name, u.last_name,
			u.first_name || ' ' || u.last_name AS full_name,
			u.email, u.phone,
			CASE WHEN u.is_active THEN 'active' ELSE 'inactive' END AS status,
			(SELECT COUNT(*) FROM classes c WHERE c.teacher_id = u.id) AS class_count,
			u.created_at
		FROM users u
		WHERE u.role = 'teacher'
		ORDER BY u.first_name, u.last_name`,

	"classes": `
		SELECT c.id, c.school_id, c.name, c.code,
			CASE WHEN c.is_active THEN 'active' ELSE 'inactive' END AS status,
			t.id AS "teacher.id", t.first_name || ' ' || t.last_name AS "teacher.name",
			(SELECT COUNT(*) FROM students s WHERE s.class_id = c.id AND s.is_active) AS student_count
		FROM classes c
		LEFT JOIN users t ON c.teacher_id = t.id
		ORDER BY c.name`,

	"attendance": `
		SELECT a.id, a.school_id, a.date, a.status,
			s.id AS "student.id", s.admission_no AS "student.admission_no",
			s.first_name || ' ' || s.last_name AS "student.name",
			c.id AS "class.id", c.name AS "class.name"
		FROM attendance a
		JOIN students s ON a.student_id = s.id
		LEFT JOIN classes c ON a.class_id = c.id
		ORDER BY a.date DESC, s.first_name, s.last_name`,

	"fees": `
		SELECT f.id, f.school_id, f.title, f.amount, f.balance,
			f.amount - f.balance AS paid_amount, f.currency,
			CASE WHEN f.paid THEN 'paid' WHEN f.balance < f.amount THEN 'partial' ELSE 'unpaid' END AS status,
			f.due_date, f.paid_at,
			s.id AS "student.id", s.admission_no AS "student.admission_no",
			s.first_name || ' ' || s.last_name AS "student.name",
			ft.id AS "fee_type.id", ft.name AS "fee_type.name", ft.code AS "fee_type.code",
			c.id AS "class.id", c.name AS "class.name"
		FROM fees f
		JOIN students s ON f.student_id = s.id
		LEFT JOIN fee_types ft ON f.fee_type_id = ft.id
		LEFT JOIN classes c ON s.class_id = c.id
		ORDER BY f.due_date DESC, s.first_name`,

	"payments": `
		SELECT p.id, p.school_id, p.reference, p.amount, p.method, p.status, p.paid_at,
			s.id AS "student.id", s.admission_no AS "student.admission_no",
			s.first_name || ' ' || s.last_name AS "student.name"
		FROM payments p
		JOIN students s ON p.student_id = s.id
		ORDER BY p.paid_at DESC`,

	"expenses": `
		SELECT e.id, e.school_id, e.title, e.category, e.amount, e.currency, e.date, e.notes
		FROM expenses e
		ORDER BY e.date DESC, e.title`,
}
