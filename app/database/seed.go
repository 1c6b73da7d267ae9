package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/neptgadgets/school-nexus-final-sub000/app/models"
	"go.uber.org/zap"
)

// DemoPassword is the password of every seeded account.
const DemoPassword = "password123"

// DemoID derives a stable id for seeded rows, so bundled fixtures can refer to them.
func DemoID(kind, key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("school-nexus:"+kind+":"+key)).String()
}

type demoClass struct {
	code, name, teacher string
}

type demoStudent struct {
	admission, first, last string
	gender                 models.Gender
	class                  string
	born                   time.Time
	active                 bool
}

// SeedDemoData fills an empty database with two schools worth of sample data. It is a
// no-op when the demo school already exists.
func SeedDemoData(db *sql.DB, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	school := DemoID("school", "KHP")
	var exists int
	if err := db.QueryRow(`SELECT COUNT(*) FROM schools WHERE id = $1`, school).Scan(&exists); err != nil {
		return fmt.Errorf("check demo school: %w", err)
	}
	if exists > 0 {
		logger.Info("Demo data already present, skipping seed")
		return nil
	}

	hash, err := HashPassword(DemoPassword)
	if err != nil {
		return fmt.Errorf("hash demo password: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	s := &seeder{tx: tx, hash: hash}
	s.school("KHP", "Kampala Hill Primary School")
	s.school("LJS", "Lakeview Junior School")

	s.user("", "super@nexus.test", "Platform", "Admin", models.SuperAdmin)
	s.user("KHP", "admin@kampalahill.test", "Grace", "Nalwoga", models.SchoolAdmin)
	s.user("KHP", "s.namusoke@kampalahill.test", "Sarah", "Namusoke", models.Teacher)
	s.user("KHP", "p.ssempa@kampalahill.test", "Peter", "Ssempa", models.Teacher)
	s.user("KHP", "j.akello@kampalahill.test", "Joan", "Akello", models.Teacher)
	s.user("LJS", "admin@lakeview.test", "Moses", "Kato", models.SchoolAdmin)
	s.user("LJS", "r.nabirye@lakeview.test", "Ruth", "Nabirye", models.Teacher)

	for _, c := range []demoClass{
		{"P5", "Primary Five", "p.ssempa@kampalahill.test"},
		{"P6", "Primary Six", "s.namusoke@kampalahill.test"},
		{"P7", "Primary Seven", "j.akello@kampalahill.test"},
	} {
		s.class("KHP", c)
	}
	s.class("LJS", demoClass{"P1", "Primary One", "r.nabirye@lakeview.test"})

	born := func(y int, m time.Month, d int) time.Time { return time.Date(y, m, d, 0, 0, 0, 0, time.UTC) }
	khp := []demoStudent{
		{"KHP/2025/001", "Amina", "Nakato", "female", "P6", born(2013, 4, 2), true},
		{"KHP/2025/002", "Brian", "Okello", "male", "P6", born(2013, 9, 18), true},
		{"KHP/2025/003", "Daniel", "Mugisha", "male", "P7", born(2012, 1, 7), true},
		{"KHP/2025/004", "Esther", "Auma", "female", "P7", born(2012, 6, 25), true},
		{"KHP/2025/005", "Faith", "Namubiru", "female", "P5", born(2014, 11, 3), true},
		{"KHP/2025/006", "Isaac", "Wasswa", "male", "P5", born(2014, 2, 14), false},
		{"KHP/2025/007", "Joel", "Kizza", "male", "", born(2013, 8, 30), true},
	}
	for _, st := range khp {
		s.student("KHP", st)
	}
	s.student("LJS", demoStudent{"LJS/2025/001", "Hope", "Nansubuga", "female", "P1", born(2019, 3, 12), true})

	today := time.Now().UTC().Truncate(24 * time.Hour)
	statuses := []models.AttendanceStatus{models.Present, models.Present, models.Late, models.Absent, models.Present, models.Excused}
	for i, st := range khp {
		if st.class == "" || !st.active {
			continue
		}
		s.attendance("KHP", st, today, string(statuses[i%len(statuses)]))
	}

	tuition := s.feeType("KHP", "TUITION", "Tuition")
	transport := s.feeType("KHP", "TRANSPORT", "Transport")
	due := today.AddDate(0, 0, 14)
	s.fee("KHP", khp[0], tuition, "Term 1 Tuition", "850000.00", "0.00", due)
	s.fee("KHP", khp[1], tuition, "Term 1 Tuition", "850000.00", "350000.00", due)
	s.fee("KHP", khp[2], tuition, "Term 1 Tuition", "950000.00", "950000.00", due)
	s.fee("KHP", khp[3], tuition, "Term 1 Tuition", "950000.00", "0.00", due)
	s.fee("KHP", khp[0], transport, "Term 1 Transport", "150000.50", "150000.50", due)
	s.fee("LJS", demoStudent{admission: "LJS/2025/001"}, s.feeType("LJS", "TUITION", "Tuition"), "Term 1 Tuition", "600000.00", "600000.00", due)

	s.payment("KHP", khp[0], "MM-240301-001", "850000.00", models.MobileMoney, models.PaymentCompleted, today.Add(-72*time.Hour))
	s.payment("KHP", khp[1], "BK-240302-014", "500000.00", models.BankTransfer, models.PaymentCompleted, today.Add(-48*time.Hour))
	s.payment("KHP", khp[3], "CS-240303-002", "950000.00", models.Cash, models.PaymentCompleted, today.Add(-24*time.Hour))
	s.payment("KHP", khp[2], "MM-240304-019", "200000.00", models.MobileMoney, models.PaymentFailed, today.Add(-2*time.Hour))

	s.expense("KHP", "Exercise books", "stationery", "420000.00", today.AddDate(0, 0, -5), "Bulk order for P5 to P7")
	s.expense("KHP", "Electricity", "utilities", "310500.00", today.AddDate(0, 0, -3), "")
	s.expense("KHP", "Football kits", "sports", "275000.00", today.AddDate(0, 0, -1), "Inter-house games")
	s.expense("LJS", "Water", "utilities", "98000.00", today.AddDate(0, 0, -2), "")

	if s.err != nil {
		return s.err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit demo data: %w", err)
	}
	logger.Info("Demo data seeded", zap.String("school_id", school), zap.Int("students", len(khp)+1))
	return nil
}

// seeder runs inserts until the first error, which it keeps.
type seeder struct {
	tx   *sql.Tx
	hash string
	err  error
}

func (s *seeder) exec(what, query string, args ...any) {
	if s.err != nil {
		return
	}
	if _, err := s.tx.Exec(query, args...); err != nil {
		s.err = fmt.Errorf("seed %s: %w", what, err)
	}
}

func (s *seeder) school(code, name string) {
	s.exec("school", `INSERT INTO schools (id, name, code, created_at) VALUES ($1, $2, $3, $4)`,
		DemoID("school", code), name, code, time.Now().UTC())
}

func (s *seeder) user(school, email, first, last string, role models.Role) {
	var schoolID any
	if school != "" {
		schoolID = DemoID("school", school)
	}
	now := time.Now().UTC()
	s.exec("user", `INSERT INTO users (id, school_id, email, password, first_name, last_name, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		DemoID("user", email), schoolID, email, s.hash, first, last, string(role), true, now, now)
}

func (s *seeder) class(school string, c demoClass) {
	s.exec("class", `INSERT INTO classes (id, school_id, name, code, teacher_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		DemoID("class", school+"/"+c.code), DemoID("school", school), c.name, c.code,
		DemoID("user", c.teacher), true, time.Now().UTC())
}

func (s *seeder) student(school string, st demoStudent) {
	var classID any
	if st.class != "" {
		classID = DemoID("class", school+"/"+st.class)
	}
	s.exec("student", `INSERT INTO students (id, school_id, admission_no, first_name, last_name, gender, date_of_birth, class_id, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		DemoID("student", st.admission), DemoID("school", school), st.admission, st.first, st.last,
		string(st.gender), st.born, classID, st.active, time.Now().UTC())
}

func (s *seeder) attendance(school string, st demoStudent, date time.Time, status string) {
	s.exec("attendance", `INSERT INTO attendance (id, school_id, student_id, class_id, date, status, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.NewString(), DemoID("school", school), DemoID("student", st.admission),
		DemoID("class", school+"/"+st.class), date, status, time.Now().UTC())
}

func (s *seeder) feeType(school, code, name string) string {
	id := DemoID("fee_type", school+"/"+code)
	s.exec("fee type", `INSERT INTO fee_types (id, school_id, name, code) VALUES ($1, $2, $3, $4)`,
		id, DemoID("school", school), name, code)
	return id
}

func (s *seeder) fee(school string, st demoStudent, feeType, title, amount, balance string, due time.Time) {
	paid := balance == "0.00"
	var paidAt any
	if paid {
		paidAt = time.Now().UTC()
	}
	s.exec("fee", `INSERT INTO fees (id, school_id, student_id, fee_type_id, title, amount, balance, currency, paid, due_date, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		uuid.NewString(), DemoID("school", school), DemoID("student", st.admission), feeType,
		title, amount, balance, "UGX", paid, due, paidAt)
}

func (s *seeder) payment(school string, st demoStudent, ref, amount string, method models.PaymentMethod, status models.PaymentStatus, at time.Time) {
	s.exec("payment", `INSERT INTO payments (id, school_id, student_id, reference, amount, method, status, paid_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.NewString(), DemoID("school", school), DemoID("student", st.admission), ref, amount, string(method), string(status), at)
}

func (s *seeder) expense(school, title, category, amount string, date time.Time, notes string) {
	var n any
	if notes != "" {
		n = notes
	}
	s.exec("expense", `INSERT INTO expenses (id, school_id, title, category, amount, currency, date, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		uuid.NewString(), DemoID("school", school), title, category, amount, "UGX", date, n)
}
