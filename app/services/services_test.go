package services

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const reportResources = `
resources:
  - name: attendance
    title: Attendance
    roles: [school_admin]
    search: [student]
    export:
      filename: attendance
      scheduled: true
      columns:
        - {name: Student, field: student}
        - {name: Status, field: status}
  - name: fees
    title: Fees
    roles: [school_admin]
    search: [title]
    export: {filename: fees, scheduled: true, columns: [{name: Fee, field: title}]}
  - name: classes
    title: Classes
    roles: [school_admin]
    search: [name]
    export: {filename: classes, columns: [{name: Class, field: name}]}
`

func newReporter(t *testing.T, sources database.Sources) *Reporter {
	t.Helper()
	defs, err := listing.LoadDefinitions([]byte(reportResources))
	require.NoError(t, err)
	return &Reporter{Defs: defs, Sources: sources, Dir: filepath.Join(t.TempDir(), "reports")}
}

func TestGenerateDailyReports(t *testing.T) {
	r := newReporter(t, database.Sources{
		"attendance": listing.StaticSource{
			{"student": "Amina Nakato", "status": "present"},
			{"student": "Okello, Brian", "status": nil},
		},
		"fees": listing.StaticSource{},
	})
	day := time.Date(2025, 3, 14, 2, 0, 0, 0, time.Local)

	written, err := r.GenerateDailyReports(context.Background(), day)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		filepath.Join(r.Dir, "attendance_2025-03-14.csv"),
		filepath.Join(r.Dir, "fees_2025-03-14.csv"),
	}, written)

	data, err := os.ReadFile(filepath.Join(r.Dir, "attendance_2025-03-14.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Student,Status\nAmina Nakato,present\n\"Okello, Brian\",\n", string(data))

	data, err = os.ReadFile(filepath.Join(r.Dir, "fees_2025-03-14.csv"))
	require.NoError(t, err)
	assert.Equal(t, "Fee\n", string(data))

	again, err := r.GenerateDailyReports(context.Background(), day)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestGenerateDailyReportsMissingSource(t *testing.T) {
	r := newReporter(t, database.Sources{"fees": listing.StaticSource{}})

	written, err := r.GenerateDailyReports(context.Background(), time.Now())
	assert.Error(t, err)
	assert.Len(t, written, 1)
}

func TestSchedulerRunsOncePerDay(t *testing.T) {
	now := time.Now()
	var runs atomic.Int32
	s := &Scheduler{
		Hour:     now.Hour(),
		Minute:   now.Minute(),
		Interval: 5 * time.Millisecond,
		Task: func(ctx context.Context, at time.Time) error {
			runs.Add(1)
			return nil
		},
	}
	if time.Now().Add(1500*time.Millisecond).Minute() != now.Minute() {
		t.Skip("too close to a minute boundary")
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := s.Start(ctx)
	require.Eventually(t, func() bool { return runs.Load() == 1 }, time.Second, 5*time.Millisecond)
	time.Sleep(30 * time.Millisecond)
	cancel()
	<-done
	assert.Equal(t, int32(1), runs.Load())
}
