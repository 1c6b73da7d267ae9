package dashboard

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
	"github.com/neptgadgets/school-nexus-final-sub000/app/models"
	"github.com/neptgadgets/school-nexus-final-sub000/app/routes/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSources(now time.Time) database.Sources {
	lastMonth := now.AddDate(0, -1, 0)
	return database.Sources{
		"students": listing.StaticSource{
			{"school_id": "s1", "status": "active"},
			{"school_id": "s1", "status": "inactive"},
			{"school_id": "s2", "status": "active"},
		},
		"teachers": listing.StaticSource{{"school_id": "s1"}, {"school_id": "s2"}},
		"classes":  listing.StaticSource{{"school_id": "s1"}},
		"attendance": listing.StaticSource{
			{"school_id": "s1", "status": "present"},
			{"school_id": "s1", "status": models.Late},
			{"school_id": "s1", "status": "absent"},
		},
		"fees": listing.StaticSource{
			{"school_id": "s1", "amount": "850000.00", "paid_amount": "500000.00", "balance": "350000.00"},
			{"school_id": "s1", "amount": int64(150000), "paid_amount": int64(0), "balance": int64(150000)},
			{"school_id": "s2", "amount": 600000.0, "paid_amount": 600000.0, "balance": 0.0},
		},
		"payments": listing.StaticSource{
			{"school_id": "s1", "status": "completed", "amount": "500000.00", "paid_at": now},
			{"school_id": "s1", "status": "failed", "amount": "100000.00", "paid_at": now},
			{"school_id": "s1", "status": "completed", "amount": "900000.00", "paid_at": lastMonth},
		},
		"expenses": listing.StaticSource{
			{"school_id": "s1", "amount": 120000.5, "date": now},
			{"school_id": "s1", "amount": 999.0, "date": lastMonth},
			{"school_id": "s1", "amount": 5.0, "date": nil},
		},
	}
}

func TestComputeStats(t *testing.T) {
	now := time.Now()
	sources := testSources(now)

	stats, err := ComputeStats(context.Background(), sources, "s1", false, now)
	require.NoError(t, err)
	assert.Equal(t, &models.DashboardStats{
		TotalStudents:     2,
		ActiveStudents:    1,
		TotalTeachers:     1,
		TotalClasses:      1,
		FeesBilled:        1000000,
		FeesCollected:     500000,
		FeesOutstanding:   500000,
		MonthlyRevenue:    500000,
		MonthlyExpenses:   120000.5,
		StudentAttendance: 66.7,
		FeeCollectionRate: 50,
	}, stats)

	all, err := ComputeStats(context.Background(), sources, "", true, now)
	require.NoError(t, err)
	assert.Equal(t, 3, all.TotalStudents)
	assert.Equal(t, 2, all.TotalTeachers)
	assert.Equal(t, 1600000.0, all.FeesBilled)

	empty, err := ComputeStats(context.Background(), sources, "s9", false, now)
	require.NoError(t, err)
	assert.Zero(t, empty.StudentAttendance)
	assert.Zero(t, empty.FeeCollectionRate)

	orphan, err := ComputeStats(context.Background(), sources, "", false, now)
	require.NoError(t, err)
	assert.Equal(t, &models.DashboardStats{}, orphan)

	delete(sources, "expenses")
	_, err = ComputeStats(context.Background(), sources, "s1", false, now)
	assert.Error(t, err)
}

func TestDashboardStatsAPI(t *testing.T) {
	app := fiber.New()
	SetupDashboardRoutes(app, testSources(time.Now()), nil)

	call := func(role models.Role, school string) (int, map[string]any) {
		user := &models.User{ID: "u1", Email: "a@b.test", Role: role}
		if school != "" {
			user.SchoolID = &school
		}
		token, err := auth.GenerateJWT(user)
		require.NoError(t, err)
		req := httptest.NewRequest("GET", "/api/dashboard/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		resp, err := app.Test(req, -1)
		require.NoError(t, err)
		defer resp.Body.Close()
		var out map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		return resp.StatusCode, out
	}

	status, out := call(models.SchoolAdmin, "s1")
	require.Equal(t, 200, status)
	data := out["data"].(map[string]any)
	assert.Equal(t, 2.0, data["total_students"])
	assert.Equal(t, 50.0, data["fee_collection_rate"])

	status, _ = call(models.Teacher, "s1")
	assert.Equal(t, 403, status)

	status, out = call(models.SchoolAdmin, "")
	assert.Equal(t, 403, status)
	assert.Nil(t, out["data"])

	status, out = call(models.SuperAdmin, "")
	require.Equal(t, 200, status)
	data = out["data"].(map[string]any)
	assert.Equal(t, 3.0, data["total_students"])
}
