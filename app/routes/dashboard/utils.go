package dashboard

import (
	"context"
	"fmt"
	"time"

	"github.com/neptgadgets/school-nexus-final-sub000/app/database"
	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
	"github.com/neptgadgets/school-nexus-final-sub000/app/models"
)

var (
	status  = listing.Field("status")
	amount  = listing.Field("amount")
	paidAt  = listing.Field("paid_at")
	spentOn = listing.Field("date")
)

// ComputeStats summarises one school, or every school when allSchools is set. Without
// allSchools an empty tenant matches nothing.
func ComputeStats(ctx context.Context, sources database.Sources, tenant string, allSchools bool, now time.Time) (*models.DashboardStats, error) {
	if !allSchools && tenant == "" {
		return &models.DashboardStats{}, nil
	}
	expected := any(tenant)
	if allSchools {
		expected = listing.All
	}
	school := listing.Predicate{Categories: []listing.Categorical{
		{Name: "tenant", Value: listing.Field("school_id"), Expected: expected},
	}}

	load := func(name string) ([]listing.Record, error) {
		src, ok := sources.Get(name)
		if !ok {
			return nil, fmt.Errorf("no data source for %s", name)
		}
		records, err := src.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		return listing.Filter(records, school), nil
	}

	collections := map[string][]listing.Record{}
	for _, name := range []string{"students", "teachers", "classes", "attendance", "fees", "payments", "expenses"} {
		records, err := load(name)
		if err != nil {
			return nil, err
		}
		collections[name] = records
	}

	students := listing.Aggregate(collections["students"], listing.Spec{
		{Key: "total", Reducer: listing.Count()},
		{Key: "active", Reducer: listing.CountWhere(is(status, "active"))},
	})
	attendance := listing.Aggregate(collections["attendance"], listing.Spec{
		{Key: "total", Reducer: listing.Count()},
		{Key: "attended", Reducer: listing.CountWhere(is(status, string(models.Present), string(models.Late)))},
		{Key: "rate", Reducer: listing.Rate("attended", "total")},
	})
	fees := listing.Aggregate(collections["fees"], listing.Spec{
		{Key: "billed", Reducer: listing.Sum(amount)},
		{Key: "collected", Reducer: listing.Sum(listing.Field("paid_amount"))},
		{Key: "outstanding", Reducer: listing.Sum(listing.Field("balance"))},
		{Key: "rate", Reducer: listing.Rate("collected", "billed")},
	})
	revenue := listing.Aggregate(
		listing.Filter(collections["payments"], listing.Predicate{Categories: []listing.Categorical{
			{Name: "status", Value: status, Expected: string(models.PaymentCompleted)},
			{Name: "month", Value: month(paidAt), Expected: now.Format("2006-01")},
		}}),
		listing.Spec{{Key: "amount", Reducer: listing.Sum(amount)}},
	)
	expenses := listing.Aggregate(
		listing.Filter(collections["expenses"], listing.Predicate{Categories: []listing.Categorical{
			{Name: "month", Value: month(spentOn), Expected: now.Format("2006-01")},
		}}),
		listing.Spec{{Key: "amount", Reducer: listing.Sum(amount)}},
	)

	return &models.DashboardStats{
		TotalStudents:     int(students["total"]),
		ActiveStudents:    int(students["active"]),
		TotalTeachers:     len(collections["teachers"]),
		TotalClasses:      len(collections["classes"]),
		FeesBilled:        fees["billed"],
		FeesCollected:     fees["collected"],
		FeesOutstanding:   fees["outstanding"],
		MonthlyRevenue:    revenue["amount"],
		MonthlyExpenses:   expenses["amount"],
		StudentAttendance: listing.Percent(attendance["rate"]),
		FeeCollectionRate: listing.Percent(fees["rate"]),
	}, nil
}

// is matches records whose field equals any of values, with the same equality the
// list filters use.
func is(field listing.Accessor, values ...string) func(listing.Record) bool {
	preds := make([]listing.Predicate, len(values))
	for i, v := range values {
		preds[i] = listing.Predicate{Categories: []listing.Categorical{{Name: "status", Value: field, Expected: v}}}
	}
	return func(r listing.Record) bool {
		for _, p := range preds {
			if p.Match(r) {
				return true
			}
		}
		return false
	}
}

// month reads a time field as "YYYY-MM" in local time, or nil.
func month(field listing.Accessor) listing.Accessor {
	return func(r listing.Record) any {
		t, ok := field(r).(time.Time)
		if !ok {
			return nil
		}
		return t.In(time.Local).Format("2006-01")
	}
}
