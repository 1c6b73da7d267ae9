package listing

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	isActive := func(r Record) bool { return r["status"] == "active" }
	spec := Spec{
		{Key: "total", Reducer: Count()},
		{Key: "active", Reducer: CountWhere(isActive)},
		{Key: "rate", Reducer: Rate("active", "total")},
	}

	t.Run("two record scenario", func(t *testing.T) {
		records := []Record{{"name": "Alice", "status": "active"}, {"name": "Bob", "status": "inactive"}}
		assert.Equal(t, Stats{"total": 2, "active": 1, "rate": 0.5}, Aggregate(records, spec))
	})

	t.Run("empty collection yields zeros", func(t *testing.T) {
		stats := Aggregate(nil, append(spec,
			Stat{Key: "amount", Reducer: Sum(Field("amount"))},
			Stat{Key: "avg", Reducer: Average(Field("amount"))},
		))
		for key, v := range stats {
			assert.False(t, math.IsNaN(v), key)
			assert.Zero(t, v, key)
		}
		assert.Len(t, stats, 5)
	})

	t.Run("idempotent", func(t *testing.T) {
		records := people()
		assert.Equal(t, Aggregate(records, spec), Aggregate(records, spec))
	})

	t.Run("sum coerces values", func(t *testing.T) {
		records := []Record{
			{"amount": int64(150000)},
			{"amount": 0.1},
			{"amount": 0.2},
			{"amount": "2500.50"},
			{"amount": []byte("99.40")},
			{"amount": "n/a"},
			{"amount": math.NaN()},
			{"amount": math.Inf(1)},
			{"amount": true},
			{},
		}
		stats := Aggregate(records, Spec{{Key: "amount", Reducer: Sum(Field("amount"))}})
		assert.Equal(t, 152600.2, stats["amount"])
	})

	t.Run("average skips missing values", func(t *testing.T) {
		records := []Record{{"score": 80}, {"score": 90}, {"score": nil}, {}}
		stats := Aggregate(records, Spec{{Key: "avg", Reducer: Average(Field("score"))}})
		assert.Equal(t, 85.0, stats["avg"])
	})

	t.Run("rate over zero denominator", func(t *testing.T) {
		stats := Aggregate([]Record{{"status": "inactive"}}, Spec{
			{Key: "active", Reducer: CountWhere(isActive)},
			{Key: "zero", Reducer: CountWhere(func(Record) bool { return false })},
			{Key: "rate", Reducer: Rate("active", "zero")},
			{Key: "missing", Reducer: Rate("active", "nope")},
		})
		assert.Equal(t, 0.0, stats["rate"])
		assert.Equal(t, 0.0, stats["missing"])
	})

	t.Run("nested fields", func(t *testing.T) {
		records := []Record{
			{"fee_type": map[string]any{"amount": 100}},
			{"fee_type": map[string]any{"amount": 250}},
			{"fee_type": nil},
		}
		stats := Aggregate(records, Spec{{Key: "billed", Reducer: Sum(Field("fee_type.amount"))}})
		assert.Equal(t, 350.0, stats["billed"])
	})
}

func TestScope(t *testing.T) {
	all := []Record{{"a": 1}, {"a": 2}}
	filtered := all[:1]

	s, err := ParseScope("", ScopeFiltered)
	require.NoError(t, err)
	assert.Equal(t, ScopeFiltered, s)
	assert.Len(t, s.Select(all, filtered), 1)

	s, err = ParseScope("all", ScopeFiltered)
	require.NoError(t, err)
	assert.Len(t, s.Select(all, filtered), 2)

	_, err = ParseScope("everything", ScopeAll)
	assert.Error(t, err)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 66.7, Percent(2.0/3.0))
	assert.Equal(t, 0.0, Percent(math.NaN()))
	assert.Equal(t, 100.0, Percent(1))
}
