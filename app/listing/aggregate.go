package listing

import (
	"fmt"
	"math"
	"math/big"
	"reflect"

	"github.com/shopspring/decimal"
)

// Scope selects which collection a stats block is computed over.
type Scope string

const (
	ScopeAll      Scope = "all"
	ScopeFiltered Scope = "filtered"
)

// ParseScope accepts "all", "filtered" or empty (which means fallback).
func ParseScope(s string, fallback Scope) (Scope, error) {
	switch Scope(s) {
	case "":
		return fallback, nil
	case ScopeAll, ScopeFiltered:
		return Scope(s), nil
	}
	return "", fmt.Errorf("unknown stats scope %q", s)
}

// Select returns all for ScopeAll and filtered otherwise.
func (s Scope) Select(all, filtered []Record) []Record {
	if s == ScopeAll {
		return all
	}
	return filtered
}

type reducerKind int

const (
	reduceCount reducerKind = iota
	reduceSum
	reduceAvg
	reduceRate
)

// Reducer collapses a record collection into one number.
type Reducer struct {
	kind        reducerKind
	where       func(Record) bool
	field       Accessor
	numerator   string
	denominator string
}

// Count counts every record.
func Count() Reducer {
	return Reducer{kind: reduceCount}
}

// CountWhere counts the records satisfying where.
func CountWhere(where func(Record) bool) Reducer {
	return Reducer{kind: reduceCount, where: where}
}

// Sum adds up a numeric field. Missing and non-numeric values count as 0.
func Sum(field Accessor) Reducer {
	return Reducer{kind: reduceSum, field: field}
}

// Average is the mean of a numeric field over the records where it is present.
func Average(field Accessor) Reducer {
	return Reducer{kind: reduceAvg, field: field}
}

// Rate divides the value of one key by another. It is 0 when the denominator is not
// positive. The result is a ratio; callers scale it for display.
func Rate(numerator, denominator string) Reducer {
	return Reducer{kind: reduceRate, numerator: numerator, denominator: denominator}
}

// Stat names one reducer output.
type Stat struct {
	Key     string
	Reducer Reducer
}

// Spec is an ordered set of stats.
type Spec []Stat

// Stats maps stat keys to their values.
type Stats map[string]float64

// Aggregate computes every stat of spec over records in a single pass. Rates are
// resolved after the pass, in spec order.
func Aggregate(records []Record, spec Spec) Stats {
	counts := make([]int, len(spec))
	sums := make([]decimal.Decimal, len(spec))
	present := make([]int, len(spec))

	for _, r := range records {
		for i, s := range spec {
			switch s.Reducer.kind {
			case reduceCount:
				if s.Reducer.where == nil || s.Reducer.where(r) {
					counts[i]++
				}
			case reduceSum, reduceAvg:
				v := s.Reducer.field(r)
				if v == nil {
					continue
				}
				if d, ok := toDecimal(v); ok {
					sums[i] = sums[i].Add(d)
					present[i]++
				}
			}
		}
	}

	out := make(Stats, len(spec))
	for i, s := range spec {
		switch s.Reducer.kind {
		case reduceCount:
			out[s.Key] = float64(counts[i])
		case reduceSum:
			out[s.Key] = sums[i].InexactFloat64()
		case reduceAvg:
			if present[i] > 0 {
				out[s.Key] = sums[i].Div(decimal.NewFromInt(int64(present[i]))).InexactFloat64()
			} else {
				out[s.Key] = 0
			}
		}
	}
	for _, s := range spec {
		if s.Reducer.kind != reduceRate {
			continue
		}
		den := out[s.Reducer.denominator]
		if den > 0 {
			out[s.Key] = out[s.Reducer.numerator] / den
		} else {
			out[s.Key] = 0
		}
	}
	return out
}

// Percent scales a ratio to a percentage rounded to one decimal place.
func Percent(ratio float64) float64 {
	if math.IsNaN(ratio) || math.IsInf(ratio, 0) {
		return 0
	}
	return math.Round(ratio*1000) / 10
}

// toDecimal converts a field value to a decimal. Values that are not numbers, NaN
// or infinite report false.
func toDecimal(v any) (decimal.Decimal, bool) {
	switch val := v.(type) {
	case decimal.Decimal:
		return val, true
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat(val), true
	case float32:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return decimal.Zero, false
		}
		return decimal.NewFromFloat32(val), true
	case string:
		d, err := decimal.NewFromString(val)
		return d, err == nil
	case []byte:
		d, err := decimal.NewFromString(string(val))
		return d, err == nil
	case bool:
		return decimal.Zero, false
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return decimal.NewFromBigInt(new(big.Int).SetUint64(rv.Uint()), 0), true
	case reflect.Pointer:
		if rv.IsNil() {
			return decimal.Zero, false
		}
		return toDecimal(rv.Elem().Interface())
	}
	return decimal.Zero, false
}
