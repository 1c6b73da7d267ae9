// Package listing holds the pipeline every list screen runs through: free-text and
// categorical filtering, summary statistics and tabular export.
//
// All functions in this package are pure over their inputs. Callers own the record
// slices they pass in; nothing here keeps a reference after returning.
package listing

import (
	"context"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"
)

// Record is one row of application data. Values are primitives, time.Time,
// nested records (joined entities) or slices.
type Record = map[string]any

// Accessor reads one value out of a record. A nil result means the value is missing.
type Accessor func(Record) any

// DataSource supplies the records for one resource.
type DataSource interface {
	List(ctx context.Context) ([]Record, error)
}

// StaticSource serves a fixed slice of records.
type StaticSource []Record

func (s StaticSource) List(ctx context.Context) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

// ParseField builds an accessor from a field path. Plain names read the key directly,
// dotted names ("class.name") walk nested records and paths starting with "$" are
// evaluated as JSONPath ("$.parents[0].phone").
func ParseField(path string) (Accessor, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("empty field path")
	}

	var x jp.Expr
	switch {
	case strings.HasPrefix(path, "$"):
		parsed, err := jp.ParseString(path)
		if err != nil {
			return nil, fmt.Errorf("invalid field path %q: %w", path, err)
		}
		x = parsed
	case strings.Contains(path, "."):
		x = jp.R()
		for _, seg := range strings.Split(path, ".") {
			if seg == "" {
				return nil, fmt.Errorf("invalid field path %q", path)
			}
			x = x.C(seg)
		}
	default:
		return func(r Record) any { return r[path] }, nil
	}

	return func(r Record) any {
		if r == nil {
			return nil
		}
		return x.First(r)
	}, nil
}

// Field is like ParseField but panics on an invalid path. Use it for paths that are
// fixed in code.
func Field(path string) Accessor {
	a, err := ParseField(path)
	if err != nil {
		panic(err)
	}
	return a
}

// Stringify renders a record value for search and export. Missing values render as
// the empty string, never as "<nil>".
func Stringify(v any) string {
	if isNilPointer(v) {
		return ""
	}
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case []byte:
		return string(val)
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case int64:
		return strconv.FormatInt(val, 10)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		if val.IsZero() {
			return ""
		}
		// dates carry no clock part
		if val.Hour() == 0 && val.Minute() == 0 && val.Second() == 0 && val.Nanosecond() == 0 {
			return val.Format("2006-01-02")
		}
		return val.Format(time.RFC3339)
	case fmt.Stringer:
		return val.String()
	case map[string]any, []any:
		return oj.JSON(val, &oj.Options{Sort: true})
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
		return Stringify(rv.Elem().Interface())
	case reflect.String:
		return rv.String()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10)
	}
	return fmt.Sprint(v)
}

// isNilPointer reports whether v is a typed nil pointer. Value-receiver methods such as
// time.Time.String panic when called through one.
func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}
