package listing

import (
	"errors"
	"strings"
)

// All is the filter value meaning "do not filter on this dimension". It is reserved
// and must never be used as a real category value.
const All = "all"

// ErrNoSearchFields is returned when a predicate is built without any search field.
var ErrNoSearchFields = errors.New("predicate has no search fields")

// Categorical is an exact-equality filter on one field.
type Categorical struct {
	Name     string
	Value    Accessor
	Expected any
}

// Active reports whether the filter takes part in matching.
func (c Categorical) Active() bool {
	s, ok := c.Expected.(string)
	return !ok || s != All
}

func (c Categorical) match(r Record) bool {
	return equal(c.Value(r), c.Expected)
}

// Predicate combines a free-text query with categorical filters. A record matches
// when any search field contains the query and every active categorical filter holds.
type Predicate struct {
	Query      string
	Search     []Accessor
	Categories []Categorical
}

// NewPredicate builds a predicate and rejects one without search fields.
func NewPredicate(query string, search []Accessor, categories ...Categorical) (Predicate, error) {
	if len(search) == 0 {
		return Predicate{}, ErrNoSearchFields
	}
	return Predicate{Query: query, Search: search, Categories: categories}, nil
}

// Match reports whether r satisfies the predicate.
func (p Predicate) Match(r Record) bool {
	return p.matcher()(r)
}

// matcher lowers the query once so a whole pass shares it.
func (p Predicate) matcher() func(Record) bool {
	query := strings.ToLower(p.Query)
	active := make([]Categorical, 0, len(p.Categories))
	for _, c := range p.Categories {
		if c.Active() {
			active = append(active, c)
		}
	}

	return func(r Record) bool {
		if query != "" && !containsAny(r, p.Search, query) {
			return false
		}
		for _, c := range active {
			if !c.match(r) {
				return false
			}
		}
		return true
	}
}

// Filter returns the records matching p in their original order. The input slice is
// never modified.
func Filter(records []Record, p Predicate) []Record {
	match := p.matcher()
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if match(r) {
			out = append(out, r)
		}
	}
	return out
}

func containsAny(r Record, fields []Accessor, query string) bool {
	for _, field := range fields {
		v := field(r)
		if v == nil || isNilPointer(v) {
			continue
		}
		if strings.Contains(strings.ToLower(Stringify(v)), query) {
			return true
		}
	}
	return false
}

// equal compares a field value with an expected filter value. Same-typed strings are
// compared directly; anything else is compared on its rendered form so that values
// coming from query strings ("true", "3") match typed fields.
func equal(actual, expected any) bool {
	if isNilPointer(actual) {
		actual = nil
	}
	if isNilPointer(expected) {
		expected = nil
	}
	if actual == nil || expected == nil {
		return actual == nil && expected == nil
	}
	if a, ok := actual.(string); ok {
		if e, ok := expected.(string); ok {
			return a == e
		}
	}
	return Stringify(actual) == Stringify(expected)
}
