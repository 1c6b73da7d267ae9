package database

import (
	"context"
	"embed"
	"fmt"

	"github.com/neptgadgets/school-nexus-final-sub000/app/listing"
	"github.com/ohler55/ojg/oj"
)

//go:embed fixtures/*.json
var fixtureFS embed.FS

// fixtureResources are served from bundled data until they get tables of their own.
var fixtureResources = []string{"exams", "library_books", "timetable", "notifications", "subscriptions", "invoices"}

// FixtureSource serves records decoded from a bundled JSON array.
type FixtureSource struct {
	records []listing.Record
}

// LoadFixture decodes fixtures/<name>.json.
func LoadFixture(name string) (*FixtureSource, error) {
	data, err := fixtureFS.ReadFile("fixtures/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("read fixture %s: %w", name, err)
	}
	return ParseFixture(data)
}

// ParseFixture decodes a JSON array of objects.
func ParseFixture(data []byte) (*FixtureSource, error) {
	v, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	list, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("fixture is %T, want an array", v)
	}

	records := make([]listing.Record, 0, len(list))
	for i, item := range list {
		r, ok := item.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("fixture item %d is %T, want an object", i, item)
		}
		records = append(records, r)
	}
	return &FixtureSource{records: records}, nil
}

func (f *FixtureSource) List(ctx context.Context) ([]listing.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	out := make([]listing.Record, len(f.records))
	copy(out, f.records)
	return out, nil
}
