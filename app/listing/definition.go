package listing

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// ErrUnknownResource is returned when a resource name has no definition.
var ErrUnknownResource = errors.New("unknown resource")

var validate = validator.New()

// Definitions is the decoded resources file.
type Definitions struct {
	Resources []*Definition `yaml:"resources" validate:"required,min=1,dive"`

	byName map[string]*Definition
}

// Definition declares how one list screen searches, filters, summarises and
// exports its records.
type Definition struct {
	Name        string      `yaml:"name" validate:"required,lowercase,excludesall=/?#"`
	Title       string      `yaml:"title" validate:"required"`
	Roles       []string    `yaml:"roles" validate:"required,min=1"`
	TenantField string      `yaml:"tenant_field"`
	Search      []string    `yaml:"search" validate:"required,min=1,dive,required"`
	Filters     []FilterDef `yaml:"filters" validate:"dive"`
	Stats       StatsDef    `yaml:"stats"`
	Export      ExportDef   `yaml:"export" validate:"required"`

	compiled *compiledDef
}

// FilterDef is one categorical filter. Name is the query parameter.
type FilterDef struct {
	Name  string `yaml:"name" validate:"required"`
	Field string `yaml:"field" validate:"required"`
}

// StatsDef lists the stats of a resource and the collection they cover by default.
type StatsDef struct {
	Scope string    `yaml:"scope" validate:"omitempty,oneof=all filtered"`
	Items []StatDef `yaml:"items" validate:"dive"`
}

// StatDef declares one stat. Count takes an optional field with equals or in.
type StatDef struct {
	Key         string `yaml:"key" validate:"required"`
	Kind        string `yaml:"kind" validate:"required,oneof=count sum avg rate"`
	Field       string `yaml:"field"`
	Equals      any    `yaml:"equals"`
	In          []any  `yaml:"in"`
	Numerator   string `yaml:"numerator"`
	Denominator string `yaml:"denominator"`
}

// ExportDef declares the export columns of a resource.
type ExportDef struct {
	Filename  string      `yaml:"filename" validate:"required"`
	Scheduled bool        `yaml:"scheduled"`
	Columns   []ColumnDef `yaml:"columns" validate:"required,min=1,dive"`
}

// ColumnDef is one export column.
type ColumnDef struct {
	Name  string `yaml:"name" validate:"required"`
	Field string `yaml:"field" validate:"required"`
}

type compiledDef struct {
	search  []Accessor
	filters []Accessor
	tenant  Accessor
	spec    Spec
	mapping Mapping
}

// LoadDefinitions decodes, validates and compiles a resources file.
func LoadDefinitions(data []byte) (*Definitions, error) {
	defs := &Definitions{}
	if err := yaml.Unmarshal(data, defs); err != nil {
		return nil, fmt.Errorf("decode resources: %w", err)
	}
	if err := validate.Struct(defs); err != nil {
		return nil, fmt.Errorf("validate resources: %w", err)
	}

	defs.byName = make(map[string]*Definition, len(defs.Resources))
	for _, def := range defs.Resources {
		if _, dup := defs.byName[def.Name]; dup {
			return nil, fmt.Errorf("resource %q defined twice", def.Name)
		}
		if err := def.compile(); err != nil {
			return nil, fmt.Errorf("resource %q: %w", def.Name, err)
		}
		defs.byName[def.Name] = def
	}
	return defs, nil
}

// Lookup returns the definition named name.
func (d *Definitions) Lookup(name string) (*Definition, error) {
	def, ok := d.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownResource, name)
	}
	return def, nil
}

func (d *Definition) compile() error {
	c := &compiledDef{}

	for _, path := range d.Search {
		a, err := ParseField(path)
		if err != nil {
			return fmt.Errorf("search: %w", err)
		}
		c.search = append(c.search, a)
	}

	seen := make(map[string]bool, len(d.Filters))
	for _, f := range d.Filters {
		if seen[f.Name] {
			return fmt.Errorf("filter %q defined twice", f.Name)
		}
		seen[f.Name] = true
		a, err := ParseField(f.Field)
		if err != nil {
			return fmt.Errorf("filter %q: %w", f.Name, err)
		}
		c.filters = append(c.filters, a)
	}

	if d.TenantField != "" {
		a, err := ParseField(d.TenantField)
		if err != nil {
			return fmt.Errorf("tenant field: %w", err)
		}
		c.tenant = a
	}

	keys := make(map[string]bool, len(d.Stats.Items))
	for _, item := range d.Stats.Items {
		if keys[item.Key] {
			return fmt.Errorf("stat %q defined twice", item.Key)
		}
		r, err := item.reducer(keys)
		if err != nil {
			return fmt.Errorf("stat %q: %w", item.Key, err)
		}
		keys[item.Key] = true
		c.spec = append(c.spec, Stat{Key: item.Key, Reducer: r})
	}

	for _, col := range d.Export.Columns {
		a, err := ParseField(col.Field)
		if err != nil {
			return fmt.Errorf("export column %q: %w", col.Name, err)
		}
		c.mapping = append(c.mapping, Column{Name: col.Name, Value: a})
	}

	d.compiled = c
	return nil
}

// reducer builds the stat's reducer. known holds the keys declared before it, which
// are the only keys a rate may refer to.
func (s StatDef) reducer(known map[string]bool) (Reducer, error) {
	switch s.Kind {
	case "count":
		if s.Field == "" {
			if s.Equals != nil || len(s.In) > 0 {
				return Reducer{}, fmt.Errorf("equals/in need a field")
			}
			return Count(), nil
		}
		if s.Equals == nil && len(s.In) == 0 {
			return Reducer{}, fmt.Errorf("count on field %q needs equals or in", s.Field)
		}
		field, err := ParseField(s.Field)
		if err != nil {
			return Reducer{}, err
		}
		wanted := s.In
		if len(wanted) == 0 {
			wanted = []any{s.Equals}
		}
		return CountWhere(func(r Record) bool {
			v := field(r)
			for _, w := range wanted {
				if equal(v, w) {
					return true
				}
			}
			return false
		}), nil
	case "sum", "avg":
		field, err := ParseField(s.Field)
		if err != nil {
			return Reducer{}, err
		}
		if s.Kind == "sum" {
			return Sum(field), nil
		}
		return Average(field), nil
	case "rate":
		if !known[s.Numerator] || !known[s.Denominator] {
			return Reducer{}, fmt.Errorf("rate operands %q/%q must be declared before it", s.Numerator, s.Denominator)
		}
		return Rate(s.Numerator, s.Denominator), nil
	}
	return Reducer{}, fmt.Errorf("unknown kind %q", s.Kind)
}

// DefaultScope is the stats scope used when a request does not pick one.
func (d *Definition) DefaultScope() Scope {
	if d.Stats.Scope == string(ScopeFiltered) {
		return ScopeFiltered
	}
	return ScopeAll
}

// Predicate builds the predicate for a request. selections maps filter names to the
// requested values; missing or empty selections mean All.
func (d *Definition) Predicate(query string, selections map[string]string) Predicate {
	p := Predicate{
		Query:      strings.TrimSpace(query),
		Search:     d.compiled.search,
		Categories: make([]Categorical, 0, len(d.Filters)+1),
	}
	for i, f := range d.Filters {
		expected := selections[f.Name]
		if expected == "" {
			expected = All
		}
		p.Categories = append(p.Categories, Categorical{
			Name:     f.Name,
			Value:    d.compiled.filters[i],
			Expected: expected,
		})
	}
	return p
}

// Scoped returns p restricted to one tenant. It is a no-op for resources without a
// tenant field.
func (d *Definition) Scoped(p Predicate, tenant string) Predicate {
	if d.compiled.tenant == nil {
		return p
	}
	cats := make([]Categorical, 0, len(p.Categories)+1)
	cats = append(cats, p.Categories...)
	p.Categories = append(cats, Categorical{
		Name:     "tenant",
		Value:    d.compiled.tenant,
		Expected: tenant,
	})
	return p
}

// AllowsRole reports whether role may read the resource.
func (d *Definition) AllowsRole(role string) bool {
	for _, r := range d.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Spec returns the compiled stats spec.
func (d *Definition) Spec() Spec {
	return d.compiled.spec
}

// Mapping returns the compiled export mapping.
func (d *Definition) Mapping() Mapping {
	return d.compiled.mapping
}

// ExportFilename names an export of this resource made on day: <filename>_<YYYY-MM-DD>.<ext>.
func (d *Definition) ExportFilename(day time.Time, ext string) string {
	return d.Export.Filename + "_" + day.Format("2006-01-02") + "." + ext
}
