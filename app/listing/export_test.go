package listing

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nameStatus = Mapping{
	{Name: "Name", Value: Field("name")},
	{Name: "Status", Value: Field("status")},
}

func TestExportDelimited(t *testing.T) {
	t.Run("empty collection emits header only", func(t *testing.T) {
		text, err := ExportDelimited(nil, nameStatus, 0)
		require.NoError(t, err)
		assert.Equal(t, "Name,Status", text)
	})

	t.Run("empty mapping emits nothing", func(t *testing.T) {
		text, err := ExportDelimited(people(), nil, ',')
		require.NoError(t, err)
		assert.Equal(t, "", text)
	})

	t.Run("rows follow mapping order", func(t *testing.T) {
		records := []Record{{"name": "Alice", "status": "active"}, {"name": "Bob", "status": "inactive"}}
		text, err := ExportDelimited(records, nameStatus, ',')
		require.NoError(t, err)
		assert.Equal(t, "Name,Status\nAlice,active\nBob,inactive", text)
	})

	t.Run("missing values are empty", func(t *testing.T) {
		text, err := ExportDelimited([]Record{{"name": "Carol"}, {"status": nil}}, nameStatus, ',')
		require.NoError(t, err)
		assert.Equal(t, "Name,Status\nCarol,\n,", text)
		assert.NotContains(t, text, "nil")
		assert.NotContains(t, text, "undefined")
	})

	t.Run("quotes special characters", func(t *testing.T) {
		records := []Record{{"name": `Smith, "Jr."`, "status": "line\nbreak"}}
		text, err := ExportDelimited(records, nameStatus, ',')
		require.NoError(t, err)
		assert.Contains(t, text, `"Smith, ""Jr."""`)

		rows, err := csv.NewReader(strings.NewReader(text)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, []string{`Smith, "Jr."`, "line\nbreak"}, rows[1])
	})

	t.Run("round trip single column", func(t *testing.T) {
		values := []any{"plain", "comma, inside", `quote "q"`, "new\nline", int64(42), 3.5, true, ""}
		records := make([]Record, len(values))
		for i, v := range values {
			records[i] = Record{"v": v}
		}
		text, err := ExportDelimited(records, Mapping{{Name: "Value", Value: Field("v")}}, ',')
		require.NoError(t, err)

		rows, err := csv.NewReader(strings.NewReader(text)).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, len(values)+1)
		for i, v := range values {
			assert.Equal(t, Stringify(v), rows[i+1][0])
		}
	})

	t.Run("custom delimiter", func(t *testing.T) {
		records := []Record{{"name": "a;b", "status": "x"}}
		text, err := ExportDelimited(records, nameStatus, ';')
		require.NoError(t, err)
		assert.Equal(t, "Name;Status\n\"a;b\";x", text)
	})

	t.Run("invalid delimiter", func(t *testing.T) {
		_, err := ExportDelimited(nil, nameStatus, '"')
		assert.Error(t, err)
	})

	t.Run("column count equals mapping length", func(t *testing.T) {
		text, err := ExportDelimited(people(), nameStatus, ',')
		require.NoError(t, err)
		rows, err := csv.NewReader(strings.NewReader(text)).ReadAll()
		require.NoError(t, err)
		for _, row := range rows {
			assert.Len(t, row, len(nameStatus))
		}
	})

	t.Run("duplicate column names are kept", func(t *testing.T) {
		m := Mapping{{Name: "Name", Value: Field("name")}, {Name: "Name", Value: Field("status")}}
		text, err := ExportDelimited([]Record{{"name": "A", "status": "s"}}, m, ',')
		require.NoError(t, err)
		assert.Equal(t, "Name,Name\nA,s", text)
	})
}

func TestWriteDelimited(t *testing.T) {
	var buf bytes.Buffer
	err := WriteDelimited(&buf, []Record{{"name": "Alice", "status": "active"}}, nameStatus, 0)
	require.NoError(t, err)
	assert.Equal(t, "Name,Status\nAlice,active\n", buf.String())
}

func TestStringify(t *testing.T) {
	s := "ptr"
	var nilPtr *string
	tests := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"x", "x"},
		{[]byte("raw"), "raw"},
		{true, "true"},
		{42, "42"},
		{int64(-7), "-7"},
		{2.50, "2.5"},
		{&s, "ptr"},
		{nilPtr, ""},
		{(*time.Time)(nil), ""},
		{(*decimal.Decimal)(nil), ""},
		{decimal.RequireFromString("12.50"), "12.5"},
		{time.Date(2025, 3, 14, 0, 0, 0, 0, time.UTC), "2025-03-14"},
		{time.Date(2025, 3, 14, 8, 30, 0, 0, time.UTC), "2025-03-14T08:30:00Z"},
		{map[string]any{"b": 1, "a": "x"}, `{"a":"x","b":1}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Stringify(tt.in))
	}
}

func TestParseField(t *testing.T) {
	r := Record{
		"name":    "Alice",
		"class":   map[string]any{"name": "P6", "teacher": map[string]any{"name": "Mr. Okello"}},
		"parents": []any{map[string]any{"phone": "0772000111"}},
	}

	tests := []struct {
		path string
		want any
	}{
		{"name", "Alice"},
		{"class.name", "P6"},
		{"class.teacher.name", "Mr. Okello"},
		{"$.parents[0].phone", "0772000111"},
		{"class.missing", nil},
		{"missing.deeper", nil},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			a, err := ParseField(tt.path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, a(r))
		})
	}

	for _, bad := range []string{"", "class..name", "$.parents["} {
		_, err := ParseField(bad)
		assert.Error(t, err, bad)
	}
	assert.Panics(t, func() { Field("") })
}
