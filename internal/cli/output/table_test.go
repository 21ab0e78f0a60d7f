package output

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

type docRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	UserCount   int    `json:"userCount"`
	LastUpdated int64  `json:"lastUpdated" table:"ms"`
	Public      bool   `json:"isPublic" table:"wide"`
	Internal    string `json:"internal" table:"-"`
}

func TestTableFormatter_Format_Table(t *testing.T) {
	table := &Table{
		Header: []string{"NAME", "VALUE"},
		Rows: [][]string{
			{"key1", "value1"},
			{"key2", "value2"},
		},
	}

	var buf bytes.Buffer
	if err := (TableFormatter{}).Format(&buf, table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3:\n%s", len(lines), buf.String())
	}
	if !strings.HasPrefix(lines[0], "NAME") || !strings.HasPrefix(lines[1], "key1") {
		t.Errorf("unexpected table:\n%s", buf.String())
	}
}

func TestTableFormatter_Format_NoHeaders(t *testing.T) {
	table := Table{Header: []string{"NAME"}, Rows: [][]string{{"only"}}}

	var buf bytes.Buffer
	if err := (TableFormatter{NoHeaders: true}).Format(&buf, table); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.Contains(buf.String(), "NAME") {
		t.Error("Format() wrote headers with NoHeaders")
	}
}

func TestTableFormatter_Format_Nil(t *testing.T) {
	var buf bytes.Buffer
	if err := (TableFormatter{}).Format(&buf, nil); err != nil {
		t.Fatalf("Format(nil) error = %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Format(nil) wrote %q", buf.String())
	}
}

func TestTableFormatter_Format_Slice(t *testing.T) {
	updated := time.Date(2024, 6, 15, 14, 30, 0, 0, time.Local)
	data := []docRow{
		{ID: "doc-1", Title: "Notes", UserCount: 2, LastUpdated: updated.UnixMilli(), Public: true, Internal: "x"},
		{ID: "doc-2", UserCount: 0},
	}

	tests := []struct {
		name    string
		wide    bool
		want    []string
		notWant []string
	}{
		{
			name:    "narrow",
			want:    []string{"ID", "TITLE", "USER_COUNT", "LAST_UPDATED", "doc-1", "Notes", "2024-06-15 14:30:00"},
			notWant: []string{"IS_PUBLIC", "INTERNAL"},
		},
		{
			name:    "wide",
			wide:    true,
			want:    []string{"IS_PUBLIC", "yes"},
			notWant: []string{"INTERNAL"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := (TableFormatter{Wide: tt.wide}).Format(&buf, data); err != nil {
				t.Fatalf("Format() error = %v", err)
			}
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q:\n%s", s, out)
				}
			}
			for _, s := range tt.notWant {
				if strings.Contains(out, s) {
					t.Errorf("output contains %q:\n%s", s, out)
				}
			}
		})
	}
}

func TestTableFormatter_Format_EmptySlice(t *testing.T) {
	var buf bytes.Buffer
	if err := (TableFormatter{}).Format(&buf, []docRow{}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if got := strings.TrimSpace(buf.String()); !strings.HasPrefix(got, "ID") || strings.Contains(got, "\n") {
		t.Errorf("empty slice should render the header only, got %q", got)
	}
}

func TestTableFormatter_Format_PointerSlice(t *testing.T) {
	data := []*docRow{{ID: "p-1"}, nil}

	var buf bytes.Buffer
	if err := (TableFormatter{}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "p-1") {
		t.Error("Format() missing pointer element")
	}
}

func TestTableFormatter_Format_SingleStruct(t *testing.T) {
	var buf bytes.Buffer
	if err := (TableFormatter{}).Format(&buf, &docRow{ID: "doc-9", Title: "Plan"}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	out := buf.String()
	for _, s := range []string{"FIELD", "id", "doc-9", "title", "Plan"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestTableFormatter_Format_Map(t *testing.T) {
	var buf bytes.Buffer
	if err := (TableFormatter{}).Format(&buf, map[string]int{"documents": 3}); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if !strings.Contains(buf.String(), "documents") || !strings.Contains(buf.String(), "3") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestTableFormatter_Format_FallbackToJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := (TableFormatter{}).Format(&buf, 42); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	if strings.TrimSpace(buf.String()) != "42" {
		t.Errorf("Format(42) = %q", buf.String())
	}
}

func TestFormatValue(t *testing.T) {
	str := "pointer value"
	var nilPtr *string
	testCases := []struct {
		name     string
		input    any
		expected string
	}{
		{"string", "hello", "hello"},
		{"empty string", "", "-"},
		{"int", 42, "42"},
		{"uint", uint(99), "99"},
		{"float64", 3.14159, "3.14"},
		{"bool true", true, "yes"},
		{"bool false", false, "no"},
		{"empty slice", []int{}, "-"},
		{"slice", []int{1, 2, 3}, "[3 items]"},
		{"map", map[string]int{"a": 1}, "{1 keys}"},
		{"duration", 90 * time.Second, "1m30s"},
		{"zero time", time.Time{}, "-"},
		{"pointer", &str, "pointer value"},
		{"nil pointer", nilPtr, ""},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if got := formatValue(reflect.ValueOf(tc.input)); got != tc.expected {
				t.Errorf("formatValue(%v) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}

	if got := formatValue(reflect.Value{}); got != "" {
		t.Errorf("formatValue(invalid) = %q, want empty", got)
	}
}

func TestHeaderName(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{"id", "ID"},
		{"userCount", "USER_COUNT"},
		{"LastUpdated", "LAST_UPDATED"},
		{"HTTPServer", "HTTP_SERVER"},
		{"ticketTTL", "TICKET_TTL"},
		{"already_snake", "ALREADY_SNAKE"},
	}

	for _, tc := range testCases {
		if got := headerName(tc.input); got != tc.expected {
			t.Errorf("headerName(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestTable_Print(t *testing.T) {
	var table Table
	table.Header = []string{"A", "LONGER"}
	table.Append("wide-cell", "2")

	tests := []struct {
		header bool
		want   string
	}{
		{true, "A          LONGER\nwide-cell  2\n"},
		{false, "wide-cell  2\n"},
	}
	for _, tt := range tests {
		var buf bytes.Buffer
		if err := table.Print(&buf, tt.header); err != nil {
			t.Fatalf("Print() error = %v", err)
		}
		if buf.String() != tt.want {
			t.Errorf("Print(header=%v) = %q, want %q", tt.header, buf.String(), tt.want)
		}
	}
}

func TestTableFormatter_Format_MapSorted(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]int{"zeta": 1, "alpha": 2, "mid": 3}
	if err := (TableFormatter{NoHeaders: true}).Format(&buf, data); err != nil {
		t.Fatalf("Format() error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 || !strings.HasPrefix(lines[0], "alpha") || !strings.HasPrefix(lines[2], "zeta") {
		t.Errorf("rows not sorted by key:\n%s", buf.String())
	}
}

type level int

func (l level) String() string { return [...]string{"low", "high"}[l] }

func TestFormatValue_Stringer(t *testing.T) {
	if got := formatValue(reflect.ValueOf(level(1))); got != "high" {
		t.Errorf("formatValue(Stringer) = %q, want high", got)
	}
}
