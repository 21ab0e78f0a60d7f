package output

import (
	"fmt"
	"io"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"
	"unicode"
)

// TimeLayout is the layout used for timestamps in tables.
const TimeLayout = "2006-01-02 15:04:05"

// TableFormatter formats data as an aligned text table.
//
// Struct fields become columns named after their json tag. The table tag
// controls rendering:
//
//	table:"-"     never shown
//	table:"wide"  shown only in wide mode
//	table:"ms"    integer Unix milliseconds rendered as a local time
type TableFormatter struct {
	Wide      bool
	NoHeaders bool
}

// Format renders data. Supported inputs are Table, slices of structs,
// single structs and maps; anything else is written as JSON.
func (f TableFormatter) Format(w io.Writer, data any) error {
	if data == nil {
		return nil
	}

	switch t := data.(type) {
	case *Table:
		return t.Print(w, !f.NoHeaders)
	case Table:
		return t.Print(w, !f.NoHeaders)
	}

	table, err := toTable(reflect.ValueOf(data), f.Wide)
	if err != nil {
		return JSONFormatter{}.Format(w, data)
	}
	return table.Print(w, !f.NoHeaders)
}

// column is one rendered struct field.
type column struct {
	index  int
	header string
	millis bool
}

// columnsOf returns the visible columns of struct type t.
func columnsOf(t reflect.Type, wide bool) []column {
	var cols []column
	for i := range t.NumField() {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		opts := strings.Split(field.Tag.Get("table"), ",")
		if opts[0] == "-" {
			continue
		}
		col := column{index: i, header: fieldName(field)}
		skip := false
		for _, o := range opts {
			switch o {
			case "wide":
				skip = !wide
			case "ms":
				col.millis = true
			}
		}
		if !skip {
			cols = append(cols, col)
		}
	}
	return cols
}

// fieldName is the json name of field, or its Go name.
func fieldName(field reflect.StructField) string {
	if tag := field.Tag.Get("json"); tag != "" {
		if name := strings.Split(tag, ",")[0]; name != "" && name != "-" {
			return name
		}
	}
	return field.Name
}

func (c column) format(v reflect.Value) string {
	if c.millis {
		if v.CanInt() {
			if v.Int() == 0 {
				return "-"
			}
			return time.UnixMilli(v.Int()).Format(TimeLayout)
		}
	}
	return formatValue(v)
}

func toTable(v reflect.Value, wide bool) (*Table, error) {
	v = indirect(v)
	switch {
	case !v.IsValid():
		return &Table{}, nil
	case v.Kind() == reflect.Slice || v.Kind() == reflect.Array:
		return rowsTable(v, wide), nil
	case v.Kind() == reflect.Map:
		return mapTable(v), nil
	case v.Kind() == reflect.Struct:
		return fieldsTable(v, wide), nil
	}
	return nil, fmt.Errorf("output: cannot tabulate %s", v.Type())
}

// rowsTable renders one row per element. Slices of non-structs get a
// single VALUE column.
func rowsTable(v reflect.Value, wide bool) *Table {
	et := v.Type().Elem()
	if et.Kind() == reflect.Pointer {
		et = et.Elem()
	}
	if et.Kind() != reflect.Struct {
		t := &Table{Header: []string{"VALUE"}}
		for i := range v.Len() {
			t.Append(formatValue(v.Index(i)))
		}
		return t
	}

	cols := columnsOf(et, wide)
	t := &Table{Header: make([]string, len(cols))}
	for i, c := range cols {
		t.Header[i] = headerName(c.header)
	}
	for i := range v.Len() {
		e := indirect(v.Index(i))
		if !e.IsValid() {
			continue
		}
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = c.format(e.Field(c.index))
		}
		t.Append(cells...)
	}
	return t
}

// mapTable renders KEY/VALUE rows sorted by key.
func mapTable(v reflect.Value) *Table {
	t := &Table{Header: []string{"KEY", "VALUE"}}
	for it := v.MapRange(); it.Next(); {
		t.Append(formatValue(it.Key()), formatValue(it.Value()))
	}
	slices.SortFunc(t.Rows, func(a, b []string) int { return strings.Compare(a[0], b[0]) })
	return t
}

// fieldsTable renders a single struct as FIELD/VALUE rows.
func fieldsTable(v reflect.Value, wide bool) *Table {
	t := &Table{Header: []string{"FIELD", "VALUE"}}
	for _, c := range columnsOf(v.Type(), wide) {
		t.Append(c.header, c.format(v.Field(c.index)))
	}
	return t
}

func indirect(v reflect.Value) reflect.Value {
	for v.IsValid() && (v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface) {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// formatValue renders one cell. Empty values print as "-" so columns
// stay aligned; nil pointers print as nothing.
func formatValue(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return ""
	}

	switch x := v.Interface().(type) {
	case time.Time:
		if x.IsZero() {
			return "-"
		}
		return x.Format(TimeLayout)
	case time.Duration:
		return x.String()
	case fmt.Stringer:
		return x.String()
	}

	switch k := v.Kind(); {
	case k == reflect.Bool:
		return map[bool]string{true: "yes", false: "no"}[v.Bool()]
	case k == reflect.String:
		return orDash(v.String())
	case v.CanInt():
		return strconv.FormatInt(v.Int(), 10)
	case v.CanUint():
		return strconv.FormatUint(v.Uint(), 10)
	case v.CanFloat():
		return strconv.FormatFloat(v.Float(), 'f', 2, 64)
	case k == reflect.Slice || k == reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		return "[" + strconv.Itoa(v.Len()) + " items]"
	case k == reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return "{" + strconv.Itoa(v.Len()) + " keys}"
	default:
		return fmt.Sprint(v.Interface())
	}
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// headerName converts a camelCase or PascalCase name to UPPER_SNAKE.
// Runs of capitals are kept together: "HTTPServer" becomes "HTTP_SERVER".
func headerName(s string) string {
	runes := []rune(s)
	var b strings.Builder
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// Table is pre-rendered rows of cells.
type Table struct {
	Header []string
	Rows   [][]string
}

// Append adds a row.
func (t *Table) Append(cells ...string) {
	t.Rows = append(t.Rows, cells)
}

// Print writes t with columns aligned by two spaces. header controls
// whether the header line is printed.
func (t *Table) Print(w io.Writer, header bool) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	if header && len(t.Header) > 0 {
		printRow(tw, t.Header)
	}
	for _, r := range t.Rows {
		printRow(tw, r)
	}
	return tw.Flush()
}

func printRow(w io.Writer, cells []string) {
	io.WriteString(w, strings.Join(cells, "\t")+"\n")
}
