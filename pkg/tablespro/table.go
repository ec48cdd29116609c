// Package tablespro serves server-rendered interactive tables driven by htmx:
// column and row settings, filtering, paging, infinite scroll, row selection
// with bulk actions, inline cell editing and CSV/XLSX export.
package tablespro

// SelectionColumn is the name of the checkbox column. It is never exported.
const SelectionColumn = "selection"

// Column declares one table column.
type Column[T any] struct {
	Name string
	// Label is the header text. Columns without a label are always visible
	// and are not offered in the column settings menu.
	Label string
	Value func(T) string
	// MinWidth hides the column on viewports narrower than this many pixels.
	MinWidth int
}

// Table declares the columns of a record type and how rows are identified.
type Table[T any] struct {
	Name            string
	Columns         []Column[T]
	DefaultColumns  []string
	EditableColumns []string
	Selection       bool
	Class           string
	PK              func(T) int64
}

type columnSet struct {
	table      string
	toggleable []string
	defaults   []string
}

func (t Table[T]) columnSet() columnSet {
	cs := columnSet{table: t.Name}
	for _, col := range t.Columns {
		if col.Label != "" {
			cs.toggleable = append(cs.toggleable, col.Name)
		}
	}
	if len(t.DefaultColumns) > 0 {
		cs.defaults = cs.order(t.DefaultColumns)
	} else {
		cs.defaults = append([]string(nil), cs.toggleable...)
	}
	return cs
}

// order keeps declared toggleable columns present in names, in declaration order.
func (cs columnSet) order(names []string) []string {
	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}
	out := make([]string, 0, len(names))
	for _, n := range cs.toggleable {
		if _, ok := wanted[n]; ok {
			out = append(out, n)
		}
	}
	return out
}

func (cs columnSet) declares(name string) bool {
	for _, n := range cs.toggleable {
		if n == name {
			return true
		}
	}
	return false
}

func (t Table[T]) column(name string) (Column[T], bool) {
	for _, col := range t.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column[T]{}, false
}

func (t Table[T]) editable(name string) bool {
	for _, n := range t.EditableColumns {
		if n == name {
			return true
		}
	}
	return false
}

// visibleColumns returns the data columns to show, in declaration order. The
// selection checkbox is not a data column and is never included. Unlabelled columns
// are always shown; width hides responsive columns when positive.
func (t Table[T]) visibleColumns(preferred []string, width int) []Column[T] {
	keep := make(map[string]struct{}, len(preferred))
	for _, n := range preferred {
		keep[n] = struct{}{}
	}
	out := make([]Column[T], 0, len(t.Columns))
	for _, col := range t.Columns {
		if col.Name == SelectionColumn {
			continue
		}
		if col.Label != "" {
			if _, ok := keep[col.Name]; !ok {
				continue
			}
		}
		if width > 0 && col.MinWidth > width {
			continue
		}
		out = append(out, col)
	}
	return out
}
