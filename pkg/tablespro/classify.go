package tablespro

import (
	"net/url"
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
	"github.com/noah-isme/tables-pro/pkg/htmx"
)

// Kind enumerates the partial-update requests a table understands.
type Kind int

const (
	KindInvalid Kind = iota
	KindSizeQuery
	KindTableData
	KindFilterWidget
	KindFilterChanged
	KindColumnToggle
	KindRowsPerPage
	KindResetColumns
	KindLoadMore
	KindRowClick
	KindCellClick
	KindFilterValue
)

var kindNames = map[Kind]string{
	KindInvalid:       "invalid",
	KindSizeQuery:     "size_query",
	KindTableData:     "table_data",
	KindFilterWidget:  "filter_widget",
	KindFilterChanged: "filter_changed",
	KindColumnToggle:  "column_toggle",
	KindRowsPerPage:   "rows_per_page",
	KindResetColumns:  "reset_columns",
	KindLoadMore:      "load_more",
	KindRowClick:      "row_click",
	KindCellClick:     "cell_click",
	KindFilterValue:   "filter_value",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// ScrollParam marks a request for the next page of rows.
const ScrollParam = "_scroll"

// Classified is a partial-update request resolved to a single Kind with its payload.
type Classified struct {
	Kind Kind

	Column  string // KindColumnToggle
	Checked bool   // KindColumnToggle

	PerPage int // KindRowsPerPage

	RecordID    int64 // KindRowClick, KindCellClick
	ColumnIndex int   // KindCellClick

	Param string // KindFilterValue
	Value string // KindFilterValue
}

// Classify maps an htmx GET to exactly one Kind. Predicates are evaluated in a fixed
// priority order and the first match wins; a request that matches none, or whose
// payload cannot be parsed, is ErrInvalidRequest.
func Classify(hx htmx.Details, query url.Values, filterEnabled bool) (Classified, error) {
	trigger, name := hx.Trigger, hx.TriggerName

	switch {
	case trigger == "size_query":
		return Classified{Kind: KindSizeQuery}, nil

	case trigger == "table_data":
		return Classified{Kind: KindTableData}, nil

	case name == "filter" && filterEnabled:
		return Classified{Kind: KindFilterWidget}, nil

	case name == "filter_form":
		return Classified{Kind: KindFilterChanged}, nil

	case strings.Contains(trigger, "id_col"):
		// checkbox name is col_<column>; unchecked boxes are not submitted
		if len(name) <= 4 {
			return invalid("column toggle without column name")
		}
		return Classified{Kind: KindColumnToggle, Column: name[4:], Checked: query.Has(name)}, nil

	case strings.Contains(trigger, "id_row"):
		rows, err := strconv.Atoi(name)
		if err != nil || rows <= 0 {
			return invalid("rows per page must be a positive integer")
		}
		return Classified{Kind: KindRowsPerPage, PerPage: rows}, nil

	case strings.Contains(trigger, "default"):
		return Classified{Kind: KindResetColumns}, nil

	case strings.Contains(trigger, "tr_"):
		if query.Has(ScrollParam) {
			return Classified{Kind: KindLoadMore}, nil
		}
		bits := payload(trigger, "tr_")
		if len(bits) < 1 {
			return invalid("row trigger without record id")
		}
		id, err := strconv.ParseInt(bits[0], 10, 64)
		if err != nil {
			return invalid("row trigger with malformed record id")
		}
		return Classified{Kind: KindRowClick, RecordID: id}, nil

	case strings.Contains(trigger, "td_"):
		id, idx, err := ParseCellID(trigger)
		if err != nil {
			return Classified{}, err
		}
		return Classified{Kind: KindCellClick, RecordID: id, ColumnIndex: idx}, nil

	case strings.HasPrefix(trigger, "id_"):
		if name == "" {
			return invalid("filter trigger without name")
		}
		return Classified{Kind: KindFilterValue, Param: name, Value: query.Get(name)}, nil
	}

	return invalid("unrecognised trigger " + strconv.Quote(trigger))
}

// ParseCellID parses td_<record>_<column index>.
func ParseCellID(id string) (int64, int, error) {
	bits := payload(id, "td_")
	if len(bits) < 2 {
		_, err := invalid("cell id must be td_<record>_<column>")
		return 0, 0, err
	}
	pk, err := strconv.ParseInt(bits[0], 10, 64)
	if err != nil {
		_, err = invalid("cell id with malformed record id")
		return 0, 0, err
	}
	idx, err := strconv.Atoi(bits[1])
	if err != nil || idx < 0 {
		_, err = invalid("cell id with malformed column index")
		return 0, 0, err
	}
	return pk, idx, nil
}

func payload(s, marker string) []string {
	_, rest, found := strings.Cut(s, marker)
	if !found || rest == "" {
		return nil
	}
	return strings.Split(rest, "_")
}

func invalid(msg string) (Classified, error) {
	return Classified{}, appErrors.Clone(appErrors.ErrInvalidRequest, msg)
}
