package tablespro

import (
	"fmt"
	"net/url"
	"strconv"

	"go.uber.org/zap"
)

// ColumnState is a visible data column, indexed in display order.
type ColumnState struct {
	Name     string
	Label    string
	Index    int
	Editable bool
	Sorted   string
	SortURL  string
}

// CellState is one rendered cell. ID is td_<record>_<column index>.
type CellState struct {
	ID       string
	Column   string
	Value    string
	Editable bool
}

// RowState is one rendered row. ID is tr_<record>.
type RowState struct {
	PK    int64
	ID    string
	Href  string
	Cells []CellState
}

// ColumnChoice is an entry in the column settings menu.
type ColumnChoice struct {
	Name    string
	Label   string
	Visible bool
}

// ClickState describes what clicking a row does.
type ClickState struct {
	Method     string
	URL        string
	Target     string
	RequiresID bool
}

// PageState describes the current page of rows.
type PageState struct {
	Number    int
	PerPage   int
	Total     int
	Pages     int
	HasPrev   bool
	HasNext   bool
	PrevURL   string
	NextURL   string
	ScrollURL string
}

// TableState is a table annotated with everything the templates need.
type TableState struct {
	Name           string
	Class          string
	Columns        []ColumnState
	Rows           []RowState
	Selection      bool
	InfiniteScroll bool
	InfiniteLoad   bool
	StickyHeader   bool
	FixedHeight    int
	Click          ClickState
	Filter         *FilterState
	HeaderFields   []*FilterField
	Page           PageState
}

type preprocessInput[T any] struct {
	records []T
	total   int
	page    int
	perPage int
	visible []string
	width   int
	filter  *FilterState
	path    string
	query   url.Values
}

// preprocess annotates records with visibility, navigation, filter placement and paging.
func (v *View[T, C]) preprocess(in preprocessInput[T]) TableState {
	state := TableState{
		Name:           v.Table.Name,
		Class:          v.Table.Class,
		Selection:      v.Table.Selection,
		InfiniteScroll: v.Layout.Pagination == PaginationScroll,
		InfiniteLoad:   v.Layout.Pagination == PaginationLoad,
		StickyHeader:   v.Layout.StickyHeader,
		FixedHeight:    v.Layout.FixedHeight,
		Filter:         in.filter,
	}

	route, hasRoute := v.clickRoute()
	if v.Click != nil {
		state.Click = ClickState{Method: v.Click.Method.String(), Target: v.Click.target()}
		if hasRoute {
			state.Click.RequiresID = route.RequiresID
			if !route.RequiresID {
				state.Click.URL = route.Pattern
			}
		}
	}

	sortKey := in.query.Get("sort")
	columns := v.Table.visibleColumns(in.visible, in.width)
	for i, col := range columns {
		cs := ColumnState{
			Name:     col.Name,
			Label:    col.Label,
			Index:    i,
			Editable: v.Table.editable(col.Name),
		}
		next := col.Name
		switch sortKey {
		case col.Name:
			cs.Sorted = "asc"
			next = "-" + col.Name
		case "-" + col.Name:
			cs.Sorted = "desc"
		}
		cs.SortURL = withParams(in.path, in.query, map[string]string{"sort": next, "page": ""})
		state.Columns = append(state.Columns, cs)
	}

	for _, rec := range in.records {
		pk := v.Table.PK(rec)
		row := RowState{PK: pk, ID: fmt.Sprintf("tr_%d", pk)}
		if hasRoute {
			row.Href = route.URL(pk)
		}
		for i, col := range columns {
			value := ""
			if col.Value != nil {
				value = col.Value(rec)
			}
			row.Cells = append(row.Cells, CellState{
				ID:       fmt.Sprintf("td_%d_%d", pk, i),
				Column:   col.Name,
				Value:    value,
				Editable: state.Columns[i].Editable,
			})
		}
		state.Rows = append(state.Rows, row)
	}

	if in.filter != nil && v.Filter != nil && v.Filter.Style == FilterHeader {
		state.HeaderFields = make([]*FilterField, 0, len(columns))
		for _, col := range columns {
			state.HeaderFields = append(state.HeaderFields, in.filter.Field(col.Name))
		}
	}

	state.Page = pageState(in.path, in.query, in.page, in.perPage, in.total)
	return state
}

// clickRoute resolves the navigation route once. An unknown route leaves rows unlinked.
func (v *View[T, C]) clickRoute() (Route, bool) {
	if v.Click == nil || v.Click.RouteName == "" {
		return Route{}, false
	}
	route, err := v.Routes.Resolve(v.Click.RouteName)
	if err != nil {
		v.logger().Debug("click route unresolved", zap.String("table", v.Table.Name), zap.Error(err))
		return Route{}, false
	}
	return route, true
}

func pageState(path string, query url.Values, page, perPage, total int) PageState {
	ps := PageState{Number: page, PerPage: perPage, Total: total, Pages: 1}
	if perPage > 0 && total > 0 {
		ps.Pages = (total + perPage - 1) / perPage
	}
	ps.HasPrev = page > 1
	ps.HasNext = page < ps.Pages
	if ps.HasPrev {
		ps.PrevURL = withParams(path, query, map[string]string{"page": strconv.Itoa(page - 1)})
	}
	if ps.HasNext {
		ps.NextURL = withParams(path, query, map[string]string{"page": strconv.Itoa(page + 1)})
		ps.ScrollURL = withParams(path, query, map[string]string{"page": strconv.Itoa(page + 1), ScrollParam: "1"})
	}
	return ps
}

var transientParams = map[string]struct{}{
	ScrollParam: {},
	ExportParam: {},
	SubsetParam: {},
}

// withParams copies query, applies changes (empty value deletes) and renders path?query.
func withParams(path string, query url.Values, changes map[string]string) string {
	next := url.Values{}
	for k, vs := range query {
		if _, transient := transientParams[k]; transient {
			continue
		}
		next[k] = append([]string(nil), vs...)
	}
	for k, v := range changes {
		if v == "" {
			next.Del(k)
		} else {
			next.Set(k, v)
		}
	}
	if encoded := next.Encode(); encoded != "" {
		return path + "?" + encoded
	}
	return path
}
