package tablespro

import (
	"context"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
	"github.com/noah-isme/tables-pro/pkg/htmx"
	"github.com/noah-isme/tables-pro/pkg/session"
)

// WidthParam carries the browser viewport width for responsive tables.
const WidthParam = "_width"

// DefaultRowsChoices are the rows-per-page options offered by row settings.
var DefaultRowsChoices = []int{10, 15, 20, 25, 50, 100}

// Request is the part of an HTTP request a table view needs.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Form    url.Values
	HX      htmx.Details
	Session *session.Session
}

// ListParams select one page of records.
type ListParams[C any] struct {
	Criteria C
	Page     int
	PerPage  int // zero returns every matching record
	OrderBy  string
}

// Source supplies records to a view.
type Source[T, C any] interface {
	List(ctx context.Context, params ListParams[C]) ([]T, int, error)
	FindByIDs(ctx context.Context, ids []int64) ([]T, error)
}

// PaginationMode selects how further rows are reached.
type PaginationMode int

const (
	PaginationPaged PaginationMode = iota
	PaginationNone
	PaginationScroll
	PaginationLoad
)

func (m PaginationMode) String() string {
	switch m {
	case PaginationNone:
		return "none"
	case PaginationScroll:
		return "scroll"
	case PaginationLoad:
		return "load"
	default:
		return "paged"
	}
}

// Layout toggles optional table chrome.
type Layout struct {
	Pagination     PaginationMode
	StickyHeader   bool
	FixedHeight    int
	ColumnSettings bool
	RowSettings    bool
	ColumnReset    bool
	Responsive     bool
	Indicator      bool
	Caption        string
}

// ClickMethod selects what a row click does.
type ClickMethod int

const (
	ClickNone ClickMethod = iota
	// ClickGet navigates to the row's route.
	ClickGet
	// ClickHXGet loads the row's route into the click target.
	ClickHXGet
	// ClickCustom sends tr_/td_ triggers back to the view's callbacks.
	ClickCustom
)

func (m ClickMethod) String() string {
	switch m {
	case ClickGet:
		return "get"
	case ClickHXGet:
		return "hx-get"
	case ClickCustom:
		return "custom"
	default:
		return "none"
	}
}

// ClickConfig enables row navigation.
type ClickConfig struct {
	Method    ClickMethod
	RouteName string
	Target    string
}

func (c *ClickConfig) target() string {
	if c.Target == "" {
		return "#modals-here"
	}
	return c.Target
}

// Button is a toolbar link.
type Button struct {
	Label string
	URL   string
	Class string
}

// Templates names the templates a view renders.
type Templates struct {
	Page      string
	TableData string
	Rows      string
	Block     string
	Filter    string
}

var defaultTemplates = Templates{
	Page:      "tablespro/page.html",
	TableData: "tablespro/table_data.html",
	Rows:      "tablespro/rows.html",
	Block:     "tablespro/block_content.html",
	Filter:    "tablespro/modal_filter.html",
}

// Cell identifies a clicked or edited cell.
type Cell struct {
	RecordID int64
	Column   string
	Target   string
	Value    string
}

// RowClickFunc handles a click on a row.
type RowClickFunc func(ctx context.Context, req Request, recordID int64, target, currentURL string) (Response, error)

// CellFunc handles a click on, or an edit of, a cell.
type CellFunc func(ctx context.Context, req Request, cell Cell) (Response, error)

// Callbacks customise row and cell interaction. Nil callbacks refresh the page.
type Callbacks struct {
	RowClicked  RowClickFunc
	CellClicked CellFunc
	CellChanged CellFunc
}

// Observer receives dispatch and export events, typically for metrics.
type Observer interface {
	ObserveDispatch(table, kind string)
	ObserveExport(table, format string, rows int)
}

// Controller is the type-erased form of a View used by HTTP handlers.
type Controller interface {
	Name() string
	Title() string
	Get(ctx context.Context, req Request) (Response, error)
	Post(ctx context.Context, req Request) (Response, error)
	Configure(o Overrides) Controller
}

// View composes a table with the capabilities it supports. Optional capabilities
// are nil when unused.
type View[T, C any] struct {
	Slug        string
	Heading     string
	Table       Table[T]
	Source      Source[T, C]
	Filter      *FilterConfig[C]
	Selection   *SelectionConfig[T]
	Export      *ExportConfig
	Click       *ClickConfig
	Layout      Layout
	PerPage     int
	RowsChoices []int
	Buttons     []Button
	Templates   Templates
	Callbacks   Callbacks
	Routes      *Routes
	Observer    Observer
	Logger      *zap.Logger
}

// Name returns the view's URL slug.
func (v *View[T, C]) Name() string { return v.Slug }

// Title returns the page heading.
func (v *View[T, C]) Title() string { return v.Heading }

func (v *View[T, C]) logger() *zap.Logger {
	if v.Logger == nil {
		return zap.NewNop()
	}
	return v.Logger
}

func (v *View[T, C]) templates() Templates {
	t := v.Templates
	if t.Page == "" {
		t.Page = defaultTemplates.Page
	}
	if t.TableData == "" {
		t.TableData = defaultTemplates.TableData
	}
	if t.Rows == "" {
		t.Rows = defaultTemplates.Rows
	}
	if t.Block == "" {
		t.Block = defaultTemplates.Block
	}
	if t.Filter == "" {
		t.Filter = defaultTemplates.Filter
	}
	return t
}

func (v *View[T, C]) rowsChoices() []int {
	if len(v.RowsChoices) > 0 {
		return v.RowsChoices
	}
	return DefaultRowsChoices
}

func (v *View[T, C]) observe(kind string) {
	if v.Observer != nil {
		v.Observer.ObserveDispatch(v.Table.Name, kind)
	}
}

// Get serves full pages, htmx partial updates and export downloads.
func (v *View[T, C]) Get(ctx context.Context, req Request) (Response, error) {
	if v.Source == nil {
		return Response{}, appErrors.Clone(appErrors.ErrMissingConfiguration, "view "+v.Slug+" has no record source")
	}
	if req.HX.Enabled {
		return v.getHTMX(ctx, req)
	}
	if req.Query.Has(ExportParam) {
		return v.export(ctx, req)
	}
	v.observe("page")
	return v.render(ctx, req, v.templates().Page, req.Query, true)
}

func (v *View[T, C]) getHTMX(ctx context.Context, req Request) (Response, error) {
	cl, err := Classify(req.HX, req.Query, v.Filter != nil && v.Filter.Set != nil)
	if err != nil {
		v.observe(KindInvalid.String())
		return Response{}, err
	}
	v.observe(cl.Kind.String())
	v.logger().Debug("table request classified",
		zap.String("table", v.Table.Name),
		zap.Stringer("kind", cl.Kind),
		zap.String("trigger", req.HX.Trigger),
	)
	tpl := v.templates()

	switch cl.Kind {
	case KindSizeQuery:
		resp, err := v.render(ctx, req, tpl.Block, req.Query, false)
		if err != nil {
			return Response{}, err
		}
		resp.Data["responsive"] = false
		return resp.WithRetarget("#block_content"), nil

	case KindTableData, KindFilterChanged:
		return v.render(ctx, req, tpl.TableData, req.Query, false)

	case KindFilterWidget:
		_, state := bindFilter(v.Filter, req.Query)
		return FragmentResponse(tpl.Filter, map[string]any{"filter": state, "path": req.Path}), nil

	case KindColumnToggle:
		if _, err := setColumn(req.Session, v.Table.columnSet(), cl.Column, cl.Checked); err != nil {
			return Response{}, err
		}
		return v.render(ctx, req, tpl.TableData, toggleQuery(req), false)

	case KindRowsPerPage:
		if !slices.Contains(v.rowsChoices(), cl.PerPage) {
			return Response{}, appErrors.Clone(appErrors.ErrInvalidRequest, "rows per page "+strconv.Itoa(cl.PerPage)+" is not offered")
		}
		if err := SavePerPage(req.Session, v.Table.Name, cl.PerPage); err != nil {
			return Response{}, err
		}
		return RedirectResponse(updateParameter(req, "per_page", strconv.Itoa(cl.PerPage))), nil

	case KindResetColumns:
		if _, err := resetColumns(req.Session, v.Table.columnSet()); err != nil {
			return Response{}, err
		}
		return RefreshResponse(), nil

	case KindLoadMore:
		return v.render(ctx, req, tpl.Rows, req.Query, false)

	case KindRowClick:
		if v.Callbacks.RowClicked == nil {
			return RefreshResponse(), nil
		}
		return v.Callbacks.RowClicked(ctx, req, cl.RecordID, req.HX.Target, req.HX.CurrentURL)

	case KindCellClick:
		column, err := v.columnAt(req, cl.ColumnIndex)
		if err != nil {
			return Response{}, err
		}
		if v.Callbacks.CellClicked == nil {
			return RefreshResponse(), nil
		}
		return v.Callbacks.CellClicked(ctx, req, Cell{RecordID: cl.RecordID, Column: column, Target: req.HX.Target})

	case KindFilterValue:
		return RedirectResponse(updateParameter(req, cl.Param, cl.Value)), nil
	}

	return Response{}, appErrors.Clone(appErrors.ErrInvalidRequest, "unhandled request kind "+cl.Kind.String())
}

// Post serves inline edits, column settings forms and bulk actions.
func (v *View[T, C]) Post(ctx context.Context, req Request) (Response, error) {
	if v.Source == nil {
		return Response{}, appErrors.Clone(appErrors.ErrMissingConfiguration, "view "+v.Slug+" has no record source")
	}
	if req.HX.Enabled && containsCell(req.HX.Target) {
		v.observe("cell_changed")
		return v.cellChanged(ctx, req)
	}
	if req.Form.Has("columns_save") {
		v.observe("columns_save")
		var names []string
		for key, values := range req.Form {
			if len(values) > 0 && values[0] == "on" {
				names = append(names, key)
			}
		}
		if _, err := saveColumns(req.Session, v.Table.columnSet(), names); err != nil {
			return Response{}, err
		}
		return v.render(ctx, req, v.templates().TableData, req.Query, false)
	}
	v.observe("action")
	return v.dispatch(ctx, req)
}

func (v *View[T, C]) cellChanged(ctx context.Context, req Request) (Response, error) {
	pk, idx, err := ParseCellID(req.HX.Target)
	if err != nil {
		return Response{}, err
	}
	column, err := v.columnAt(req, idx)
	if err != nil {
		return Response{}, err
	}
	if !v.Table.editable(column) {
		return Response{}, appErrors.Clone(appErrors.ErrInvalidRequest, "column "+column+" is not editable")
	}
	if v.Callbacks.CellChanged == nil {
		return RefreshResponse(), nil
	}
	return v.Callbacks.CellChanged(ctx, req, Cell{
		RecordID: pk,
		Column:   column,
		Target:   req.HX.Target,
		Value:    req.Form.Get(req.HX.Target),
	})
}

// toggleQuery is the page query a column toggle re-renders with. The toggle
// request carries only the checkbox, so the filter comes from the current URL.
func toggleQuery(req Request) url.Values {
	base := req.Query
	if req.HX.CurrentURL != "" {
		base = req.HX.CurrentQuery()
	}
	query := url.Values{}
	for key, values := range base {
		if strings.HasPrefix(key, "col_") {
			continue
		}
		query[key] = values
	}
	return query
}

// columnAt maps a rendered column index back to its column name.
func (v *View[T, C]) columnAt(req Request, idx int) (string, error) {
	visible, err := loadColumns(req.Session, v.Table.columnSet())
	if err != nil {
		return "", err
	}
	columns := v.Table.visibleColumns(visible, v.width(req.Query))
	if idx < 0 || idx >= len(columns) {
		return "", appErrors.Clone(appErrors.ErrInvalidRequest, "column index "+strconv.Itoa(idx)+" out of range")
	}
	return columns[idx].Name, nil
}

func (v *View[T, C]) width(query url.Values) int {
	if !v.Layout.Responsive {
		return 0
	}
	w, err := strconv.Atoi(query.Get(WidthParam))
	if err != nil || w < 0 {
		return 0
	}
	return w
}

func (v *View[T, C]) perPage(req Request) int {
	if v.Layout.Pagination == PaginationNone {
		return 0
	}
	if n, err := strconv.Atoi(req.Query.Get("per_page")); err == nil && n > 0 {
		return n
	}
	if n := SavedPerPage(req.Session, v.Table.Name); n > 0 {
		return n
	}
	if v.PerPage > 0 {
		return v.PerPage
	}
	return DefaultRowsChoices[0]
}

// render loads a page of records and builds the template context.
func (v *View[T, C]) render(ctx context.Context, req Request, template string, query url.Values, full bool) (Response, error) {
	visible, err := loadColumns(req.Session, v.Table.columnSet())
	if err != nil {
		return Response{}, err
	}
	criteria, filterState := bindFilter(v.Filter, query)
	perPage := v.perPage(req)
	page := 1
	if n, err := strconv.Atoi(query.Get("page")); err == nil && n > 0 {
		page = n
	}

	var (
		records []T
		total   int
	)
	// invalid criteria match nothing rather than everything
	if filterState == nil || filterState.Valid {
		records, total, err = v.Source.List(ctx, ListParams[C]{
			Criteria: criteria,
			Page:     page,
			PerPage:  perPage,
			OrderBy:  query.Get("sort"),
		})
		if err != nil {
			return Response{}, err
		}
	}

	state := v.preprocess(preprocessInput[T]{
		records: records,
		total:   total,
		page:    page,
		perPage: perPage,
		visible: visible,
		width:   v.width(query),
		filter:  filterState,
		path:    req.Path,
		query:   query,
	})

	data := map[string]any{
		"view":       v.Slug,
		"title":      v.Heading,
		"path":       req.Path,
		"query":      query.Encode(),
		"table":      state,
		"filter":     filterState,
		"buttons":    v.Buttons,
		"actions":    v.actionChoices(),
		"columns":    v.columnChoices(visible),
		"rows":       v.rowsChoices(),
		"per_page":   perPage,
		"layout":     v.Layout,
		"responsive": v.Layout.Responsive,
		"caption":    v.Layout.Caption,
	}
	if full {
		return PageResponse(template, data), nil
	}
	return FragmentResponse(template, data), nil
}

func (v *View[T, C]) columnChoices(visible []string) []ColumnChoice {
	shown := make(map[string]struct{}, len(visible))
	for _, n := range visible {
		shown[n] = struct{}{}
	}
	var out []ColumnChoice
	for _, col := range v.Table.Columns {
		if col.Label == "" {
			continue
		}
		_, ok := shown[col.Name]
		out = append(out, ColumnChoice{Name: col.Name, Label: col.Label, Visible: ok})
	}
	return out
}

// updateParameter rebuilds the page URL with key set to value. The page's own query
// (from HX-Current-URL) is the base so existing filters survive; paging restarts.
func updateParameter(req Request, key, value string) string {
	base := req.Query
	if req.HX.CurrentURL != "" {
		base = req.HX.CurrentQuery()
	}
	return withParams(req.Path, base, map[string]string{key: value, "page": ""})
}

func containsCell(target string) bool {
	return strings.Contains(target, "td_")
}
