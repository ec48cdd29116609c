package tables

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/noah-isme/tables-pro/internal/models"
	"github.com/noah-isme/tables-pro/pkg/tablespro"
)

// Route names used for row navigation and follow-up pages.
const (
	RouteMovieDetail = "movie_detail"
	RouteMovieModal  = "movie_modal"
	RouteActionPage  = "action_page"
)

// MovieService is what the demo views need from the movie domain.
type MovieService interface {
	tablespro.Source[models.Movie, models.MovieFilter]
	Filter() tablespro.FilterSet[models.MovieFilter]
	Get(ctx context.Context, id int64) (*models.Movie, error)
	UpdateCell(ctx context.Context, id int64, column, raw string) (*models.Movie, error)
}

// Options configures the demo views.
type Options struct {
	PerPage    int
	ExportName string
	Routes     *tablespro.Routes
	Observer   tablespro.Observer
	Logger     *zap.Logger
}

type movieView = tablespro.View[models.Movie, models.MovieFilter]

type builder struct {
	movies MovieService
	opts   Options
}

func (b builder) view(slug, title string, table tablespro.Table[models.Movie]) *movieView {
	return &movieView{
		Slug:     slug,
		Heading:  title,
		Table:    table,
		Source:   b.movies,
		PerPage:  b.opts.PerPage,
		Routes:   b.opts.Routes,
		Observer: b.opts.Observer,
		Logger:   b.opts.Logger,
	}
}

func (b builder) filter(style tablespro.FilterStyle, pills bool) *tablespro.FilterConfig[models.MovieFilter] {
	return &tablespro.FilterConfig[models.MovieFilter]{Set: b.movies.Filter(), Style: style, Pills: pills}
}

func (b builder) export() *tablespro.ExportConfig {
	return &tablespro.ExportConfig{Name: b.opts.ExportName, Formats: []string{tablespro.FormatCSV, tablespro.FormatXLSX}}
}

// withSelectActions gives v the modal and follow-up page actions plus downloads.
func (b builder) withSelectActions(v *movieView) *movieView {
	v.Selection = &tablespro.SelectionConfig[models.Movie]{Actions: []tablespro.Action[models.Movie]{
		{Name: "action_modal", Label: "Action in a modal", Handle: actionModal},
		{Name: "action_page", Label: "Action on a new page", Handle: b.actionPage(v.Table.Name)},
	}}
	v.Export = b.export()
	return v
}

// Build returns the demo views in menu order, with the routes they navigate to
// registered on opts.Routes.
func Build(movies MovieService, opts Options) *Registry {
	if opts.Routes == nil {
		opts.Routes = tablespro.NewRoutes()
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	opts.Routes.Register(RouteMovieDetail, "/movies/:id")
	opts.Routes.Register(RouteMovieModal, "/movies/:id/modal")
	opts.Routes.Register(RouteActionPage, "/action")

	b := builder{movies: movies, opts: opts}
	reg := NewRegistry()

	basic := b.view("basic", "Basic table", MovieTable())
	basic.Layout.Caption = "This table has a caption"
	reg.Add(basic, false)

	rowcol := b.view("rowcol", "Row and column settings", MovieTable())
	rowcol.Layout.RowSettings = true
	rowcol.Layout.ColumnSettings = true
	rowcol.Layout.ColumnReset = true
	reg.Add(rowcol, false)

	sel := b.withSelectActions(b.view("select", "Selection and actions", MovieTableSelection()))
	reg.Add(sel, true)

	scroll := b.view("infinite_scroll", "Infinite scroll with sticky header in fixed height of 500px", MovieTableSelection())
	scroll.Layout = tablespro.Layout{
		Pagination:     tablespro.PaginationScroll,
		StickyHeader:   true,
		FixedHeight:    500,
		ColumnSettings: true,
		RowSettings:    true,
		Indicator:      true,
	}
	scroll.Selection = &tablespro.SelectionConfig[models.Movie]{Actions: []tablespro.Action[models.Movie]{
		{Name: "action_message", Label: "Action with message", Handle: actionMessage},
	}}
	reg.Add(scroll, false)

	load := b.view("infinite_load", "Infinite load more", MovieTable())
	load.Layout.Pagination = tablespro.PaginationLoad
	load.Layout.StickyHeader = true
	reg.Add(load, false)

	responsive := b.withSelectActions(b.view("responsive", "Responsive", MovieTableResponsive()))
	responsive.Layout.ColumnSettings = true
	responsive.Layout.Pagination = tablespro.PaginationLoad
	responsive.Layout.Responsive = true
	reg.Add(responsive, true)

	toolbar := b.withSelectActions(b.view("filter_toolbar", "Filter toolbar", MovieTableResponsive()))
	toolbar.Filter = b.filter(tablespro.FilterToolbar, false)
	toolbar.Layout.ColumnSettings = true
	toolbar.Layout.RowSettings = true
	toolbar.Layout.Responsive = true
	reg.Add(toolbar, true)

	modal := b.withSelectActions(b.view("filter_modal", "Filter modal", MovieTableResponsive()))
	modal.Filter = b.filter(tablespro.FilterModal, true)
	modal.Layout.ColumnSettings = true
	modal.Layout.RowSettings = true
	modal.Layout.Responsive = true
	reg.Add(modal, true)

	header := b.withSelectActions(b.view("filter_header", "Filter in header", MovieTableResponsive()))
	header.Filter = b.filter(tablespro.FilterHeader, false)
	header.Layout.ColumnSettings = true
	header.Layout.RowSettings = true
	header.Layout.StickyHeader = true
	header.Layout.FixedHeight = 300
	reg.Add(header, true)

	editable := b.view("editable", "Editable columns", MovieTableEditable())
	editable.Layout.ColumnSettings = true
	editable.Layout.RowSettings = true
	editable.Callbacks.CellChanged = b.cellChanged(editable.Table)
	reg.Add(editable, false)

	detail := b.view("row_click", "Click row shows detail page", MovieTable())
	detail.Click = &tablespro.ClickConfig{Method: tablespro.ClickGet, RouteName: RouteMovieDetail}
	reg.Add(detail, false)

	detailModal := b.view("row_click_modal", "Click row shows detail modal", MovieTable())
	detailModal.Click = &tablespro.ClickConfig{Method: tablespro.ClickHXGet, RouteName: RouteMovieModal}
	reg.Add(detailModal, false)

	custom := b.view("custom_click", "Custom click cell", MovieTableResponsive())
	custom.Click = &tablespro.ClickConfig{Method: tablespro.ClickCustom}
	custom.Callbacks.CellClicked = b.cellClicked
	reg.Add(custom, false)

	interactive := b.view("interactive", "Basic table interactive", MovieTable())
	interactive.Layout.Caption = "This table has a caption"
	reg.Add(interactive, true)

	return reg
}

func actionModal(_ context.Context, req tablespro.ActionRequest[models.Movie]) (*tablespro.Response, error) {
	resp := tablespro.FragmentResponse("movies/action_modal.html", map[string]any{
		"selected": req.Records,
		"subset":   string(req.Subset),
	}).WithRetarget("#modals-here")
	return &resp, nil
}

func actionMessage(_ context.Context, req tablespro.ActionRequest[models.Movie]) (*tablespro.Response, error) {
	resp := message(fmt.Sprintf("Action applied to %d movies.", len(req.Records)), "alert-success")
	return &resp, nil
}

// actionPage hands the selection to the action page through the session.
func (b builder) actionPage(table string) tablespro.ActionFunc[models.Movie] {
	return func(_ context.Context, req tablespro.ActionRequest[models.Movie]) (*tablespro.Response, error) {
		sel := tablespro.Selection{All: req.Subset == tablespro.SubsetAll, IDs: req.IDs, Query: req.Filter.Encode()}
		if err := tablespro.StoreSelection(req.Session, table, sel); err != nil {
			return nil, err
		}
		route, err := b.opts.Routes.Resolve(RouteActionPage)
		if err != nil {
			return nil, err
		}
		target := url.Values{"table": {table}, "return": {req.HX.CurrentPath()}}
		resp := tablespro.RedirectResponse(route.URL(0) + "?" + target.Encode())
		return &resp, nil
	}
}

func (b builder) cellClicked(ctx context.Context, _ tablespro.Request, cell tablespro.Cell) (tablespro.Response, error) {
	movie, err := b.movies.Get(ctx, cell.RecordID)
	if err != nil {
		return tablespro.Response{}, err
	}
	return message(fmt.Sprintf("'%s', primary key: %d, column: %s was clicked.", movie.DisplayTitle(), cell.RecordID, cell.Column), "alert-info"), nil
}

func (b builder) cellChanged(table tablespro.Table[models.Movie]) tablespro.CellFunc {
	return func(ctx context.Context, req tablespro.Request, cell tablespro.Cell) (tablespro.Response, error) {
		movie, err := b.movies.UpdateCell(ctx, cell.RecordID, cell.Column, cell.Value)
		if err != nil {
			return tablespro.Response{}, err
		}
		value := ""
		for _, col := range table.Columns {
			if col.Name == cell.Column && col.Value != nil {
				value = col.Value(*movie)
			}
		}
		b.opts.Logger.Debug("cell updated", zap.Int64("movie_id", cell.RecordID), zap.String("column", cell.Column))
		return tablespro.FragmentResponse("movies/cell.html", map[string]any{
			"id":     cell.Target,
			"column": cell.Column,
			"value":  value,
			"path":   req.Path,
		}), nil
	}
}

func message(text, class string) tablespro.Response {
	return tablespro.FragmentResponse("movies/message.html", map[string]any{
		"message":     text,
		"alert_class": class,
	}).WithRetarget("#messages")
}
