package tablespro

import (
	"bytes"
	"context"
	"encoding/csv"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
	"github.com/noah-isme/tables-pro/pkg/htmx"
	"github.com/noah-isme/tables-pro/pkg/session"
)

type observerStub struct {
	kinds   []string
	exports []int
}

func (o *observerStub) ObserveDispatch(_, kind string) { o.kinds = append(o.kinds, kind) }
func (o *observerStub) ObserveExport(_, _ string, rows int) {
	o.exports = append(o.exports, rows)
}

func readCSV(t *testing.T, body []byte) [][]string {
	t.Helper()
	records, err := csv.NewReader(bytes.NewReader(body)).ReadAll()
	require.NoError(t, err)
	return records
}

func redirectQuery(t *testing.T, resp Response) (string, url.Values) {
	t.Helper()
	require.Equal(t, ResponseRedirect, resp.Kind)
	u, err := url.Parse(resp.URL)
	require.NoError(t, err)
	return u.Path, u.Query()
}

func TestGetRendersFullPage(t *testing.T) {
	src := &filmSource{films: sampleFilms()}
	v := newFilmView(src)
	obs := &observerStub{}
	v.Observer = obs

	resp, err := v.Get(context.Background(), plainGet(session.New("s"), "/tables/films", url.Values{"page": {"2"}}))
	require.NoError(t, err)
	assert.Equal(t, ResponsePage, resp.Kind)
	assert.Equal(t, "tablespro/page.html", resp.Template)

	state := resp.Data["table"].(TableState)
	require.Len(t, state.Rows, 3)
	assert.Equal(t, int64(4), state.Rows[0].PK)
	assert.Equal(t, "tr_4", state.Rows[0].ID)
	assert.Equal(t, "td_4_1", state.Rows[0].Cells[1].ID)
	assert.True(t, state.Rows[0].Cells[1].Editable)
	assert.Equal(t, 3, state.Page.Pages)
	assert.Equal(t, "/tables/films?page=3", state.Page.NextURL)
	assert.Equal(t, "/tables/films?_scroll=1&page=3", state.Page.ScrollURL)
	assert.Equal(t, []string{"page"}, obs.kinds)
}

func TestGetWithoutSourceIsMissingConfiguration(t *testing.T) {
	v := newFilmView(nil)
	v.Source = nil
	_, err := v.Get(context.Background(), plainGet(session.New("s"), "/tables/films", url.Values{}))
	assert.ErrorIs(t, err, appErrors.ErrMissingConfiguration)

	_, err = v.Post(context.Background(), hxPost(session.New("s"), "/tables/films", url.Values{}, htmx.Details{TriggerName: "x"}))
	assert.ErrorIs(t, err, appErrors.ErrMissingConfiguration)
}

func TestGetUnknownTriggerIsInvalid(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	_, err := v.Get(context.Background(), hxGet(session.New("s"), "/tables/films", nil, htmx.Details{Trigger: "zz_unknown"}))
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequest)
}

func TestColumnToggleRerendersTableData(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	sess := session.New("s")

	resp, err := v.Get(context.Background(), hxGet(sess, "/tables/films", url.Values{"col_secret": {"on"}},
		htmx.Details{Trigger: "id_col_secret", TriggerName: "col_secret"}))
	require.NoError(t, err)
	assert.Equal(t, ResponseFragment, resp.Kind)
	assert.Equal(t, "tablespro/table_data.html", resp.Template)

	state := resp.Data["table"].(TableState)
	names := make([]string, 0, len(state.Columns))
	for _, c := range state.Columns {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"title", "budget", "secret"}, names)
}

func TestColumnToggleKeepsCurrentFilter(t *testing.T) {
	src := &filmSource{films: sampleFilms()}
	v := newFilmView(src)
	sess := session.New("s")

	resp, err := v.Get(context.Background(), hxGet(sess, "/tables/films", url.Values{"col_secret": {"on"}},
		htmx.Details{Trigger: "id_col_secret", TriggerName: "col_secret", CurrentURL: "http://localhost/tables/films?title=alien"}))
	require.NoError(t, err)
	require.Equal(t, "tablespro/table_data.html", resp.Template)

	assert.Equal(t, "alien", src.lastList.Criteria.Title)
	state := resp.Data["table"].(TableState)
	assert.Equal(t, 3, state.Page.Total)
	assert.Equal(t, "title=alien", resp.Data["query"])
}

func TestRowsPerPageRedirectsKeepingFilter(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	sess := session.New("s")

	resp, err := v.Get(context.Background(), hxGet(sess, "/tables/films", url.Values{},
		htmx.Details{Trigger: "id_row_25", TriggerName: "25", CurrentURL: "http://localhost/tables/films?title=al&page=2"}))
	require.NoError(t, err)
	path, q := redirectQuery(t, resp)
	assert.Equal(t, "/tables/films", path)
	assert.Equal(t, "25", q.Get("per_page"))
	assert.Equal(t, "al", q.Get("title"))
	assert.False(t, q.Has("page"))
	assert.Equal(t, 25, SavedPerPage(sess, "films"))

	_, err = v.Get(context.Background(), hxGet(sess, "/tables/films", url.Values{},
		htmx.Details{Trigger: "id_row_7", TriggerName: "7"}))
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequest)
}

func TestResetColumnsRefreshes(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	sess := session.New("s")
	_, err := saveColumns(sess, v.Table.columnSet(), []string{"secret"})
	require.NoError(t, err)

	resp, err := v.Get(context.Background(), hxGet(sess, "/tables/films", nil, htmx.Details{Trigger: "id_default"}))
	require.NoError(t, err)
	assert.Equal(t, ResponseRefresh, resp.Kind)

	cols, err := loadColumns(sess, v.Table.columnSet())
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "budget"}, cols)
}

func TestLoadMoreRendersRows(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	v.Layout.Pagination = PaginationScroll

	resp, err := v.Get(context.Background(), hxGet(session.New("s"), "/tables/films",
		url.Values{ScrollParam: {"1"}, "page": {"3"}}, htmx.Details{Trigger: "tr_6"}))
	require.NoError(t, err)
	assert.Equal(t, "tablespro/rows.html", resp.Template)
	state := resp.Data["table"].(TableState)
	assert.Len(t, state.Rows, 2)
	assert.False(t, state.Page.HasNext)
	assert.True(t, state.InfiniteScroll)
}

func TestFilterValueRedirect(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	resp, err := v.Get(context.Background(), hxGet(session.New("s"), "/tables/films",
		url.Values{"title": {"ran"}}, htmx.Details{Trigger: "id_title", TriggerName: "title"}))
	require.NoError(t, err)
	_, q := redirectQuery(t, resp)
	assert.Equal(t, "ran", q.Get("title"))
}

func TestInvalidFilterShowsNoRows(t *testing.T) {
	src := &filmSource{films: sampleFilms()}
	v := newFilmView(src)
	resp, err := v.Get(context.Background(), hxGet(session.New("s"), "/tables/films",
		url.Values{"budget": {"lots"}}, htmx.Details{Trigger: "form", TriggerName: "filter_form"}))
	require.NoError(t, err)

	state := resp.Data["table"].(TableState)
	assert.Empty(t, state.Rows)
	assert.Zero(t, src.listCalls)
	assert.Equal(t, "must be a number", state.Filter.Field("budget").Error)
}

func TestFilterWidgetRendersFilterTemplate(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	resp, err := v.Get(context.Background(), hxGet(session.New("s"), "/tables/films",
		url.Values{"title": {"heat"}}, htmx.Details{Trigger: "btn", TriggerName: "filter"}))
	require.NoError(t, err)
	assert.Equal(t, "tablespro/modal_filter.html", resp.Template)
	state := resp.Data["filter"].(*FilterState)
	assert.Equal(t, "heat", state.Field("title").Value)
}

func TestSizeQueryRetargetsBlockContent(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	v.Layout.Responsive = true
	resp, err := v.Get(context.Background(), hxGet(session.New("s"), "/tables/films",
		url.Values{WidthParam: {"500"}}, htmx.Details{Trigger: "size_query"}))
	require.NoError(t, err)
	assert.Equal(t, "#block_content", resp.Retarget)
	assert.Equal(t, false, resp.Data["responsive"])

	state := resp.Data["table"].(TableState)
	for _, c := range state.Columns {
		assert.NotEqual(t, "budget", c.Name)
	}
}

func TestRowAndCellClickCallbacks(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	v.Click = &ClickConfig{Method: ClickCustom}

	var gotRow int64
	var gotCell Cell
	v.Callbacks.RowClicked = func(_ context.Context, _ Request, id int64, _, _ string) (Response, error) {
		gotRow = id
		return RefreshResponse(), nil
	}
	v.Callbacks.CellClicked = func(_ context.Context, _ Request, cell Cell) (Response, error) {
		gotCell = cell
		return FragmentResponse("message.html", nil).WithRetarget("#messages"), nil
	}

	sess := session.New("s")
	_, err := v.Get(context.Background(), hxGet(sess, "/tables/films", nil, htmx.Details{Trigger: "tr_3"}))
	require.NoError(t, err)
	assert.Equal(t, int64(3), gotRow)

	resp, err := v.Get(context.Background(), hxGet(sess, "/tables/films", nil, htmx.Details{Trigger: "td_5_1", Target: "td_5_1"}))
	require.NoError(t, err)
	assert.Equal(t, "#messages", resp.Retarget)
	assert.Equal(t, Cell{RecordID: 5, Column: "budget", Target: "td_5_1"}, gotCell)

	_, err = v.Get(context.Background(), hxGet(sess, "/tables/films", nil, htmx.Details{Trigger: "td_5_9"}))
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequest)
}

func TestClickRouteResolution(t *testing.T) {
	routes := NewRoutes()
	routes.Register("film_detail", "/films/:id")
	routes.Register("film_create", "/films/new")

	v := newFilmView(&filmSource{films: sampleFilms()})
	v.Routes = routes
	v.Click = &ClickConfig{Method: ClickHXGet, RouteName: "film_detail"}
	resp, err := v.Get(context.Background(), plainGet(session.New("s"), "/tables/films", url.Values{}))
	require.NoError(t, err)
	state := resp.Data["table"].(TableState)
	assert.True(t, state.Click.RequiresID)
	assert.Equal(t, "#modals-here", state.Click.Target)
	assert.Equal(t, "/films/1", state.Rows[0].Href)

	v.Click.RouteName = "film_create"
	resp, err = v.Get(context.Background(), plainGet(session.New("s"), "/tables/films", url.Values{}))
	require.NoError(t, err)
	state = resp.Data["table"].(TableState)
	assert.False(t, state.Click.RequiresID)
	assert.Equal(t, "/films/new", state.Click.URL)

	v.Click.RouteName = "missing"
	resp, err = v.Get(context.Background(), plainGet(session.New("s"), "/tables/films", url.Values{}))
	require.NoError(t, err)
	state = resp.Data["table"].(TableState)
	assert.Empty(t, state.Click.URL)
	assert.Empty(t, state.Rows[0].Href)
}

func TestCellChanged(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	var got Cell
	v.Callbacks.CellChanged = func(_ context.Context, _ Request, cell Cell) (Response, error) {
		got = cell
		return FragmentResponse("cell.html", nil), nil
	}
	sess := session.New("s")

	_, err := v.Post(context.Background(), hxPost(sess, "/tables/films", url.Values{"td_2_1": {"99"}}, htmx.Details{Target: "td_2_1"}))
	require.NoError(t, err)
	assert.Equal(t, Cell{RecordID: 2, Column: "budget", Target: "td_2_1", Value: "99"}, got)

	_, err = v.Post(context.Background(), hxPost(sess, "/tables/films", url.Values{"td_2_0": {"x"}}, htmx.Details{Target: "td_2_0"}))
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequest)
}

func TestCellChangedReadsTargetCellFromWholeForm(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	var got Cell
	v.Callbacks.CellChanged = func(_ context.Context, _ Request, cell Cell) (Response, error) {
		got = cell
		return FragmentResponse("cell.html", nil), nil
	}
	// every editable input of the page travels with the enclosing form
	form := url.Values{
		"td_1_1":          {"1000"},
		"td_2_1":          {"2000"},
		"td_3_1":          {"7777"},
		"select-checkbox": {"1"},
	}

	_, err := v.Post(context.Background(), hxPost(session.New("s"), "/tables/films", form, htmx.Details{Target: "td_3_1"}))
	require.NoError(t, err)
	assert.Equal(t, int64(3), got.RecordID)
	assert.Equal(t, "7777", got.Value)
}

func TestColumnsSaveForm(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	sess := session.New("s")
	form := url.Values{"columns_save": {""}, "secret": {"on"}, "title": {"on"}, "budget": {""}}

	resp, err := v.Post(context.Background(), Request{Method: "POST", Path: "/tables/films", Query: url.Values{}, Form: form, Session: sess})
	require.NoError(t, err)
	assert.Equal(t, "tablespro/table_data.html", resp.Template)

	cols, err := loadColumns(sess, v.Table.columnSet())
	require.NoError(t, err)
	assert.Equal(t, []string{"title", "secret"}, cols)
}

func TestBulkActionDispatch(t *testing.T) {
	src := &filmSource{films: sampleFilms()}
	v := newFilmView(src)
	var got ActionRequest[film]
	v.Selection = &SelectionConfig[film]{Actions: []Action[film]{
		{Name: "action_modal", Label: "Modal", Handle: func(_ context.Context, req ActionRequest[film]) (*Response, error) {
			got = req
			resp := FragmentResponse("action_modal.html", map[string]any{"selected": req.Records})
			return &resp, nil
		}},
		{Name: "noop", Label: "Nothing", Handle: func(context.Context, ActionRequest[film]) (*Response, error) {
			return nil, nil
		}},
	}}
	sess := session.New("s")

	resp, err := v.Post(context.Background(), hxPost(sess, "/tables/films",
		url.Values{selectIDsField: {"2", "4"}}, htmx.Details{TriggerName: "action_modal"}))
	require.NoError(t, err)
	assert.Equal(t, "action_modal.html", resp.Template)
	assert.Equal(t, SubsetSelected, got.Subset)
	require.Len(t, got.Records, 2)
	assert.Equal(t, "Aliens", got.Records[0].Title)

	resp, err = v.Post(context.Background(), hxPost(sess, "/tables/films",
		url.Values{selectAllField: {"on"}, actionQueryField: {"?title=alien"}}, htmx.Details{TriggerName: "action_modal"}))
	require.NoError(t, err)
	assert.Equal(t, SubsetAll, got.Subset)
	assert.Len(t, got.Records, 3)
	assert.Empty(t, got.IDs)

	resp, err = v.Post(context.Background(), hxPost(sess, "/tables/films", url.Values{}, htmx.Details{TriggerName: "noop"}))
	require.NoError(t, err)
	assert.Equal(t, ResponseRefresh, resp.Kind)

	_, err = v.Post(context.Background(), hxPost(sess, "/tables/films", url.Values{}, htmx.Details{TriggerName: "zz_unknown"}))
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequest)

	_, err = v.Post(context.Background(), hxPost(sess, "/tables/films",
		url.Values{selectIDsField: {"two"}}, htmx.Details{TriggerName: "noop"}))
	assert.ErrorIs(t, err, appErrors.ErrInvalidRequest)
}

func TestSelectAllExportMatchesFilterCount(t *testing.T) {
	src := &filmSource{films: sampleFilms()}
	v := newFilmView(src)
	obs := &observerStub{}
	v.Observer = obs
	sess := session.New("s")

	resp, err := v.Post(context.Background(), hxPost(sess, "/tables/films",
		url.Values{selectAllField: {"on"}, actionQueryField: {"?title=alien"}}, htmx.Details{TriggerName: "export"}))
	require.NoError(t, err)
	path, q := redirectQuery(t, resp)
	assert.Equal(t, "/tables/films", path)
	assert.Equal(t, "csv", q.Get(ExportParam))
	assert.Equal(t, "all", q.Get(SubsetParam))

	resp, err = v.Get(context.Background(), plainGet(sess, path, q))
	require.NoError(t, err)
	require.Equal(t, ResponseFile, resp.Kind)
	assert.Equal(t, "films.csv", resp.File.Name)

	_, want, err := src.List(context.Background(), ListParams[filmCriteria]{Criteria: filmCriteria{Title: "alien"}})
	require.NoError(t, err)
	rows := readCSV(t, resp.File.Body)
	assert.Len(t, rows, want+1)
	assert.Equal(t, []int{want}, obs.exports)
	assert.False(t, sess.Has(selectionKey("films")))
}

func TestSelectAllExportFollowsCurrentURLOverStaleForm(t *testing.T) {
	src := &filmSource{films: sampleFilms()}
	v := newFilmView(src)
	sess := session.New("s")

	// the hidden query field still holds the unfiltered page while htmx has
	// already pushed the filtered URL
	resp, err := v.Post(context.Background(), hxPost(sess, "/tables/films",
		url.Values{selectAllField: {"on"}, actionQueryField: {"?"}},
		htmx.Details{TriggerName: "export", CurrentURL: "http://localhost/tables/films?title=alien"}))
	require.NoError(t, err)
	path, q := redirectQuery(t, resp)
	assert.Equal(t, "alien", q.Get("title"))

	var sel Selection
	found, err := sess.Get(selectionKey("films"), &sel)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, sel.All)
	assert.Equal(t, "title=alien", sel.Query)

	resp, err = v.Get(context.Background(), plainGet(sess, path, q))
	require.NoError(t, err)
	_, want, err := src.List(context.Background(), ListParams[filmCriteria]{Criteria: filmCriteria{Title: "alien"}})
	require.NoError(t, err)
	assert.Len(t, readCSV(t, resp.File.Body), want+1)
	assert.Less(t, want, len(sampleFilms()))
}

func TestActionQueryTreatsBareQuestionMarkAsEmpty(t *testing.T) {
	q := actionQuery(Request{Form: url.Values{actionQueryField: {"?"}}})
	assert.Empty(t, q)

	q = actionQuery(Request{Form: url.Values{actionQueryField: {"?title=ran"}}})
	assert.Equal(t, "ran", q.Get("title"))
}

func TestExportSelectedIDs(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	sess := session.New("s")
	// defaults leave secret hidden
	_, err := loadColumns(sess, v.Table.columnSet())
	require.NoError(t, err)

	resp, err := v.Post(context.Background(), hxPost(sess, "/tables/films",
		url.Values{selectIDsField: {"1", "3", "5"}}, htmx.Details{TriggerName: "export"}))
	require.NoError(t, err)
	path, q := redirectQuery(t, resp)
	assert.Equal(t, "selected", q.Get(SubsetParam))

	resp, err = v.Get(context.Background(), plainGet(sess, path, q))
	require.NoError(t, err)
	rows := readCSV(t, resp.File.Body)
	assert.Equal(t, [][]string{
		{"Title", "Budget"},
		{"Alien", "1000"},
		{"Heat", "3000"},
		{"Brazil", "5000"},
	}, rows)

	// the selection was consumed: a second download of "selected" is empty
	resp, err = v.Get(context.Background(), plainGet(sess, path, q))
	require.NoError(t, err)
	assert.Len(t, readCSV(t, resp.File.Body), 1)
}

func TestExportXLSXAction(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	sess := session.New("s")
	resp, err := v.Post(context.Background(), hxPost(sess, "/tables/films",
		url.Values{selectIDsField: {"1"}}, htmx.Details{TriggerName: "export_xlsx"}))
	require.NoError(t, err)
	path, q := redirectQuery(t, resp)
	assert.Equal(t, "xlsx", q.Get(ExportParam))

	resp, err = v.Get(context.Background(), plainGet(sess, path, q))
	require.NoError(t, err)
	assert.Equal(t, "films.xlsx", resp.File.Name)
	assert.NotEmpty(t, resp.File.Body)
}

func TestExportUnsupportedFormat(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	sess := session.New("s")

	resp, err := v.Get(context.Background(), plainGet(sess, "/tables/films", url.Values{ExportParam: {"pdf"}}))
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedExportFormat)
	assert.Nil(t, resp.File)

	_, err = v.Post(context.Background(), hxPost(sess, "/tables/films",
		url.Values{selectIDsField: {"1"}}, htmx.Details{TriggerName: "export_pdf"}))
	assert.ErrorIs(t, err, appErrors.ErrUnsupportedExportFormat)
	assert.False(t, sess.Has(selectionKey("films")))
}

func TestExportWithEveryColumnHiddenIsRejected(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	sess := session.New("s")
	_, err := saveColumns(sess, v.Table.columnSet(), []string{})
	require.NoError(t, err)

	resp, err := v.Get(context.Background(), plainGet(sess, "/tables/films", url.Values{ExportParam: {"csv"}}))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
	assert.Nil(t, resp.File)

	var appErr *appErrors.Error
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, http.StatusBadRequest, appErr.Status)
}

func TestConfigureDoesNotMutateView(t *testing.T) {
	v := newFilmView(&filmSource{films: sampleFilms()})
	sticky := true
	style := FilterModal
	mode := PaginationLoad

	c := v.Configure(Overrides{StickyHeader: &sticky, FilterStyle: &style, Pagination: &mode})
	configured := c.(*View[film, filmCriteria])
	assert.True(t, configured.Layout.StickyHeader)
	assert.Equal(t, FilterModal, configured.Filter.Style)
	assert.Equal(t, PaginationLoad, configured.Layout.Pagination)

	assert.False(t, v.Layout.StickyHeader)
	assert.Equal(t, FilterToolbar, v.Filter.Style)
	assert.Equal(t, PaginationPaged, v.Layout.Pagination)
}

func TestSelectedRecords(t *testing.T) {
	src := &filmSource{films: sampleFilms()}
	sess := session.New("s")
	req := plainGet(sess, "/action", url.Values{"title": {"ran"}})

	require.NoError(t, StoreSelection(sess, "films", Selection{IDs: []int64{7}}))
	got, err := SelectedRecords[film, filmCriteria](context.Background(), req, "films", src, filmFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ronin", got[0].Title)

	got, err = SelectedRecords[film, filmCriteria](context.Background(), req, "films", src, filmFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Ran", got[0].Title)

	_, err = SelectedRecords[film, filmCriteria](context.Background(), req, "films", nil, filmFilter{})
	assert.ErrorIs(t, err, appErrors.ErrMissingConfiguration)
}
