package tables

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tables-pro/internal/models"
	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
	"github.com/noah-isme/tables-pro/pkg/htmx"
	"github.com/noah-isme/tables-pro/pkg/session"
	"github.com/noah-isme/tables-pro/pkg/tablespro"
)

type movieServiceStub struct {
	movies  []models.Movie
	updated map[string]int64
}

func ptr[T any](v T) *T { return &v }

func newMovieServiceStub() *movieServiceStub {
	released := time.Date(1979, 5, 25, 0, 0, 0, 0, time.UTC)
	return &movieServiceStub{
		movies: []models.Movie{
			{ID: 1, Title: ptr("Alien"), Budget: ptr(int64(11000000)), Revenue: ptr(int64(104931801)), ReleaseDate: &released},
			{ID: 2, Title: ptr("Heat"), Budget: ptr(int64(60000000)), Revenue: ptr(int64(187436818))},
			{ID: 3, Title: ptr("Ronin"), Budget: ptr(int64(55000000)), Revenue: ptr(int64(41610884))},
		},
		updated: map[string]int64{},
	}
}

func (s *movieServiceStub) match(f models.MovieFilter) []models.Movie {
	var out []models.Movie
	for _, m := range s.movies {
		if f.Title != "" && !strings.Contains(strings.ToLower(m.DisplayTitle()), strings.ToLower(f.Title)) {
			continue
		}
		out = append(out, m)
	}
	return out
}

func (s *movieServiceStub) List(_ context.Context, p tablespro.ListParams[models.MovieFilter]) ([]models.Movie, int, error) {
	all := s.match(p.Criteria)
	return all, len(all), nil
}

func (s *movieServiceStub) FindByIDs(_ context.Context, ids []int64) ([]models.Movie, error) {
	var out []models.Movie
	for _, m := range s.movies {
		for _, id := range ids {
			if m.ID == id {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

func (s *movieServiceStub) Get(_ context.Context, id int64) (*models.Movie, error) {
	for i := range s.movies {
		if s.movies[i].ID == id {
			return &s.movies[i], nil
		}
	}
	return nil, appErrors.Clone(appErrors.ErrNotFound, "movie not found")
}

func (s *movieServiceStub) UpdateCell(ctx context.Context, id int64, column, raw string) (*models.Movie, error) {
	if raw == "bad" {
		return nil, appErrors.Clone(appErrors.ErrValidation, column+" must be a whole number")
	}
	m, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	m.Revenue = ptr(int64(2500))
	s.updated[column] = id
	return m, nil
}

func (s *movieServiceStub) Filter() tablespro.FilterSet[models.MovieFilter] { return titleFilter{} }

type titleFilter struct{}

func (titleFilter) Fields() []tablespro.FilterField {
	return []tablespro.FilterField{{Name: "title", Label: "Title contains", Type: "text"}}
}

func (titleFilter) Bind(values url.Values) (models.MovieFilter, tablespro.FieldErrors) {
	return models.MovieFilter{Title: values.Get("title")}, tablespro.FieldErrors{}
}

func buildRegistry(t *testing.T) (*Registry, *movieServiceStub, *tablespro.Routes) {
	t.Helper()
	svc := newMovieServiceStub()
	routes := tablespro.NewRoutes()
	return Build(svc, Options{PerPage: 10, ExportName: "movies", Routes: routes}), svc, routes
}

func hxPost(sess *session.Session, path string, form url.Values, hx htmx.Details) tablespro.Request {
	hx.Enabled = true
	return tablespro.Request{Method: "POST", Path: path, Query: url.Values{}, Form: form, HX: hx, Session: sess}
}

func TestBuildRegistersViewsInMenuOrder(t *testing.T) {
	reg, _, routes := buildRegistry(t)

	var slugs []string
	for _, v := range reg.All() {
		slugs = append(slugs, v.Name())
	}
	assert.Equal(t, []string{
		"basic", "rowcol", "select", "infinite_scroll", "infinite_load", "responsive",
		"filter_toolbar", "filter_modal", "filter_header", "editable",
		"row_click", "row_click_modal", "custom_click", "interactive",
	}, slugs)
	assert.Equal(t, "basic", reg.First().Name())
	assert.True(t, reg.Interactive("select"))
	assert.False(t, reg.Interactive("basic"))

	_, ok := reg.Lookup("missing")
	assert.False(t, ok)

	detail, err := routes.Resolve(RouteMovieDetail)
	require.NoError(t, err)
	assert.Equal(t, "/movies/7", detail.URL(7))
	action, err := routes.Resolve(RouteActionPage)
	require.NoError(t, err)
	assert.False(t, action.RequiresID)
}

func TestRegistryAddReplacesSameSlug(t *testing.T) {
	reg := NewRegistry()
	reg.Add(&movieView{Slug: "a", Heading: "First"}, false)
	reg.Add(&movieView{Slug: "b"}, false)
	reg.Add(&movieView{Slug: "a", Heading: "Second"}, true)

	require.Len(t, reg.All(), 2)
	assert.Equal(t, "Second", reg.First().Title())
	assert.True(t, reg.Interactive("a"))
}

func TestBasicViewRendersCaption(t *testing.T) {
	reg, _, _ := buildRegistry(t)
	v, ok := reg.Lookup("basic")
	require.True(t, ok)

	resp, err := v.Get(context.Background(), tablespro.Request{Method: "GET", Path: "/tables/basic", Query: url.Values{}, Form: url.Values{}, Session: session.New("s")})
	require.NoError(t, err)
	assert.Equal(t, tablespro.ResponsePage, resp.Kind)
	assert.Equal(t, "This table has a caption", resp.Data["caption"])
}

func TestActionModalListsSelectedMovies(t *testing.T) {
	reg, _, _ := buildRegistry(t)
	v, _ := reg.Lookup("select")

	resp, err := v.Post(context.Background(), hxPost(session.New("s"), "/tables/select",
		url.Values{"select-checkbox": {"1", "3"}}, htmx.Details{TriggerName: "action_modal"}))
	require.NoError(t, err)
	assert.Equal(t, "movies/action_modal.html", resp.Template)
	assert.Equal(t, "#modals-here", resp.Retarget)
	selected := resp.Data["selected"].([]models.Movie)
	require.Len(t, selected, 2)
	assert.Equal(t, "Ronin", selected[1].DisplayTitle())
}

func TestActionPageStoresSelectionAndRedirects(t *testing.T) {
	reg, _, _ := buildRegistry(t)
	v, _ := reg.Lookup("select")
	sess := session.New("s")

	resp, err := v.Post(context.Background(), hxPost(sess, "/tables/select",
		url.Values{"select_all": {"on"}, "query": {"?title=ron"}},
		htmx.Details{TriggerName: "action_page", CurrentURL: "http://localhost/tables/select?title=ron"}))
	require.NoError(t, err)
	require.Equal(t, tablespro.ResponseRedirect, resp.Kind)

	u, err := url.Parse(resp.URL)
	require.NoError(t, err)
	assert.Equal(t, "/action", u.Path)
	assert.Equal(t, "movies_selection", u.Query().Get("table"))
	assert.Equal(t, "/tables/select?title=ron", u.Query().Get("return"))

	sel, found, err := tablespro.ConsumeSelection(sess, "movies_selection")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, sel.All)
	assert.Equal(t, "title=ron", sel.Query)
}

func TestActionMessageCountsRecords(t *testing.T) {
	reg, _, _ := buildRegistry(t)
	v, _ := reg.Lookup("infinite_scroll")

	resp, err := v.Post(context.Background(), hxPost(session.New("s"), "/tables/infinite_scroll",
		url.Values{"select_all": {"on"}}, htmx.Details{TriggerName: "action_message"}))
	require.NoError(t, err)
	assert.Equal(t, "#messages", resp.Retarget)
	assert.Equal(t, "Action applied to 3 movies.", resp.Data["message"])
}

func TestEditableCellChange(t *testing.T) {
	reg, svc, _ := buildRegistry(t)
	v, _ := reg.Lookup("editable")

	resp, err := v.Post(context.Background(), hxPost(session.New("s"), "/tables/editable",
		url.Values{"td_1_1": {"900"}, "td_2_1": {"2500"}}, htmx.Details{Target: "td_2_1"}))
	require.NoError(t, err)
	assert.Equal(t, "movies/cell.html", resp.Template)
	assert.Equal(t, "td_2_1", resp.Data["id"])
	assert.Equal(t, "$2,500", resp.Data["value"])
	assert.Equal(t, int64(2), svc.updated["revenue"])

	_, err = v.Post(context.Background(), hxPost(session.New("s"), "/tables/editable",
		url.Values{"td_2_1": {"bad"}}, htmx.Details{Target: "td_2_1"}))
	assert.ErrorIs(t, err, appErrors.ErrValidation)
}

func TestCustomCellClickShowsMessage(t *testing.T) {
	reg, _, _ := buildRegistry(t)
	v, _ := reg.Lookup("custom_click")

	resp, err := v.Get(context.Background(), tablespro.Request{
		Method: "GET", Path: "/tables/custom_click", Query: url.Values{}, Form: url.Values{},
		HX:      htmx.Details{Enabled: true, Trigger: "td_1_1", Target: "td_1_1"},
		Session: session.New("s"),
	})
	require.NoError(t, err)
	assert.Equal(t, "#messages", resp.Retarget)
	assert.Equal(t, "'Alien', primary key: 1, column: budget was clicked.", resp.Data["message"])
}

func TestMoneyFormatting(t *testing.T) {
	assert.Equal(t, "", money(nil))
	assert.Equal(t, "$0", money(ptr(int64(0))))
	assert.Equal(t, "$999", money(ptr(int64(999))))
	assert.Equal(t, "$1,000", money(ptr(int64(1000))))
	assert.Equal(t, "-$12,345,678", money(ptr(int64(-12345678))))
}
