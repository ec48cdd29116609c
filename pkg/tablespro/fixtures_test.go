package tablespro

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/tables-pro/pkg/htmx"
	"github.com/noah-isme/tables-pro/pkg/session"
)

type film struct {
	ID     int64
	Title  string
	Budget int
	Secret string
}

type filmCriteria struct {
	Title     string
	MinBudget int
}

type filmFilter struct{}

func (filmFilter) Fields() []FilterField {
	return []FilterField{
		{Name: "title", Label: "Title", Type: "text"},
		{Name: "budget", Label: "Budget greater than", Type: "number"},
	}
}

func (filmFilter) Bind(values url.Values) (filmCriteria, FieldErrors) {
	c := filmCriteria{Title: values.Get("title")}
	errs := FieldErrors{}
	if raw := values.Get("budget"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			errs["budget"] = "must be a number"
		}
		c.MinBudget = n
	}
	return c, errs
}

type filmSource struct {
	films     []film
	lastList  ListParams[filmCriteria]
	listCalls int
}

func (s *filmSource) match(c filmCriteria) []film {
	var out []film
	for _, f := range s.films {
		if c.Title != "" && !strings.Contains(strings.ToLower(f.Title), strings.ToLower(c.Title)) {
			continue
		}
		if c.MinBudget > 0 && f.Budget <= c.MinBudget {
			continue
		}
		out = append(out, f)
	}
	return out
}

func (s *filmSource) List(_ context.Context, p ListParams[filmCriteria]) ([]film, int, error) {
	s.lastList = p
	s.listCalls++
	all := s.match(p.Criteria)
	if p.PerPage <= 0 {
		return all, len(all), nil
	}
	start := (p.Page - 1) * p.PerPage
	if start >= len(all) {
		return nil, len(all), nil
	}
	end := start + p.PerPage
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], len(all), nil
}

func (s *filmSource) FindByIDs(_ context.Context, ids []int64) ([]film, error) {
	want := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	var out []film
	for _, f := range s.films {
		if _, ok := want[f.ID]; ok {
			out = append(out, f)
		}
	}
	return out, nil
}

func sampleFilms() []film {
	titles := []string{"Alien", "Aliens", "Heat", "Ran", "Brazil", "Alien 3", "Ronin", "Seven"}
	out := make([]film, 0, len(titles))
	for i, title := range titles {
		out = append(out, film{ID: int64(i + 1), Title: title, Budget: (i + 1) * 1000, Secret: "s" + strconv.Itoa(i+1)})
	}
	return out
}

func filmTable() Table[film] {
	return Table[film]{
		Name: "films",
		Columns: []Column[film]{
			{Name: SelectionColumn},
			{Name: "title", Label: "Title", Value: func(f film) string { return f.Title }},
			{Name: "budget", Label: "Budget", Value: func(f film) string { return strconv.Itoa(f.Budget) }, MinWidth: 600},
			{Name: "secret", Label: "Secret", Value: func(f film) string { return f.Secret }},
		},
		DefaultColumns:  []string{"title", "budget"},
		EditableColumns: []string{"budget"},
		Selection:       true,
		PK:              func(f film) int64 { return f.ID },
	}
}

func newFilmView(src *filmSource) *View[film, filmCriteria] {
	return &View[film, filmCriteria]{
		Slug:    "films",
		Heading: "Films",
		Table:   filmTable(),
		Source:  src,
		Filter:  &FilterConfig[filmCriteria]{Set: filmFilter{}, Style: FilterToolbar},
		Export:  &ExportConfig{Name: "films", Formats: []string{FormatCSV, FormatXLSX}},
		PerPage: 3,
	}
}

func hxGet(sess *session.Session, path string, query url.Values, hx htmx.Details) Request {
	hx.Enabled = true
	if query == nil {
		query = url.Values{}
	}
	return Request{Method: "GET", Path: path, Query: query, Form: url.Values{}, HX: hx, Session: sess}
}

func hxPost(sess *session.Session, path string, form url.Values, hx htmx.Details) Request {
	hx.Enabled = true
	return Request{Method: "POST", Path: path, Query: url.Values{}, Form: form, HX: hx, Session: sess}
}

func plainGet(sess *session.Session, path string, query url.Values) Request {
	return Request{Method: "GET", Path: path, Query: query, Form: url.Values{}, Session: sess}
}
