// Package tables declares the movie tables and the demo views built on them.
package tables

import (
	"strconv"
	"strings"

	"github.com/noah-isme/tables-pro/internal/models"
	"github.com/noah-isme/tables-pro/pkg/tablespro"
)

const tableClass = "table table-sm table-hover hover-link"

func movieColumns() []tablespro.Column[models.Movie] {
	return []tablespro.Column[models.Movie]{
		{Name: "title", Label: "Title", Value: func(m models.Movie) string { return m.DisplayTitle() }},
		{Name: "budget", Label: "Budget", Value: func(m models.Movie) string { return money(m.Budget) }, MinWidth: 576},
		{Name: "revenue", Label: "Revenue", Value: func(m models.Movie) string { return money(m.Revenue) }, MinWidth: 768},
		{Name: "profit", Label: "Profit", Value: func(m models.Movie) string { return money(m.Profit()) }, MinWidth: 1200},
		{Name: "runtime", Label: "Runtime", Value: func(m models.Movie) string { return m.RuntimeFormatted() }, MinWidth: 992},
		{Name: "release_date", Label: "Released", Value: releaseDate},
		{Name: "movie_status", Label: "Status", Value: func(m models.Movie) string { return str(m.Status) }, MinWidth: 1200},
		{Name: "popularity", Label: "Popularity", Value: func(m models.Movie) string { return decimal(m.Popularity) }, MinWidth: 992},
		{Name: "vote_average", Label: "Rating", Value: func(m models.Movie) string { return decimal(m.VoteAverage) }, MinWidth: 768},
		{Name: "vote_count", Label: "Votes", Value: func(m models.Movie) string { return integer(m.VoteCount) }, MinWidth: 1200},
		{Name: "homepage", Label: "Homepage", Value: func(m models.Movie) string { return str(m.Homepage) }, MinWidth: 1400},
	}
}

var defaultMovieColumns = []string{"title", "budget", "release_date", "revenue", "runtime", "popularity"}

// MovieTable is the plain movie table.
func MovieTable() tablespro.Table[models.Movie] {
	return movieTable("movies", false)
}

// MovieTableSelection adds the selection checkbox column.
func MovieTableSelection() tablespro.Table[models.Movie] {
	return movieTable("movies_selection", true)
}

// MovieTableResponsive hides narrow-priority columns on small viewports.
func MovieTableResponsive() tablespro.Table[models.Movie] {
	return movieTable("movies_responsive", true)
}

// MovieTableEditable allows inline edits of revenue and vote count.
func MovieTableEditable() tablespro.Table[models.Movie] {
	t := movieTable("movies_editable", false)
	t.DefaultColumns = []string{"title", "release_date", "revenue", "vote_count"}
	t.EditableColumns = []string{"revenue", "vote_count"}
	return t
}

func movieTable(name string, selection bool) tablespro.Table[models.Movie] {
	columns := movieColumns()
	if selection {
		columns = append([]tablespro.Column[models.Movie]{{Name: tablespro.SelectionColumn}}, columns...)
	}
	return tablespro.Table[models.Movie]{
		Name:           name,
		Columns:        columns,
		DefaultColumns: defaultMovieColumns,
		Selection:      selection,
		Class:          tableClass,
		PK:             func(m models.Movie) int64 { return m.ID },
	}
}

func str(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func integer(v *int64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatInt(*v, 10)
}

func decimal(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 2, 64)
}

func releaseDate(m models.Movie) string {
	if m.ReleaseDate == nil {
		return ""
	}
	return m.ReleaseDate.Format("2006-01-02")
}

// money renders whole dollars with thousands separators.
func money(v *int64) string {
	if v == nil {
		return ""
	}
	n := *v
	sign := ""
	if n < 0 {
		sign, n = "-", -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	for i, d := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(d)
	}
	return sign + "$" + b.String()
}
