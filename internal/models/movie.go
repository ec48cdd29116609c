package models

import (
	"fmt"
	"time"
)

// Movie status values.
const (
	MovieStatusReleased       = "Released"
	MovieStatusPostProduction = "Post Production"
	MovieStatusInProduction   = "In Production"
	MovieStatusPlanned        = "Planned"
	MovieStatusRumored        = "Rumored"
	MovieStatusCanceled       = "Canceled"
)

// Movie is a film with its financial and rating metadata. Every attribute but the
// id is optional.
type Movie struct {
	ID          int64      `db:"id" json:"id"`
	Title       *string    `db:"title" json:"title,omitempty"`
	Overview    *string    `db:"overview" json:"overview,omitempty"`
	Tagline     *string    `db:"tagline" json:"tagline,omitempty"`
	Budget      *int64     `db:"budget" json:"budget,omitempty"`
	Revenue     *int64     `db:"revenue" json:"revenue,omitempty"`
	Runtime     *int       `db:"runtime" json:"runtime,omitempty"`
	ReleaseDate *time.Time `db:"release_date" json:"release_date,omitempty"`
	Status      *string    `db:"movie_status" json:"movie_status,omitempty"`
	Popularity  *float64   `db:"popularity" json:"popularity,omitempty"`
	VoteAverage *float64   `db:"vote_average" json:"vote_average,omitempty"`
	VoteCount   *int64     `db:"vote_count" json:"vote_count,omitempty"`
	Homepage    *string    `db:"homepage" json:"homepage,omitempty"`
}

// Profit is revenue minus budget, or nil when either is unknown.
func (m Movie) Profit() *int64 {
	if m.Budget == nil || m.Revenue == nil {
		return nil
	}
	p := *m.Revenue - *m.Budget
	return &p
}

// ProfitMargin is profit as a percentage of budget, or nil when undefined.
func (m Movie) ProfitMargin() *float64 {
	profit := m.Profit()
	if profit == nil || *m.Budget == 0 {
		return nil
	}
	margin := float64(*profit) / float64(*m.Budget) * 100
	return &margin
}

// IsSuccessful reports a positive profit.
func (m Movie) IsSuccessful() bool {
	p := m.Profit()
	return p != nil && *p > 0
}

// RuntimeFormatted renders the runtime as "2h 15m", or "" when unknown.
func (m Movie) RuntimeFormatted() string {
	if m.Runtime == nil || *m.Runtime <= 0 {
		return ""
	}
	hours, minutes := *m.Runtime/60, *m.Runtime%60
	if hours > 0 {
		return fmt.Sprintf("%dh %dm", hours, minutes)
	}
	return fmt.Sprintf("%dm", minutes)
}

// IsReleased reports whether the movie status is Released.
func (m Movie) IsReleased() bool {
	return m.Status != nil && *m.Status == MovieStatusReleased
}

// DisplayTitle returns the title or a placeholder.
func (m Movie) DisplayTitle() string {
	if m.Title == nil || *m.Title == "" {
		return "Untitled"
	}
	return *m.Title
}

// MovieFilter narrows movie listings. Zero values do not filter.
type MovieFilter struct {
	Title      string
	BudgetOver *int64
	ReleasedOn *time.Time // release_date on or after
}

// MovieListParams selects a page of movies.
type MovieListParams struct {
	Filter   MovieFilter
	Page     int
	PageSize int // zero lists every match
	SortBy   string
}
