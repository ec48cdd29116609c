package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/tables-pro/internal/models"
)

const movieColumns = "id, title, overview, tagline, budget, revenue, runtime, release_date, movie_status, popularity, vote_average, vote_count, homepage"

var movieSorts = map[string]string{
	"title":        "title",
	"budget":       "budget",
	"revenue":      "revenue",
	"runtime":      "runtime",
	"release_date": "release_date",
	"popularity":   "popularity",
	"vote_average": "vote_average",
	"vote_count":   "vote_count",
}

// likeEscaper makes user text match literally under LIKE's default backslash escape.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// movieEditable lists the columns UpdateField may write.
var movieEditable = map[string]struct{}{
	"revenue":    {},
	"vote_count": {},
}

// MovieRepository manages persistence for movies.
type MovieRepository struct {
	db *sqlx.DB
}

// NewMovieRepository constructs a MovieRepository.
func NewMovieRepository(db *sqlx.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// List returns movies matching the filter together with the total match count.
func (r *MovieRepository) List(ctx context.Context, params models.MovieListParams) ([]models.Movie, int, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}

	if params.Filter.Title != "" {
		conditions = append(conditions, fmt.Sprintf("title ILIKE $%d", len(args)+1))
		args = append(args, "%"+likeEscaper.Replace(params.Filter.Title)+"%")
	}
	if params.Filter.BudgetOver != nil {
		conditions = append(conditions, fmt.Sprintf("budget > $%d", len(args)+1))
		args = append(args, *params.Filter.BudgetOver)
	}
	if params.Filter.ReleasedOn != nil {
		conditions = append(conditions, fmt.Sprintf("release_date >= $%d", len(args)+1))
		args = append(args, *params.Filter.ReleasedOn)
	}
	where := "WHERE " + strings.Join(conditions, " AND ")

	column, order := "title", "ASC"
	sortBy := params.SortBy
	if strings.HasPrefix(sortBy, "-") {
		sortBy, order = sortBy[1:], "DESC"
	}
	if c, ok := movieSorts[sortBy]; ok {
		column = c
	} else {
		order = "ASC"
	}

	query := fmt.Sprintf("SELECT %s FROM movies %s ORDER BY %s %s NULLS LAST, id ASC", movieColumns, where, column, order)
	if params.PageSize > 0 {
		page := params.Page
		if page < 1 {
			page = 1
		}
		query += fmt.Sprintf(" LIMIT %d OFFSET %d", params.PageSize, (page-1)*params.PageSize)
	}

	var movies []models.Movie
	if err := r.db.SelectContext(ctx, &movies, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list movies: %w", err)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, "SELECT COUNT(*) FROM movies "+where, args...); err != nil {
		return nil, 0, fmt.Errorf("count movies: %w", err)
	}
	return movies, total, nil
}

// FindByIDs fetches movies by id, ordered like List.
func (r *MovieRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Movie, error) {
	if len(ids) == 0 {
		return []models.Movie{}, nil
	}
	query, args, err := sqlx.In(fmt.Sprintf("SELECT %s FROM movies WHERE id IN (?) ORDER BY title ASC NULLS LAST, id ASC", movieColumns), ids)
	if err != nil {
		return nil, fmt.Errorf("build movie id query: %w", err)
	}
	var movies []models.Movie
	if err := r.db.SelectContext(ctx, &movies, r.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("find movies by ids: %w", err)
	}
	return movies, nil
}

// FindByID fetches a single movie.
func (r *MovieRepository) FindByID(ctx context.Context, id int64) (*models.Movie, error) {
	var movie models.Movie
	if err := r.db.GetContext(ctx, &movie, fmt.Sprintf("SELECT %s FROM movies WHERE id = $1", movieColumns), id); err != nil {
		return nil, err
	}
	return &movie, nil
}

// UpdateField writes one editable numeric column of a movie.
func (r *MovieRepository) UpdateField(ctx context.Context, id int64, column string, value int64) error {
	if _, ok := movieEditable[column]; !ok {
		return fmt.Errorf("column %s is not editable", column)
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("UPDATE movies SET %s = $1 WHERE id = $2", column), value, id)
	if err != nil {
		return fmt.Errorf("update movie %s: %w", column, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update movie %s rows: %w", column, err)
	}
	if affected == 0 {
		return fmt.Errorf("update movie %d: %w", id, sql.ErrNoRows)
	}
	return nil
}
