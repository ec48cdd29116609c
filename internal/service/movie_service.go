package service

import (
	"context"
	"database/sql"
	"errors"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tables-pro/internal/models"
	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
	"github.com/noah-isme/tables-pro/pkg/tablespro"
)

const dateLayout = "2006-01-02"

const movieCacheTTL = 5 * time.Minute

type movieRepository interface {
	List(ctx context.Context, params models.MovieListParams) ([]models.Movie, int, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Movie, error)
	FindByID(ctx context.Context, id int64) (*models.Movie, error)
	UpdateField(ctx context.Context, id int64, column string, value int64) error
}

// movieFilterInput is the raw filter query before conversion.
type movieFilterInput struct {
	Title       string `form:"title" validate:"omitempty,max=200"`
	Budget      string `form:"budget" validate:"omitempty,number"`
	ReleaseDate string `form:"release_date" validate:"omitempty,datetime=2006-01-02"`
}

// movieEditInput is an inline edit of a numeric movie column.
type movieEditInput struct {
	Value int64 `form:"value" validate:"gte=0"`
}

// MovieService serves movie tables, details and inline edits.
type MovieService struct {
	repo      movieRepository
	validator *validator.Validate
	cache     *CacheService
	logger    *zap.Logger
}

// NewMovieService constructs the movie service.
func NewMovieService(repo movieRepository, validate *validator.Validate, logger *zap.Logger) *MovieService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name := f.Tag.Get("form"); name != "" {
			return name
		}
		return f.Name
	})
	return &MovieService{repo: repo, validator: validate, logger: logger}
}

// WithCache serves single movie lookups through cache.
func (s *MovieService) WithCache(cache *CacheService) *MovieService {
	s.cache = cache
	return s
}

func movieCacheKey(id int64) string {
	return "movie:" + strconv.FormatInt(id, 10)
}

// List returns one page of movies for a table view.
func (s *MovieService) List(ctx context.Context, params tablespro.ListParams[models.MovieFilter]) ([]models.Movie, int, error) {
	movies, total, err := s.repo.List(ctx, models.MovieListParams{
		Filter:   params.Criteria,
		Page:     params.Page,
		PageSize: params.PerPage,
		SortBy:   params.OrderBy,
	})
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list movies")
	}
	return movies, total, nil
}

// FindByIDs returns the movies with the given ids.
func (s *MovieService) FindByIDs(ctx context.Context, ids []int64) ([]models.Movie, error) {
	movies, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selected movies")
	}
	return movies, nil
}

// Get returns a single movie.
func (s *MovieService) Get(ctx context.Context, id int64) (*models.Movie, error) {
	key := movieCacheKey(id)
	var cached models.Movie
	if hit, _ := s.cache.Get(ctx, key, &cached); hit {
		return &cached, nil
	}

	movie, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "movie not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load movie")
	}
	_ = s.cache.Set(ctx, key, movie, movieCacheTTL)
	return movie, nil
}

// UpdateCell validates and stores an inline edit, returning the updated movie.
func (s *MovieService) UpdateCell(ctx context.Context, id int64, column, raw string) (*models.Movie, error) {
	switch column {
	case "revenue", "vote_count":
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, column+" cannot be edited")
	}
	value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, column+" must be a whole number")
	}
	if err := s.validator.Struct(movieEditInput{Value: value}); err != nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, column+" must not be negative")
	}
	if err := s.repo.UpdateField(ctx, id, column, value); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "movie not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update movie")
	}
	_ = s.cache.Invalidate(ctx, movieCacheKey(id))
	s.logger.Info("movie cell updated", zap.Int64("movie_id", id), zap.String("column", column), zap.Int64("value", value))
	return s.Get(ctx, id)
}

// Filter returns the filter set used by filtered movie tables.
func (s *MovieService) Filter() tablespro.FilterSet[models.MovieFilter] {
	return movieFilterSet{validator: s.validator}
}

type movieFilterSet struct {
	validator *validator.Validate
}

// Fields lists the filter inputs in display order.
func (movieFilterSet) Fields() []tablespro.FilterField {
	return []tablespro.FilterField{
		{Name: "title", Label: "Title contains", Type: "text"},
		{Name: "budget", Label: "Budget greater than", Type: "number"},
		{Name: "release_date", Label: "Released on or after", Type: "date"},
	}
}

var filterMessages = map[string]string{
	"max":      "is too long",
	"number":   "must be a number",
	"datetime": "must be a date (YYYY-MM-DD)",
}

// Bind validates the filter query and converts it into criteria.
func (f movieFilterSet) Bind(values url.Values) (models.MovieFilter, tablespro.FieldErrors) {
	in := movieFilterInput{
		Title:       strings.TrimSpace(values.Get("title")),
		Budget:      strings.TrimSpace(values.Get("budget")),
		ReleaseDate: strings.TrimSpace(values.Get("release_date")),
	}
	errs := tablespro.FieldErrors{}
	if err := f.validator.Struct(in); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			errs["title"] = err.Error()
			return models.MovieFilter{}, errs
		}
		for _, fe := range verrs {
			msg, ok := filterMessages[fe.Tag()]
			if !ok {
				msg = "is invalid"
			}
			errs[fe.Field()] = msg
		}
		return models.MovieFilter{}, errs
	}

	criteria := models.MovieFilter{Title: in.Title}
	if in.Budget != "" {
		budget, err := strconv.ParseInt(in.Budget, 10, 64)
		if err != nil {
			errs["budget"] = filterMessages["number"]
			return models.MovieFilter{}, errs
		}
		criteria.BudgetOver = &budget
	}
	if in.ReleaseDate != "" {
		released, err := time.Parse(dateLayout, in.ReleaseDate)
		if err != nil {
			errs["release_date"] = filterMessages["datetime"]
			return models.MovieFilter{}, errs
		}
		criteria.ReleasedOn = &released
	}
	return criteria, errs
}
