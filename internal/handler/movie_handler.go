package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/tables-pro/internal/models"
	"github.com/noah-isme/tables-pro/internal/tables"
	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
	"github.com/noah-isme/tables-pro/pkg/htmx"
	"github.com/noah-isme/tables-pro/pkg/response"
	"github.com/noah-isme/tables-pro/pkg/tablespro"
)

// selectionTables are the tables whose selections the action page accepts.
var selectionTables = map[string]bool{
	tables.MovieTableSelection().Name:  true,
	tables.MovieTableResponsive().Name: true,
}

// MovieHandler serves movie detail pages and the follow-up page of bulk actions.
type MovieHandler struct {
	movies tables.MovieService
	logger *zap.Logger
}

// NewMovieHandler constructs a movie handler.
func NewMovieHandler(movies tables.MovieService, logger *zap.Logger) *MovieHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MovieHandler{movies: movies, logger: logger}
}

// Detail godoc
// @Summary Movie detail page
// @Tags Movies
// @Produce html
// @Param id path int true "Movie ID"
// @Success 200 {string} string "HTML"
// @Failure 404 {object} response.Envelope
// @Router /movies/{id} [get]
func (h *MovieHandler) Detail(c *gin.Context) {
	movie, ok := h.movie(c)
	if !ok {
		return
	}
	response.HTML(c, http.StatusOK, "movies/movie_detail.html", gin.H{
		"title": movie.DisplayTitle(),
		"movie": movie,
		"back":  safeReturn(c.Query("return"), "/"),
	})
}

// Modal godoc
// @Summary Movie detail modal
// @Description Returns a modal fragment for htmx requests; plain requests are redirected to the detail page.
// @Tags Movies
// @Produce html
// @Param id path int true "Movie ID"
// @Success 200 {string} string "HTML fragment"
// @Failure 404 {object} response.Envelope
// @Router /movies/{id}/modal [get]
func (h *MovieHandler) Modal(c *gin.Context) {
	if !htmx.FromRequest(c.Request).Enabled {
		c.Redirect(http.StatusFound, "/movies/"+c.Param("id"))
		return
	}
	movie, ok := h.movie(c)
	if !ok {
		return
	}
	response.HTML(c, http.StatusOK, "movies/movie_modal.html", gin.H{
		"title": movie.DisplayTitle(),
		"movie": movie,
	})
}

// ActionPage godoc
// @Summary Follow-up page of a bulk action
// @Description Lists the records selected on the originating table. The stored selection is consumed by this request.
// @Tags Movies
// @Produce html
// @Param table query string true "Table the selection was made on"
// @Param return query string false "Path of the originating page"
// @Success 200 {string} string "HTML"
// @Failure 400 {object} response.Envelope
// @Router /action [get]
func (h *MovieHandler) ActionPage(c *gin.Context) {
	table := c.Query("table")
	if !selectionTables[table] {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidRequest, "unknown selection table "+strconv.Quote(table)))
		return
	}
	req, err := tableRequest(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	// the page's own table and return params are not filter criteria
	req.Query.Del("table")
	req.Query.Del("return")

	movies, err := tablespro.SelectedRecords(c.Request.Context(), req, table, tablespro.Source[models.Movie, models.MovieFilter](h.movies), h.movies.Filter())
	if err != nil {
		response.Error(c, err)
		return
	}
	h.logger.Info("action page", zap.String("table", table), zap.Int("records", len(movies)))
	response.HTML(c, http.StatusOK, "movies/action_page.html", gin.H{
		"title":    "Selected movies",
		"selected": movies,
		"back":     safeReturn(c.Query("return"), "/"),
	})
}

func (h *MovieHandler) movie(c *gin.Context) (*models.Movie, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "movie id must be a positive integer"))
		return nil, false
	}
	movie, err := h.movies.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return nil, false
	}
	return movie, true
}

// safeReturn accepts only local absolute paths.
func safeReturn(raw, fallback string) string {
	if !strings.HasPrefix(raw, "/") || strings.HasPrefix(raw, "//") || strings.Contains(raw, "\\") {
		return fallback
	}
	return raw
}
