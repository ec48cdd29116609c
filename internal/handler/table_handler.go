package handler

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/tables-pro/internal/tables"
	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
	"github.com/noah-isme/tables-pro/pkg/htmx"
	"github.com/noah-isme/tables-pro/pkg/response"
	"github.com/noah-isme/tables-pro/pkg/session"
	"github.com/noah-isme/tables-pro/pkg/tablespro"
)

// SettingsChangedEvent is emitted after an interactive view's settings are saved.
const SettingsChangedEvent = "tableSettingsChanged"

const settingsTemplate = "movies/interactive.html"

// TableHandler serves the table views over HTTP.
type TableHandler struct {
	registry *tables.Registry
	logger   *zap.Logger
}

// NewTableHandler constructs a table handler.
func NewTableHandler(registry *tables.Registry, logger *zap.Logger) *TableHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TableHandler{registry: registry, logger: logger}
}

// Index redirects to the first table view.
func (h *TableHandler) Index(c *gin.Context) {
	first := h.registry.First()
	if first == nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "no table views registered"))
		return
	}
	c.Redirect(http.StatusFound, "/tables/"+first.Name())
}

// Show godoc
// @Summary Render a table view
// @Description Plain requests render the full page. htmx requests are classified by their trigger headers and answered with a fragment or a client directive.
// @Tags Tables
// @Produce html
// @Param slug path string true "View slug"
// @Param page query int false "Page number"
// @Param per_page query int false "Rows per page"
// @Param sort query string false "Sort column, prefixed with - for descending"
// @Param _export query string false "Download format (csv or xlsx)"
// @Success 200 {string} string "HTML"
// @Failure 400 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /tables/{slug} [get]
func (h *TableHandler) Show(c *gin.Context) {
	view, req, ok := h.prepare(c)
	if !ok {
		return
	}
	resp, err := view.Get(c.Request.Context(), req)
	if err != nil {
		h.fail(c, view, err)
		return
	}
	h.write(c, view, resp)
}

// Dispatch godoc
// @Summary Submit a table form
// @Description Handles inline cell edits, column settings forms and bulk actions on selected rows.
// @Tags Tables
// @Accept x-www-form-urlencoded
// @Produce html
// @Param slug path string true "View slug"
// @Success 200 {string} string "HTML"
// @Failure 400 {object} response.Envelope
// @Router /tables/{slug} [post]
func (h *TableHandler) Dispatch(c *gin.Context) {
	view, req, ok := h.prepare(c)
	if !ok {
		return
	}
	resp, err := view.Post(c.Request.Context(), req)
	if err != nil {
		h.fail(c, view, err)
		return
	}
	h.write(c, view, resp)
}

// Settings godoc
// @Summary Render the layout settings form of an interactive view
// @Tags Tables
// @Produce html
// @Param slug path string true "View slug"
// @Success 200 {string} string "HTML"
// @Failure 404 {object} response.Envelope
// @Router /tables/{slug}/settings [get]
func (h *TableHandler) Settings(c *gin.Context) {
	view, ok := h.interactive(c)
	if !ok {
		return
	}
	overrides, err := loadOverrides(session.FromContext(c), view.Name())
	if err != nil {
		h.logger.Warn("discarding stored table settings", zap.String("view", view.Name()), zap.Error(err))
	}
	response.HTML(c, http.StatusOK, settingsTemplate, gin.H{
		"view":     view.Name(),
		"title":    view.Title(),
		"settings": overrides,
		"flags":    settingFlags(overrides),
	})
}

// SaveSettings godoc
// @Summary Store layout settings for an interactive view
// @Tags Tables
// @Accept x-www-form-urlencoded
// @Param slug path string true "View slug"
// @Success 200 {string} string "empty body with HX-Trigger"
// @Failure 400 {object} response.Envelope
// @Router /tables/{slug}/settings [post]
func (h *TableHandler) SaveSettings(c *gin.Context) {
	view, ok := h.interactive(c)
	if !ok {
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrInvalidRequest, "malformed settings form"))
		return
	}
	overrides, err := tablespro.ParseOverrides(c.Request.PostForm)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := session.FromContext(c).Set(settingsKey(view.Name()), overrides); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store settings"))
		return
	}
	h.logger.Info("table settings saved", zap.String("view", view.Name()))
	if err := htmx.Trigger(c, SettingsChangedEvent, nil); err != nil {
		response.Error(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// ResetSettings godoc
// @Summary Drop stored layout settings for an interactive view
// @Tags Tables
// @Param slug path string true "View slug"
// @Success 200 {string} string "empty body with HX-Refresh"
// @Router /tables/{slug}/settings [delete]
func (h *TableHandler) ResetSettings(c *gin.Context) {
	view, ok := h.interactive(c)
	if !ok {
		return
	}
	session.FromContext(c).Delete(settingsKey(view.Name()))
	htmx.Refresh(c)
}

func (h *TableHandler) lookup(c *gin.Context) (tablespro.Controller, bool) {
	slug := c.Param("slug")
	view, ok := h.registry.Lookup(slug)
	if !ok {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("table view %q not found", slug)))
		return nil, false
	}
	return view, true
}

func (h *TableHandler) interactive(c *gin.Context) (tablespro.Controller, bool) {
	view, ok := h.lookup(c)
	if !ok {
		return nil, false
	}
	if !h.registry.Interactive(view.Name()) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("table view %q has no settings", view.Name())))
		return nil, false
	}
	return view, true
}

// prepare resolves the view, applies stored settings and builds the table request.
func (h *TableHandler) prepare(c *gin.Context) (tablespro.Controller, tablespro.Request, bool) {
	view, ok := h.lookup(c)
	if !ok {
		return nil, tablespro.Request{}, false
	}
	req, err := tableRequest(c)
	if err != nil {
		response.Error(c, err)
		return nil, tablespro.Request{}, false
	}
	if h.registry.Interactive(view.Name()) {
		overrides, err := loadOverrides(req.Session, view.Name())
		if err != nil {
			h.logger.Warn("discarding stored table settings", zap.String("view", view.Name()), zap.Error(err))
		}
		if !overrides.Empty() {
			view = view.Configure(overrides)
		}
	}
	return view, req, true
}

func (h *TableHandler) fail(c *gin.Context, view tablespro.Controller, err error) {
	appErr := appErrors.FromError(err)
	if appErr.Status >= http.StatusInternalServerError {
		h.logger.Error("table request failed", zap.String("view", view.Name()), zap.Error(err))
	} else {
		h.logger.Debug("table request rejected", zap.String("view", view.Name()), zap.String("code", appErr.Code), zap.String("reason", appErr.Message))
	}
	response.Error(c, err)
}

// write sends a table response. Full pages also receive the view menu.
func (h *TableHandler) write(c *gin.Context, view tablespro.Controller, resp tablespro.Response) {
	if resp.Kind == tablespro.ResponsePage {
		if resp.Data == nil {
			resp.Data = map[string]any{}
		}
		resp.Data["menu"] = menu(h.registry, view.Name())
		resp.Data["interactive"] = h.registry.Interactive(view.Name())
	}
	writeResponse(c, resp)
}

// MenuItem is a navigation entry for a table view.
type MenuItem struct {
	Slug   string
	Title  string
	Active bool
}

func menu(reg *tables.Registry, active string) []MenuItem {
	views := reg.All()
	items := make([]MenuItem, 0, len(views))
	for _, v := range views {
		items = append(items, MenuItem{Slug: v.Name(), Title: v.Title(), Active: v.Name() == active})
	}
	return items
}

func tableRequest(c *gin.Context) (tablespro.Request, error) {
	if err := c.Request.ParseForm(); err != nil {
		return tablespro.Request{}, appErrors.Clone(appErrors.ErrInvalidRequest, "malformed form body")
	}
	form := c.Request.PostForm
	if form == nil {
		form = url.Values{}
	}
	return tablespro.Request{
		Method:  c.Request.Method,
		Path:    c.Request.URL.Path,
		Query:   c.Request.URL.Query(),
		Form:    form,
		HX:      htmx.FromRequest(c.Request),
		Session: session.FromContext(c),
	}, nil
}

// writeResponse translates a table response into HTTP.
func writeResponse(c *gin.Context, resp tablespro.Response) {
	hx := htmx.FromRequest(c.Request)
	switch resp.Kind {
	case tablespro.ResponsePage:
		response.HTML(c, http.StatusOK, resp.Template, resp.Data)
	case tablespro.ResponseFragment:
		htmx.Retarget(c, resp.Retarget)
		response.HTML(c, http.StatusOK, resp.Template, resp.Data)
	case tablespro.ResponseRedirect:
		if hx.Enabled {
			htmx.Redirect(c, resp.URL)
			return
		}
		c.Redirect(http.StatusSeeOther, resp.URL)
	case tablespro.ResponseRefresh:
		if hx.Enabled {
			htmx.Refresh(c)
			return
		}
		c.Redirect(http.StatusSeeOther, c.Request.URL.RequestURI())
	case tablespro.ResponseFile:
		if resp.File == nil {
			response.Error(c, appErrors.Clone(appErrors.ErrInternal, "export produced no file"))
			return
		}
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", resp.File.Name))
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, resp.File.ContentType, resp.File.Body)
	case tablespro.ResponseEvent:
		if err := htmx.Trigger(c, resp.Event, resp.EventDetail); err != nil {
			response.Error(c, err)
			return
		}
		c.Status(http.StatusOK)
	default:
		response.Error(c, appErrors.Clone(appErrors.ErrInternal, "unknown response kind"))
	}
}

// SettingFlag is a checkbox of the settings form.
type SettingFlag struct {
	Name    string
	Label   string
	Checked bool
}

func settingFlags(o tablespro.Overrides) []SettingFlag {
	flag := func(name, label string, v *bool) SettingFlag {
		return SettingFlag{Name: name, Label: label, Checked: v != nil && *v}
	}
	return []SettingFlag{
		flag("row_settings", "Rows per page menu", o.RowSettings),
		flag("column_settings", "Column menu", o.ColumnSettings),
		flag("column_reset", "Column reset", o.ColumnReset),
		flag("sticky_header", "Sticky header", o.StickyHeader),
		flag("indicator", "Loading indicator", o.Indicator),
		flag("filter_pills", "Filter pills", o.FilterPills),
		flag("filter_button", "Filter button", o.FilterButton),
	}
}

func settingsKey(view string) string {
	return "tablespro:settings:" + view
}

func loadOverrides(sess *session.Session, view string) (tablespro.Overrides, error) {
	var o tablespro.Overrides
	if _, err := sess.Get(settingsKey(view), &o); err != nil {
		sess.Delete(settingsKey(view))
		return tablespro.Overrides{}, err
	}
	return o, nil
}
