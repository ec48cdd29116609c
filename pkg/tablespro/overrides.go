package tablespro

import (
	"net/url"
	"strconv"
	"strings"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
)

// MaxFixedHeight bounds the fixed table height accepted from a settings form.
const MaxFixedHeight = 2000

// Overrides replace parts of a view's layout for one request. Nil fields keep the
// view's own setting.
type Overrides struct {
	RowSettings    *bool           `json:"row_settings,omitempty"`
	ColumnSettings *bool           `json:"column_settings,omitempty"`
	ColumnReset    *bool           `json:"column_reset,omitempty"`
	StickyHeader   *bool           `json:"sticky_header,omitempty"`
	Indicator      *bool           `json:"indicator,omitempty"`
	FilterPills    *bool           `json:"filter_pills,omitempty"`
	FilterButton   *bool           `json:"filter_button,omitempty"`
	Pagination     *PaginationMode `json:"pagination,omitempty"`
	FilterStyle    *FilterStyle    `json:"filter_style,omitempty"`
	ClickMethod    *ClickMethod    `json:"click_method,omitempty"`
	FixedHeight    *int            `json:"fixed_height,omitempty"`
}

// Empty reports whether no field is overridden.
func (o Overrides) Empty() bool {
	return o == Overrides{}
}

// Configure returns a copy of the view with o applied. The receiver is not modified.
func (v *View[T, C]) Configure(o Overrides) Controller {
	c := *v
	if o.Empty() {
		return &c
	}
	setBool(&c.Layout.RowSettings, o.RowSettings)
	setBool(&c.Layout.ColumnSettings, o.ColumnSettings)
	setBool(&c.Layout.ColumnReset, o.ColumnReset)
	setBool(&c.Layout.StickyHeader, o.StickyHeader)
	setBool(&c.Layout.Indicator, o.Indicator)
	if o.Pagination != nil {
		c.Layout.Pagination = *o.Pagination
	}
	if o.FixedHeight != nil {
		c.Layout.FixedHeight = *o.FixedHeight
	}
	if c.Filter != nil && (o.FilterStyle != nil || o.FilterPills != nil || o.FilterButton != nil) {
		filter := *c.Filter
		if o.FilterStyle != nil {
			filter.Style = *o.FilterStyle
		}
		setBool(&filter.Pills, o.FilterPills)
		setBool(&filter.Button, o.FilterButton)
		c.Filter = &filter
	}
	if o.ClickMethod != nil {
		click := ClickConfig{}
		if c.Click != nil {
			click = *c.Click
		}
		click.Method = *o.ClickMethod
		c.Click = &click
	}
	return &c
}

func setBool(dst *bool, src *bool) {
	if src != nil {
		*dst = *src
	}
}

var (
	paginationModes = map[string]PaginationMode{}
	filterStyles    = map[string]FilterStyle{}
	clickMethods    = map[string]ClickMethod{}
)

func init() {
	for _, m := range []PaginationMode{PaginationPaged, PaginationNone, PaginationScroll, PaginationLoad} {
		paginationModes[m.String()] = m
	}
	for _, s := range []FilterStyle{FilterNone, FilterToolbar, FilterModal, FilterHeader} {
		filterStyles[s.String()] = s
	}
	for _, m := range []ClickMethod{ClickNone, ClickGet, ClickHXGet, ClickCustom} {
		clickMethods[m.String()] = m
	}
}

var overrideFlags = []struct {
	name string
	dst  func(*Overrides) **bool
}{
	{"row_settings", func(o *Overrides) **bool { return &o.RowSettings }},
	{"column_settings", func(o *Overrides) **bool { return &o.ColumnSettings }},
	{"column_reset", func(o *Overrides) **bool { return &o.ColumnReset }},
	{"sticky_header", func(o *Overrides) **bool { return &o.StickyHeader }},
	{"indicator", func(o *Overrides) **bool { return &o.Indicator }},
	{"filter_pills", func(o *Overrides) **bool { return &o.FilterPills }},
	{"filter_button", func(o *Overrides) **bool { return &o.FilterButton }},
}

// ParseOverrides reads a submitted settings form. Checkbox fields are always set,
// unchecked meaning false; choice fields are set only when present.
func ParseOverrides(form url.Values) (Overrides, error) {
	var o Overrides
	for _, f := range overrideFlags {
		on := form.Get(f.name) == "on"
		*f.dst(&o) = &on
	}
	if raw := form.Get("pagination"); raw != "" {
		m, ok := paginationModes[raw]
		if !ok {
			return Overrides{}, invalidSetting("pagination", raw)
		}
		o.Pagination = &m
	}
	if raw := form.Get("filter_style"); raw != "" {
		s, ok := filterStyles[raw]
		if !ok {
			return Overrides{}, invalidSetting("filter_style", raw)
		}
		o.FilterStyle = &s
	}
	if raw := form.Get("click_method"); raw != "" {
		m, ok := clickMethods[raw]
		if !ok {
			return Overrides{}, invalidSetting("click_method", raw)
		}
		o.ClickMethod = &m
	}
	if raw := strings.TrimSpace(form.Get("fixed_height")); raw != "" {
		h, err := strconv.Atoi(raw)
		if err != nil || h < 0 || h > MaxFixedHeight {
			return Overrides{}, invalidSetting("fixed_height", raw)
		}
		o.FixedHeight = &h
	}
	return o, nil
}

func invalidSetting(name, value string) error {
	return appErrors.Clone(appErrors.ErrValidation, name+" "+strconv.Quote(value)+" is not a valid setting")
}
