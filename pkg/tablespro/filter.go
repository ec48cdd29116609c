package tablespro

import "net/url"

// FilterStyle selects where filter inputs are placed.
type FilterStyle int

const (
	FilterNone FilterStyle = iota
	FilterToolbar
	FilterModal
	FilterHeader
)

func (s FilterStyle) String() string {
	switch s {
	case FilterToolbar:
		return "toolbar"
	case FilterModal:
		return "modal"
	case FilterHeader:
		return "header"
	default:
		return "none"
	}
}

// FilterField declares one filter input; bound copies also carry the value and error.
type FilterField struct {
	Name  string
	Label string
	Type  string
	Value string
	Error string
}

// FieldErrors maps a filter field name to its validation message.
type FieldErrors map[string]string

// FilterSet turns query parameters into validated criteria of type C.
type FilterSet[C any] interface {
	Fields() []FilterField
	Bind(values url.Values) (C, FieldErrors)
}

// FilterConfig enables filtering on a view.
type FilterConfig[C any] struct {
	Set    FilterSet[C]
	Style  FilterStyle
	Button bool
	Pills  bool
}

// FilterState is the bound filter passed to templates.
type FilterState struct {
	Style  string
	Button bool
	Pills  bool
	Fields []FilterField
	Active []FilterField
	Valid  bool
}

// Field returns the bound field called name, or nil.
func (f *FilterState) Field(name string) *FilterField {
	if f == nil {
		return nil
	}
	for i := range f.Fields {
		if f.Fields[i].Name == name {
			return &f.Fields[i]
		}
	}
	return nil
}

func bindFilter[C any](cfg *FilterConfig[C], values url.Values) (C, *FilterState) {
	var zero C
	if cfg == nil || cfg.Set == nil {
		return zero, nil
	}
	criteria, errs := cfg.Set.Bind(values)
	state := &FilterState{
		Style:  cfg.Style.String(),
		Button: cfg.Button,
		Pills:  cfg.Pills,
		Valid:  len(errs) == 0,
	}
	for _, f := range cfg.Set.Fields() {
		f.Value = values.Get(f.Name)
		f.Error = errs[f.Name]
		state.Fields = append(state.Fields, f)
		if f.Value != "" {
			state.Active = append(state.Active, f)
		}
	}
	return criteria, state
}
