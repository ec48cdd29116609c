package tablespro

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"go.uber.org/zap"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
)

const (
	selectAllField   = "select_all"
	selectIDsField   = "select-checkbox"
	actionQueryField = "query"
	exportAction     = "export"
)

// ActionRequest is a bulk action resolved against the records it applies to.
// IDs is empty when Subset is SubsetAll; Filter is the query of the page the
// action was posted from.
type ActionRequest[T any] struct {
	Request
	Name    string
	Subset  Subset
	IDs     []int64
	Filter  url.Values
	Records []T
}

// ActionFunc handles a bulk action. A nil response refreshes the client page.
type ActionFunc[T any] func(ctx context.Context, req ActionRequest[T]) (*Response, error)

// Action is a named bulk action offered in the selection menu.
type Action[T any] struct {
	Name   string
	Label  string
	Handle ActionFunc[T]
}

// SelectionConfig enables bulk actions on selected rows.
type SelectionConfig[T any] struct {
	Actions []Action[T]
}

// ActionChoice is an entry in the bulk action menu.
type ActionChoice struct {
	Name  string
	Label string
}

func (v *View[T, C]) actionChoices() []ActionChoice {
	var out []ActionChoice
	if v.Selection != nil {
		for _, a := range v.Selection.Actions {
			out = append(out, ActionChoice{Name: a.Name, Label: a.Label})
		}
	}
	if v.Export != nil {
		for _, format := range v.Export.formats() {
			out = append(out, ActionChoice{
				Name:  exportAction + "_" + format,
				Label: "Export as " + strings.ToUpper(format),
			})
		}
	}
	return out
}

func (v *View[T, C]) findAction(name string) (Action[T], bool) {
	if v.Selection == nil {
		return Action[T]{}, false
	}
	for _, a := range v.Selection.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action[T]{}, false
}

// dispatch resolves the selected subset and runs the named bulk action.
func (v *View[T, C]) dispatch(ctx context.Context, req Request) (Response, error) {
	name := req.HX.TriggerName
	if name == "" {
		name = req.Form.Get("action")
	}
	if name == "" {
		return Response{}, appErrors.Clone(appErrors.ErrInvalidRequest, "bulk action without a name")
	}

	subset := SubsetSelected
	var ids []int64
	if req.Form.Has(selectAllField) {
		subset = SubsetAll
	} else {
		var err error
		if ids, err = parseIDs(req.Form[selectIDsField]); err != nil {
			return Response{}, err
		}
	}

	if name == exportAction || strings.HasPrefix(name, exportAction+"_") {
		return v.exportRedirect(req, name, subset, ids)
	}

	action, ok := v.findAction(name)
	if !ok || action.Handle == nil {
		return Response{}, appErrors.Clone(appErrors.ErrInvalidRequest, "action "+strconv.Quote(name)+" has no handler")
	}

	query := actionQuery(req)
	records, err := v.subsetRecords(ctx, subset, ids, query)
	if err != nil {
		return Response{}, err
	}
	v.logger().Info("table action",
		zap.String("table", v.Table.Name),
		zap.String("action", name),
		zap.String("subset", string(subset)),
		zap.Int("records", len(records)),
	)

	resp, err := action.Handle(ctx, ActionRequest[T]{
		Request: req,
		Name:    name,
		Subset:  subset,
		IDs:     ids,
		Filter:  query,
		Records: records,
	})
	if err != nil {
		return Response{}, err
	}
	if resp == nil {
		return RefreshResponse(), nil
	}
	return *resp, nil
}

// exportRedirect persists the selection and sends the browser to a plain GET, since
// downloads cannot be delivered through a fragment swap.
func (v *View[T, C]) exportRedirect(req Request, name string, subset Subset, ids []int64) (Response, error) {
	if v.Export == nil {
		return Response{}, appErrors.Clone(appErrors.ErrInvalidRequest, "view "+v.Slug+" does not export")
	}
	format := v.Export.defaultFormat()
	if _, suffix, found := strings.Cut(name, "_"); found && suffix != "" {
		format = suffix
	}
	if !v.Export.supports(format) {
		return Response{}, appErrors.Clone(appErrors.ErrUnsupportedExportFormat, "export format "+strconv.Quote(format)+" is not supported")
	}

	query := actionQuery(req)
	sel := Selection{All: subset == SubsetAll, IDs: ids, Query: query.Encode()}
	if err := StoreSelection(req.Session, v.Table.Name, sel); err != nil {
		return Response{}, err
	}
	return RedirectResponse(withParams(req.Path, query, map[string]string{
		ExportParam: format,
		SubsetParam: string(subset),
	})), nil
}

// subsetRecords loads explicit ids, or every record matching the page's filter.
func (v *View[T, C]) subsetRecords(ctx context.Context, subset Subset, ids []int64, query url.Values) ([]T, error) {
	if subset == SubsetSelected {
		if len(ids) == 0 {
			return nil, nil
		}
		return v.Source.FindByIDs(ctx, ids)
	}
	return filteredRecords(ctx, v.Source, v.filterSet(), query)
}

func (v *View[T, C]) filterSet() FilterSet[C] {
	if v.Filter == nil {
		return nil
	}
	return v.Filter.Set
}

// filteredRecords lists every record matching the filter bound from query. Invalid
// criteria match nothing.
func filteredRecords[T, C any](ctx context.Context, src Source[T, C], set FilterSet[C], query url.Values) ([]T, error) {
	var criteria C
	if set != nil {
		var errs FieldErrors
		if criteria, errs = set.Bind(query); len(errs) > 0 {
			return nil, nil
		}
	}
	records, _, err := src.List(ctx, ListParams[C]{Criteria: criteria, OrderBy: query.Get("sort")})
	return records, err
}

// actionQuery is the filter query of the page the action was posted from. The
// browser's current URL wins because filters swapped in by htmx update it; the form's
// hidden query field covers posts without one.
func actionQuery(req Request) url.Values {
	if req.HX.CurrentURL != "" {
		return req.HX.CurrentQuery()
	}
	if raw := strings.TrimPrefix(req.Form.Get(actionQueryField), "?"); raw != "" {
		if q, err := url.ParseQuery(raw); err == nil {
			return q
		}
	}
	return url.Values{}
}

func parseIDs(raw []string) ([]int64, error) {
	ids := make([]int64, 0, len(raw))
	for _, s := range raw {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidRequest, "selected id "+strconv.Quote(s)+" is not a number")
		}
		ids = append(ids, id)
	}
	return ids, nil
}
