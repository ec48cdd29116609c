package tablespro

import (
	"context"
	"net/url"

	appErrors "github.com/noah-isme/tables-pro/pkg/errors"
)

// SelectedRecords returns the records a follow-up page should act on. A stored
// selection for table is consumed; without one the filter is bound from the request
// query instead.
func SelectedRecords[T, C any](ctx context.Context, req Request, table string, src Source[T, C], set FilterSet[C]) ([]T, error) {
	if src == nil {
		return nil, appErrors.Clone(appErrors.ErrMissingConfiguration, "selected records of "+table+" need a record source")
	}
	sel, found, err := ConsumeSelection(req.Session, table)
	if err != nil {
		return nil, err
	}
	if found {
		if !sel.All {
			if len(sel.IDs) == 0 {
				return nil, nil
			}
			return src.FindByIDs(ctx, sel.IDs)
		}
		query, err := url.ParseQuery(sel.Query)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrInvalidRequest, "stored selection query is malformed")
		}
		return filteredRecords(ctx, src, set, query)
	}
	return filteredRecords(ctx, src, set, req.Query)
}
