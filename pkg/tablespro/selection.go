package tablespro

import (
	"fmt"

	"github.com/noah-isme/tables-pro/pkg/session"
)

// Subset names which records a bulk action applies to.
type Subset string

const (
	SubsetSelected Subset = "selected"
	SubsetAll      Subset = "all"
)

// Selection is the set of records picked for a follow-up action or export.
// All means every record matching Query, the filter query string of the page.
type Selection struct {
	All   bool    `json:"all"`
	IDs   []int64 `json:"ids"`
	Query string  `json:"query,omitempty"`
}

func selectionKey(table string) string {
	return sessionPrefix + table + ":selection"
}

// StoreSelection persists a selection for the next request on the same table.
func StoreSelection(sess *session.Session, table string, sel Selection) error {
	if sel.IDs == nil {
		sel.IDs = []int64{}
	}
	if err := sess.Set(selectionKey(table), sel); err != nil {
		return fmt.Errorf("store selection for %s: %w", table, err)
	}
	return nil
}

// ConsumeSelection returns the stored selection and clears it, so a selection is
// only ever applied to the request that immediately follows it.
func ConsumeSelection(sess *session.Session, table string) (Selection, bool, error) {
	var sel Selection
	key := selectionKey(table)
	found, err := sess.Get(key, &sel)
	if err != nil {
		sess.Delete(key)
		return Selection{}, false, fmt.Errorf("read selection for %s: %w", table, err)
	}
	if found {
		sess.Delete(key)
	}
	return sel, found, nil
}
