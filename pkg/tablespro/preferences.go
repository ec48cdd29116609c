package tablespro

import (
	"fmt"

	"github.com/noah-isme/tables-pro/pkg/session"
)

const sessionPrefix = "tablespro:"

// Preferences are the per-session display settings of one table.
type Preferences struct {
	Columns []string `json:"columns"`
	PerPage int      `json:"per_page,omitempty"`
}

func preferencesKey(table string) string {
	return sessionPrefix + table
}

func loadPreferences(sess *session.Session, table string) (Preferences, bool, error) {
	var prefs Preferences
	found, err := sess.Get(preferencesKey(table), &prefs)
	if err != nil {
		return Preferences{}, false, fmt.Errorf("load preferences for %s: %w", table, err)
	}
	return prefs, found, nil
}

// A nil Columns slice means "never chosen"; an empty one means every column is hidden.
func savePreferences(sess *session.Session, table string, prefs Preferences) error {
	return sess.Set(preferencesKey(table), prefs)
}

// loadColumns returns the visible columns saved for the table. On first view the
// default set is saved and returned.
func loadColumns(sess *session.Session, cs columnSet) ([]string, error) {
	prefs, found, err := loadPreferences(sess, cs.table)
	if err != nil {
		return nil, err
	}
	if found && prefs.Columns != nil {
		return cs.order(prefs.Columns), nil
	}
	prefs.Columns = cs.defaults
	if err := savePreferences(sess, cs.table, prefs); err != nil {
		return nil, err
	}
	return append([]string(nil), cs.defaults...), nil
}

// saveColumns replaces the visible columns, dropping names the table does not declare.
func saveColumns(sess *session.Session, cs columnSet, names []string) ([]string, error) {
	prefs, _, err := loadPreferences(sess, cs.table)
	if err != nil {
		return nil, err
	}
	prefs.Columns = cs.order(names)
	if err := savePreferences(sess, cs.table, prefs); err != nil {
		return nil, err
	}
	return prefs.Columns, nil
}

// setColumn shows or hides one column. Undeclared columns leave the set unchanged.
func setColumn(sess *session.Session, cs columnSet, name string, checked bool) ([]string, error) {
	current, err := loadColumns(sess, cs)
	if err != nil {
		return nil, err
	}
	if !cs.declares(name) {
		return current, nil
	}
	next := make([]string, 0, len(current)+1)
	for _, n := range current {
		if n != name {
			next = append(next, n)
		}
	}
	if checked {
		next = append(next, name)
	}
	return saveColumns(sess, cs, next)
}

// resetColumns restores the table's default column set.
func resetColumns(sess *session.Session, cs columnSet) ([]string, error) {
	return saveColumns(sess, cs, cs.defaults)
}

// SavePerPage stores the rows-per-page choice.
func SavePerPage(sess *session.Session, table string, perPage int) error {
	prefs, _, err := loadPreferences(sess, table)
	if err != nil {
		return err
	}
	prefs.PerPage = perPage
	return savePreferences(sess, table, prefs)
}

// SavedPerPage returns the stored rows-per-page, or zero.
func SavedPerPage(sess *session.Session, table string) int {
	prefs, _, err := loadPreferences(sess, table)
	if err != nil {
		return 0
	}
	return prefs.PerPage
}
