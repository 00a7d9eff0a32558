package engine

import (
	"goDBDriver/internal/sql"
)

// assignment is a resolved SET col = value.
type assignment struct {
	idx   int
	value sql.Value
}

// applyUpdate returns a new rowset where all rows matching where are updated
// according to assigns. It returns the updated rows and the count of affected rows.
func applyUpdate(rows []sql.Row, where filter, assigns []assignment) ([]sql.Row, int) {
	// Copy rows so we don't mutate the original slice
	newRows := make([]sql.Row, len(rows))
	affected := 0

	for i, r := range rows {
		newRow := make(sql.Row, len(r))
		copy(newRow, r)

		if where.matches(newRow) {
			for _, a := range assigns {
				newRow[a.idx] = a.value
			}
			affected++
		}

		newRows[i] = newRow
	}

	return newRows, affected
}

// applyDelete returns a new rowset where all rows matching where are removed.
// It returns the new rows and the count of deleted rows.
func applyDelete(rows []sql.Row, where filter) ([]sql.Row, int) {
	out := make([]sql.Row, 0, len(rows))
	deleted := 0

	for _, r := range rows {
		if where.matches(r) {
			deleted++
			continue
		}
		out = append(out, r)
	}

	return out, deleted
}
