package ocr

import "sort"

// Table is a reconstructed TABLE block: row index to cell texts ordered by
// column index.
type Table struct {
	ID   string
	rows map[int][]string
}

// Rows returns the row map. The returned map must not be modified.
func (t Table) Rows() map[int][]string {
	return t.rows
}

// RowIndexes returns the row indexes in ascending order
func (t Table) RowIndexes() []int {
	idx := make([]int, 0, len(t.rows))
	for r := range t.rows {
		idx = append(idx, r)
	}
	sort.Ints(idx)
	return idx
}

// DataRows returns rows in ascending order, dropping the header row
// when skipHeader is set.
func (t Table) DataRows(skipHeader bool) [][]string {
	var out [][]string
	for _, r := range t.RowIndexes() {
		if skipHeader && r == HeaderRow {
			continue
		}
		out = append(out, t.rows[r])
	}
	return out
}
