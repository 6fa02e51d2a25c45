package sheet

import "context"

// Store is the tabular store the jobs operate on. Row indices are 1-based and
// row 1 of every tab is the header. Implementations must give deletion
// spreadsheet semantics: removing a block shifts all higher rows down by the
// block size.
type Store interface {
	// ReadRows returns count rows starting at start (inclusive). Rows inside
	// the tab's extent that hold no data come back as empty slices.
	ReadRows(ctx context.Context, tab string, start, count int) ([][]string, error)
	// AppendRows adds rows after the tab's last row.
	AppendRows(ctx context.Context, tab string, rows [][]string) error
	// DeleteRowBlock removes count contiguous rows starting at start.
	DeleteRowBlock(ctx context.Context, tab string, start, count int) error
	// LastRowIndex returns the index of the tab's last row, 0 when empty.
	LastRowIndex(ctx context.Context, tab string) (int, error)
	// LastColumnIndex returns the tab's widest row length, 0 when empty.
	LastColumnIndex(ctx context.Context, tab string) (int, error)
}

// Cell returns row[col] or "" when the row is too short. Sparse rows are
// normal in spreadsheet data.
func Cell(row []string, col int) string {
	if col < 0 || col >= len(row) {
		return ""
	}
	return row[col]
}
