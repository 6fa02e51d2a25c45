package sheet

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sheet_rows (
    tab     TEXT NOT NULL,
    row_idx INTEGER NOT NULL,
    cells   TEXT NOT NULL,
    ncols   INTEGER NOT NULL,
    PRIMARY KEY (tab, row_idx)
)`

// SQLiteStore implements Store on a local SQLite file with spreadsheet row
// semantics.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// OpenSQLite initializes or connects to the sheet database at path.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("ensure sheet directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply sheet schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) ReadRows(ctx context.Context, tab string, start, count int) ([][]string, error) {
	if start < 1 {
		return nil, fmt.Errorf("read rows: start %d is before row 1", start)
	}
	if count <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_idx, cells FROM sheet_rows WHERE tab = ? AND row_idx BETWEEN ? AND ? ORDER BY row_idx`,
		tab, start, start+count-1,
	)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	defer rows.Close()

	out := make([][]string, count)
	for i := range out {
		out[i] = []string{}
	}
	for rows.Next() {
		var idx int
		var payload string
		if err := rows.Scan(&idx, &payload); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		var cells []string
		if err := json.Unmarshal([]byte(payload), &cells); err != nil {
			return nil, fmt.Errorf("decode row %d: %w", idx, err)
		}
		out[idx-start] = cells
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return out, nil
}

func (s *SQLiteStore) AppendRows(ctx context.Context, tab string, rowValues [][]string) error {
	if len(rowValues) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append rows: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var last sql.NullInt64
	if err := tx.QueryRowContext(ctx,
		`SELECT MAX(row_idx) FROM sheet_rows WHERE tab = ?`, tab,
	).Scan(&last); err != nil {
		return fmt.Errorf("append rows: %w", err)
	}

	next := int(last.Int64) + 1
	for _, cells := range rowValues {
		payload, err := json.Marshal(cells)
		if err != nil {
			return fmt.Errorf("encode row: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sheet_rows (tab, row_idx, cells, ncols) VALUES (?, ?, ?, ?)`,
			tab, next, string(payload), len(cells),
		); err != nil {
			return fmt.Errorf("insert row %d: %w", next, err)
		}
		next++
	}

	return tx.Commit()
}

// DeleteRowBlock removes count rows starting at start and shifts every higher
// row down. The shift goes through negative indices first so the primary key
// never sees a transient collision.
func (s *SQLiteStore) DeleteRowBlock(ctx context.Context, tab string, start, count int) error {
	if start < 1 || count < 1 {
		return fmt.Errorf("delete rows: invalid block start=%d count=%d", start, count)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("delete rows: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	end := start + count - 1
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM sheet_rows WHERE tab = ? AND row_idx BETWEEN ? AND ?`,
		tab, start, end,
	); err != nil {
		return fmt.Errorf("delete rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sheet_rows SET row_idx = -(row_idx - ?) WHERE tab = ? AND row_idx > ?`,
		count, tab, end,
	); err != nil {
		return fmt.Errorf("shift rows: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE sheet_rows SET row_idx = -row_idx WHERE tab = ? AND row_idx < 0`,
		tab,
	); err != nil {
		return fmt.Errorf("shift rows: %w", err)
	}

	return tx.Commit()
}

func (s *SQLiteStore) LastRowIndex(ctx context.Context, tab string) (int, error) {
	var last sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(row_idx) FROM sheet_rows WHERE tab = ?`, tab,
	).Scan(&last); err != nil {
		return 0, fmt.Errorf("last row index: %w", err)
	}
	return int(last.Int64), nil
}

func (s *SQLiteStore) LastColumnIndex(ctx context.Context, tab string) (int, error) {
	var widest sql.NullInt64
	if err := s.db.QueryRowContext(ctx,
		`SELECT MAX(ncols) FROM sheet_rows WHERE tab = ?`, tab,
	).Scan(&widest); err != nil {
		return 0, fmt.Errorf("last column index: %w", err)
	}
	return int(widest.Int64), nil
}
