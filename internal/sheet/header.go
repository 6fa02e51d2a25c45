package sheet

import (
	"fmt"
	"strings"
	"time"

	"rowsweep/internal/keys"
)

// Header resolves header names to 0-based column indices for one tab.
type Header struct {
	cells []string
	cols  map[string]int
}

// NewHeader builds a Header from the tab's first row. Duplicate names keep
// the first occurrence.
func NewHeader(cells []string) *Header {
	cols := make(map[string]int, len(cells))
	for i, cell := range cells {
		name := keys.Normalize(cell)
		if name == "" {
			continue
		}
		if _, ok := cols[name]; !ok {
			cols[name] = i
		}
	}
	return &Header{cells: append([]string{}, cells...), cols: cols}
}

// Lookup returns the column index for a header name.
func (h *Header) Lookup(name string) (int, bool) {
	col, ok := h.cols[keys.Normalize(name)]
	return col, ok
}

// Require returns the column index for a header name or a configuration
// error naming the missing header.
func (h *Header) Require(name string) (int, error) {
	col, ok := h.Lookup(name)
	if !ok {
		return 0, fmt.Errorf("required header %q not found", name)
	}
	return col, nil
}

// Cells returns a copy of the raw header row.
func (h *Header) Cells() []string {
	return append([]string{}, h.cells...)
}

// MonthPair is a strict header adjacency: a payment-set column immediately
// followed by a month-year column. The pairing is positional, never
// name-based, so a blank cell is only ever attributed to its own month.
type MonthPair struct {
	PaymentCol int
	MonthCol   int
	MonthLabel string
}

// MonthPairs scans the header for payment/month adjacencies. A column whose
// header starts with paymentPrefix (case-insensitive) paired with an
// immediately following month-year header forms one pair.
func (h *Header) MonthPairs(paymentPrefix string) []MonthPair {
	prefix := strings.ToLower(strings.TrimSpace(paymentPrefix))
	if prefix == "" {
		return nil
	}

	var pairs []MonthPair
	for i := 1; i < len(h.cells); i++ {
		label := strings.TrimSpace(h.cells[i])
		if _, ok := ParseMonthYear(label); !ok {
			continue
		}
		previous := strings.ToLower(strings.TrimSpace(h.cells[i-1]))
		if !strings.HasPrefix(previous, prefix) {
			continue
		}
		pairs = append(pairs, MonthPair{PaymentCol: i - 1, MonthCol: i, MonthLabel: label})
	}
	return pairs
}

var monthYearLayouts = []string{
	"Jan 2006",
	"January 2006",
	"01/2006",
	"1/2006",
	"2006-01",
}

// ParseMonthYear parses a month-year formatted header cell.
func ParseMonthYear(value string) (time.Time, bool) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, false
	}
	for _, layout := range monthYearLayouts {
		if ts, err := time.Parse(layout, trimmed); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}
