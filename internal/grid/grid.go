// Package grid implements the transaction table's filter, sort and
// pagination pipeline. View is a pure function of the source collection and
// the interactive parameters; Grid layers the interactive state on top.
package grid

import (
	"sort"
	"strconv"
	"strings"

	"github.com/amlwatch/dashboard/internal/domain"
)

// PageSize is the fixed number of rows per page.
const PageSize = 20

// Column identifies a sortable column.
type Column string

const (
	ColDate     Column = "date"
	ColAmount   Column = "amount"
	ColSender   Column = "sender"
	ColReceiver Column = "receiver"
	ColIBAN     Column = "iban"
	ColCurrency Column = "currency"
	ColType     Column = "transaction_type"
	ColFlags    Column = "flags"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseColumn resolves a query parameter to a column, falling back to the
// date column for anything unknown.
func ParseColumn(s string) Column {
	switch Column(s) {
	case ColDate, ColAmount, ColSender, ColReceiver, ColIBAN, ColCurrency, ColType, ColFlags:
		return Column(s)
	}
	return ColDate
}

// ParseDirection resolves a query parameter to a direction, defaulting to
// descending (newest first, the table's initial view).
func ParseDirection(s string) Direction {
	if Direction(s) == Ascending {
		return Ascending
	}
	return Descending
}

// Query are the three independent interactive inputs to the pipeline.
type Query struct {
	Filter string
	Sort   Column
	Dir    Direction
	Page   int
}

// Row is one rendered row. Flagged is a rendering hint, not a transform.
type Row struct {
	domain.Transaction
	Flagged bool `json:"flagged"`
}

// Page is the slice of rows to render plus the display counters.
type Page struct {
	Rows          []Row `json:"rows"`
	TotalFiltered int   `json:"total_filtered"`
	PageIndex     int   `json:"page_index"`
	PageCount     int   `json:"page_count"`
	// From/To are the 1-based inclusive bounds of the visible range; both
	// are zero when no rows match.
	From int `json:"from"`
	To   int `json:"to"`
}

// View runs filter, sort and pagination over the collection. The requested
// page index is clamped into range, so a stale page from before a filter
// change never yields an empty render while rows exist.
func View(txns []domain.Transaction, q Query) Page {
	filtered := filter(txns, q.Filter)
	sortRows(filtered, q.Sort, q.Dir)

	total := len(filtered)
	pageCount := (total + PageSize - 1) / PageSize
	if pageCount < 1 {
		pageCount = 1
	}
	page := q.Page
	if page < 0 {
		page = 0
	}
	if page > pageCount-1 {
		page = pageCount - 1
	}

	start := page * PageSize
	end := start + PageSize
	if end > total {
		end = total
	}

	rows := make([]Row, 0, end-start)
	for _, t := range filtered[start:end] {
		rows = append(rows, Row{Transaction: t, Flagged: t.Flagged()})
	}

	from, to := 0, 0
	if total > 0 {
		from, to = start+1, end
	}

	return Page{
		Rows:          rows,
		TotalFiltered: total,
		PageIndex:     page,
		PageCount:     pageCount,
		From:          from,
		To:            to,
	}
}

// filter keeps rows where any searchable field contains the query,
// case-insensitively. Empty or whitespace-only queries match everything.
func filter(txns []domain.Transaction, query string) []domain.Transaction {
	if strings.TrimSpace(query) == "" {
		out := make([]domain.Transaction, len(txns))
		copy(out, txns)
		return out
	}
	q := strings.ToLower(query)
	var out []domain.Transaction
	for _, t := range txns {
		if matches(t, q) {
			out = append(out, t)
		}
	}
	return out
}

func matches(t domain.Transaction, q string) bool {
	if strings.Contains(strings.ToLower(t.Sender), q) ||
		strings.Contains(strings.ToLower(t.Receiver), q) ||
		strings.Contains(strings.ToLower(deref(t.IBAN)), q) ||
		strings.Contains(strings.ToLower(deref(t.Description)), q) ||
		strings.Contains(strings.ToLower(deref(t.TransactionType)), q) {
		return true
	}
	for _, f := range t.Flags {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	// Amount matched against its plain decimal form, date against the raw
	// string, so "1250" and "2024-03" work as filters.
	if strings.Contains(strconv.FormatFloat(t.Amount, 'f', -1, 64), q) {
		return true
	}
	return strings.Contains(t.Date, q)
}

func sortRows(txns []domain.Transaction, col Column, dir Direction) {
	sort.SliceStable(txns, func(i, j int) bool {
		cmp := compare(txns[i], txns[j], col)
		if dir == Descending {
			return cmp > 0
		}
		return cmp < 0
	})
}

// compare orders two rows on a column. Unparsable dates sort before all
// valid dates via the zero time, keeping the order total on malformed data.
func compare(a, b domain.Transaction, col Column) int {
	switch col {
	case ColAmount:
		switch {
		case a.Amount < b.Amount:
			return -1
		case a.Amount > b.Amount:
			return 1
		}
		return 0
	case ColSender:
		return strings.Compare(a.Sender, b.Sender)
	case ColReceiver:
		return strings.Compare(a.Receiver, b.Receiver)
	case ColIBAN:
		return strings.Compare(deref(a.IBAN), deref(b.IBAN))
	case ColCurrency:
		return strings.Compare(a.Currency, b.Currency)
	case ColType:
		return strings.Compare(deref(a.TransactionType), deref(b.TransactionType))
	case ColFlags:
		return len(a.Flags) - len(b.Flags)
	default: // ColDate
		aw, _ := a.When()
		bw, _ := b.When()
		switch {
		case aw.Before(bw):
			return -1
		case aw.After(bw):
			return 1
		}
		return 0
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
