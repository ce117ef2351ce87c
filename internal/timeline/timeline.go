// Package timeline merges the transaction and alert collections into one
// chronologically ordered point series for the volume chart.
package timeline

import (
	"sort"
	"time"

	"github.com/amlwatch/dashboard/internal/domain"
	"github.com/amlwatch/dashboard/internal/format"
)

// Point is one charted transaction. Amount always carries the volume;
// FlaggedAmount repeats it only when the point is flagged, so a renderer
// can draw a continuous series plus a sparse overlay of flagged points.
type Point struct {
	Date          string   `json:"date"`
	Label         string   `json:"date_label"`
	Amount        float64  `json:"amount"`
	FlaggedAmount *float64 `json:"flagged"`
	Flags         []string `json:"flags"`

	when time.Time
}

// Series is the chart payload. Empty distinguishes "no transaction data"
// from a valid zero-length series, so callers can render an empty state
// instead of a bare chart frame.
type Series struct {
	Points []Point `json:"points"`
	Empty  bool    `json:"empty"`
}

// Build produces the ascending point series. A transaction is flagged when
// its own flags are non-empty or any alert references its index; watchlist
// matches do not flag points. Unparsable dates sort before all valid dates
// and never abort the build.
func Build(txns []domain.Transaction, alerts []domain.Alert) Series {
	if len(txns) == 0 {
		return Series{Empty: true}
	}

	// One pass over the alerts, not one per transaction.
	alerted := make(map[int]struct{})
	for _, a := range alerts {
		for _, idx := range a.AffectedTransactionIndices {
			alerted[idx] = struct{}{}
		}
	}

	points := make([]Point, 0, len(txns))
	for _, t := range txns {
		when, _ := t.When()
		p := Point{
			Date:   t.Date,
			Label:  format.Date(t.Date),
			Amount: t.Amount,
			Flags:  append([]string(nil), t.Flags...),
			when:   when,
		}
		if _, hit := alerted[t.Index]; hit || t.Flagged() {
			amount := t.Amount
			p.FlaggedAmount = &amount
		}
		points = append(points, p)
	}

	sort.SliceStable(points, func(i, j int) bool {
		return points[i].when.Before(points[j].when)
	})

	return Series{Points: points}
}
