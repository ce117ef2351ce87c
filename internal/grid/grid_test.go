package grid

import (
	"fmt"
	"testing"

	"github.com/amlwatch/dashboard/internal/domain"
)

func strp(s string) *string { return &s }

func fixture() []domain.Transaction {
	return []domain.Transaction{
		{Index: 0, Date: "2024-03-10", Amount: 1250.5, Sender: "Acme BV", Receiver: "Globex Ltd", IBAN: strp("NL91ABNA0417164300"), Currency: "EUR", Description: strp("Invoice 2024-112"), TransactionType: strp("SEPA"), Flags: []string{"ROUND_AMOUNT"}},
		{Index: 1, Date: "2024-01-05", Amount: 80, Sender: "Initech", Receiver: "Acme BV", Currency: "USD", TransactionType: strp("WIRE")},
		{Index: 2, Date: "2024-02-20", Amount: 9400, Sender: "Hooli", Receiver: "Vandelay", IBAN: strp("DE89370400440532013000"), Currency: "EUR", Description: strp("consulting fee")},
		{Index: 3, Date: "not-a-date", Amount: 300, Sender: "Umbrella", Receiver: "Initech", Currency: "GBP", Flags: []string{"THRESHOLD", "STRUCTURING"}},
	}
}

func TestViewFilter(t *testing.T) {
	txns := fixture()

	tests := []struct {
		name    string
		filter  string
		wantIdx []int
	}{
		{"empty matches all", "", []int{0, 1, 2, 3}},
		{"whitespace matches all", "   ", []int{0, 1, 2, 3}},
		{"sender case-insensitive", "acme", []int{0, 1}},
		{"receiver", "vandelay", []int{2}},
		{"iban", "de8937", []int{2}},
		{"description", "invoice", []int{0}},
		{"transaction type", "wire", []int{1}},
		{"flag label", "structuring", []int{3}},
		{"amount decimal form", "1250.5", []int{0}},
		{"date substring", "2024-02", []int{2}},
		{"no match", "zzzz", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := View(txns, Query{Filter: tt.filter, Sort: ColDate, Dir: Ascending})
			if p.TotalFiltered != len(tt.wantIdx) {
				t.Fatalf("TotalFiltered = %d, want %d", p.TotalFiltered, len(tt.wantIdx))
			}
			got := map[int]bool{}
			for _, r := range p.Rows {
				got[r.Index] = true
			}
			for _, idx := range tt.wantIdx {
				if !got[idx] {
					t.Errorf("expected transaction %d in result", idx)
				}
			}
		})
	}
}

func TestViewSort(t *testing.T) {
	txns := fixture()

	tests := []struct {
		name  string
		col   Column
		dir   Direction
		first int // expected index of the first row
	}{
		{"date ascending puts unparsable first", ColDate, Ascending, 3},
		{"date descending", ColDate, Descending, 0},
		{"amount ascending", ColAmount, Ascending, 1},
		{"amount descending", ColAmount, Descending, 2},
		{"sender ascending", ColSender, Ascending, 0},
		{"currency ascending", ColCurrency, Ascending, 0},
		{"flag count descending", ColFlags, Descending, 3},
		{"iban ascending puts missing first", ColIBAN, Ascending, 1},
		{"type descending", ColType, Descending, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := View(txns, Query{Sort: tt.col, Dir: tt.dir})
			if len(p.Rows) == 0 {
				t.Fatal("no rows")
			}
			if p.Rows[0].Index != tt.first {
				t.Errorf("first row index = %d, want %d", p.Rows[0].Index, tt.first)
			}
		})
	}
}

func TestViewFilteredCountIndependentOfSortAndPage(t *testing.T) {
	txns := fixture()
	want := View(txns, Query{Filter: "acme", Sort: ColDate, Dir: Ascending}).TotalFiltered
	if want == 0 {
		t.Fatal("fixture filter matched nothing")
	}

	for _, col := range []Column{ColDate, ColAmount, ColSender, ColReceiver, ColIBAN, ColCurrency, ColType, ColFlags} {
		for _, dir := range []Direction{Ascending, Descending} {
			for page := 0; page < 3; page++ {
				p := View(txns, Query{Filter: "acme", Sort: col, Dir: dir, Page: page})
				if p.TotalFiltered != want {
					t.Errorf("count %d under sort=%s dir=%s page=%d, want %d", p.TotalFiltered, col, dir, page, want)
				}
			}
		}
	}
}

func TestViewPagination(t *testing.T) {
	var txns []domain.Transaction
	for i := 0; i < 45; i++ {
		txns = append(txns, domain.Transaction{Index: i, Date: fmt.Sprintf("2024-01-%02d", i%28+1), Amount: float64(i), Sender: "s", Receiver: "r", Currency: "EUR"})
	}

	tests := []struct {
		name      string
		page      int
		wantPage  int
		wantRows  int
		wantFrom  int
		wantTo    int
		wantCount int
	}{
		{"first page", 0, 0, 20, 1, 20, 3},
		{"middle page", 1, 1, 20, 21, 40, 3},
		{"last partial page", 2, 2, 5, 41, 45, 3},
		{"beyond range clamps to last", 9, 2, 5, 41, 45, 3},
		{"negative clamps to first", -2, 0, 20, 1, 20, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := View(txns, Query{Sort: ColAmount, Dir: Ascending, Page: tt.page})
			if p.PageIndex != tt.wantPage || p.PageCount != tt.wantCount {
				t.Errorf("page %d/%d, want %d/%d", p.PageIndex, p.PageCount, tt.wantPage, tt.wantCount)
			}
			if len(p.Rows) != tt.wantRows {
				t.Errorf("rows = %d, want %d", len(p.Rows), tt.wantRows)
			}
			if p.From != tt.wantFrom || p.To != tt.wantTo {
				t.Errorf("range %d-%d, want %d-%d", p.From, p.To, tt.wantFrom, tt.wantTo)
			}
		})
	}
}

func TestViewEmptyCollection(t *testing.T) {
	p := View(nil, Query{Sort: ColDate, Dir: Descending})
	if p.TotalFiltered != 0 || len(p.Rows) != 0 {
		t.Errorf("expected zero rows, got %d", len(p.Rows))
	}
	if p.PageCount != 1 {
		t.Errorf("PageCount = %d, want 1 even when empty", p.PageCount)
	}
	if p.From != 0 || p.To != 0 {
		t.Errorf("range %d-%d, want 0-0", p.From, p.To)
	}
}

func TestViewFlaggedRowsMarked(t *testing.T) {
	p := View(fixture(), Query{Sort: ColDate, Dir: Ascending})
	for _, r := range p.Rows {
		if r.Flagged != (len(r.Flags) > 0) {
			t.Errorf("row %d Flagged = %v with %d flags", r.Index, r.Flagged, len(r.Flags))
		}
	}
}

func TestGridToggleSort(t *testing.T) {
	g := New(fixture())

	if q := g.Query(); q.Sort != ColDate || q.Dir != Descending {
		t.Fatalf("default sort = %s/%s, want date/desc", q.Sort, q.Dir)
	}

	// A new column always starts ascending.
	g.ToggleSort(ColAmount)
	if q := g.Query(); q.Sort != ColAmount || q.Dir != Ascending {
		t.Errorf("after new column: %s/%s, want amount/asc", q.Sort, q.Dir)
	}

	// Re-selecting alternates asc -> desc -> asc.
	g.ToggleSort(ColAmount)
	if q := g.Query(); q.Dir != Descending {
		t.Errorf("after second toggle: %s, want desc", q.Dir)
	}
	g.ToggleSort(ColAmount)
	if q := g.Query(); q.Dir != Ascending {
		t.Errorf("after third toggle: %s, want asc", q.Dir)
	}

	// Switching away resets to ascending again.
	g.ToggleSort(ColAmount)
	g.ToggleSort(ColSender)
	if q := g.Query(); q.Sort != ColSender || q.Dir != Ascending {
		t.Errorf("after column switch: %s/%s, want sender/asc", q.Sort, q.Dir)
	}
}

func TestGridFilterAndSortResetPage(t *testing.T) {
	var txns []domain.Transaction
	for i := 0; i < 50; i++ {
		txns = append(txns, domain.Transaction{Index: i, Date: "2024-01-01", Sender: "s", Receiver: "r", Currency: "EUR"})
	}
	g := New(txns)

	g.SetPage(2)
	if g.Page().PageIndex != 2 {
		t.Fatalf("PageIndex = %d, want 2", g.Page().PageIndex)
	}

	g.SetFilter("s")
	if g.Page().PageIndex != 0 {
		t.Errorf("filter change did not reset page")
	}

	g.SetPage(2)
	g.ToggleSort(ColAmount)
	if g.Page().PageIndex != 0 {
		t.Errorf("sort change did not reset page")
	}
}

func TestGridNextPrevClamp(t *testing.T) {
	var txns []domain.Transaction
	for i := 0; i < 25; i++ {
		txns = append(txns, domain.Transaction{Index: i, Date: "2024-01-01", Sender: "s", Receiver: "r", Currency: "EUR"})
	}
	g := New(txns)

	g.Prev()
	if g.Page().PageIndex != 0 {
		t.Errorf("Prev below zero")
	}
	g.Next()
	if g.Page().PageIndex != 1 {
		t.Errorf("Next did not advance")
	}
	g.Next()
	if g.Page().PageIndex != 1 {
		t.Errorf("Next past last page")
	}
}
