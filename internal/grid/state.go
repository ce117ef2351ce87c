package grid

import "github.com/amlwatch/dashboard/internal/domain"

// Grid holds the table's interactive state over one overview's transaction
// collection. The collection itself is never mutated.
type Grid struct {
	txns   []domain.Transaction
	filter string
	sort   Column
	dir    Direction
	page   int
}

// New creates a grid with the default view: date descending, no filter,
// first page.
func New(txns []domain.Transaction) *Grid {
	return &Grid{txns: txns, sort: ColDate, dir: Descending}
}

// SetFilter replaces the filter text and returns to the first page.
func (g *Grid) SetFilter(text string) {
	g.filter = text
	g.page = 0
}

// ToggleSort activates a column: re-selecting the active column flips the
// direction, a new column starts ascending. Either way the view returns to
// the first page.
func (g *Grid) ToggleSort(col Column) {
	if g.sort == col {
		if g.dir == Ascending {
			g.dir = Descending
		} else {
			g.dir = Ascending
		}
	} else {
		g.sort = col
		g.dir = Ascending
	}
	g.page = 0
}

// SetPage requests a page; View clamps it into range.
func (g *Grid) SetPage(i int) {
	g.page = i
}

// Next advances one page, clamped by the current page count.
func (g *Grid) Next() {
	if g.page < g.Page().PageCount-1 {
		g.page++
	}
}

// Prev retreats one page.
func (g *Grid) Prev() {
	if g.page > 0 {
		g.page--
	}
}

// Query returns the current interactive parameters.
func (g *Grid) Query() Query {
	return Query{Filter: g.filter, Sort: g.sort, Dir: g.dir, Page: g.page}
}

// Page computes the current view.
func (g *Grid) Page() Page {
	return View(g.txns, g.Query())
}
