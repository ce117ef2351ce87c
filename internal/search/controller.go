// Package search implements the customer search session: a debounced
// query-to-results pipeline with stale-response discard and full keyboard
// navigation over the dropdown.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/amlwatch/dashboard/internal/domain"
)

// DefaultDebounce is the quiescent period after the last keystroke before
// a lookup is issued.
const DefaultDebounce = 300 * time.Millisecond

// Lookup resolves a query against the backend.
type Lookup func(ctx context.Context, query string) ([]domain.SearchResult, error)

// Key is a navigation key event over the open dropdown.
type Key int

const (
	KeyDown Key = iota
	KeyUp
	KeyEnter
	KeyEscape
)

// NoSelection is the active index meaning the query text itself is
// selected, not a result row.
const NoSelection = -1

// State is a render snapshot of the session.
type State struct {
	Query     string
	Results   []domain.SearchResult
	Open      bool
	Active    int
	Searching bool
	// Searched distinguishes "no results for q" from "start typing".
	Searched bool
}

// Controller owns one search box's state. All methods are safe to call
// from the event goroutine and the debounce timer goroutine.
type Controller struct {
	lookup     Lookup
	debounce   time.Duration
	onNavigate func(bcn string)
	log        zerolog.Logger

	mu        sync.Mutex
	timer     *time.Timer
	gen       uint64
	closed    bool
	query     string
	results   []domain.SearchResult
	open      bool
	active    int
	searching bool
	searched  bool
}

// Option tweaks a controller; tests shrink the debounce window.
type Option func(*Controller)

// WithDebounce overrides the quiescent period.
func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.debounce = d }
}

// New creates a controller. onNavigate fires when a result is committed and
// may be nil.
func New(lookup Lookup, onNavigate func(bcn string), log zerolog.Logger, opts ...Option) *Controller {
	c := &Controller{
		lookup:     lookup,
		debounce:   DefaultDebounce,
		onNavigate: onNavigate,
		log:        log,
		active:     NoSelection,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Input records a keystroke. Each call resets the debounce timer, so rapid
// edits issue at most one lookup per quiescent window. An empty or
// whitespace-only query clears results and closes the dropdown without
// issuing a request.
func (c *Controller) Input(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}

	c.query = text
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		// Supersede any in-flight lookup as well.
		c.gen++
		c.results = nil
		c.open = false
		c.active = NoSelection
		c.searching = false
		c.searched = false
		return
	}

	c.timer = time.AfterFunc(c.debounce, func() {
		c.fire(trimmed)
	})
}

// fire issues the lookup for a quiesced query. The generation captured
// before the round-trip gates the commit: only the response to the most
// recently issued request may update visible state.
func (c *Controller) fire(query string) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.gen++
	gen := c.gen
	c.searching = true
	c.searched = true
	c.mu.Unlock()

	results, err := c.lookup(context.Background(), query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen || c.closed {
		return // stale resolution, a newer request owns the state
	}
	c.searching = false
	if err != nil {
		// Search degrades to "no results"; typing is never interrupted and
		// no error reaches the field.
		c.log.Warn().Err(err).Str("query", query).Msg("customer search failed")
		c.results = nil
		c.active = NoSelection
		return
	}
	c.results = results
	c.open = true
	c.active = NoSelection
}

// Key applies a navigation key and reports whether it was consumed.
func (c *Controller) Key(k Key) bool {
	c.mu.Lock()

	if !c.open {
		// ArrowDown on a closed box with retained results reopens it.
		if k == KeyDown && len(c.results) > 0 {
			c.open = true
			c.mu.Unlock()
			return true
		}
		c.mu.Unlock()
		return false
	}

	switch k {
	case KeyDown:
		if c.active < len(c.results)-1 {
			c.active++
		}
	case KeyUp:
		if c.active > 0 {
			c.active--
		} else {
			c.active = NoSelection
		}
	case KeyEnter:
		if c.active >= 0 && c.active < len(c.results) {
			bcn := c.commitLocked(c.active)
			c.mu.Unlock()
			c.navigate(bcn)
			return true
		}
	case KeyEscape:
		// Close and clear the selection; the typed query stays.
		c.open = false
		c.active = NoSelection
	}
	c.mu.Unlock()
	return true
}

// Hover marks a row active from pointer movement. Last input wins between
// pointer and keyboard.
func (c *Controller) Hover(i int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.open && i >= 0 && i < len(c.results) {
		c.active = i
	}
}

// Select commits the result at i: the query text becomes the BCN, the
// dropdown closes and navigation fires.
func (c *Controller) Select(i int) {
	c.mu.Lock()
	if i < 0 || i >= len(c.results) {
		c.mu.Unlock()
		return
	}
	bcn := c.commitLocked(i)
	c.mu.Unlock()
	c.navigate(bcn)
}

// commitLocked applies the selection under the lock and returns the BCN.
func (c *Controller) commitLocked(i int) string {
	bcn := c.results[i].BCN
	c.query = bcn
	c.open = false
	c.active = NoSelection
	return bcn
}

func (c *Controller) navigate(bcn string) {
	if c.onNavigate != nil {
		c.onNavigate(bcn)
	}
}

// Focus reopens the dropdown when earlier results are still held.
func (c *Controller) Focus() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.results) > 0 {
		c.open = true
	}
}

// ClickOutside closes the dropdown without touching the query text.
func (c *Controller) ClickOutside() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.open = false
}

// Snapshot returns the current render state. The result slice is shared
// read-only with the render; it is replaced, never mutated, on commit.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Query:     c.query,
		Results:   c.results,
		Open:      c.open,
		Active:    c.active,
		Searching: c.searching,
		Searched:  c.searched,
	}
}

// Close cancels any pending debounce timer and inhibits late resolutions.
// The unmount path.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}
