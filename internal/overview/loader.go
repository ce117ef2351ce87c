// Package overview loads the per-customer aggregate and guards it against
// stale resolutions when the investigator navigates quickly.
package overview

import (
	"context"
	"sync"

	"github.com/amlwatch/dashboard/internal/domain"
)

// Fetcher retrieves one customer's aggregate from the backend.
type Fetcher interface {
	Overview(ctx context.Context, bcn string) (*domain.CustomerOverview, error)
}

// State is a render snapshot. Either Data or Err is set after loading
// finishes; a failed load never leaves a partial overview behind.
type State struct {
	BCN     string
	Loading bool
	Data    *domain.CustomerOverview
	Err     string
}

// Loader fetches an overview per identifier change. A Load for a new
// identifier bumps a generation; only the fetch holding the current
// generation may commit, so navigating away logically cancels the pending
// load. Loads for the identifier already in flight coalesce onto that
// fetch instead of superseding it.
type Loader struct {
	fetch Fetcher

	mu         sync.Mutex
	gen        uint64
	state      State
	err        error         // typed error behind State.Err
	pending    chan struct{} // closed when the in-flight fetch settles
	pendingBCN string
}

// NewLoader creates an empty loader.
func NewLoader(fetch Fetcher) *Loader {
	return &Loader{fetch: fetch}
}

// Load fetches the overview for bcn, replacing any previous aggregate
// wholesale. An empty identifier is a terminal error without a request.
// When a fetch for the same identifier is already in flight, Load waits
// for that fetch and returns its outcome.
func (l *Loader) Load(ctx context.Context, bcn string) error {
	l.mu.Lock()
	if bcn == "" {
		l.gen++
		l.state = State{Err: "no business contact number provided"}
		l.err = nil
		l.mu.Unlock()
		return nil
	}

	if l.state.Loading && l.pendingBCN == bcn {
		done := l.pending
		l.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return ctx.Err()
		}
		l.mu.Lock()
		defer l.mu.Unlock()
		if l.state.BCN == bcn {
			return l.err
		}
		// A navigation replaced the identifier while we waited.
		return context.Canceled
	}

	l.gen++
	gen := l.gen
	done := make(chan struct{})
	l.pending = done
	l.pendingBCN = bcn
	l.state = State{BCN: bcn, Loading: true}
	l.mu.Unlock()

	data, err := l.fetch.Overview(ctx, bcn)

	l.mu.Lock()
	defer l.mu.Unlock()
	close(done)
	if gen != l.gen {
		return nil // superseded by a newer navigation
	}
	if err != nil {
		l.state = State{BCN: bcn, Err: err.Error()}
		l.err = err
		return err
	}
	l.state = State{BCN: bcn, Data: data}
	l.err = nil
	return nil
}

// Ensure returns the loaded overview for bcn, fetching only when the
// current state is not a completed load of that identifier. Concurrent
// Ensure calls for the same identifier share one fetch.
func (l *Loader) Ensure(ctx context.Context, bcn string) (*domain.CustomerOverview, error) {
	l.mu.Lock()
	if l.state.BCN == bcn && l.state.Data != nil {
		data := l.state.Data
		l.mu.Unlock()
		return data, nil
	}
	l.mu.Unlock()

	if err := l.Load(ctx, bcn); err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.state.BCN == bcn && l.state.Data != nil {
		return l.state.Data, nil
	}
	// A concurrent navigation superseded this load; treat as cancelled.
	return nil, context.Canceled
}

// Invalidate drops the cached aggregate so the next Ensure refetches. An
// in-flight load is left alone; its commit is already governed by the
// generation check.
func (l *Loader) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.state.Loading {
		l.state = State{}
		l.err = nil
	}
}

// Snapshot returns the current state.
func (l *Loader) Snapshot() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}
