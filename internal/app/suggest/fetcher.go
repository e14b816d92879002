package suggest

import (
	"context"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/rideshare-app/rideshare-client/internal/domain"
	"github.com/rideshare-app/rideshare-client/internal/platform/logger"
	clockport "github.com/rideshare-app/rideshare-client/internal/ports/out/clock"
)

// Source is the slice of the gateway the fetcher needs.
type Source interface {
	Suggestions(ctx context.Context, query string) ([]domain.Suggestion, error)
}

// Snapshot is the read-only view the presentation layer renders.
type Snapshot struct {
	Query       string
	Suggestions []domain.Suggestion
	Fetching    bool
}

type result struct {
	seq         int
	query       string
	suggestions []domain.Suggestion
	err         error
}

// Fetcher turns free-text input into debounced, superseding place lookups.
//
// Each keystroke restarts the quiet-period timer; each issued request carries a
// monotonic sequence number and only the most recently issued sequence may mutate
// the snapshot, so out-of-order completions for superseded queries are discarded.
// Lookup failures empty the result set and are logged, never surfaced.
type Fetcher struct {
	src Source
	clk clockport.Clock
	log logger.Logger

	// Quiet is the debounce window; MinQueryLen short-circuits tiny inputs to an
	// empty result set without a network call. Set before Run.
	Quiet       time.Duration
	MinQueryLen int

	queries chan string
	results chan result
	updated chan struct{}

	mu   sync.RWMutex
	snap Snapshot
}

func NewFetcher(src Source, clk clockport.Clock, log logger.Logger) *Fetcher {
	return &Fetcher{
		src:         src,
		clk:         clk,
		log:         log,
		Quiet:       500 * time.Millisecond,
		MinQueryLen: 2,
		queries:     make(chan string, 16),
		results:     make(chan result, 16),
		updated:     make(chan struct{}, 1),
	}
}

// QueryChanged feeds a keystroke into the fetcher.
func (f *Fetcher) QueryChanged(text string) {
	f.queries <- text
}

// Snapshot returns a copy of the current view.
func (f *Fetcher) Snapshot() Snapshot {
	f.mu.RLock()
	defer f.mu.RUnlock()
	snap := f.snap
	snap.Suggestions = append([]domain.Suggestion(nil), f.snap.Suggestions...)
	return snap
}

// Updated signals (conflated) whenever the snapshot changes.
func (f *Fetcher) Updated() <-chan struct{} { return f.updated }

// Run owns all fetcher state on a single goroutine until ctx is done.
func (f *Fetcher) Run(ctx context.Context) {
	var (
		timer   clockport.Timer
		timerC  <-chan time.Time
		pending string
		seq     int // last issued request; older completions are stale
	)

	stopTimer := func() {
		if timer != nil {
			timer.Stop()
			timer = nil
			timerC = nil
		}
	}

	for {
		select {
		case <-ctx.Done():
			stopTimer()
			return

		case q := <-f.queries:
			stopTimer()
			pending = q
			if utf8.RuneCountInString(q) < f.MinQueryLen {
				// Short-circuit: empty result, no network call, and any
				// in-flight request is superseded.
				seq++
				f.publish(Snapshot{Query: q})
				continue
			}
			cur := f.Snapshot()
			f.publish(Snapshot{Query: q, Suggestions: cur.Suggestions, Fetching: cur.Fetching})
			timer = f.clk.NewTimer(f.Quiet)
			timerC = timer.C()

		case <-timerC:
			timer = nil
			timerC = nil
			seq++
			issued := seq
			query := pending
			f.publish(Snapshot{Query: query, Suggestions: f.current(), Fetching: true})
			go func() {
				suggestions, err := f.src.Suggestions(ctx, query)
				select {
				case f.results <- result{seq: issued, query: query, suggestions: suggestions, err: err}:
				case <-ctx.Done():
				}
			}()

		case r := <-f.results:
			if r.seq != seq {
				continue // superseded; must not affect observable state
			}
			// The snapshot pairs results with the query that produced them,
			// which may trail pending while a newer keystroke is debouncing.
			snap := Snapshot{Query: r.query}
			if r.err != nil {
				f.log.Warn("suggestion lookup failed", logger.Error(r.err))
			} else {
				snap.Suggestions = r.suggestions
			}
			f.publish(snap)
		}
	}
}

func (f *Fetcher) current() []domain.Suggestion {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]domain.Suggestion(nil), f.snap.Suggestions...)
}

func (f *Fetcher) publish(snap Snapshot) {
	f.mu.Lock()
	f.snap = snap
	f.mu.Unlock()
	select {
	case f.updated <- struct{}{}:
	default:
	}
}
