package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/desertthunder/chordex/internal/models"
)

const (
	// DefaultWindow is the quiescence window: input must be stable this long
	// before a suggestion request reaches the network.
	DefaultWindow = 300 * time.Millisecond

	// DefaultLimit caps how many results a suggestion update carries.
	DefaultLimit = 5
)

// Suggestions is one update to the visible suggestion list. A failed request
// degrades to an empty list; Err is kept for logging only.
type Suggestions struct {
	Query string
	Songs []models.Song
	Err   error
}

// Suggester debounces keystroke-driven search input.
//
// Each call to [Suggester.Input] cancels any scheduled-but-not-fired request
// (the request is suppressed before it is ever sent, not ignored on return).
// Responses carry a monotonically increasing sequence number; only the
// response to the most recently issued request is published, so an older,
// slower response can never overwrite a newer one.
type Suggester struct {
	search SearchFunc
	window time.Duration
	limit  int

	mu    sync.Mutex
	timer *time.Timer
	gen   uint64 // bumped on every Input; invalidates pending timers
	seq   uint64 // bumped per issued request; staleness guard

	updates chan Suggestions
}

// NewSuggester creates a Suggester. Zero window or limit selects the defaults.
func NewSuggester(search SearchFunc, window time.Duration, limit int) *Suggester {
	if window <= 0 {
		window = DefaultWindow
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	return &Suggester{
		search:  search,
		window:  window,
		limit:   limit,
		updates: make(chan Suggestions, 1),
	}
}

// Updates returns the channel suggestion updates are published on. The channel
// holds only the latest update; older unread updates are dropped.
func (s *Suggester) Updates() <-chan Suggestions {
	return s.updates
}

// Input registers a keystroke. Queries of trimmed length <= 1 clear the
// suggestion list immediately and issue no request.
func (s *Suggester) Input(ctx context.Context, query string) {
	query = strings.TrimSpace(query)

	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++

	if len([]rune(query)) <= 1 {
		// Invalidate any in-flight request so its late response is discarded.
		s.seq++
		s.mu.Unlock()
		s.publish(Suggestions{Query: query})
		return
	}

	gen := s.gen
	s.timer = time.AfterFunc(s.window, func() {
		s.fire(ctx, gen, query)
	})
	s.mu.Unlock()
}

// Clear cancels any pending request and empties the suggestion list.
func (s *Suggester) Clear() {
	s.Input(context.Background(), "")
}

// fire runs after the quiescence window. The generation check suppresses tasks
// superseded between scheduling and firing.
func (s *Suggester) fire(ctx context.Context, gen uint64, query string) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		return
	}
	s.seq++
	seq := s.seq
	s.mu.Unlock()

	page, err := s.search(ctx, query, "")

	s.mu.Lock()
	stale := seq != s.seq
	s.mu.Unlock()
	if stale {
		return
	}

	update := Suggestions{Query: query, Err: err}
	if err == nil && page != nil {
		items := page.Items
		if len(items) > s.limit {
			items = items[:s.limit]
		}
		update.Songs = items
	}

	s.publish(update)
}

// publish delivers an update without blocking, displacing an unread older one.
func (s *Suggester) publish(update Suggestions) {
	for {
		select {
		case s.updates <- update:
			return
		default:
			select {
			case <-s.updates:
			default:
			}
		}
	}
}
