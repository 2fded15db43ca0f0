package search

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/desertthunder/chordex/internal/models"
	"github.com/desertthunder/chordex/internal/shared"
)

// Pager drives token-based pagination for the full search page.
//
// At most one page fetch is in flight at a time: LoadMore is a no-op while a
// fetch is pending or once the backend stops returning a continuation token.
// Items are appended in backend relevance order without deduplication; the
// backend does not promise disjoint pages.
type Pager struct {
	search SearchFunc

	mu      sync.Mutex
	gen     uint64 // bumped by Reset; completions from older generations are dropped
	query   string
	items   []models.Song
	token   string
	hasMore bool
	loading bool
}

// NewPager creates a Pager over the given search call.
func NewPager(search SearchFunc) *Pager {
	return &Pager{search: search}
}

// Reset starts a new query: state is fully cleared before the first-page
// request is issued, and any page still in flight for the previous query is
// discarded when it lands.
func (p *Pager) Reset(ctx context.Context, query string) error {
	query = strings.TrimSpace(query)
	if query == "" {
		return fmt.Errorf("%w: empty search query", shared.ErrInvalidInput)
	}

	p.mu.Lock()
	p.gen++
	gen := p.gen
	p.query = query
	p.items = nil
	p.token = ""
	p.hasMore = false
	p.loading = true
	p.mu.Unlock()

	page, err := p.search(ctx, query, "")

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return nil
	}
	p.loading = false
	if err != nil {
		return err
	}

	p.items = page.Items
	p.token = page.NextPageToken
	p.hasMore = page.HasMore()
	return nil
}

// LoadMore fetches the next page and appends it. The first return value is
// false when the call was a no-op (already loading, no further pages, or the
// result was superseded by a Reset).
func (p *Pager) LoadMore(ctx context.Context) (bool, error) {
	p.mu.Lock()
	if p.loading || !p.hasMore {
		p.mu.Unlock()
		return false, nil
	}
	p.loading = true
	gen := p.gen
	query := p.query
	token := p.token
	p.mu.Unlock()

	page, err := p.search(ctx, query, token)

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return false, nil
	}
	p.loading = false
	if err != nil {
		return false, err
	}

	p.items = append(p.items, page.Items...)
	p.token = page.NextPageToken
	p.hasMore = page.HasMore()
	return true, nil
}

// Items returns a copy of the accumulated result list.
func (p *Pager) Items() []models.Song {
	p.mu.Lock()
	defer p.mu.Unlock()

	items := make([]models.Song, len(p.items))
	copy(items, p.items)
	return items
}

// HasMore reports whether the backend indicated further pages.
func (p *Pager) HasMore() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.hasMore
}

// Loading reports whether a page fetch is in flight.
func (p *Pager) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// Query returns the active query.
func (p *Pager) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}
