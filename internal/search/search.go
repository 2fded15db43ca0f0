// Package search layers the two client-side usage patterns over the backend
// search call: debounced inline suggestions ([Suggester]) and token-paged
// infinite scroll ([Pager]).
//
// Both types guard against the interleavings that matter in an event-driven
// client: a suggestion response that arrives after a newer keystroke is
// discarded, and at most one page fetch is in flight per result list.
package search

import (
	"context"

	"github.com/desertthunder/chordex/internal/models"
)

// SearchFunc issues one backend search call. An empty pageToken requests the
// first page.
type SearchFunc func(ctx context.Context, query, pageToken string) (*models.SearchPage, error)
