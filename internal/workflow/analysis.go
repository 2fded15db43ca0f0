// Package workflow coordinates the long-running chord analysis for the
// currently open song with the authentication-gated persistence cache.
//
// Per song the machine is Idle -> Analyzing -> Idle, with an orthogonal
// saved-analysis availability flag derived from the (videoID, session) pair.
// Merging a result into the displayed record is left to the caller via
// [models.SongDetail.Merge]; the workflow only hands back partial results.
package workflow

import (
	"context"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/chordex/internal/models"
	"github.com/desertthunder/chordex/internal/shared"
)

// AnalysisService is the slice of the backend client the workflow needs.
type AnalysisService interface {
	Analyze(ctx context.Context, videoID string, saveToDB bool, token string) (*models.AnalysisResult, error)
	LoadSavedAnalysis(ctx context.Context, videoID, token string) (*models.AnalysisResult, error)
	CheckSavedAnalysis(ctx context.Context, videoID, token string) (bool, error)
}

// Workflow tracks analysis state for the currently open song.
type Workflow struct {
	svc    AnalysisService
	logger *log.Logger

	mu        sync.Mutex
	videoID   string
	analyzing bool
	available bool
}

// New creates a Workflow over the given service.
func New(svc AnalysisService, logger *log.Logger) *Workflow {
	return &Workflow{svc: svc, logger: logger}
}

// SetSong switches the workflow to a new song. Availability is not cached
// across navigation; callers re-derive it with CheckSaved.
func (w *Workflow) SetSong(videoID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.videoID = videoID
	w.available = false
}

// Analyzing reports whether an analysis request is in flight.
func (w *Workflow) Analyzing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.analyzing
}

// Available reports whether a persisted analysis is known to exist for the
// current song and session.
func (w *Workflow) Available() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.available
}

// TriggerAnalysis runs a remote analysis for the song. Only one analysis may
// be in flight; re-entry fails with [shared.ErrAnalysisInFlight]. The token is
// attached when present, and when persist is requested by an authenticated
// caller a success optimistically marks the saved analysis available without a
// confirming round trip. The backend is trusted to have persisted it; the next
// song or session change re-derives the truth.
//
// On failure the machine returns to Idle and the caller's displayed record is
// untouched; nothing is retried automatically.
func (w *Workflow) TriggerAnalysis(ctx context.Context, videoID string, persist bool, token string) (*models.AnalysisResult, error) {
	w.mu.Lock()
	if w.analyzing {
		w.mu.Unlock()
		return nil, shared.ErrAnalysisInFlight
	}
	w.analyzing = true
	w.mu.Unlock()

	result, err := w.svc.Analyze(ctx, videoID, persist, token)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.analyzing = false
	if err != nil {
		return nil, err
	}

	if persist && token != "" && videoID == w.videoID {
		w.available = true
	}
	return result, nil
}

// CheckSaved re-derives saved-analysis availability. Unauthenticated callers
// short-circuit to false without a network call, and any network failure is
// treated as false. Absence of evidence is absence of a saved analysis, never
// an error surfaced to the user.
//
// Invoke whenever the open song changes and whenever authentication state
// transitions; logging out while available immediately revokes visibility
// (already-merged data stays rendered, only future actions are gated).
func (w *Workflow) CheckSaved(ctx context.Context, videoID, token string) bool {
	available := false
	if token != "" {
		exists, err := w.svc.CheckSavedAnalysis(ctx, videoID, token)
		if err != nil {
			w.logger.Debugf("saved-analysis check failed, treating as absent: %v", err)
		} else {
			available = exists
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if videoID == w.videoID {
		w.available = available
	}
	return available
}

// LoadSaved fetches the persisted analysis for the song. It fails fast with
// [shared.ErrNotAuthenticated] when no credential is supplied; on failure the
// caller's displayed record is untouched.
func (w *Workflow) LoadSaved(ctx context.Context, videoID, token string) (*models.AnalysisResult, error) {
	if token == "" {
		return nil, shared.ErrNotAuthenticated
	}
	return w.svc.LoadSavedAnalysis(ctx, videoID, token)
}
