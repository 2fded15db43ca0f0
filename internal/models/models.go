package models

import (
	"fmt"
	"sort"
	"time"
)

// Model defines the base interface for all persistent models in the local database.
type Model interface {
	ID() string           // ID returns the unique identifier for this model
	CreatedAt() time.Time // CreatedAt returns when this model was created
	UpdatedAt() time.Time // UpdatedAt returns when this model was last updated
	Validate() error      // Validate checks if the model's data is valid and returns an error if not
}

// Repository defines the interface for data access operations.
// Implementations handle database interactions for specific model types.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts a new model into the database
	Get(id string) (T, error)                  // Get retrieves a model by its ID
	Update(model T) error                      // Update modifies an existing model in the database
	Delete(id string) error                    // Delete removes a model from the database by its ID
	List(criteria map[string]any) ([]T, error) // List retrieves all models matching the given criteria
}

// Song represents one search result from the AutoChord service.
//
// VideoID is the stable external identity key and never changes after creation.
type Song struct {
	VideoID      string `json:"videoId"`
	Title        string `json:"title"`
	ChannelTitle string `json:"channelTitle"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// SearchPage represents one page of search results.
//
// Items preserve backend relevance order and may repeat a VideoID across page
// boundaries. An empty NextPageToken means there are no further pages.
type SearchPage struct {
	Items         []Song `json:"items"`
	NextPageToken string `json:"nextPageToken,omitempty"`
}

// HasMore reports whether another page can be fetched.
func (p *SearchPage) HasMore() bool {
	return p.NextPageToken != ""
}

// Chord is one entry of the analyzed chord timeline.
type Chord struct {
	Name      string  `json:"chord"`
	Timestamp float64 `json:"timestamp"`
	Duration  float64 `json:"duration"`
}

// ChordChart is a guitar chord diagram: fret and finger positions per string,
// low E first.
type ChordChart struct {
	Chord   string `json:"chord"`
	Frets   []int  `json:"frets"`
	Fingers []int  `json:"fingers"`
}

// SongDetail is a Song plus the fields produced by chord analysis.
//
// Chords is time-ordered and serves as the lookup structure for playback-time
// queries via [SongDetail.ChordAt].
type SongDetail struct {
	Song
	BPM         int          `json:"bpm,omitempty"`
	Signature   string       `json:"signature,omitempty"`
	Key         string       `json:"key,omitempty"`
	Chords      []Chord      `json:"chords,omitempty"`
	ChordCharts []ChordChart `json:"chordCharts,omitempty"`
}

// AnalysisResult is the partial SongDetail returned by the analyze and
// saved-analysis endpoints. Absent fields decode to zero values and are
// skipped during merge.
type AnalysisResult struct {
	BPM         int          `json:"bpm,omitempty"`
	Signature   string       `json:"signature,omitempty"`
	Key         string       `json:"key,omitempty"`
	Chords      []Chord      `json:"chords,omitempty"`
	ChordCharts []ChordChart `json:"chordCharts,omitempty"`
}

// Merge folds an analysis result into the detail record: shallow,
// last-write-wins. Fields the result doesn't carry keep their prior values.
func (d *SongDetail) Merge(res AnalysisResult) {
	if res.BPM != 0 {
		d.BPM = res.BPM
	}
	if res.Signature != "" {
		d.Signature = res.Signature
	}
	if res.Key != "" {
		d.Key = res.Key
	}
	if len(res.Chords) > 0 {
		d.Chords = res.Chords
	}
	if len(res.ChordCharts) > 0 {
		d.ChordCharts = res.ChordCharts
	}
}

// ChordAt returns the chord sounding at the given elapsed playback time in
// seconds. The second return value is false before the first chord or when no
// timeline is present.
func (d *SongDetail) ChordAt(elapsed float64) (Chord, bool) {
	if len(d.Chords) == 0 {
		return Chord{}, false
	}

	// First chord strictly after elapsed; the one before it is sounding.
	i := sort.Search(len(d.Chords), func(i int) bool {
		return d.Chords[i].Timestamp > elapsed
	})
	if i == 0 {
		return Chord{}, false
	}

	return d.Chords[i-1], true
}

// User is the authenticated AutoChord account profile.
type User struct {
	ID       int    `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// Session pairs a user profile with the opaque bearer token accepted by the
// backend. A Session is only ever constructed from a successful login response
// or a well-formed persisted copy of one.
type Session struct {
	User  User
	Token string
}

// Lookup is a locally recorded history entry for an opened song.
type Lookup struct {
	id           string
	sequence     int
	videoID      string
	title        string
	channelTitle string
	query        string
	createdAt    time.Time
	updatedAt    time.Time
	deletedAt    *time.Time
}

// NewLookup creates a history entry for the given song, recording the query
// that led to it.
func NewLookup(videoID, title, channelTitle, query string) *Lookup {
	now := time.Now()
	return &Lookup{
		videoID:      videoID,
		title:        title,
		channelTitle: channelTitle,
		query:        query,
		createdAt:    now,
		updatedAt:    now,
	}
}

func (l *Lookup) ID() string            { return l.id }
func (l *Lookup) Sequence() int         { return l.sequence }
func (l *Lookup) VideoID() string       { return l.videoID }
func (l *Lookup) Title() string         { return l.title }
func (l *Lookup) ChannelTitle() string  { return l.channelTitle }
func (l *Lookup) Query() string         { return l.query }
func (l *Lookup) CreatedAt() time.Time  { return l.createdAt }
func (l *Lookup) UpdatedAt() time.Time  { return l.updatedAt }
func (l *Lookup) DeletedAt() *time.Time { return l.deletedAt }

func (l *Lookup) SetID(id string)           { l.id = id }
func (l *Lookup) SetSequence(seq int)       { l.sequence = seq }
func (l *Lookup) SetCreatedAt(t time.Time)  { l.createdAt = t }
func (l *Lookup) SetUpdatedAt(t time.Time)  { l.updatedAt = t }
func (l *Lookup) SetDeletedAt(t *time.Time) { l.deletedAt = t }

// Validate checks the lookup's required fields.
func (l *Lookup) Validate() error {
	if l.videoID == "" {
		return fmt.Errorf("lookup requires a video ID")
	}
	if l.title == "" {
		return fmt.Errorf("lookup requires a title")
	}
	return nil
}
