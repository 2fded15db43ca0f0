// Package models defines domain entities for the chordex client.
//
// The package contains two categories of types:
//
// 1. Wire types mirroring the AutoChord service's JSON responses:
//   - [Song] : Search result entry, identified by its stable VideoID
//   - [SongDetail] : Song plus analysis fields (BPM, key, chord timeline, chord charts)
//   - [SearchPage] : One page of search results with a continuation token
//   - [AnalysisResult] : Partial SongDetail returned by /analyze and /analysis/{videoId}
//
// 2. Client-side state:
//   - [Session] : Authenticated user plus the opaque bearer token
//   - [Lookup] : Locally recorded history entry for an opened song
//
// Wire types are immutable once fetched; [SongDetail.Merge] is the only
// sanctioned mutation and implements shallow last-write-wins merging of
// analysis results into a displayed record.
package models
