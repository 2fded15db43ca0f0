package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/chordex/internal/formatter"
	"github.com/desertthunder/chordex/internal/models"
	"github.com/desertthunder/chordex/internal/shared"
	"github.com/urfave/cli/v3"
)

func videoIDFrom(cmd *cli.Command) (string, error) {
	videoID := cmd.StringArg("videoId")
	if videoID == "" {
		return "", fmt.Errorf("%w: a video ID is required", shared.ErrMissingArgument)
	}
	return videoID, nil
}

// SongDetail fetches the detail record for a song and records the lookup in
// local history.
func (r *Runner) SongDetail(ctx context.Context, cmd *cli.Command) error {
	videoID, err := videoIDFrom(cmd)
	if err != nil {
		return err
	}

	detail, err := r.svc.GetSongDetail(ctx, videoID)
	if err != nil {
		return err
	}

	if r.history != nil {
		lookup := models.NewLookup(detail.VideoID, detail.Title, detail.ChannelTitle, "")
		if err := r.history.Create(lookup); err != nil {
			r.logger.Warnf("failed to record lookup: %v", err)
		}
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(detail, true)
	case cmd.Bool("md"):
		data, err := formatter.ExportDetailToMarkdown(detail)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	return r.printDetail(detail)
}

// SongAnalyze runs chord analysis through the workflow and prints the merged
// detail record.
func (r *Runner) SongAnalyze(ctx context.Context, cmd *cli.Command) error {
	videoID, err := videoIDFrom(cmd)
	if err != nil {
		return err
	}

	persist := cmd.Bool("save")
	token := r.store.Token()
	if persist && token == "" {
		return fmt.Errorf("%w: --save requires login", shared.ErrNotAuthenticated)
	}

	detail, err := r.svc.GetSongDetail(ctx, videoID)
	if err != nil {
		return err
	}

	r.flow.SetSong(videoID)
	r.logger.Infof("analyzing %s", videoID)

	result, err := r.flow.TriggerAnalysis(ctx, videoID, persist, token)
	if err != nil {
		return err
	}
	detail.Merge(*result)

	if persist && r.flow.Available() {
		r.writePlain("✓ Analysis saved to your account\n")
	}

	if cmd.Bool("json") {
		return r.writeJSON(detail, true)
	}
	return r.printDetail(detail)
}

// SongSaved loads a previously persisted analysis for the song.
func (r *Runner) SongSaved(ctx context.Context, cmd *cli.Command) error {
	videoID, err := videoIDFrom(cmd)
	if err != nil {
		return err
	}

	result, err := r.flow.LoadSaved(ctx, videoID, r.store.Token())
	if err != nil {
		return err
	}

	detail := &models.SongDetail{Song: models.Song{VideoID: videoID}}
	detail.Merge(*result)

	if cmd.Bool("json") {
		return r.writeJSON(detail, true)
	}
	return r.printDetail(detail)
}

// SongCheck reports whether a saved analysis exists for the song.
func (r *Runner) SongCheck(ctx context.Context, cmd *cli.Command) error {
	videoID, err := videoIDFrom(cmd)
	if err != nil {
		return err
	}

	r.flow.SetSong(videoID)
	if r.flow.CheckSaved(ctx, videoID, r.store.Token()) {
		return r.writePlain("✓ Saved analysis available for %s\n", videoID)
	}
	return r.writePlain("✗ No saved analysis for %s\n", videoID)
}

// SongDownload requests an audio extraction URL for the song.
func (r *Runner) SongDownload(ctx context.Context, cmd *cli.Command) error {
	videoID, err := videoIDFrom(cmd)
	if err != nil {
		return err
	}

	videoURL := fmt.Sprintf("https://www.youtube.com/watch?v=%s", videoID)
	mediaURL, err := r.svc.RequestDownload(ctx, videoURL)
	if err != nil {
		return err
	}

	return r.writePlain("%s\n", mediaURL)
}

func (r *Runner) printDetail(detail *models.SongDetail) error {
	if detail.Title != "" {
		r.writePlain("%s\n", detail.Title)
	}
	if detail.ChannelTitle != "" {
		r.writePlain("%s\n", detail.ChannelTitle)
	}
	r.writePlain("Video: %s\n", detail.VideoID)

	if detail.BPM != 0 {
		r.writePlain("BPM: %d\n", detail.BPM)
	}
	if detail.Signature != "" {
		r.writePlain("Signature: %s\n", detail.Signature)
	}
	if detail.Key != "" {
		r.writePlain("Key: %s\n", detail.Key)
	}

	if len(detail.Chords) > 0 {
		r.writePlainln("Progression: %s", formatter.FormatProgressionLine(detail.Chords))
		for _, chord := range detail.Chords {
			r.writePlain("  %s  %s (%.1fs)\n", formatter.FormatTimestamp(chord.Timestamp), chord.Name, chord.Duration)
		}
	}

	for _, chart := range detail.ChordCharts {
		r.writePlainln("%s", chart.Chord)
		r.writePlain("%s", formatter.RenderChordChart(chart))
	}

	return nil
}
