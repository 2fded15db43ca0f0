// package formatter provides functions to export search results and chord
// sheets to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/desertthunder/chordex/internal/models"
)

// stringNames are the guitar strings of a chord diagram, low E first,
// matching the fret ordering the service returns.
var stringNames = []string{"E", "A", "D", "G", "B", "e"}

// ExportSongsToCSV converts a result list to CSV with columns: VideoID, Title, Channel, Thumbnail
func ExportSongsToCSV(songs []models.Song) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"VideoID", "Title", "Channel", "Thumbnail"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, song := range songs {
		record := []string{song.VideoID, song.Title, song.ChannelTitle, song.ThumbnailURL}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportDetailToMarkdown converts a song detail to a Markdown chord sheet.
func ExportDetailToMarkdown(detail *models.SongDetail) ([]byte, error) {
	if detail == nil {
		return nil, fmt.Errorf("nil song detail")
	}

	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", detail.Title))
	if detail.ChannelTitle != "" {
		buf.WriteString(fmt.Sprintf("**Artist**: %s\n", detail.ChannelTitle))
	}
	buf.WriteString(fmt.Sprintf("**Video**: %s\n", detail.VideoID))
	if detail.BPM != 0 {
		buf.WriteString(fmt.Sprintf("**BPM**: %d\n", detail.BPM))
	}
	if detail.Signature != "" {
		buf.WriteString(fmt.Sprintf("**Signature**: %s\n", detail.Signature))
	}
	if detail.Key != "" {
		buf.WriteString(fmt.Sprintf("**Key**: %s\n", detail.Key))
	}
	buf.WriteString("\n")

	if len(detail.Chords) > 0 {
		buf.WriteString("## Progression\n\n")
		buf.WriteString("| Time | Chord | Duration |\n")
		buf.WriteString("|------|-------|----------|\n")
		for _, chord := range detail.Chords {
			buf.WriteString(fmt.Sprintf("| %s | %s | %.1fs |\n", FormatTimestamp(chord.Timestamp), chord.Name, chord.Duration))
		}
		buf.WriteString("\n")
	}

	if len(detail.ChordCharts) > 0 {
		buf.WriteString("## Charts\n\n")
		for _, chart := range detail.ChordCharts {
			buf.WriteString(fmt.Sprintf("### %s\n\n```\n%s```\n\n", chart.Chord, RenderChordChart(chart)))
		}
	}

	return buf.Bytes(), nil
}

// RenderChordChart renders a guitar chord diagram as plain text, one line per
// string, high e first.
func RenderChordChart(chart models.ChordChart) string {
	var buf bytes.Buffer

	for i := len(stringNames) - 1; i >= 0; i-- {
		fret := 0
		if i < len(chart.Frets) {
			fret = chart.Frets[i]
		}

		mark := fmt.Sprintf("%d", fret)
		if fret < 0 {
			mark = "x"
		}

		buf.WriteString(fmt.Sprintf("%s |--%s--\n", stringNames[i], mark))
	}

	return buf.String()
}

// FormatProgressionLine renders a compact one-line chord progression, e.g.
// "C - Am - F - G".
func FormatProgressionLine(chords []models.Chord) string {
	if len(chords) == 0 {
		return ""
	}

	names := make([]string, len(chords))
	for i, chord := range chords {
		names[i] = chord.Name
	}
	return strings.Join(names, " - ")
}

// FormatTimestamp renders elapsed seconds as m:ss.
func FormatTimestamp(seconds float64) string {
	total := int(seconds)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
