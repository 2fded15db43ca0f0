package main

import (
	"context"

	"github.com/urfave/cli/v3"
)

// HistoryList prints recently opened songs, most recent first.
func (r *Runner) HistoryList(ctx context.Context, cmd *cli.Command) error {
	lookups, err := r.history.List(map[string]any{"limit": int(cmd.Int("limit"))})
	if err != nil {
		return err
	}

	if len(lookups) == 0 {
		return r.writePlain("No lookup history\n")
	}

	if cmd.Bool("json") {
		entries := make([]map[string]any, len(lookups))
		for i, lookup := range lookups {
			entries[i] = map[string]any{
				"videoId":      lookup.VideoID(),
				"title":        lookup.Title(),
				"channelTitle": lookup.ChannelTitle(),
				"query":        lookup.Query(),
				"openedAt":     lookup.CreatedAt(),
			}
		}
		return r.writeJSON(entries, true)
	}

	for _, lookup := range lookups {
		line := lookup.Title()
		if lookup.ChannelTitle() != "" {
			line += " - " + lookup.ChannelTitle()
		}
		r.writePlain("%s  %s (%s)\n", lookup.CreatedAt().Format("2006-01-02 15:04"), line, lookup.VideoID())
	}

	return nil
}

// HistoryClear soft-deletes every recorded lookup.
func (r *Runner) HistoryClear(ctx context.Context, cmd *cli.Command) error {
	if err := r.history.DeleteAll(); err != nil {
		return err
	}

	r.logger.Info("lookup history cleared")
	return r.writePlain("✓ History cleared\n")
}
