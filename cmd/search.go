package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/chordex/internal/formatter"
	"github.com/desertthunder/chordex/internal/shared"
	"github.com/urfave/cli/v3"
)

// Search runs a query through the pagination controller, fetching up to
// --pages pages before printing.
func (r *Runner) Search(ctx context.Context, cmd *cli.Command) error {
	query := cmd.StringArg("query")
	if query == "" {
		return fmt.Errorf("%w: search requires a query", shared.ErrMissingArgument)
	}

	pages := int(cmd.Int("pages"))
	pager := r.newPager()

	r.logger.Infof("searching for %q", query)

	if err := pager.Reset(ctx, query); err != nil {
		return err
	}

	for fetched := 1; fetched < pages && pager.HasMore(); fetched++ {
		loaded, err := pager.LoadMore(ctx)
		if err != nil {
			return err
		}
		if !loaded {
			break
		}
	}

	songs := pager.Items()
	if len(songs) == 0 {
		return r.writePlain("No results for %q\n", query)
	}

	switch {
	case cmd.Bool("json"):
		return r.writeJSON(songs, true)
	case cmd.Bool("csv"):
		data, err := formatter.ExportSongsToCSV(songs)
		if err != nil {
			return err
		}
		return r.writePlain("%s", data)
	}

	for i, song := range songs {
		r.writePlain("%2d. %s - %s (%s)\n", i+1, song.Title, song.ChannelTitle, song.VideoID)
	}
	if pager.HasMore() {
		r.writePlainln("More results available; rerun with --pages %d", pages+1)
	}

	return nil
}
