package cmd

import (
	"context"

	"github.com/theirongolddev/mchango/internal/pipeline"
)

// fetchBoard loads one snapshot for the one-shot commands.
func fetchBoard(ctx context.Context, d *deps) (*pipeline.Board, error) {
	progressf("  Fetching contributions...\n")
	ctx, cancel := context.WithTimeout(ctx, d.cfg.Timeout())
	defer cancel()

	board, err := pipeline.Load(ctx, d.client, d.static)
	if err != nil {
		d.log.Error().Err(err).Str("api", d.cfg.API.BaseURL).Msg("Failed to fetch contribution data")
		return nil, err
	}
	if n := board.Recent.Dropped; n > 0 {
		d.log.Warn().Int("dropped", n).Msg("transactions with malformed TransTime skipped")
	}
	return board, nil
}
