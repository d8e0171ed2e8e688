package worker

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// processConcurrent runs channels as independent tasks with bounded
// parallelism. Each task writes only its own slot of the result slice.
func processConcurrent(ctx context.Context, opts Options) []Result {
	limit := opts.MaxConcurrent
	if limit <= 0 {
		limit = len(opts.Channels)
	}
	opts.Log.Info("starting concurrent processing",
		"channels", len(opts.Channels),
		"max_concurrent", limit)

	results := make([]Result, len(opts.Channels))

	var g errgroup.Group
	g.SetLimit(limit)

	for i, ch := range opts.Channels {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = Result{Channel: ch, Err: err}
				return nil
			}
			opts.Log.Debug("starting channel", "channel", ch.Language, "task", fmt.Sprintf("%d/%d", i+1, len(opts.Channels)))
			results[i] = runChannel(ctx, ch, opts)
			return nil
		})
	}
	_ = g.Wait()

	return results
}
