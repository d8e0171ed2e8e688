package worker

import (
	"context"
	"fmt"
)

// processSequential processes channels one at a time in the given order.
// Once ctx is done the remaining channels are marked cancelled.
func processSequential(ctx context.Context, opts Options) []Result {
	results := make([]Result, 0, len(opts.Channels))

	for i, ch := range opts.Channels {
		if err := ctx.Err(); err != nil {
			results = append(results, Result{Channel: ch, Err: err})
			continue
		}

		opts.Log.Info("processing channel",
			"channel", ch.Language,
			"task", fmt.Sprintf("%d/%d", i+1, len(opts.Channels)))

		results = append(results, runChannel(ctx, ch, opts))
	}

	return results
}
