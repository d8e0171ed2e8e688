package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/ozdemircibaris/youtube-video-generator/internal/platform/metrics"
	"github.com/ozdemircibaris/youtube-video-generator/internal/scenario"
	"github.com/ozdemircibaris/youtube-video-generator/internal/worker"

	"github.com/spf13/cobra"
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Build timelines and captions for one or more language channels",
	Long: `Build a section timeline and caption schedule for every language channel.
Each channel is given as lang=marks.json[:audio.mp3]; the audio file, when
present, is probed with ffprobe for the narration length.

For every channel, <out>/<lang>/timeline.json and <out>/<lang>/captions.srt
are written. A failing channel does not stop the others.`,
	Example: `  yvg sync --scenario video.txt --channel en=out/en.marks --channel es=out/es.marks:out/es.mp3 --out build`,
	Args:    cobra.NoArgs,
	RunE:    runSync,
}

var (
	scenarioPath  string
	channelSpecs  []string
	outputDir     string
	noAsync       bool
	maxConcurrent int
	metricsFile   string
)

func init() {
	syncCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "scenario file: video template or .yaml list (required)")
	syncCmd.Flags().StringArrayVarP(&channelSpecs, "channel", "c", nil, "channel as lang=marks.json[:audio] (repeatable)")
	syncCmd.Flags().StringVarP(&outputDir, "out", "o", "output", "output directory")
	syncCmd.Flags().BoolVar(&noAsync, "no-async", false, "process channels one at a time")
	syncCmd.Flags().IntVarP(&maxConcurrent, "max-concurrent", "j", 0, "max channels processed at once (default from MAX_CONCURRENT_CHANNELS)")
	syncCmd.Flags().StringVar(&metricsFile, "metrics-file", "", "write run metrics to this file in Prometheus text format")
	syncCmd.MarkFlagRequired("scenario")
	syncCmd.MarkFlagRequired("channel")

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return err
	}

	channels := make([]worker.Channel, 0, len(channelSpecs))
	for _, arg := range channelSpecs {
		ch, err := worker.ParseChannel(arg)
		if err != nil {
			return err
		}
		channels = append(channels, ch)
	}

	limit := cfg.MaxConcurrentChannels
	if cmd.Flags().Changed("max-concurrent") {
		limit = maxConcurrent
	}

	// Setup signal handling for graceful cancellation.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	met := metrics.New()
	results, err := worker.Run(ctx, worker.Options{
		Channels:      channels,
		Scenario:      sc.ToPipeline(),
		OutputDir:     outputDir,
		NoAsync:       noAsync,
		MaxConcurrent: limit,
		Settings:      cfg.Settings,
		Metrics:       met,
		Log:           slog.Default(),
	})

	if metricsFile != "" {
		if werr := met.WriteTextfile(metricsFile); werr != nil {
			slog.Warn("cannot write metrics file", "path", metricsFile, "err", werr)
		}
	}

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	if err != nil {
		return fmt.Errorf("%d of %d channels failed: %w", failed, len(results), err)
	}

	if !quiet {
		slog.Info("done", "channels", len(results), "out", outputDir)
	}
	return nil
}
