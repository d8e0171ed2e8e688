package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/ozdemircibaris/youtube-video-generator/internal/ffmpeg"
	"github.com/ozdemircibaris/youtube-video-generator/internal/pipeline"
	"github.com/ozdemircibaris/youtube-video-generator/internal/scenario"

	"github.com/spf13/cobra"
)

var framesCmd = &cobra.Command{
	Use:   "frames",
	Short: "Print the per-frame render descriptors for one channel",
	Long: `Resolve one channel and print one JSON descriptor per rendered frame:
{"time_ms", "segment_index", "word_index", "section"}.`,
	Args: cobra.NoArgs,
	RunE: runFrames,
}

var (
	framesMarks    string
	framesAudio    string
	framesLanguage string
)

func init() {
	framesCmd.Flags().StringVarP(&scenarioPath, "scenario", "s", "", "scenario file: video template or .yaml list (required)")
	framesCmd.Flags().StringVarP(&framesMarks, "marks", "m", "", "speech marks file (required)")
	framesCmd.Flags().StringVarP(&framesAudio, "audio", "a", "", "narration audio, probed for total duration")
	framesCmd.Flags().StringVarP(&framesLanguage, "language", "l", "en", "channel language")
	framesCmd.MarkFlagRequired("scenario")
	framesCmd.MarkFlagRequired("marks")

	rootCmd.AddCommand(framesCmd)
}

func runFrames(cmd *cobra.Command, args []string) error {
	sc, err := scenario.Load(scenarioPath)
	if err != nil {
		return err
	}

	f, err := os.Open(framesMarks)
	if err != nil {
		return fmt.Errorf("open speech marks: %w", err)
	}
	marks, err := pipeline.DecodeSpeechMarks(f)
	f.Close()
	if err != nil {
		return err
	}

	audioMs := 0
	if framesAudio != "" {
		if audioMs, err = ffmpeg.ProbeDurationMs(context.Background(), framesAudio); err != nil {
			return fmt.Errorf("%w: probe %s: %v", pipeline.ErrUnknownDuration, framesAudio, err)
		}
	}

	log := slog.Default()
	tl, err := pipeline.Process(pipeline.ChannelInput{
		Language:        framesLanguage,
		Records:         pipeline.RecordsFromMarks(marks, log),
		Scenario:        sc.ToPipeline(),
		AudioDurationMs: audioMs,
	}, cfg.Settings, log)
	if err != nil {
		return err
	}

	fps := cfg.Render.FrameRate
	h := tl.Highlighter()
	w := bufio.NewWriter(cmd.OutOrStdout())
	enc := json.NewEncoder(w)
	for n := range pipeline.FrameCount(tl.TotalMs, fps) {
		if err := enc.Encode(h.FrameAt(n, fps)); err != nil {
			return err
		}
	}
	return w.Flush()
}
