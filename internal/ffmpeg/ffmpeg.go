package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrNoDuration is returned when ffprobe reports no usable duration.
var ErrNoDuration = errors.New("ffprobe reported no duration")

// MediaInfo holds duration and codec information from ffprobe.
type MediaInfo struct {
	DurationMs int
	Codec      string
}

// Available returns true if ffprobe is on the PATH.
func Available() bool {
	_, err := exec.LookPath("ffprobe")
	return err == nil
}

// probeOutput mirrors ffprobe JSON structure.
type probeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecName string `json:"codec_name"`
	} `json:"streams"`
}

// ProbeMedia uses ffprobe to get the narration duration and audio codec.
func ProbeMedia(ctx context.Context, path string) (*MediaInfo, error) {
	if !Available() {
		return nil, fmt.Errorf("ffprobe not found: %w", exec.ErrNotFound)
	}

	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-select_streams", "a:0",
		"-show_entries", "stream=codec_name:format=duration",
		"-of", "json",
		path,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}
	return parseProbe(out)
}

func parseProbe(out []byte) (*MediaInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return nil, fmt.Errorf("ffprobe JSON parse error: %w", err)
	}

	dur, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil || dur <= 0 {
		return nil, ErrNoDuration
	}

	codec := "N/A"
	if len(probe.Streams) > 0 && probe.Streams[0].CodecName != "" {
		codec = probe.Streams[0].CodecName
	}

	return &MediaInfo{DurationMs: int(math.Round(dur * 1000)), Codec: codec}, nil
}

// ProbeDurationMs returns the audio length in milliseconds.
func ProbeDurationMs(ctx context.Context, path string) (int, error) {
	info, err := ProbeMedia(ctx, path)
	if err != nil {
		return 0, err
	}
	return info.DurationMs, nil
}

// IsAudioExtension returns true for the narration formats the TTS step produces.
func IsAudioExtension(ext string) bool {
	switch strings.ToLower(ext) {
	case ".mp3", ".m4a", ".wav", ".ogg", ".flac", ".aac", ".pcm":
		return true
	}
	return false
}

// LogMediaInfo probes path and logs its size and media information.
func LogMediaInfo(ctx context.Context, log *slog.Logger, path string) (*MediaInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat audio: %w", err)
	}

	info, err := ProbeMedia(ctx, path)
	if err != nil {
		return nil, err
	}

	log.Info("narration audio",
		"file", filepath.Base(path),
		"size_mb", fmt.Sprintf("%.2f", float64(stat.Size())/(1024*1024)),
		"duration", fmt.Sprintf("%02d:%02d", info.DurationMs/60000, info.DurationMs/1000%60),
		"codec", info.Codec)
	return info, nil
}
