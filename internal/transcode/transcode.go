package transcode

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strconv"
	"strings"
)

// FFmpeg settings for MP3 extraction
const (
	AudioCodec   = "libmp3lame"
	AudioQuality = "2"

	FFmpegCommand       = "ffmpeg"
	FFprobeCommand      = "ffprobe"
	FFprobeLogLevel     = "error"
	FFprobeShowEntries  = "format=duration"
	FFprobeOutputFormat = "csv=p=0"
	ProgressPipeTarget  = "pipe:2"
	ProgressTimePrefix  = "out_time_us="
)

// ErrNotFound is returned when the ffmpeg binary cannot be located.
var ErrNotFound = errors.New("ffmpeg not found in PATH")

// Converter turns a downloaded audio stream into an MP3 file.
type Converter interface {
	Convert(ctx context.Context, inputPath, outputPath string, onProgress func(float64)) error
}

// FFmpeg converts through the ffmpeg and ffprobe executables.
type FFmpeg struct {
	FFmpegPath  string
	FFprobePath string
	logger      *slog.Logger
}

// New creates an ffmpeg-backed converter using binaries from PATH.
func New(logger *slog.Logger) *FFmpeg {
	if logger == nil {
		logger = slog.Default()
	}
	return &FFmpeg{FFmpegPath: FFmpegCommand, FFprobePath: FFprobeCommand, logger: logger}
}

// Available reports whether the ffmpeg binary can be found.
func (f *FFmpeg) Available() error {
	if _, err := exec.LookPath(f.FFmpegPath); err != nil {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return nil
}

// Convert writes outputPath as MP3. Progress is reported in [0,1] when the
// input duration can be probed. A failed or cancelled run removes the
// partial output.
func (f *FFmpeg) Convert(ctx context.Context, inputPath, outputPath string, onProgress func(float64)) error {
	if _, err := os.Stat(inputPath); err != nil {
		return fmt.Errorf("input file: %w", err)
	}
	if err := f.Available(); err != nil {
		return err
	}

	duration, err := f.ProbeDuration(ctx, inputPath)
	if err != nil {
		f.logger.Warn("duration probe failed, progress unavailable",
			slog.String("input", inputPath), slog.Any("err", err))
	}

	cmd := exec.CommandContext(ctx, f.FFmpegPath, BuildFFmpegArgs(inputPath, outputPath)...)
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	tail := ParseProgress(stderr, duration, onProgress)
	err = cmd.Wait()

	if ctx.Err() != nil {
		os.Remove(outputPath)
		return ctx.Err()
	}
	if err != nil {
		os.Remove(outputPath)
		if tail != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, tail)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	if onProgress != nil {
		onProgress(1)
	}
	return nil
}

// BuildFFmpegArgs builds the ffmpeg command arguments
func BuildFFmpegArgs(inputPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", inputPath,
		"-vn",
		"-c:a", AudioCodec,
		"-q:a", AudioQuality,
		"-progress", ProgressPipeTarget,
		"-nostats",
		outputPath,
	}
}

// ProbeDuration returns the media duration in seconds using ffprobe.
func (f *FFmpeg) ProbeDuration(ctx context.Context, filePath string) (float64, error) {
	cmd := exec.CommandContext(ctx, f.FFprobePath, "-v", FFprobeLogLevel,
		"-show_entries", FFprobeShowEntries, "-of", FFprobeOutputFormat, filePath)
	output, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("failed to run ffprobe: %w", err)
	}
	return parseDuration(string(output))
}

func parseDuration(s string) (float64, error) {
	duration, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	if duration <= 0 {
		return 0, fmt.Errorf("non-positive duration %v", duration)
	}
	return duration, nil
}

// ParseProgress reads ffmpeg -progress output until EOF, reporting the
// fraction of totalSeconds processed. It returns the last non-progress line,
// which is usually ffmpeg's error message.
func ParseProgress(r io.Reader, totalSeconds float64, onProgress func(float64)) string {
	var last string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if !strings.HasPrefix(line, ProgressTimePrefix) {
			if !strings.Contains(line, "=") {
				last = line
			}
			continue
		}
		if totalSeconds <= 0 || onProgress == nil {
			continue
		}

		us, err := strconv.ParseInt(strings.TrimPrefix(line, ProgressTimePrefix), 10, 64)
		if err != nil || us < 0 {
			continue
		}
		progress := float64(us) / 1e6 / totalSeconds
		if progress > 1 {
			progress = 1
		}
		onProgress(progress)
	}
	return last
}
