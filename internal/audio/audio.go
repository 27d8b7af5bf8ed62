// Package audio answers one question about the narration track: how long it is.
package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/wav"
	"github.com/tidwall/gjson"
	ffmpeg "github.com/u2takey/ffmpeg-go"
)

const probeTimeout = 30 * time.Second

// Duration returns the length of the audio file in seconds. WAV and MP3 are
// decoded natively; other formats, or files the decoders reject, are probed
// with ffprobe.
func Duration(ctx context.Context, path string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	d, err := decodedDuration(path)
	switch {
	case err == nil && d > 0:
		return d, nil
	case os.IsNotExist(err):
		return 0, fmt.Errorf("audio file: %w", err)
	case err != nil:
		fmt.Printf("[!] Не удалось декодировать %s (%v), пробуем ffprobe\n", filepath.Base(path), err)
	}

	return ProbeDuration(ctx, path)
}

func decodedDuration(path string) (float64, error) {
	var decode func(f *os.File) (beep.StreamSeekCloser, beep.Format, error)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav", ".wave":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return wav.Decode(f) }
	case ".mp3":
		decode = func(f *os.File) (beep.StreamSeekCloser, beep.Format, error) { return mp3.Decode(f) }
	default:
		if _, err := os.Stat(path); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("no native decoder for %s", filepath.Ext(path))
	}

	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}

	streamer, format, err := decode(f)
	if err != nil {
		f.Close()
		return 0, err
	}
	defer streamer.Close()

	if format.SampleRate <= 0 {
		return 0, fmt.Errorf("bad sample rate %d", format.SampleRate)
	}
	return format.SampleRate.D(streamer.Len()).Seconds(), nil
}

// ProbeDuration reads format.duration from ffprobe's JSON output.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	timeout := probeTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return 0, context.DeadlineExceeded
		}
	}

	out, err := ffmpeg.ProbeWithTimeout(path, timeout, ffmpeg.KwArgs{})
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", filepath.Base(path), err)
	}
	return ParseProbe(out)
}

// ParseProbe extracts the container duration from ffprobe -show_format JSON.
func ParseProbe(probeJSON string) (float64, error) {
	dur := gjson.Get(probeJSON, "format.duration")
	if !dur.Exists() {
		// Some containers only report per-stream durations
		dur = gjson.Get(probeJSON, "streams.#(codec_type==\"audio\").duration")
	}
	if !dur.Exists() {
		return 0, fmt.Errorf("ffprobe reported no duration")
	}

	d := dur.Float()
	if d <= 0 {
		return 0, fmt.Errorf("ffprobe reported duration %q", dur.String())
	}
	return d, nil
}
