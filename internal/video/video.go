package video

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"os/exec"
	"strings"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/ivlev/shorts2video/internal/config"
	"github.com/ivlev/shorts2video/internal/system"
	"github.com/ivlev/shorts2video/internal/timing"
)

// FrameSource produces the raw frames of one clip. renderer.Compositor draws
// every frame of the zoom; Still hands a single frame to an ffmpeg filter.
type FrameSource interface {
	Size() (int, int)
	FrameCount(fps float64) int
	RenderFrame(dst *image.RGBA, t float64)
}

type VideoEncoder interface {
	EncodeSegment(ctx context.Context, frames FrameSource, videoPath string, params config.SegmentParams, encoderName string, quality int) error
	Concatenate(ctx context.Context, segmentPaths []string, finalPath string, plan timing.Plan, cfg config.Config) error
	BurnSubtitles(ctx context.Context, videoPath, assPath, outPath string, crf int) error
}

type FFmpegEncoder struct {
	// Binary is the ffmpeg executable, "ffmpeg" when empty.
	Binary string
}

func (e *FFmpegEncoder) binary() string {
	if e.Binary == "" {
		return "ffmpeg"
	}
	return e.Binary
}

func (e *FFmpegEncoder) EncodeSegment(
	ctx context.Context,
	frames FrameSource,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) error {
	w, h := frames.Size()
	args := e.buildSegmentArgs(w, h, videoPath, params, encoderName, quality)

	cmd := exec.CommandContext(ctx, e.binary(), args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	canvas := system.GetImage(image.Rect(0, 0, w, h))
	defer system.PutImage(canvas)

	// Запись raw RGBA кадров
	count := frames.FrameCount(params.FPS)
	for i := 0; i < count; i++ {
		if err := ctx.Err(); err != nil {
			stdin.Close()
			_ = cmd.Wait()
			return err
		}
		frames.RenderFrame(canvas, float64(i)/params.FPS)
		if _, err := stdin.Write(canvas.Pix); err != nil {
			stdin.Close()
			_ = cmd.Wait()
			return fmt.Errorf("write raw error: %w (%s)", err, lastLines(stderr.String(), 5))
		}
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w (%s)", err, lastLines(stderr.String(), 5))
	}

	return nil
}

func (e *FFmpegEncoder) buildSegmentArgs(
	inputW, inputH int,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) []string {
	filter := params.Filter
	if filter == "" {
		filter = "null"
	}

	frames := timing.Frames(params.Duration, params.FPS)
	if frames < 1 {
		frames = 1
	}

	out := ffmpeg.KwArgs{
		"vf":       filter,
		"frames:v": frames,
		"r":        formatFPS(params.FPS),
		"pix_fmt":  "yuv420p",
		"c:v":      encoderName,
	}
	mergeArgs(out, qualityArgs(encoderName, quality))

	return ffmpeg.Input("pipe:", ffmpeg.KwArgs{
		"f":         "rawvideo",
		"pix_fmt":   "rgba",
		"s":         fmt.Sprintf("%dx%d", inputW, inputH),
		"framerate": formatFPS(params.FPS),
	}).
		Output(videoPath, out).
		OverWriteOutput().
		GetArgs()
}

// Concatenate joins the clips into the final timeline: neighbours overlap by
// plan.Crossfade at the offsets of plan.Offsets, the whole video fades in and
// out, the narration is mapped unchanged and the output is cut at
// plan.Duration.
func (e *FFmpegEncoder) Concatenate(ctx context.Context, segmentPaths []string, finalPath string, plan timing.Plan, cfg config.Config) error {
	args, err := buildConcatArgs(segmentPaths, finalPath, plan, cfg)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, e.binary(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg xfade error: %v, output: %s", err, lastLines(string(out), 10))
	}
	return nil
}

func buildConcatArgs(segmentPaths []string, finalPath string, plan timing.Plan, cfg config.Config) ([]string, error) {
	if len(segmentPaths) == 0 {
		return nil, fmt.Errorf("%w: no segments to join", timing.ErrInvalidInput)
	}
	if len(segmentPaths) != plan.ImageCount {
		return nil, fmt.Errorf("%w: %d segments for a plan of %d images", timing.ErrInvalidInput, len(segmentPaths), plan.ImageCount)
	}

	inputs := make([]*ffmpeg.Stream, len(segmentPaths))
	for i, p := range segmentPaths {
		inputs[i] = ffmpeg.Input(p).Video()
	}

	transition := cfg.TransitionType
	if transition == "" {
		transition = "fade"
	}

	var v *ffmpeg.Stream
	switch {
	case len(inputs) == 1:
		v = inputs[0]
	case transition != "none" && plan.Crossfade > 0:
		// 1. Видео фильтры (xfade)
		offsets := plan.Offsets()
		v = inputs[0]
		for i := 1; i < len(inputs); i++ {
			v = ffmpeg.Filter([]*ffmpeg.Stream{v, inputs[i]}, "xfade", ffmpeg.Args{}, ffmpeg.KwArgs{
				"transition": transition,
				"duration":   formatSeconds(plan.Crossfade),
				"offset":     formatSeconds(offsets[i]),
			})
		}
	default:
		// Без переходов: режем каждый клип до его видимой части и склеиваем
		durations := plan.Durations()
		cut := make([]*ffmpeg.Stream, len(inputs))
		for i, in := range inputs {
			visible := durations[i]
			if i < len(inputs)-1 {
				visible -= plan.Crossfade
			}
			cut[i] = in.
				Filter("trim", ffmpeg.Args{}, ffmpeg.KwArgs{"duration": formatSeconds(visible)}).
				Filter("setpts", ffmpeg.Args{"PTS-STARTPTS"})
		}
		v = ffmpeg.Concat(cut, ffmpeg.KwArgs{"v": 1, "a": 0})
	}

	if plan.FadeIn > 0 {
		v = v.Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "in", "st": "0", "d": formatSeconds(plan.FadeIn)})
	}
	if plan.FadeOut > 0 {
		start := plan.Duration - plan.FadeOut
		if start < 0 {
			start = 0
		}
		v = v.Filter("fade", ffmpeg.Args{}, ffmpeg.KwArgs{"t": "out", "st": formatSeconds(start), "d": formatSeconds(plan.FadeOut)})
	}

	streams := []*ffmpeg.Stream{v}
	out := ffmpeg.KwArgs{
		"c:v":      cfg.VideoEncoder,
		"pix_fmt":  "yuv420p",
		"r":        formatFPS(plan.FPS),
		"t":        formatSeconds(plan.Duration),
		"movflags": "+faststart",
	}
	if cfg.VideoEncoder == "" {
		out["c:v"] = "libx264"
	}
	mergeArgs(out, qualityArgs(out["c:v"].(string), cfg.Quality))

	// 2. Аудио: дорожка озвучки без изменений
	if cfg.AudioPath != "" {
		streams = append(streams, ffmpeg.Input(cfg.AudioPath).Audio())
		out["c:a"] = "aac"
		out["b:a"] = "192k"
	}

	return ffmpeg.Output(streams, finalPath, out).OverWriteOutput().GetArgs(), nil
}

// BurnSubtitles renders an .ass file into the picture. Audio is copied.
func (e *FFmpegEncoder) BurnSubtitles(ctx context.Context, videoPath, assPath, outPath string, crf int) error {
	args := buildBurnArgs(videoPath, assPath, outPath, crf)

	cmd := exec.CommandContext(ctx, e.binary(), args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg subtitles error: %v, output: %s", err, lastLines(string(out), 10))
	}
	return nil
}

func buildBurnArgs(videoPath, assPath, outPath string, crf int) []string {
	if crf <= 0 {
		crf = 18
	}
	in := ffmpeg.Input(videoPath)
	v := in.Video().Filter("subtitles", ffmpeg.Args{subtitlePath(assPath)})

	return ffmpeg.Output([]*ffmpeg.Stream{v, in.Audio()}, outPath, ffmpeg.KwArgs{
		"c:v":     "libx264",
		"preset":  "medium",
		"crf":     crf,
		"pix_fmt": "yuv420p",
		"c:a":     "copy",
	}).OverWriteOutput().GetArgs()
}

// subtitlePath normalises separators for the subtitles filter. The graph
// builder escapes ':' and quotes, which covers Windows drive letters.
func subtitlePath(p string) string {
	return strings.ReplaceAll(p, "\\", "/")
}

func qualityArgs(encoderName string, quality int) ffmpeg.KwArgs {
	// Качество в зависимости от энкодера
	switch encoderName {
	case "h264_videotoolbox":
		// VideoToolbox часто не поддерживает -q:v напрямую. Используем битрейт.
		return ffmpeg.KwArgs{"b:v": fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return ffmpeg.KwArgs{"cq": quality}
	default: // libx264
		return ffmpeg.KwArgs{"crf": quality, "preset": "medium"}
	}
}

func mergeArgs(dst, src ffmpeg.KwArgs) {
	for k, v := range src {
		dst[k] = v
	}
}

func formatSeconds(s float64) string {
	return fmt.Sprintf("%.6f", s)
}

func formatFPS(fps float64) string {
	if fps == float64(int(fps)) {
		return fmt.Sprintf("%d", int(fps))
	}
	return fmt.Sprintf("%.3f", fps)
}

func lastLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, " | ")
}
