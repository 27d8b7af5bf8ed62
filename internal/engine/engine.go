package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/shorts2video/internal/audio"
	"github.com/ivlev/shorts2video/internal/config"
	"github.com/ivlev/shorts2video/internal/effects"
	"github.com/ivlev/shorts2video/internal/manifest"
	"github.com/ivlev/shorts2video/internal/renderer"
	"github.com/ivlev/shorts2video/internal/source"
	"github.com/ivlev/shorts2video/internal/system"
	"github.com/ivlev/shorts2video/internal/timing"
	"github.com/ivlev/shorts2video/internal/video"
)

type VideoProject struct {
	Config  *config.Config
	Source  source.Source
	Encoder video.VideoEncoder
	Effect  effects.Effect

	// AudioDuration measures the narration; audio.Duration when nil.
	AudioDuration func(ctx context.Context, path string) (float64, error)

	tempDir string
}

func NewVideoProject(cfg *config.Config, src source.Source, ve video.VideoEncoder, eff effects.Effect) *VideoProject {
	return &VideoProject{
		Config:  cfg,
		Source:  src,
		Encoder: ve,
		Effect:  eff,
	}
}

// Result describes a finished render.
type Result struct {
	Plan     timing.Plan
	Zooms    []renderer.ZoomSpec
	Output   string
	Manifest string
	ASS      string
}

// Plan measures the narration and lays the source images out over it.
func (p *VideoProject) Plan(ctx context.Context) (timing.Plan, error) {
	if p.Config.AudioPath == "" {
		return timing.Plan{}, fmt.Errorf("%w: no narration audio", timing.ErrInvalidInput)
	}

	measure := p.AudioDuration
	if measure == nil {
		measure = audio.Duration
	}
	audioDur, err := measure(ctx, p.Config.AudioPath)
	if err != nil {
		return timing.Plan{}, fmt.Errorf("длительность аудио: %w", err)
	}

	return timing.NewPlan(p.Source.PageCount(), audioDur, p.Config.Params)
}

func (p *VideoProject) Run(ctx context.Context) (*Result, error) {
	startTime := time.Now()

	var err error
	p.tempDir, err = os.MkdirTemp("", "shorts2video_")
	if err != nil {
		return nil, err
	}
	defer os.RemoveAll(p.tempDir)

	if p.Source.PageCount() == 0 {
		return nil, fmt.Errorf("источник не содержит страниц/кадров")
	}

	plan, err := p.Plan(ctx)
	if err != nil {
		return nil, err
	}

	params := p.Config.Params
	fmt.Println("--- [PROJECT: SHORTS ENGINE] ---")
	fmt.Printf("[*] Источник: %s | Изображений: %d из %d\n", p.Config.InputPath, plan.ImageCount, plan.SourceCount)
	fmt.Printf("[*] Разрешение: %dx%d @ %.3g FPS | Рендер: %s\n", params.Width, params.Height, params.FPS, p.rendererName())
	fmt.Printf("[*] Аудио: %.3fs -> видео %.3fs | Кадр: %.3fs | Переход: %.3fs\n", plan.Audio, plan.Duration, plan.PerImage, plan.Crossfade)
	if plan.Degraded() {
		fmt.Println("[!] Изображения слишком короткие для перехода, используются жёсткие склейки")
	}
	fmt.Println("-----------------------------")

	sampled, err := source.NewSampled(p.Source, plan.Indices)
	if err != nil {
		return nil, err
	}

	renderStart := time.Now()
	segments, zooms, err := p.encodeSegments(ctx, sampled, plan)
	if err != nil {
		return nil, err
	}
	renderTime := time.Since(renderStart)

	res := &Result{Plan: plan, Zooms: zooms, Output: p.Config.OutputVideo}

	joined := p.Config.OutputVideo
	subsOn := p.Config.Subtitles.Enabled
	if subsOn {
		joined = p.unburnedPath()
	}

	fmt.Println("[*] Сборка финального видео (с эффектами переходов)...")
	concatStart := time.Now()
	if err := p.Encoder.Concatenate(ctx, segments, joined, plan, *p.Config); err != nil {
		return nil, fmt.Errorf("ошибка сборки финального видео: %w", err)
	}
	concatTime := time.Since(concatStart)

	if subsOn {
		res.ASS, err = p.burnSubtitles(ctx, joined, plan)
		if err != nil {
			return nil, err
		}
	}

	if p.Config.ManifestPath != "" {
		m := manifest.New(p.Config.RunID, plan, zooms)
		m.CreatedAt = time.Now().Format(time.RFC3339)
		m.Input = p.Config.InputPath
		m.Audio = p.Config.AudioPath
		m.Output = p.Config.OutputVideo
		m.Subtitles = res.ASS
		if err := manifest.Write(m, p.Config.ManifestPath); err != nil {
			return nil, fmt.Errorf("запись манифеста: %w", err)
		}
		res.Manifest = p.Config.ManifestPath
		fmt.Printf("[*] Манифест: %s\n", p.Config.ManifestPath)
	}

	if p.Config.ShowStats {
		p.report(plan, time.Since(startTime), renderTime, concatTime)
	}

	return res, nil
}

// encodeSegments renders and encodes every clip of plan. Clips are
// independent, so a bounded pool works through them in any order; the first
// failure cancels the rest.
func (p *VideoProject) encodeSegments(ctx context.Context, src source.Source, plan timing.Plan) ([]string, []renderer.ZoomSpec, error) {
	params := p.Config.Params
	n := plan.ImageCount
	durations := plan.Durations()

	results := make([]string, n)
	zooms := make([]renderer.ZoomSpec, n)

	// Фильтр зума для режима ffmpeg читает zooms[i] после того, как воркер его заполнил
	var eff effects.Effect = p.Effect
	if p.Config.Renderer == "ffmpeg" {
		eff = effects.NewZoomFilterEffect(zooms)
	} else if eff == nil {
		eff = &effects.DefaultEffect{}
	}

	stats, err := system.ReadHostStats()
	if err != nil {
		log.Printf("[!] Не удалось прочитать параметры системы: %v", err)
	}
	workers := system.RenderWorkers(p.Config.Workers, params.Width*params.Height*4, stats)
	if p.Config.EncodeWorkers > 0 && workers > p.Config.EncodeWorkers {
		// Ограничиваем параллельные энкодеры, чтобы не перегрузить GPU/VRAM
		workers = p.Config.EncodeWorkers
	}
	if workers > n {
		workers = n
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	var ready atomic.Int32
	for i := 0; i < n; i++ {
		g.Go(func() error {
			img, err := src.RenderPage(i, p.Config.DPI)
			if err != nil {
				return fmt.Errorf("рендер изображения %d: %w", i, err)
			}

			b := img.Bounds()
			spec, err := renderer.PlanZoomParams(b.Dx(), b.Dy(), durations[i], i, params)
			if err != nil {
				return fmt.Errorf("зум изображения %d: %w", i, err)
			}
			zooms[i] = spec

			segParams := config.SegmentParams{
				Width:     params.Width,
				Height:    params.Height,
				FPS:       params.FPS,
				Duration:  durations[i],
				PageIndex: i,
				Contrast:  params.Contrast,
			}
			segParams.Filter = eff.GenerateFilter(segParams)

			var frames video.FrameSource
			if p.Config.Renderer == "ffmpeg" {
				frames = video.NewStill(img)
			} else {
				comp, err := renderer.NewCompositor(img, spec)
				if err != nil {
					return err
				}
				frames = comp
			}

			segPath := filepath.Join(p.tempDir, fmt.Sprintf("s%03d.mp4", i))
			if err := p.Encoder.EncodeSegment(gctx, frames, segPath, segParams, p.Config.VideoEncoder, p.Config.Quality); err != nil {
				return fmt.Errorf("сегмент %d: %w", i, err)
			}

			results[i] = segPath
			fmt.Printf("[>] Ready: %d/%d\n", ready.Add(1), n)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, zooms, nil
}

func (p *VideoProject) rendererName() string {
	if p.Config.Renderer == "" {
		return "frames"
	}
	return p.Config.Renderer
}

// unburnedPath is where the joined video goes before subtitles are burned in.
func (p *VideoProject) unburnedPath() string {
	if p.Config.Subtitles.KeepUnburned {
		out := p.Config.OutputVideo
		ext := filepath.Ext(out)
		return out[:len(out)-len(ext)] + "_raw" + ext
	}
	return filepath.Join(p.tempDir, "joined.mp4")
}

func (p *VideoProject) report(plan timing.Plan, totalTime, renderTime, concatTime time.Duration) {
	fps := float64(plan.ImageCount) / totalTime.Seconds()
	allocated, reused := system.PoolStats()

	host := "n/a"
	if s, err := system.ReadHostStats(); err == nil {
		host = s.String()
	}

	report := fmt.Sprintf(
		"--- [PERFORMANCE REPORT] ---\n"+
			"Build: %s | Run: %s\n"+
			"Host: %s\n"+
			"Total Time: %.2fs\n"+
			"Render+Encode: %.2fs\n"+
			"Concatenation: %.2fs\n"+
			"Effective FPS: %.2f\n"+
			"Canvas pool: %d allocated, %d reused\n"+
			"----------------------------\n",
		p.Config.BuildVersion, p.Config.RunID, host, totalTime.Seconds(), renderTime.Seconds(), concatTime.Seconds(), fps, allocated, reused,
	)
	fmt.Print(report)

	// Логирование в файл
	logEntry := fmt.Sprintf("[%s] Build: %s | Run: %s | Input: %s | Images: %d/%d | Audio: %.2fs | Total: %.2fs | Render: %.2fs | FPS: %.2f\n",
		time.Now().Format("2006-01-02 15:04:05"),
		p.Config.BuildVersion,
		p.Config.RunID,
		filepath.Base(p.Config.InputPath),
		plan.ImageCount, plan.SourceCount,
		plan.Audio,
		totalTime.Seconds(),
		renderTime.Seconds(),
		fps,
	)

	f, err := os.OpenFile("benchmark.log", os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		f.WriteString(logEntry)
		f.Close()
	} else {
		fmt.Printf("[!] Не удалось записать benchmark.log: %v\n", err)
	}
}
