package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ivlev/shorts2video/internal/config"
	"github.com/ivlev/shorts2video/internal/effects"
	"github.com/ivlev/shorts2video/internal/engine"
	"github.com/ivlev/shorts2video/internal/manifest"
	"github.com/ivlev/shorts2video/internal/source"
	"github.com/ivlev/shorts2video/internal/system"
	"github.com/ivlev/shorts2video/internal/video"
)

var buildVersion = "dev"

func main() {
	// Увеличиваем лимиты системы (для macOS/Linux)
	system.InitResourceLimits()

	// Создаем нужные директории, если их нет
	dirs := []string{"input/audio", "input/slides", "output", "output/manifests"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	configPtr := flag.String("config", "", "YAML с настройками раскладки и рендера")
	inputPtr := flag.String("input", "", "Путь к PDF или папке с изображениями (по умолчанию: самый свежий в input/slides/)")
	outputPtr := flag.String("output", "", "Путь к видео (если пусто, генерируется автоматически в output/)")
	audioPtr := flag.String("audio", "", "Путь к озвучке (по умолчанию: самый свежий файл в input/audio/)")
	presetPtr := flag.String("preset", "", "Пресет формата: 9:16 (Shorts/TikTok), 16:9, 4:5 (Instagram), 1:1")
	fpsPtr := flag.Float64("fps", 0, "FPS (0 - из настроек)")
	minPerImagePtr := flag.Float64("min-per-image", 0, "Минимальное время показа изображения, сек (0 - из настроек)")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Потоки рендера")
	transitionPtr := flag.String("transition", "", "Тип перехода xfade: fade, wipeleft, slideup, dissolve, none")
	rendererPtr := flag.String("renderer", "", "Рендер кадров: frames (Go) или ffmpeg (фильтр scale)")
	dpiPtr := flag.Int("dpi", 0, "DPI для PDF (0 - из настроек)")
	qualityPtr := flag.Int("quality", 0, "Качество видео (0 - авто, x264: CRF 1-51, VideoToolbox: битрейт = Q*100кбит/с)")
	subsPtr := flag.Bool("subtitles", false, "Наложить субтитры с подсветкой слов")
	subStylePtr := flag.String("subtitle-style", "", "Стиль субтитров: highlight или karaoke")
	alignmentPtr := flag.String("alignment", "", "JSON с таймингами слов")
	textPtr := flag.String("text", "", "Текст озвучки (если нет JSON с таймингами)")
	assPtr := flag.String("ass", "", "Сохранить .ass файл по этому пути")
	manifestPtr := flag.Bool("manifest", true, "Записать манифест раскладки в output/manifests/")
	statsPtr := flag.Bool("stats", false, "Показать отчёт о производительности")

	flag.Parse()

	file, err := config.Load(*configPtr)
	if err != nil {
		log.Fatalf("[-] Ошибка конфигурации: %v", err)
	}
	config.LoadEnv(&file)

	params := file.Params
	if *presetPtr != "" {
		if params, err = params.WithPreset(*presetPtr); err != nil {
			log.Fatalf("[-] Ошибка: %v", err)
		}
	}
	if *fpsPtr > 0 {
		params.FPS = *fpsPtr
	}
	if *minPerImagePtr > 0 {
		params.MinPerImage = *minPerImagePtr
	}
	if err := params.Validate(); err != nil {
		log.Fatalf("[-] Ошибка: %v", err)
	}
	if params.AllowsHardCuts() {
		log.Printf("[!] min_per_image %.2fs не длиннее safety_min_body %.2fs: переходы между изображениями заменятся жёсткими склейками", params.MinPerImage, params.SafetyMinBody)
	}

	inputPath := *inputPtr
	if inputPath == "" {
		latest, err := system.FindLatestInput("input/slides")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите PDF или изображения в input/slides/", err)
		}
		inputPath = latest
		fmt.Printf("[*] Выбран источник: %s\n", inputPath)
	}

	src, err := source.Open(inputPath)
	if err != nil {
		log.Fatalf("[-] Ошибка инициализации источника: %v", err)
	}
	defer src.Close()

	audioPath := *audioPtr
	if audioPath == "" {
		latest, err := system.FindLatestAudio("input/audio")
		if err != nil {
			log.Fatalf("[-] Ошибка: %v. Положите озвучку в input/audio/", err)
		}
		audioPath = latest
		fmt.Printf("[*] Выбрано аудио: %s\n", audioPath)
	}

	runID := uuid.NewString()

	finalOutput := *outputPtr
	if finalOutput == "" {
		baseName := filepath.Base(audioPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		finalOutput = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	encoderName := file.Render.VideoEncoder
	if encoderName == "" {
		encoderName, _ = system.GetBestH264Encoder()
		if encoderName != "libx264" {
			fmt.Printf("[*] Обнаружено аппаратное ускорение: %s\n", encoderName)
		}
	}

	quality := *qualityPtr
	if quality == 0 {
		quality = file.Render.Quality
	}
	if quality == 0 {
		quality = system.DefaultQuality(encoderName)
	}

	render := file.Render
	if *transitionPtr != "" {
		render.TransitionType = *transitionPtr
	}
	if *rendererPtr != "" {
		render.Renderer = *rendererPtr
	}
	if *dpiPtr > 0 {
		render.DPI = *dpiPtr
	}

	subs := file.Subtitles
	if *subsPtr {
		subs.Enabled = true
	}
	if *subStylePtr != "" {
		subs.Style = *subStylePtr
	}
	if *alignmentPtr != "" {
		subs.AlignmentPath = *alignmentPtr
	}
	if *textPtr != "" {
		subs.Text = *textPtr
	}
	if *assPtr != "" {
		subs.OutputASS = *assPtr
	}
	if subs.Enabled && !system.CheckFilterSupport("subtitles") {
		log.Fatalf("[-] FFmpeg собран без libass: фильтр subtitles недоступен")
	}

	cfg := &config.Config{
		Params:         params,
		InputPath:      inputPath,
		AudioPath:      audioPath,
		OutputVideo:    finalOutput,
		RunID:          runID,
		Workers:        *workersPtr,
		EncodeWorkers:  render.EncodeWorkers,
		TransitionType: render.TransitionType,
		Renderer:       render.Renderer,
		DPI:            render.DPI,
		VideoEncoder:   encoderName,
		Quality:        quality,
		Subtitles:      subs,
		ShowStats:      *statsPtr,
		BuildVersion:   buildVersion,
	}
	if *manifestPtr {
		cfg.ManifestPath = manifest.GeneratePath("output/manifests", runID)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Инициализируем зависимости
	ve := &video.FFmpegEncoder{}
	eff := &effects.DefaultEffect{}

	project := engine.NewVideoProject(cfg, src, ve, eff)
	res, err := project.Run(ctx)
	if err != nil {
		log.Fatalf("[-] Ошибка проекта: %v", err)
	}

	fmt.Printf("[+++] Успех! Результат: %s (%d изображений, %.2fs)\n", res.Output, res.Plan.ImageCount, res.Plan.Duration)
}
