package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// File is the on-disk YAML layout. Any field left out keeps its default.
type File struct {
	Params    Params         `yaml:"layout"`
	Render    RenderFile     `yaml:"render"`
	Subtitles SubtitleConfig `yaml:"subtitles"`
}

// RenderFile holds encoder-side settings that do not affect the plan.
type RenderFile struct {
	Preset         string `yaml:"preset"`
	TransitionType string `yaml:"transition"`
	Renderer       string `yaml:"renderer"`
	Workers        int    `yaml:"workers"`
	EncodeWorkers  int    `yaml:"encode_workers"`
	VideoEncoder   string `yaml:"encoder"`
	Quality        int    `yaml:"quality"`
	DPI            int    `yaml:"dpi"`
}

// DefaultFile returns the built-in settings used when no file is given.
func DefaultFile() File {
	return File{
		Params: DefaultParams(),
		Render: RenderFile{
			TransitionType: "fade",
			Renderer:       "frames",
			EncodeWorkers:  4,
			DPI:            150,
		},
		Subtitles: DefaultSubtitles(),
	}
}

// Load reads a YAML settings file on top of the defaults. An empty path
// returns the defaults untouched.
func Load(path string) (File, error) {
	f := DefaultFile()
	if path == "" {
		return f, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return f, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &f); err != nil {
		return f, fmt.Errorf("parse config %s: %w", path, err)
	}

	if f.Render.Preset != "" {
		f.Params, err = f.Params.WithPreset(f.Render.Preset)
		if err != nil {
			return f, err
		}
	}

	if err := f.Params.Validate(); err != nil {
		return f, fmt.Errorf("config %s: %w", path, err)
	}
	return f, nil
}

// LoadEnv loads a .env file if present and applies SHORTS_* overrides.
func LoadEnv(f *File) {
	_ = godotenv.Load()

	if v := os.Getenv("SHORTS_FPS"); v != "" {
		if fps, err := strconv.ParseFloat(v, 64); err == nil && fps > 0 {
			f.Params.FPS = fps
		}
	}
	if v := os.Getenv("SHORTS_ENCODER"); v != "" {
		f.Render.VideoEncoder = v
	}
	if v := os.Getenv("SHORTS_SUBTITLE_FONT"); v != "" {
		f.Subtitles.Font = v
	}
}
