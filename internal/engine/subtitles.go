package engine

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/ivlev/shorts2video/internal/subtitles"
	"github.com/ivlev/shorts2video/internal/timing"
)

// Segments loads the word timings for the run: an alignment file when one is
// configured, otherwise the narration text spread evenly over the video.
func (p *VideoProject) Segments(plan timing.Plan) ([]subtitles.Segment, error) {
	sc := p.Config.Subtitles
	switch {
	case sc.AlignmentPath != "":
		return subtitles.ReadAlignment(sc.AlignmentPath)
	case sc.Text != "":
		fmt.Println("[!] Нет выравнивания слов, время распределяется по предложениям")
		return subtitles.EvenSentences(sc.Text, plan.Duration), nil
	}
	return nil, nil
}

// burnSubtitles writes the .ass script for the run and burns it into joined,
// producing the configured output. It returns the script path.
func (p *VideoProject) burnSubtitles(ctx context.Context, joined string, plan timing.Plan) (string, error) {
	segs, err := p.Segments(plan)
	if err != nil {
		return "", fmt.Errorf("субтитры: %w", err)
	}

	mapper, err := subtitles.NewMapper(p.Config.Subtitles)
	if err != nil {
		return "", fmt.Errorf("субтитры: %w", err)
	}

	assPath := p.Config.Subtitles.OutputASS
	if assPath == "" {
		assPath = filepath.Join(p.tempDir, "subs.ass")
	}

	doc := subtitles.NewDocument(mapper, p.Config.Params.Width, p.Config.Params.Height, segs)
	if err := subtitles.WriteASSFile(assPath, doc); err != nil {
		return "", err
	}
	fmt.Printf("[*] Субтитры: %d событий -> %s\n", len(doc.Events), assPath)

	if err := p.Encoder.BurnSubtitles(ctx, joined, assPath, p.Config.OutputVideo, p.Config.Subtitles.BurnCRF); err != nil {
		return "", fmt.Errorf("наложение субтитров: %w", err)
	}

	if p.Config.Subtitles.OutputASS == "" {
		return "", nil
	}
	return assPath, nil
}
