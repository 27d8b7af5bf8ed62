package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ivlev/shorts2video/internal/config"
	"github.com/ivlev/shorts2video/internal/subtitles"
	"github.com/ivlev/shorts2video/internal/timing"
)

// RegisterSubtitleRoutes registers the word highlight mapper.
func RegisterSubtitleRoutes(r *gin.Engine, defaults config.SubtitleConfig, layout config.Params) {
	r.POST("/api/highlights", handleHighlights(defaults, layout))
}

type highlightRequest struct {
	Style    string              `json:"style"` // "highlight" (default) or "karaoke"
	Segments []subtitles.Segment `json:"segments"`
	// Text and Duration stand in for Segments when no alignment exists.
	Text     string  `json:"text"`
	Duration float64 `json:"duration"`
	Width    int     `json:"width"`
	Height   int     `json:"height"`
}

// handleHighlights maps aligned segments to overlays (or karaoke lines) and
// returns the matching ASS script.
func handleHighlights(defaults config.SubtitleConfig, layout config.Params) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req highlightRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		segs := req.Segments
		if len(segs) == 0 {
			if strings.TrimSpace(req.Text) == "" || req.Duration <= 0 {
				respondError(c, fmt.Errorf("%w: need segments or text with a duration", timing.ErrInvalidInput))
				return
			}
			segs = subtitles.EvenSentences(req.Text, req.Duration)
		}

		cfg := defaults
		if req.Style != "" {
			cfg.Style = req.Style
		}
		mapper, err := subtitles.NewMapper(cfg)
		if err != nil {
			respondError(c, fmt.Errorf("%w: %v", timing.ErrInvalidInput, err))
			return
		}

		w, h := req.Width, req.Height
		if w <= 0 || h <= 0 {
			w, h = layout.Width, layout.Height
		}

		var ass bytes.Buffer
		if err := subtitles.WriteASS(&ass, subtitles.NewDocument(mapper, w, h, segs)); err != nil {
			respondError(c, err)
			return
		}

		resp := gin.H{"segments": segs, "ass": ass.String()}
		switch m := mapper.(type) {
		case *subtitles.HighlightMapper:
			resp["overlays"] = m.Overlays(segs)
		case *subtitles.KaraokeMapper:
			lines := make([]subtitles.KaraokeLine, len(segs))
			for i, s := range segs {
				lines[i] = subtitles.MapKaraoke(s)
			}
			resp["karaoke"] = lines
		}
		c.JSON(http.StatusOK, resp)
	}
}
