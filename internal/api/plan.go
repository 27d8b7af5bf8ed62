package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivlev/shorts2video/internal/config"
	"github.com/ivlev/shorts2video/internal/renderer"
	"github.com/ivlev/shorts2video/internal/timing"
)

// RegisterPlanRoutes registers the timing and zoom planners.
func RegisterPlanRoutes(r *gin.Engine, defaults config.Params) {
	r.POST("/api/plan", handlePlan(defaults))
	r.POST("/api/zoom", handleZoom(defaults))
}

// maxPlanImages bounds the image count one plan request may lay out.
const maxPlanImages = 10000

type planRequest struct {
	Available int           `json:"available"`
	Audio     float64       `json:"audio"`
	Preset    string        `json:"preset"`
	Params    config.Params `json:"params"`
}

type planResponse struct {
	Plan      timing.Plan `json:"plan"`
	Durations []float64   `json:"durations"`
	Offsets   []float64   `json:"offsets"`
	Total     float64     `json:"total"`
	Degraded  bool        `json:"degraded"`
}

// handlePlan lays out `available` images over `audio` seconds. Layout fields
// left out of `params` keep their defaults.
func handlePlan(defaults config.Params) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := planRequest{Params: defaults}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		if req.Available > maxPlanImages {
			respondError(c, fmt.Errorf("%w: %d images, at most %d per plan", timing.ErrInvalidInput, req.Available, maxPlanImages))
			return
		}

		p, err := resolveParams(req.Params, req.Preset)
		if err != nil {
			respondError(c, err)
			return
		}

		plan, err := timing.NewPlan(req.Available, req.Audio, p)
		if err != nil {
			respondError(c, err)
			return
		}

		c.JSON(http.StatusOK, planResponse{
			Plan:      plan,
			Durations: plan.Durations(),
			Offsets:   plan.Offsets(),
			Total:     plan.Total(),
			Degraded:  plan.Degraded(),
		})
	}
}

type zoomRequest struct {
	ImageWidth  int           `json:"image_width"`
	ImageHeight int           `json:"image_height"`
	Duration    float64       `json:"duration"`
	Index       int           `json:"index"`
	Samples     int           `json:"samples"`
	Preset      string        `json:"preset"`
	Params      config.Params `json:"params"`
}

type zoomSample struct {
	T      float64 `json:"t"`
	Zoom   float64 `json:"zoom"`
	Width  int     `json:"width"`
	Height int     `json:"height"`
	X      int     `json:"x"`
	Y      int     `json:"y"`
}

const maxZoomSamples = 1000

// handleZoom plans the zoom of one image and optionally samples it at evenly
// spaced instants across the clip.
func handleZoom(defaults config.Params) gin.HandlerFunc {
	return func(c *gin.Context) {
		req := zoomRequest{Params: defaults}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		p, err := resolveParams(req.Params, req.Preset)
		if err != nil {
			respondError(c, err)
			return
		}

		spec, err := renderer.PlanZoomParams(req.ImageWidth, req.ImageHeight, req.Duration, req.Index, p)
		if err != nil {
			respondError(c, err)
			return
		}

		n := req.Samples
		if n > maxZoomSamples {
			n = maxZoomSamples
		}
		samples := make([]zoomSample, 0, n)
		for i := 0; i < n; i++ {
			t := 0.0
			if n > 1 {
				t = spec.Duration * float64(i) / float64(n-1)
			}
			rect := spec.RectAt(t)
			samples = append(samples, zoomSample{
				T:      t,
				Zoom:   spec.ZoomAt(t),
				Width:  rect.Dx(),
				Height: rect.Dy(),
				X:      rect.Min.X,
				Y:      rect.Min.Y,
			})
		}

		c.JSON(http.StatusOK, gin.H{"zoom": spec, "samples": samples})
	}
}
