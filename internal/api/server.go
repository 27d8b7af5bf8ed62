package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ivlev/shorts2video/internal/config"
	"github.com/ivlev/shorts2video/internal/timing"
)

// NewRouter constructs a Gin engine with the planning routes registered,
// using the built-in defaults. Every route is a pure computation; nothing is
// rendered or stored.
func NewRouter() *gin.Engine {
	return NewRouterWithDefaults(config.DefaultFile())
}

// NewRouterWithDefaults is NewRouter with request defaults taken from a
// loaded settings file.
func NewRouterWithDefaults(defaults config.File) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if gin.Mode() == gin.DebugMode {
		r.Use(gin.Logger())
	}

	RegisterHealthRoutes(r)
	RegisterPlanRoutes(r, defaults.Params)
	RegisterSubtitleRoutes(r, defaults.Subtitles, defaults.Params)
	return r
}

// respondError maps planning errors to 400 and everything else to 500.
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, timing.ErrInvalidInput) || errors.Is(err, config.ErrInvalidParams) {
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// resolveParams applies an optional aspect preset on top of the request
// layout and validates the result.
func resolveParams(p config.Params, preset string) (config.Params, error) {
	if preset != "" {
		var err error
		if p, err = p.WithPreset(preset); err != nil {
			return p, err
		}
	}
	return p, p.Validate()
}
