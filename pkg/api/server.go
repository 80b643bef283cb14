// Package api provides the REST API server for variamidi
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/variamidi/variamidi/pkg/config"
	"github.com/variamidi/variamidi/pkg/harmony"
	"github.com/variamidi/variamidi/pkg/midifile"
	"github.com/variamidi/variamidi/pkg/variation"
	"github.com/variamidi/variamidi/pkg/variation/builtin"
	"github.com/variamidi/variamidi/pkg/variation/groove"
)

// @title VariaMIDI API
// @version 1.0
// @description API for generating MIDI variations with pluggable generator modules
// @host localhost:8000
// @BasePath /api/v1

// StartServer assembles the module registry and serves the REST API on
// the configured address.
func StartServer(cfg *config.Config) error {
	registry, err := builtin.Discover(groove.Config{
		ModelPath:      cfg.ModelPath,
		RuntimeLibrary: cfg.RuntimeLibrary,
	})
	if err != nil {
		return err
	}
	return NewRouter(variation.NewPipeline(registry)).Run(cfg.Addr())
}

// NewRouter builds the gin engine serving the API for the given
// pipeline.
func NewRouter(p *variation.Pipeline) *gin.Engine {
	r := gin.Default()

	// CORS middleware
	r.Use(corsMiddleware())

	r.GET("/", serviceInfo)
	r.GET("/health", healthCheck)

	// API v1 routes
	v1 := r.Group("/api/v1")
	{
		v1.GET("/health", healthCheck)
		v1.GET("/modules", listModules(p))
		v1.POST("/analyze-chords", handleAnalyzeChords(p))
		v1.POST("/generate", handleGenerate(p))
	}

	// Swagger docs
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// serviceInfo godoc
// @Summary Service banner
// @Description Returns the service name and where to find the docs
// @Tags info
// @Produce json
// @Success 200 {object} map[string]string
// @Router / [get]
func serviceInfo(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "variamidi",
		"docs":    "/swagger/index.html",
	})
}

// healthCheck godoc
// @Summary Health check endpoint
// @Description Returns the health status of the API
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "variamidi",
	})
}

// listModules godoc
// @Summary List variation modules
// @Description Returns every registered variation module with its parameter descriptors and readiness
// @Tags modules
// @Produce json
// @Success 200 {object} map[string][]variation.Descriptor
// @Router /api/v1/modules [get]
func listModules(p *variation.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"modules": p.Registry().Descriptors()})
	}
}

// handleAnalyzeChords godoc
// @Summary Detect the chord timeline of a MIDI file
// @Description Upload a MIDI file and receive the detected chords with their onset times
// @Tags analyze
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "MIDI file to analyze"
// @Success 200 {object} map[string][]harmony.Chord
// @Failure 400 {object} map[string]string
// @Router /api/v1/analyze-chords [post]
func handleAnalyzeChords(p *variation.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		data, ok := readUpload(c)
		if !ok {
			return
		}

		chords, err := p.AnalyzeChords(data)
		if err != nil {
			abortWithError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"chords": chords})
	}
}

// handleGenerate godoc
// @Summary Generate a MIDI variation
// @Description Upload a MIDI file and receive a variation generated by the named module
// @Tags generate
// @Accept multipart/form-data
// @Produce audio/midi
// @Param file formData file true "Source MIDI file"
// @Param module query string true "Variation module name"
// @Param parameters query string false "Parameter mapping as a JSON object"
// @Param chords query string false "Chord timeline as a JSON array"
// @Success 200 {file} binary
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /api/v1/generate [post]
func handleGenerate(p *variation.Pipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		module := requestValue(c, "module")
		if module == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "missing module name", "code": "bad_request"})
			return
		}

		params, err := parseParams(requestValue(c, "parameters"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid parameters: %v", err), "code": "bad_request"})
			return
		}
		chords, err := parseChords(requestValue(c, "chords"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid chords: %v", err), "code": "bad_request"})
			return
		}

		data, ok := readUpload(c)
		if !ok {
			return
		}

		output, err := p.Generate(module, data, chords, params)
		if err != nil {
			abortWithError(c, err)
			return
		}

		name := fmt.Sprintf("variation-%s.mid", uuid.NewString())
		c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", name))
		c.Data(http.StatusOK, "audio/midi", output)
	}
}

// readUpload pulls the uploaded MIDI bytes out of the multipart form.
func readUpload(c *gin.Context) ([]byte, bool) {
	file, _, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file uploaded", "code": "bad_request"})
		return nil, false
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file", "code": "bad_request"})
		return nil, false
	}
	return data, true
}

// requestValue reads a value from the query string or, failing that,
// the form body.
func requestValue(c *gin.Context, name string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return c.PostForm(name)
}

func parseParams(raw string) (variation.Params, error) {
	if raw == "" {
		return nil, nil
	}
	var params variation.Params
	if err := json.Unmarshal([]byte(raw), &params); err != nil {
		return nil, err
	}
	return params, nil
}

func parseChords(raw string) ([]harmony.Chord, error) {
	if raw == "" {
		return nil, nil
	}
	var chords []harmony.Chord
	if err := json.Unmarshal([]byte(raw), &chords); err != nil {
		return nil, err
	}
	return chords, nil
}

// abortWithError maps pipeline failures onto stable error codes so
// clients can tell input faults from system faults.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	code := "internal_error"
	switch {
	case errors.Is(err, variation.ErrUnknownModule):
		status, code = http.StatusNotFound, "unknown_module"
	case errors.Is(err, midifile.ErrMalformed):
		status, code = http.StatusBadRequest, "malformed_midi"
	case errors.Is(err, variation.ErrNoNotes):
		status, code = http.StatusBadRequest, "no_notes"
	case errors.Is(err, groove.ErrModelUnavailable):
		status, code = http.StatusServiceUnavailable, "model_unavailable"
	case errors.Is(err, groove.ErrInference):
		status, code = http.StatusInternalServerError, "inference_failed"
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": code})
}
