package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"seismicview/domain/seismic"
	"seismicview/internal/errors"
)

type analysisResponse struct {
	ID            string           `json:"id"`
	ImageURL      string           `json:"image_url"`
	Filename      string           `json:"filename"`
	Samples       int              `json:"samples"`
	SampleRate    float64          `json:"sample_rate"`
	Duration      float64          `json:"duration"`
	RawMean       float64          `json:"raw_mean"`
	Threshold     float64          `json:"threshold"`
	PeakFrequency float64          `json:"peak_frequency"`
	Markers       []seismic.Marker `json:"markers"`
	ElapsedMs     int64            `json:"elapsed_ms"`
}

// handleCreateAnalysis is the JSON counterpart of the upload form
func (s *Server) handleCreateAnalysis(c *gin.Context) {
	header, err := s.uploadedFile(c)
	if err == nil && header == nil {
		err = errors.InvalidInput("a non-empty file field is required")
	}
	if err != nil {
		s.respondError(c, err)
		return
	}

	outcome, err := s.analyze(c, header)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, analysisResponse{
		ID:            outcome.ID.String(),
		ImageURL:      artifactURL(outcome),
		Filename:      outcome.Upload.Filename,
		Samples:       outcome.Samples,
		SampleRate:    outcome.SampleRate,
		Duration:      outcome.Duration,
		RawMean:       outcome.RawMean,
		Threshold:     outcome.Threshold,
		PeakFrequency: outcome.PeakFrequency,
		Markers:       outcome.Markers,
		ElapsedMs:     outcome.Elapsed.Milliseconds(),
	})
}

func (s *Server) respondError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	s.logFailure(c, status, err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "internal error"
	}
	c.JSON(status, gin.H{"error": message, "code": errors.GetCode(err)})
}
