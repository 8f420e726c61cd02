package app

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/semaphore"

	"seismicview/adapters/excel"
	"seismicview/domain/core"
	"seismicview/domain/seismic"
	"seismicview/internal/dataset"
	"seismicview/internal/errors"
	"seismicview/internal/logging"
	"seismicview/ports"
)

// ArtifactExtension is appended to the analysis ID to name the rendered image
const ArtifactExtension = ".png"

// ServiceConfig bounds concurrency and artifact retention
type ServiceConfig struct {
	MaxConcurrent   int
	ArtifactTTL     time.Duration // zero disables the janitor
	JanitorInterval time.Duration
}

// AnalysisRequest is a single uploaded recording
type AnalysisRequest struct {
	Filename    string // client supplied, metadata only
	ContentType string
	Body        io.Reader
}

// AnalysisOutcome summarises a finished analysis for the web layer
type AnalysisOutcome struct {
	ID            core.ID          `json:"id"`
	Upload        seismic.Upload   `json:"upload"`
	ImageName     string           `json:"image_name"`
	Samples       int              `json:"samples"`
	SampleRate    float64          `json:"sample_rate"`
	Duration      float64          `json:"duration"`
	RawMean       float64          `json:"raw_mean"`
	Threshold     float64          `json:"threshold"`
	PeakFrequency float64          `json:"peak_frequency"`
	Markers       []seismic.Marker `json:"markers"`
	Elapsed       time.Duration    `json:"elapsed"`
}

// AnalysisService runs the upload -> parse -> analyze -> render pipeline
type AnalysisService struct {
	uploads   ports.FileStore
	artifacts ports.FileStore
	analyzer  ports.SeriesAnalyzer
	renderer  ports.ImageRenderer
	sem       *semaphore.Weighted
	cfg       ServiceConfig
	logger    *slog.Logger
}

// NewAnalysisService wires the pipeline. MaxConcurrent below one is treated as one.
func NewAnalysisService(uploads, artifacts ports.FileStore, analyzer ports.SeriesAnalyzer, renderer ports.ImageRenderer, cfg ServiceConfig, logger *slog.Logger) *AnalysisService {
	if cfg.MaxConcurrent < 1 {
		cfg.MaxConcurrent = 1
	}
	return &AnalysisService{
		uploads:   uploads,
		artifacts: artifacts,
		analyzer:  analyzer,
		renderer:  renderer,
		sem:       semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		cfg:       cfg,
		logger:    logging.Component(logger, "analysis_service"),
	}
}

// Analyze stores the upload under a fresh ID, analyzes it and stores the
// rendered image as <id>.png.
func (s *AnalysisService) Analyze(ctx context.Context, req AnalysisRequest) (*AnalysisOutcome, error) {
	start := time.Now()

	fileType, err := excel.DetectFileType(req.Filename)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInvalidInput, err)
	}

	if err := s.sem.Acquire(ctx, 1); err != nil {
		return nil, errors.Unavailable("analysis capacity exhausted", err)
	}
	defer s.sem.Release(1)

	id := core.NewID()
	uploadName := id.String() + fileType.Extension()
	path, size, err := s.uploads.Store(ctx, req.Body, uploadName)
	if err != nil {
		return nil, errors.Wrap(err, "failed to store upload")
	}
	// a failed analysis leaves nothing for the janitor to find
	succeeded := false
	defer func() {
		if !succeeded {
			s.discardUpload(context.WithoutCancel(ctx), uploadName)
		}
	}()
	upload := seismic.Upload{
		ID:          id.String(),
		Filename:    req.Filename,
		ContentType: req.ContentType,
		Size:        size,
		Path:        path,
	}

	series, err := s.loadSeries(ctx, uploadName, fileType)
	if err != nil {
		return nil, err
	}

	res, err := s.analyzer.Analyze(ctx, series)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := s.renderer.Render(ctx, &buf, res); err != nil {
		return nil, errors.WithCode(errors.CodeRenderError, err)
	}
	imageName := id.String() + ArtifactExtension
	if _, _, err := s.artifacts.Store(ctx, &buf, imageName); err != nil {
		return nil, errors.Wrap(err, "failed to store image")
	}

	outcome := &AnalysisOutcome{
		ID:            id,
		Upload:        upload,
		ImageName:     imageName,
		Samples:       series.Len(),
		SampleRate:    series.SampleRate(),
		Duration:      series.Duration(),
		RawMean:       res.Envelope.RawMean,
		Threshold:     res.Envelope.Threshold,
		PeakFrequency: res.Spectrogram.PeakFrequency(),
		Markers:       res.Markers,
		Elapsed:       time.Since(start),
	}
	if outcome.Markers == nil {
		outcome.Markers = []seismic.Marker{}
	}
	succeeded = true

	s.logger.Info("analysis stored",
		slog.String("id", id.String()),
		slog.String("filename", req.Filename),
		slog.Int64("bytes", size),
		slog.Int("samples", outcome.Samples),
		slog.Int("markers", len(outcome.Markers)),
		slog.Duration("elapsed", outcome.Elapsed),
	)
	return outcome, nil
}

func (s *AnalysisService) loadSeries(ctx context.Context, name string, fileType excel.FileType) (seismic.Series, error) {
	rc, err := s.uploads.GetReader(ctx, name)
	if err != nil {
		return seismic.Series{}, errors.WithCode(errors.CodeStorageError, err)
	}
	defer rc.Close()

	series, err := dataset.LoadSeries(rc, fileType, s.logger)
	if err != nil {
		return seismic.Series{}, errors.Wrap(err, "failed to parse upload")
	}
	return series, nil
}

func (s *AnalysisService) discardUpload(ctx context.Context, name string) {
	if err := s.uploads.Delete(ctx, name); err != nil {
		s.logger.Warn("failed to remove upload", slog.String("name", name), slog.Any("error", err))
	}
}

// OpenArtifact returns the rendered image for id
func (s *AnalysisService) OpenArtifact(ctx context.Context, id core.ID) (io.ReadCloser, error) {
	return s.artifacts.GetReader(ctx, id.String()+ArtifactExtension)
}

// SweepExpired removes uploads and images older than the configured TTL
// relative to now.
func (s *AnalysisService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	if s.cfg.ArtifactTTL <= 0 {
		return 0, nil
	}
	cutoff := now.Add(-s.cfg.ArtifactTTL)

	removed := 0
	for _, store := range []ports.FileStore{s.uploads, s.artifacts} {
		n, err := store.Sweep(ctx, cutoff)
		removed += n
		if err != nil {
			return removed, err
		}
	}
	if removed > 0 {
		s.logger.Info("expired files removed", slog.Int("count", removed))
	}
	return removed, nil
}

// RunJanitor sweeps expired files every JanitorInterval until ctx is done.
// It returns immediately when retention is disabled.
func (s *AnalysisService) RunJanitor(ctx context.Context) {
	if s.cfg.ArtifactTTL <= 0 || s.cfg.JanitorInterval <= 0 {
		return
	}
	ticker := time.NewTicker(s.cfg.JanitorInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := s.SweepExpired(ctx, now); err != nil && ctx.Err() == nil {
				s.logger.Warn("janitor sweep failed", slog.Any("error", err))
			}
		}
	}
}
