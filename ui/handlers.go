package ui

import (
	stderrors "errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"seismicview/app"
	"seismicview/domain/core"
	"seismicview/internal/errors"
)

// multipart framing allowance on top of the file size limit
const multipartOverhead = 1 << 20

type indexPage struct {
	MaxUploadMB int64
}

type resultPage struct {
	Outcome  *app.AnalysisOutcome
	ImageURL string
}

type errorPage struct {
	Status  int
	Code    string
	Message string
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "index.html", indexPage{MaxUploadMB: s.cfg.Upload.MaxFileSize >> 20})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// handleUpload analyzes the uploaded file and renders the result page.
// A missing or empty file sends the browser back where it came from.
func (s *Server) handleUpload(c *gin.Context) {
	header, err := s.uploadedFile(c)
	if err != nil {
		s.renderError(c, err)
		return
	}
	if header == nil {
		s.redirectBack(c)
		return
	}

	outcome, err := s.analyze(c, header)
	if err != nil {
		s.renderError(c, err)
		return
	}

	s.renderTemplate(c, http.StatusOK, "result.html", resultPage{
		Outcome:  outcome,
		ImageURL: artifactURL(outcome),
	})
}

// uploadedFile returns the "file" part of the form. A nil header with a nil
// error means no usable file was sent.
func (s *Server) uploadedFile(c *gin.Context) (*multipart.FileHeader, error) {
	limit := s.cfg.Upload.MaxFileSize
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit+multipartOverhead)

	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			return nil, errors.InvalidInput("upload exceeds the size limit")
		}
		return nil, nil
	}
	if header.Size == 0 {
		return nil, nil
	}
	if header.Size > limit {
		return nil, errors.InvalidInput("upload exceeds the size limit")
	}
	return header, nil
}

func (s *Server) analyze(c *gin.Context, header *multipart.FileHeader) (*app.AnalysisOutcome, error) {
	file, err := header.Open()
	if err != nil {
		return nil, errors.StorageError("failed to open upload", err)
	}
	defer file.Close()

	return s.analyses.Analyze(c.Request.Context(), app.AnalysisRequest{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Body:        file,
	})
}

// redirectBack redirects to the Referer when it points at this host, otherwise to "/"
func (s *Server) redirectBack(c *gin.Context) {
	target := "/"
	if ref, err := url.Parse(c.Request.Referer()); err == nil && ref.Host == c.Request.Host && ref.Path != "" {
		target = ref.RequestURI()
	}
	c.Redirect(http.StatusFound, target)
}

func (s *Server) renderError(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	s.logFailure(c, status, err)

	message := err.Error()
	if status >= http.StatusInternalServerError {
		message = "The file could not be processed. Please try again later."
	}
	s.renderTemplate(c, status, "error.html", errorPage{
		Status:  status,
		Code:    errors.GetCode(err),
		Message: message,
	})
}

func (s *Server) logFailure(c *gin.Context, status int, err error) {
	level := slog.LevelWarn
	if status >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	s.logger.LogAttrs(c.Request.Context(), level, "analysis failed",
		slog.String("path", c.Request.URL.Path),
		slog.String("code", errors.GetCode(err)),
		slog.Any("error", err),
	)
}

// handleArtifact serves a rendered image. Only "<uuid>.png" names are accepted.
func (s *Server) handleArtifact(c *gin.Context) {
	raw, ok := strings.CutSuffix(c.Param("name"), app.ArtifactExtension)
	if !ok {
		c.Status(http.StatusNotFound)
		return
	}
	id, err := core.ParseID(raw)
	if err != nil {
		c.Status(http.StatusNotFound)
		return
	}

	rc, err := s.analyses.OpenArtifact(c.Request.Context(), id)
	if err != nil {
		if !errors.HasCode(err, errors.CodeNotFound) {
			s.logger.Error("failed to open artifact", slog.String("id", id.String()), slog.Any("error", err))
		}
		c.Status(errors.HTTPStatus(err))
		return
	}
	defer rc.Close()

	c.Header("Content-Type", "image/png")
	c.Header("Cache-Control", "public, max-age=3600, immutable")
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		s.logger.Warn("failed to stream artifact", slog.String("id", id.String()), slog.Any("error", err))
	}
}

func artifactURL(outcome *app.AnalysisOutcome) string {
	return "/static/outputs/" + outcome.ImageName
}
