package ui

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seismicview/adapters/render"
	"seismicview/app"
	"seismicview/internal/analysis"
	"seismicview/internal/config"
	"seismicview/internal/dataset"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *Server {
	t.Helper()
	cfg := config.Default()
	cfg.Server.GinMode = "test"
	cfg.Server.Port = "0"
	root := t.TempDir()
	cfg.Paths.UploadDir = filepath.Join(root, "uploads")
	cfg.Paths.OutputDir = filepath.Join(root, "outputs")
	if mutate != nil {
		mutate(cfg)
	}

	service := app.NewAnalysisService(
		dataset.NewLocalFileStorageWithPath(cfg.Paths.UploadDir),
		dataset.NewLocalFileStorageWithPath(cfg.Paths.OutputDir),
		analysis.NewAnalyzer(quietLogger()),
		render.New(render.DefaultConfig(), quietLogger()),
		app.ServiceConfig{
			MaxConcurrent:   cfg.Analysis.MaxConcurrent,
			ArtifactTTL:     cfg.Upload.ArtifactTTL,
			JanitorInterval: cfg.Upload.JanitorInterval,
		},
		quietLogger(),
	)
	srv, err := NewServer(cfg, Dependencies{Analyses: service, Logger: quietLogger()})
	require.NoError(t, err)
	return srv
}

func eventCSV() string {
	var b strings.Builder
	b.WriteString("time_rel(sec),velocity(m/s)\n")
	for i := 0; i < 1430; i++ {
		v := 0.0
		if i >= 100 && i < 200 {
			v = 1e-9
		}
		fmt.Fprintf(&b, "%g,%g\n", float64(i)*0.5, v)
	}
	return b.String()
}

// uploadRequest builds a multipart request. An empty filename omits the file part.
func uploadRequest(t *testing.T, target, filename, content string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if filename != "" {
		part, err := w.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = io.WriteString(part, content)
		require.NoError(t, err)
	} else {
		require.NoError(t, w.WriteField("note", "no file"))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func serve(srv *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	return rec
}

func TestIndex(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `name="file"`)
	assert.Contains(t, rec.Body.String(), "50 MB")
}

func TestHealth(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestStylesheet(t *testing.T) {
	srv := newTestServer(t, nil)
	rec := serve(srv, httptest.NewRequest(http.MethodGet, "/static/css/style.css", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "font-family")
}

func TestUploadWithoutFileRedirects(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name     string
		filename string
		content  string
		referer  string
		location string
	}{
		{"missing file, no referer", "", "", "", "/"},
		{"missing file, same host referer", "", "", "http://example.com/upload-form?x=1", "/upload-form?x=1"},
		{"missing file, foreign referer", "", "", "http://elsewhere.test/", "/"},
		{"empty file", "empty.csv", "", "http://example.com/", "/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := uploadRequest(t, "/upload", tt.filename, tt.content)
			if tt.referer != "" {
				req.Header.Set("Referer", tt.referer)
			}
			rec := serve(srv, req)

			assert.Equal(t, http.StatusFound, rec.Code)
			assert.Equal(t, tt.location, rec.Header().Get("Location"))
		})
	}
}

func TestUploadRendersResultAndServesImage(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, uploadRequest(t, "/upload", "quake.csv", eventCSV()))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	page := rec.Body.String()
	assert.Contains(t, page, "quake.csv")
	assert.Contains(t, page, "/static/outputs/")
	assert.Contains(t, page, "50.000")
	assert.Contains(t, page, "100.000")

	start := strings.Index(page, "/static/outputs/")
	end := strings.Index(page[start:], `"`)
	imageURL := page[start : start+end]

	img := serve(srv, httptest.NewRequest(http.MethodGet, imageURL, nil))
	assert.Equal(t, http.StatusOK, img.Code)
	assert.Equal(t, "image/png", img.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(img.Body.Bytes(), []byte("\x89PNG")))
}

func TestUploadRejectsBadInput(t *testing.T) {
	srv := newTestServer(t, nil)

	tests := []struct {
		name     string
		filename string
		content  string
		status   int
		message  string
	}{
		{"unsupported extension", "notes.txt", "hello", http.StatusBadRequest, "unsupported file extension"},
		{"missing column", "data.csv", "time,velocity\n0,1\n1,2\n", http.StatusBadRequest, "missing column"},
		{"not a number", "data.csv", "time_rel(sec),velocity(m/s)\n0,abc\n1,2\n", http.StatusBadRequest, "line 2"},
		{"repeated timestamps", "data.csv", "time_rel(sec),velocity(m/s)\n1,0\n1,0\n", http.StatusBadRequest, "DEGENERATE_SAMPLING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(srv, uploadRequest(t, "/upload", tt.filename, tt.content))
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}
}

func TestUploadTooLarge(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Upload.MaxFileSize = 1024
	})

	rec := serve(srv, uploadRequest(t, "/upload", "big.csv", eventCSV()))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "size limit")
}

func TestCreateAnalysisAPI(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, uploadRequest(t, "/api/analyses", "quake.csv", eventCSV()))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp analysisResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "quake.csv", resp.Filename)
	assert.Equal(t, "/static/outputs/"+resp.ID+".png", resp.ImageURL)
	assert.Equal(t, 1430, resp.Samples)
	assert.Equal(t, 2.0, resp.SampleRate)
	require.Len(t, resp.Markers, 2)
	assert.Equal(t, "on", string(resp.Markers[0].Kind))
	assert.Equal(t, "off", string(resp.Markers[1].Kind))
}

func TestCreateAnalysisAPIErrors(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := serve(srv, uploadRequest(t, "/api/analyses", "", ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_INPUT")

	rec = serve(srv, uploadRequest(t, "/api/analyses", "data.csv", "time_rel(sec)\n0\n"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "velocity(m/s)")
}

func TestArtifactNotFound(t *testing.T) {
	srv := newTestServer(t, nil)

	for _, path := range []string{
		"/static/outputs/seismic_output.png",
		"/static/outputs/0190f3a2-5b6c-7d8e-9f00-112233445566.png",
		"/static/outputs/0190f3a2-5b6c-7d8e-9f00-112233445566.jpg",
		"/static/outputs/0190F3A2-5B6C-7D8E-9F00-112233445566.png",
	} {
		rec := serve(srv, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
}

func TestStartAndShutdown(t *testing.T) {
	srv := newTestServer(t, func(cfg *config.Config) {
		cfg.Upload.JanitorInterval = 10 * time.Millisecond
	})

	done := make(chan error, 1)
	go func() { done <- srv.Start() }()
	time.Sleep(50 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, srv.Shutdown(ctx))

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("server did not stop")
	}
}

func TestShutdownWithoutStart(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, srv.Shutdown(ctx))
}

func TestNewServerRequiresDependencies(t *testing.T) {
	_, err := NewServer(config.Default(), Dependencies{})
	assert.Error(t, err)
	_, err = NewServer(nil, Dependencies{})
	assert.Error(t, err)
}
