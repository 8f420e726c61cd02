package ui

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// setupMiddleware installs recovery, request logging and the embedded stylesheet
func (s *Server) setupMiddleware() error {
	s.router.Use(gin.Recovery(), requestLogger(s.logger))

	css, err := staticFS()
	if err != nil {
		return err
	}
	s.router.StaticFS("/static/css", http.FS(css))
	return nil
}

// requestLogger logs one line per request, at warn for client errors and
// error for server errors.
func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		level := slog.LevelInfo
		switch {
		case status >= http.StatusInternalServerError:
			level = slog.LevelError
		case status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		logger.LogAttrs(c.Request.Context(), level, "request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Int("bytes", c.Writer.Size()),
			slog.Duration("latency", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		)
	}
}
