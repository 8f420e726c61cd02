package errors

import (
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWrapKeepsCode(t *testing.T) {
	base := InvalidInput("missing column velocity(m/s)")
	wrapped := Wrap(base, "parse upload")

	assert.Equal(t, CodeInvalidInput, GetCode(wrapped))
	assert.Equal(t, "parse upload: missing column velocity(m/s)", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
}

func TestWrapForeignErrorIsInternal(t *testing.T) {
	wrapped := Wrap(io.ErrUnexpectedEOF, "read upload")
	assert.Equal(t, CodeInternalError, GetCode(wrapped))
	assert.ErrorIs(t, wrapped, io.ErrUnexpectedEOF)
}

func TestWrapNil(t *testing.T) {
	assert.Nil(t, Wrap(nil, "nothing"))
	assert.Nil(t, Wrapf(nil, "nothing %d", 1))
	assert.Nil(t, WithCode(CodeNotFound, nil))
}

func TestGetCodeThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", DegenerateSampling("sampling interval is zero"))
	assert.Equal(t, CodeDegenerateSampling, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(io.EOF))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{InvalidInput("bad"), http.StatusBadRequest},
		{DegenerateSampling("bad"), http.StatusBadRequest},
		{NotFound("artifact"), http.StatusNotFound},
		{Unavailable("busy", nil), http.StatusServiceUnavailable},
		{RenderError("draw", io.EOF), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), "error %v", tt.err)
	}
}
