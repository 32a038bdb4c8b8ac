package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dtroode/admin-session/internal/logger"
)

func TestLogging_Handle(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		wantMsg string
	}{
		{name: "ok", status: http.StatusOK, wantMsg: "HTTP request completed"},
		{name: "client error", status: http.StatusForbidden, wantMsg: "HTTP request rejected"},
		{name: "server error", status: http.StatusInternalServerError, wantMsg: "HTTP request failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			l := NewLogging(logger.New(0, logger.WithWriter(&buf)))

			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			})

			rec := httptest.NewRecorder()
			l.Handle(next).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/users/reissue", nil))

			out := buf.String()
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, out, tt.wantMsg)
			assert.Contains(t, out, "path=/users/reissue")
			assert.Contains(t, out, "method=POST")
		})
	}
}

func TestLogging_Handle_ImplicitOK(t *testing.T) {
	var buf bytes.Buffer
	l := NewLogging(logger.New(0, logger.WithWriter(&buf)))

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	l.Handle(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, buf.String(), "status=200")
}
