package httpserver_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/regkit/regkit/pkg/httpserver"
)

func TestHealthHandler(t *testing.T) {
	t.Parallel()

	t.Run("liveness without checks", func(t *testing.T) {
		t.Parallel()
		h := httpserver.HealthHandler(nil)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("ready when all checks pass", func(t *testing.T) {
		t.Parallel()
		ok := func(context.Context) error { return nil }
		h := httpserver.HealthHandler(nil, ok, ok)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("not ready when a check fails", func(t *testing.T) {
		t.Parallel()
		ok := func(context.Context) error { return nil }
		bad := func(context.Context) error { return errors.New("db down") }
		h := httpserver.HealthHandler(nil, ok, bad)

		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest("GET", "/health", nil))

		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestServer_RunStopsOnContextCancel(t *testing.T) {
	t.Parallel()

	srv := httpserver.New(httpserver.Config{Addr: "127.0.0.1:0", ShutdownTimeout: time.Second}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	}()

	// Give ListenAndServe a moment to bind before cancelling.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancellation")
	}
}
