package illustration

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestFetchRetriesTransientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "key", nil, slog.Default())
	c.httpClient = srv.Client()

	image, err := c.fetch(context.Background(), "task", "Nettoyer la gouttière")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if string(image) != "png-bytes" {
		t.Errorf("image = %q", image)
	}
	if got := calls.Load(); got != 3 {
		t.Errorf("calls = %d, want 3", got)
	}
}

func TestFetchDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, slog.Default())
	c.httpClient = srv.Client()

	if _, err := c.fetch(context.Background(), "task", "x"); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != 1 {
		t.Errorf("calls = %d, want 1 (no retry on 400)", got)
	}
}

func TestFetchGivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil, slog.Default())
	c.httpClient = srv.Client()

	if _, err := c.fetch(context.Background(), "task", "x"); err == nil {
		t.Fatal("expected error")
	}
	if got := calls.Load(); got != maxRetries+1 {
		t.Errorf("calls = %d, want %d", got, maxRetries+1)
	}
}

func TestEnqueueDisabledWithoutConfig(t *testing.T) {
	c := NewClient("", "", nil, slog.Default())
	if c.Enabled() {
		t.Fatal("client without base URL reported enabled")
	}
	// Must not panic or spawn work.
	c.Enqueue(1, "task", 1, "x")
}

func TestKey(t *testing.T) {
	if got := Key(7, "equipment", 42); got != "illustrations/7/equipment-42.png" {
		t.Errorf("key = %q", got)
	}
}
