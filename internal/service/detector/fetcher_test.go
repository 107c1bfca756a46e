package detector

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestFetcher(t *testing.T) *HTTPFetcher {
	t.Helper()
	f, err := NewHTTPFetcher(2 * time.Second)
	if err != nil {
		t.Fatalf("NewHTTPFetcher() error = %v", err)
	}
	return f
}

func TestHead_ReturnsContentLength(t *testing.T) {
	var gotMethod, gotCache string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotCache = r.Header.Get("Cache-Control")
		w.Header().Set("Content-Length", "100")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	length, ok, err := newTestFetcher(t).Head(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Head() error = %v", err)
	}
	if !ok || length != "100" {
		t.Errorf("Head() = %q, %v, want %q, true", length, ok, "100")
	}
	if gotMethod != http.MethodHead {
		t.Errorf("method = %q, want HEAD", gotMethod)
	}
	if gotCache != "no-cache" {
		t.Errorf("Cache-Control = %q, want no-cache", gotCache)
	}
}

func TestHead_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, _, err := newTestFetcher(t).Head(context.Background(), srv.URL); err == nil {
		t.Error("Head() should fail on 503")
	}
}

func TestHead_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	if _, _, err := newTestFetcher(t).Head(context.Background(), url); err == nil {
		t.Error("Head() should fail when the target is down")
	}
}
