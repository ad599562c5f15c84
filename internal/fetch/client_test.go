package fetch

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/michaelscutari/gridassets/internal/logger"
)

func pngBytes(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestFetchSniffsImage(t *testing.T) {
	body := pngBytes(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Errorf("expected a user agent")
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		w.Write(body)
	}))
	defer srv.Close()

	resp, err := NewClient(time.Second, logger.Discard()).Fetch(context.Background(), srv.URL+"/gb.png")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if !bytes.Equal(resp.Body, body) {
		t.Fatalf("body mismatch")
	}
	if resp.MIME != "image/png" || resp.Extension != "png" {
		t.Fatalf("unexpected sniff result %q %q", resp.MIME, resp.Extension)
	}
}

func TestFetchNonSuccessStatus(t *testing.T) {
	var hits int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := NewClient(time.Second, logger.Discard()).Fetch(context.Background(), srv.URL+"/missing.png")
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	var fe *Error
	if !errors.As(err, &fe) || fe.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 fetch error, got %#v", err)
	}
	if hits != 1 {
		t.Fatalf("expected exactly one request without retries, got %d", hits)
	}
}

func TestFetchTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	start := time.Now()
	_, err := NewClient(50*time.Millisecond, logger.Discard()).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
	var fe *Error
	if !errors.As(err, &fe) || fe.StatusCode != 0 {
		t.Fatalf("expected transport error, got %#v", err)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatalf("timeout not applied")
	}
}

func TestFetchUnreachable(t *testing.T) {
	_, err := NewClient(time.Second, logger.Discard()).Fetch(context.Background(), "http://127.0.0.1:1/flag.png")
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch, got %v", err)
	}
}

func TestRestyLoggerKeepsLevels(t *testing.T) {
	var buf bytes.Buffer
	rl := restyLogger{log: logger.NewLogger(&logger.Config{Level: logger.InfoLevel, Output: &buf, JSON: true})}

	rl.Errorf("request failed: %s", "reset")
	rl.Warnf("retrying %d", 1)
	rl.Debugf("hidden")

	out := buf.String()
	for _, want := range []string{
		`"level":"error"`, `"msg":"request failed: reset"`,
		`"level":"warn"`, `"msg":"retrying 1"`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %q", want, out)
		}
	}
	if strings.Contains(out, "hidden") {
		t.Fatalf("debug line leaked at info level: %q", out)
	}
}
