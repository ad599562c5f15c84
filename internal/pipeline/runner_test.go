package pipeline

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/michaelscutari/gridassets/internal/asset"
	"github.com/michaelscutari/gridassets/internal/fetch"
	"github.com/michaelscutari/gridassets/internal/logger"
	"github.com/michaelscutari/gridassets/internal/normalize"
	"github.com/michaelscutari/gridassets/internal/store"
)

func pngOf(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewNRGBA(image.Rect(0, 0, w, h))); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func openStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestRunContinuesAfterFailedFetch(t *testing.T) {
	flag := pngOf(t, 8, 6)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing.png" {
			http.NotFound(w, r)
			return
		}
		w.Write(flag)
	}))
	defer srv.Close()

	assets := []asset.Asset{
		{ID: "gb", Name: "British", URL: srv.URL + "/gb.png", Ext: "png", Kind: asset.KindFlag},
		{ID: "xx", Name: "Nowhere", URL: srv.URL + "/missing.png", Ext: "png", Kind: asset.KindFlag},
		{ID: "nl", Name: "Dutch", URL: srv.URL + "/nl.png", Ext: "png", Kind: asset.KindFlag},
	}

	s := openStore(t)
	r := NewRunner(DefaultOptions(), fetch.NewClient(time.Second, logger.Discard()), s, Passthrough, logger.Discard())
	summary := r.Run(context.Background(), assets, []asset.Skip{{Name: "Martian", Reason: "no country code"}})

	if len(summary.Results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(summary.Results))
	}
	if summary.Results[0].Status != asset.StatusSkipped || summary.Results[0].Asset.Name != "Martian" {
		t.Fatalf("expected skip first, got %+v", summary.Results[0])
	}
	if summary.Results[2].Status != asset.StatusFailed || !errors.Is(summary.Results[2].Err, fetch.ErrFetch) {
		t.Fatalf("expected fetch failure, got %+v", summary.Results[2])
	}
	if summary.Results[3].Status != asset.StatusOK {
		t.Fatalf("expected entry after failure to succeed, got %+v", summary.Results[3])
	}
	if summary.Count(asset.StatusOK) != 2 || summary.TotalBytes() != int64(2*len(flag)) {
		t.Fatalf("unexpected summary ok=%d bytes=%d", summary.Count(asset.StatusOK), summary.TotalBytes())
	}

	got, err := os.ReadFile(filepath.Join(s.Dir(), "nl.png"))
	if err != nil || !bytes.Equal(got, flag) {
		t.Fatalf("expected nl.png written verbatim: %v", err)
	}
	if _, err := os.Stat(filepath.Join(s.Dir(), "xx.png")); !os.IsNotExist(err) {
		t.Fatalf("expected no file for failed fetch")
	}
}

func TestRunNormalizesLogos(t *testing.T) {
	wide := pngOf(t, 600, 200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wide.png":
			w.Write(wide)
		default:
			w.Write([]byte("<html>moved</html>"))
		}
	}))
	defer srv.Close()

	assets := []asset.Asset{
		{ID: "broken", URL: srv.URL + "/broken.png", Kind: asset.KindLogo},
		{ID: "wide", URL: srv.URL + "/wide.png", Kind: asset.KindLogo},
	}
	opts := normalize.Options{Canvas: normalize.Canvas{Width: 300, Height: 300}, Margin: 40}

	s := openStore(t)
	r := NewRunner(DefaultOptions(), fetch.NewClient(time.Second, logger.Discard()), s, Normalizer(opts), logger.Discard())
	summary := r.Run(context.Background(), assets, nil)

	if summary.Results[0].Status != asset.StatusFailed || !errors.Is(summary.Results[0].Err, normalize.ErrDecode) {
		t.Fatalf("expected decode failure, got %+v", summary.Results[0])
	}
	if summary.Results[1].Status != asset.StatusOK {
		t.Fatalf("expected wide logo to succeed, got %+v", summary.Results[1])
	}

	f, err := os.Open(filepath.Join(s.Dir(), "wide.png"))
	if err != nil {
		t.Fatalf("open output: %v", err)
	}
	defer f.Close()
	cfg, err := png.DecodeConfig(f)
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	if cfg.Width != 300 || cfg.Height != 300 {
		t.Fatalf("expected 300x300, got %dx%d", cfg.Width, cfg.Height)
	}
}

type stubFetcher struct {
	mu    sync.Mutex
	calls []string
	delay time.Duration
}

func (f *stubFetcher) Fetch(ctx context.Context, url string) (*fetch.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, &fetch.Error{URL: url, Err: ctx.Err()}
		}
	}
	return &fetch.Response{URL: url, StatusCode: 200, Body: []byte(url), Extension: "bin"}, nil
}

type memWriter struct {
	mu    sync.Mutex
	files map[string][]byte
}

func (m *memWriter) Write(id, ext string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	name := id + "." + ext
	m.files[name] = data
	return name, nil
}

func TestRunWithWorkersKeepsOrder(t *testing.T) {
	var assets []asset.Asset
	for _, id := range []string{"a", "b", "c", "d", "e", "f"} {
		assets = append(assets, asset.Asset{ID: id, URL: "mem://" + id})
	}

	fetcher := &stubFetcher{delay: 5 * time.Millisecond}
	writer := &memWriter{}
	r := NewRunner(DefaultOptions().WithWorkers(3), fetcher, writer, nil, logger.Discard())
	summary := r.Run(context.Background(), assets, nil)

	if len(summary.Results) != len(assets) {
		t.Fatalf("expected %d results, got %d", len(assets), len(summary.Results))
	}
	for i, res := range summary.Results {
		if res.Asset.ID != assets[i].ID || res.Status != asset.StatusOK {
			t.Fatalf("result %d out of order or failed: %+v", i, res)
		}
		if res.Path != assets[i].ID+".bin" {
			t.Fatalf("expected sniffed extension, got %s", res.Path)
		}
	}
	if len(writer.files) != len(assets) {
		t.Fatalf("expected %d writes, got %d", len(assets), len(writer.files))
	}
}

func TestRunCanceledSkipsRemaining(t *testing.T) {
	assets := []asset.Asset{{ID: "a", URL: "mem://a"}, {ID: "b", URL: "mem://b"}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &stubFetcher{}
	r := NewRunner(nil, fetcher, &memWriter{}, nil, logger.Discard())
	summary := r.Run(ctx, assets, nil)

	if summary.Count(asset.StatusSkipped) != 2 {
		t.Fatalf("expected both assets skipped, got %+v", summary.Results)
	}
	if len(fetcher.calls) != 0 {
		t.Fatalf("expected no fetches after cancel, got %v", fetcher.calls)
	}
}

func TestRunAppliesFetchTimeout(t *testing.T) {
	fetcher := &stubFetcher{delay: time.Second}
	r := NewRunner(DefaultOptions().WithTimeout(20*time.Millisecond), fetcher, &memWriter{}, nil, logger.Discard())

	start := time.Now()
	summary := r.Run(context.Background(), []asset.Asset{{ID: "slow", URL: "mem://slow"}}, nil)
	if summary.Results[0].Status != asset.StatusFailed {
		t.Fatalf("expected timeout failure, got %+v", summary.Results[0])
	}
	if time.Since(start) > 500*time.Millisecond {
		t.Fatalf("timeout not applied")
	}
}
