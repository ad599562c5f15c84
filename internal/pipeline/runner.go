package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/dustin/go-humanize"
	"github.com/michaelscutari/gridassets/internal/asset"
	"github.com/michaelscutari/gridassets/internal/fetch"
	"github.com/michaelscutari/gridassets/internal/logger"
	"github.com/michaelscutari/gridassets/internal/normalize"
)

// Fetcher downloads a URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (*fetch.Response, error)
}

// Writer persists a finished asset and returns its path.
type Writer interface {
	Write(id, ext string, data []byte) (string, error)
}

// Transform turns downloaded bytes into the bytes to write, plus the output
// extension.
type Transform func(a asset.Asset, resp *fetch.Response) ([]byte, string, error)

// Passthrough writes the body unchanged. The asset's extension wins over the
// sniffed one so flag files keep their catalog names.
func Passthrough(a asset.Asset, resp *fetch.Response) ([]byte, string, error) {
	ext := a.Ext
	if ext == "" {
		ext = resp.Extension
	}
	return resp.Body, ext, nil
}

// Normalizer returns a Transform that centers each image on the given canvas.
func Normalizer(opts normalize.Options) Transform {
	return func(a asset.Asset, resp *fetch.Response) ([]byte, string, error) {
		res, err := normalize.Run(resp.Body, opts)
		if err != nil {
			return nil, "", err
		}
		return res.Data, "png", nil
	}
}

// Runner fetches, transforms and writes assets. Per-asset failures are
// logged and recorded; they never stop the run.
type Runner struct {
	opts      *Options
	fetcher   Fetcher
	writer    Writer
	transform Transform
	log       logger.Logger
}

// NewRunner creates a runner. A nil transform means Passthrough.
func NewRunner(opts *Options, fetcher Fetcher, writer Writer, transform Transform, log logger.Logger) *Runner {
	if opts == nil {
		opts = DefaultOptions()
	}
	if transform == nil {
		transform = Passthrough
	}
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{
		opts:      opts,
		fetcher:   fetcher,
		writer:    writer,
		transform: transform,
		log:       log,
	}
}

// Run processes assets and returns a summary in input order. Skips are
// logged and recorded ahead of the processed assets. Assets not started
// before ctx is canceled are recorded as skipped.
func (r *Runner) Run(ctx context.Context, assets []asset.Asset, skips []asset.Skip) *asset.Summary {
	summary := &asset.Summary{}
	for _, s := range skips {
		r.log.Warn("skipping", "name", s.Name, "reason", s.Reason)
		summary.Add(asset.Result{
			Asset:  asset.Asset{Name: s.Name},
			Status: asset.StatusSkipped,
			Err:    errors.New(s.Reason),
		})
	}

	results := make([]asset.Result, len(assets))
	jobs := make(chan job)

	workers := r.opts.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > len(assets) && len(assets) > 0 {
		workers = len(assets)
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		w := newWorker(i, r, jobs, results)
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.run(ctx)
		}()
	}

	dispatched := 0
dispatch:
	for i, a := range assets {
		select {
		case jobs <- job{index: i, asset: a}:
			dispatched++
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	for i := dispatched; i < len(assets); i++ {
		results[i] = asset.Result{Asset: assets[i], Status: asset.StatusSkipped, Err: ctx.Err()}
	}
	for _, res := range results {
		summary.Add(res)
	}

	r.log.Info("run complete",
		"ok", summary.Count(asset.StatusOK),
		"failed", summary.Count(asset.StatusFailed),
		"skipped", summary.Count(asset.StatusSkipped),
		"written", humanize.Bytes(uint64(summary.TotalBytes())),
	)
	return summary
}

// process handles a single asset end to end.
func (r *Runner) process(ctx context.Context, a asset.Asset) asset.Result {
	log := r.log.With("kind", a.Kind, "id", a.ID)

	fetchCtx := ctx
	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	resp, err := r.fetcher.Fetch(fetchCtx, a.URL)
	if err != nil {
		log.Error("download failed", "name", a.Name, "url", a.URL, "err", err)
		return asset.Result{Asset: a, Status: asset.StatusFailed, Err: err}
	}
	log.Debug("downloaded", "mime", resp.MIME, "size", humanize.Bytes(uint64(len(resp.Body))))

	data, ext, err := r.transform(a, resp)
	if err != nil {
		log.Error("processing failed", "name", a.Name, "err", err)
		return asset.Result{Asset: a, Status: asset.StatusFailed, Err: err}
	}

	path, err := r.writer.Write(a.ID, ext, data)
	if err != nil {
		log.Error("write failed", "name", a.Name, "err", err)
		return asset.Result{Asset: a, Status: asset.StatusFailed, Err: err}
	}

	log.Info("saved", "name", a.Name, "path", path, "size", humanize.Bytes(uint64(len(data))))
	return asset.Result{Asset: a, Status: asset.StatusOK, Path: path, Bytes: int64(len(data))}
}
