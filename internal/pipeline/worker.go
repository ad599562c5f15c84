package pipeline

import (
	"context"

	"github.com/michaelscutari/gridassets/internal/asset"
)

type job struct {
	index int
	asset asset.Asset
}

// worker pulls jobs until the channel is closed. Each job owns its slot in
// results, so no locking is needed.
type worker struct {
	id      int
	runner  *Runner
	jobs    <-chan job
	results []asset.Result
}

func newWorker(id int, r *Runner, jobs <-chan job, results []asset.Result) *worker {
	return &worker{
		id:      id,
		runner:  r,
		jobs:    jobs,
		results: results,
	}
}

func (w *worker) run(ctx context.Context) {
	for j := range w.jobs {
		if ctx.Err() != nil {
			w.results[j.index] = asset.Result{Asset: j.asset, Status: asset.StatusSkipped, Err: ctx.Err()}
			continue
		}
		w.results[j.index] = w.runner.process(ctx, j.asset)
	}
	w.runner.log.Debug("worker finished", "worker", w.id)
}
