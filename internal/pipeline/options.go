package pipeline

import "time"

// Options configures a download run.
type Options struct {
	// Workers is the number of concurrent asset processors.
	// One worker processes assets strictly in order.
	Workers int

	// Timeout bounds each individual fetch.
	Timeout time.Duration
}

// DefaultOptions returns sequential processing with a 30s fetch timeout.
func DefaultOptions() *Options {
	return &Options{
		Workers: 1,
		Timeout: 30 * time.Second,
	}
}

// WithWorkers sets the number of workers. Values below 1 mean 1.
func (o *Options) WithWorkers(n int) *Options {
	if n < 1 {
		n = 1
	}
	o.Workers = n
	return o
}

// WithTimeout sets the per-fetch timeout.
func (o *Options) WithTimeout(d time.Duration) *Options {
	o.Timeout = d
	return o
}
