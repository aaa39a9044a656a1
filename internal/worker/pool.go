// Package worker provides the process-wide pool that resolves audio features
// for candidate tracks.
package worker

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/ewilliams-labs/segue/internal/core/domain"
	"github.com/ewilliams-labs/segue/internal/core/ports"
	"github.com/ewilliams-labs/segue/internal/logging"
	"github.com/ewilliams-labs/segue/internal/metrics"
)

// Job is one audio-feature lookup. The result is delivered on done.
type Job struct {
	ctx     context.Context
	token   string
	trackID string
	done    chan<- result
}

type result struct {
	trackID  string
	features domain.AudioFeatures
	ok       bool
}

// Pool manages background workers for feature lookups.
type Pool struct {
	catalog ports.Catalog
	jobs    chan Job
	wg      sync.WaitGroup
	log     zerolog.Logger

	mu      sync.RWMutex
	stopped bool
}

var _ ports.FeatureSource = (*Pool)(nil)

// NewPool creates a worker pool with the given queue size. Call Start to
// launch workers.
func NewPool(catalog ports.Catalog, queueSize int) *Pool {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{
		catalog: catalog,
		jobs:    make(chan Job, queueSize),
		log:     logging.WithComponent("worker"),
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start(workers int) {
	if workers < 1 {
		workers = 1
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for job := range p.jobs {
				p.processJob(job)
			}
		}()
	}
}

// Stop waits for workers to finish after closing the queue.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
}

// Submit queues a job without blocking. It reports false when the job was
// dropped.
func (p *Pool) Submit(job Job) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.stopped {
		return false
	}
	select {
	case p.jobs <- job:
		return true
	default:
		metrics.FeatureJobsDropped.Inc()
		p.log.Warn().Str("track_id", job.trackID).Msg("worker: dropping feature job, queue full")
		return false
	}
}

// FetchFeatures resolves features for trackIDs through the pool. Ids whose
// job was dropped or failed, or that did not finish before ctx ended, are
// absent from the result.
func (p *Pool) FetchFeatures(ctx context.Context, token string, trackIDs []string) map[string]domain.AudioFeatures {
	out := make(map[string]domain.AudioFeatures, len(trackIDs))
	if len(trackIDs) == 0 {
		return out
	}

	done := make(chan result, len(trackIDs))
	pending := 0
	for _, id := range trackIDs {
		if p.Submit(Job{ctx: ctx, token: token, trackID: id, done: done}) {
			pending++
		}
	}

	for pending > 0 {
		select {
		case r := <-done:
			pending--
			if r.ok {
				out[r.trackID] = r.features
			}
		case <-ctx.Done():
			return out
		}
	}
	return out
}

func (p *Pool) processJob(job Job) {
	res := result{trackID: job.trackID}
	defer func() { job.done <- res }()

	if job.ctx.Err() != nil {
		return
	}

	features, err := p.catalog.GetAudioFeatures(job.ctx, job.token, job.trackID)
	if err != nil {
		if !errors.Is(err, ports.ErrNotFound) && !errors.Is(err, context.Canceled) {
			logging.Ctx(job.ctx).Warn().Err(err).Str("track_id", job.trackID).
				Msg("worker: audio features unavailable")
		}
		return
	}

	res.features = features
	res.ok = true
}
