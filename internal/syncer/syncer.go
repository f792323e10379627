// Package syncer contains background flusher of locally written entities.
package syncer

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Decentr-net/citypulse/internal/health"
)

var log = logrus.WithField("layer", "syncer").WithField("package", "syncer")

// Flusher sends deferred writes to remote storage.
type Flusher interface {
	Sync(ctx context.Context) error
}

// Syncer flushes deferred writes in background.
type Syncer interface {
	health.Pinger

	Run(ctx context.Context) error
}

// Status is a meta information returned by Ping.
type Status struct {
	LastSyncAt time.Time `json:"lastSyncAt"`
	LastError  string    `json:"lastError,omitempty"`
}

type periodic struct {
	f        Flusher
	interval time.Duration
	now      func() time.Time

	mu     sync.Mutex
	status Status
}

// New creates Syncer which calls f every interval.
func New(f Flusher, interval time.Duration) Syncer {
	return &periodic{
		f:        f,
		interval: interval,
		now:      time.Now,
	}
}

// Run blocks until ctx is done.
func (p *periodic) Run(ctx context.Context) error {
	t := time.NewTicker(p.interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			p.flush(ctx)
		}
	}
}

func (p *periodic) flush(ctx context.Context) {
	err := p.f.Sync(ctx)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.status.LastSyncAt = p.now()
	p.status.LastError = ""

	if err != nil {
		// writes stay in cache until next tick
		log.WithError(err).Warn("failed to sync")
		p.status.LastError = err.Error()
	}
}

// Ping never fails: deferred writes are a normal state.
func (p *periodic) Ping(_ context.Context) (interface{}, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.status, nil
}

func (p *periodic) Name() string {
	return "syncer"
}
