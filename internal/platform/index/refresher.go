package index

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// ErrUnavailable is returned when the global index has never been built.
// Callers degrade (empty suggestions, scoped search only) rather than fail.
var ErrUnavailable = errors.New("global index has not been built yet")

// Source projects one entity kind into searchable records. Each domain
// repository implements this against its own table.
type Source interface {
	IndexRecords(ctx context.Context) ([]SearchableRecord, error)
}

// Refresher owns the current snapshot and rebuilds it out of the request
// path: on a fixed interval, or sooner when writes settle after a burst.
// Rebuilds are single-flighted; the previous snapshot stays queryable until
// the new one is swapped in atomically. A failed rebuild keeps the previous
// snapshot and is only logged.
type Refresher struct {
	sources  []Source
	interval time.Duration
	debounce time.Duration
	log      zerolog.Logger

	current atomic.Pointer[Snapshot]
	dirty   chan struct{}
	group   singleflight.Group
}

func NewRefresher(log zerolog.Logger, interval, debounce time.Duration, sources ...Source) *Refresher {
	return &Refresher{
		sources:  sources,
		interval: interval,
		debounce: debounce,
		log:      log.With().Str("component", "index_refresher").Logger(),
		dirty:    make(chan struct{}, 1),
	}
}

// Current returns the live snapshot, or ErrUnavailable if no build has ever
// succeeded.
func (r *Refresher) Current() (*Snapshot, error) {
	s := r.current.Load()
	if s == nil {
		return nil, ErrUnavailable
	}
	return s, nil
}

// MarkDirty signals that underlying records changed. The signal is
// non-blocking and coalesces with any pending one; the rebuild happens after
// the debounce window, never on the writer's request path.
func (r *Refresher) MarkDirty() {
	select {
	case r.dirty <- struct{}{}:
	default:
	}
}

// Refresh rebuilds the snapshot from all sources in one pass and swaps it in.
// Concurrent callers share a single rebuild. Rebuilding over unchanged data
// yields a snapshot that answers every query identically.
func (r *Refresher) Refresh(ctx context.Context) (*Snapshot, error) {
	v, err, _ := r.group.Do("refresh", func() (interface{}, error) {
		var records []SearchableRecord
		for _, src := range r.sources {
			recs, err := src.IndexRecords(ctx)
			if err != nil {
				return nil, err
			}
			records = append(records, recs...)
		}
		snap := NewSnapshot(records, time.Now().UTC())
		r.current.Store(snap)
		return snap, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Snapshot), nil
}

// Run drives the refresh schedule until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var debounce *time.Timer
	var debounceC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if debounce != nil {
				debounce.Stop()
			}
			return
		case <-ticker.C:
			r.refreshAndLog(ctx)
		case <-r.dirty:
			if debounce == nil {
				debounce = time.NewTimer(r.debounce)
				debounceC = debounce.C
			} else {
				if !debounce.Stop() {
					select {
					case <-debounceC:
					default:
					}
				}
				debounce.Reset(r.debounce)
			}
		case <-debounceC:
			debounce = nil
			debounceC = nil
			r.refreshAndLog(ctx)
		}
	}
}

func (r *Refresher) refreshAndLog(ctx context.Context) {
	start := time.Now()
	snap, err := r.Refresh(ctx)
	if err != nil {
		// The previous snapshot stays in place; searches see stale data
		// rather than an error.
		r.log.Error().Err(err).Msg("index refresh failed, keeping previous snapshot")
		return
	}
	r.log.Info().
		Int("records", snap.Len()).
		Dur("took", time.Since(start)).
		Msg("index refreshed")
}
