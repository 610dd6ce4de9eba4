package repository

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/trainlog/internal/domain/model"
	"github.com/okian/trainlog/internal/domain/report"
	"github.com/okian/trainlog/pkg/metrics"
)

// snapshot is the immutable state published after each save. Readers load
// it without taking the write lock.
type snapshot struct {
	runs  []Run // newest first
	trend []model.TrendPoint
}

// MemoryStore keeps run history in process memory.
type MemoryStore struct {
	mu      sync.Mutex
	history int
	closed  bool

	snapshot atomic.Pointer[snapshot]
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{history: 100}
	for _, opt := range opts {
		opt(s)
	}
	s.snapshot.Store(&snapshot{})
	return s
}

func (s *MemoryStore) SaveReport(ctx context.Context, r report.Report) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}

	prev := s.snapshot.Load()
	runs := make([]Run, 0, min(len(prev.runs)+1, s.history))
	runs = append(runs, RunOf(r))
	for _, run := range prev.runs {
		if len(runs) == s.history {
			break
		}
		runs = append(runs, run)
	}
	s.snapshot.Store(&snapshot{
		runs:  runs,
		trend: append([]model.TrendPoint(nil), r.Trend...),
	})

	metrics.RecordSnapshot(time.Since(start))
	return nil
}

func (s *MemoryStore) LatestRun(_ context.Context) (Run, error) {
	snap := s.snapshot.Load()
	if len(snap.runs) == 0 {
		return Run{}, ErrNotFound
	}
	return snap.runs[0], nil
}

func (s *MemoryStore) Runs(_ context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	snap := s.snapshot.Load()
	n := min(limit, len(snap.runs))
	return append([]Run(nil), snap.runs[:n]...), nil
}

func (s *MemoryStore) Trend(_ context.Context, from, to model.Date) ([]model.TrendPoint, error) {
	if err := checkRange(from, to); err != nil {
		return nil, err
	}
	snap := s.snapshot.Load()
	if len(snap.runs) == 0 {
		return nil, ErrNotFound
	}
	pts := snap.trend
	lo := sort.Search(len(pts), func(i int) bool { return !pts[i].Date.Before(from) })
	hi := sort.Search(len(pts), func(i int) bool { return to.Before(pts[i].Date) })
	return append([]model.TrendPoint(nil), pts[lo:hi]...), nil
}

// Close marks the store closed; later saves fail.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
