package usecase

import (
	"context"
	"errors"
	"sort"
	"time"

	"imi_backend/internal/feature/signals/domain/entity"
)

// ErrDB はモックのデータベースエラーです。
var ErrDB = errors.New("database error")

// memorySignalRepository はテスト用のインメモリSignalRepository/RealizationStore実装です。
type memorySignalRepository struct {
	byID        map[string]entity.Signal
	err         error
	upsertCalls int
	batchCalls  int
	marked      map[string]float64
	markErr     error
}

func newMemorySignalRepository(seed ...entity.Signal) *memorySignalRepository {
	r := &memorySignalRepository{byID: map[string]entity.Signal{}, marked: map[string]float64{}}
	for _, s := range seed {
		r.byID[s.ID] = s
	}
	return r
}

func (r *memorySignalRepository) List(ctx context.Context) ([]entity.Signal, error) {
	if r.err != nil {
		return nil, r.err
	}
	out := make([]entity.Signal, 0, len(r.byID))
	for _, s := range r.byID {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedDate.After(out[j].CreatedDate) })
	return out, nil
}

func (r *memorySignalRepository) FindByID(ctx context.Context, id string) (*entity.Signal, error) {
	if r.err != nil {
		return nil, r.err
	}
	s, ok := r.byID[id]
	if !ok {
		return nil, ErrSignalNotFound
	}
	return &s, nil
}

func (r *memorySignalRepository) Upsert(ctx context.Context, s *entity.Signal) error {
	r.upsertCalls++
	if r.err != nil {
		return r.err
	}
	r.byID[s.ID] = *s
	return nil
}

func (r *memorySignalRepository) CreateBatch(ctx context.Context, signals []entity.Signal) error {
	r.batchCalls++
	if r.err != nil {
		return r.err
	}
	for _, s := range signals {
		r.byID[s.ID] = s
	}
	return nil
}

func (r *memorySignalRepository) Count(ctx context.Context) (int64, error) {
	if r.err != nil {
		return 0, r.err
	}
	return int64(len(r.byID)), nil
}

func (r *memorySignalRepository) ListUnrealized(ctx context.Context) ([]entity.Signal, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]entity.Signal, 0, len(all))
	for _, s := range all {
		if !s.IsRealized() {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memorySignalRepository) MarkRealized(ctx context.Context, id string, excess float64, at time.Time) error {
	if r.markErr != nil {
		return r.markErr
	}
	s, ok := r.byID[id]
	if !ok {
		return ErrSignalNotFound
	}
	s.RealizedExcessReturn = &excess
	s.RealizedAt = &at
	r.byID[id] = s
	r.marked[id] = excess
	return nil
}

// mockPriceRepository is a mock implementation of the PriceRepository interface.
type mockPriceRepository struct {
	GetTimeSeriesFunc  func(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
	GetTimeSeriesCalls map[string]int
}

func (m *mockPriceRepository) GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	if m.GetTimeSeriesCalls == nil {
		m.GetTimeSeriesCalls = map[string]int{}
	}
	m.GetTimeSeriesCalls[symbol]++
	if m.GetTimeSeriesFunc != nil {
		return m.GetTimeSeriesFunc(ctx, symbol, interval, outputsize)
	}
	return nil, errors.New("GetTimeSeriesFunc is not implemented")
}

// mockRateLimiter is a mock implementation of the RateLimiterInterface.
type mockRateLimiter struct {
	WaitIfNeededCalls int
}

func (m *mockRateLimiter) WaitIfNeeded(ctx context.Context) error {
	m.WaitIfNeededCalls++
	return ctx.Err()
}

func f64(v float64) *float64 { return &v }
