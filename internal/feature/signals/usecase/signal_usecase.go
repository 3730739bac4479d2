package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"imi_backend/internal/feature/signals/domain/entity"
)

// SignalRepository abstracts the persistence layer for signals.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type SignalRepository interface {
	// List returns every signal, newest created_date first.
	List(ctx context.Context) ([]entity.Signal, error)
	// FindByID returns ErrSignalNotFound when no signal has the given ID.
	FindByID(ctx context.Context, id string) (*entity.Signal, error)
	// Upsert inserts the signal or replaces the stored one with the same ID.
	Upsert(ctx context.Context, s *entity.Signal) error
	// CreateBatch inserts all signals in one statement.
	CreateBatch(ctx context.Context, signals []entity.Signal) error
	// Count returns the number of stored signals.
	Count(ctx context.Context) (int64, error)
}

// SignalUsecase provides the signal feed operations.
type SignalUsecase struct {
	repo  SignalRepository
	newID func() string
	now   func() time.Time
}

// NewSignalUsecase creates a new SignalUsecase with the given repository.
func NewSignalUsecase(repo SignalRepository) *SignalUsecase {
	return &SignalUsecase{
		repo:  repo,
		newID: func() string { return "sig_" + uuid.NewString() },
		now:   time.Now,
	}
}

// ListSignals returns the global signal feed.
func (u *SignalUsecase) ListSignals(ctx context.Context) ([]entity.Signal, error) {
	return u.repo.List(ctx)
}

// GetSignal returns one signal by ID.
func (u *SignalUsecase) GetSignal(ctx context.Context, id string) (*entity.Signal, error) {
	return u.repo.FindByID(ctx, id)
}

// UpsertSignal stores s, generating an ID when it has none, and returns the stored value.
// A signal posted with an existing ID replaces the stored one.
func (u *SignalUsecase) UpsertSignal(ctx context.Context, s entity.Signal) (*entity.Signal, error) {
	if err := u.normalize(&s); err != nil {
		return nil, err
	}
	if err := u.repo.Upsert(ctx, &s); err != nil {
		return nil, fmt.Errorf("upsert signal %s: %w", s.ID, err)
	}
	return &s, nil
}

// SeedSignals stores seed only when no signal exists yet, then returns the stored feed.
func (u *SignalUsecase) SeedSignals(ctx context.Context, seed []entity.Signal) ([]entity.Signal, error) {
	n, err := u.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 && len(seed) > 0 {
		batch := make([]entity.Signal, len(seed))
		copy(batch, seed)
		for i := range batch {
			if err := u.normalize(&batch[i]); err != nil {
				return nil, err
			}
		}
		if err := u.repo.CreateBatch(ctx, batch); err != nil {
			return nil, fmt.Errorf("seed signals: %w", err)
		}
	}
	return u.repo.List(ctx)
}

// normalize applies defaults and validates s in place.
func (u *SignalUsecase) normalize(s *entity.Signal) error {
	s.Ticker = strings.TrimSpace(s.Ticker)
	if s.Ticker == "" {
		return fmt.Errorf("%w: ticker is required", ErrInvalidSignal)
	}
	if s.HorizonDays < 0 {
		return fmt.Errorf("%w: horizon_days must not be negative", ErrInvalidSignal)
	}
	if s.P20 > s.P80 {
		return fmt.Errorf("%w: p20 must not exceed p80", ErrInvalidSignal)
	}
	if s.ID == "" {
		s.ID = u.newID()
	}
	if s.HorizonDays == 0 {
		s.HorizonDays = entity.DefaultHorizonDays
	}
	if s.CreatedDate.IsZero() {
		s.CreatedDate = u.now().UTC()
	}
	return nil
}
