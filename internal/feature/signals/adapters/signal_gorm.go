package adapters

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"imi_backend/internal/feature/signals/domain/entity"
	"imi_backend/internal/feature/signals/usecase"
	"imi_backend/internal/platform/db"
)

type signalGorm struct {
	db *gorm.DB
}

var (
	_ usecase.SignalRepository = (*signalGorm)(nil)
	_ usecase.RealizationStore = (*signalGorm)(nil)
)

func NewSignalRepository(db *gorm.DB) *signalGorm {
	return &signalGorm{db: db}
}

type SignalModel struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Ticker      string    `gorm:"size:32;not null;index"`
	Title       string    `gorm:"not null"`
	URL         string    `gorm:"not null"`
	Source      string    `gorm:"size:128;not null"`
	Summary     string    `gorm:"type:text;not null"`
	Drivers     string    `gorm:"type:text;not null"`
	P20         float64   `gorm:"not null"`
	P50         float64   `gorm:"not null"`
	P80         float64   `gorm:"not null"`
	Confidence  float64   `gorm:"not null"`
	HorizonDays int       `gorm:"not null"`
	CreatedDate time.Time `gorm:"not null;index"`

	RealizedExcessReturn *float64
	RealizedAt           *time.Time
}

func (SignalModel) TableName() string {
	return "signals"
}

func toModel(e entity.Signal) SignalModel {
	return SignalModel{
		ID:                   e.ID,
		Ticker:               e.Ticker,
		Title:                e.Title,
		URL:                  e.URL,
		Source:               e.Source,
		Summary:              e.Summary,
		Drivers:              e.Drivers,
		P20:                  e.P20,
		P50:                  e.P50,
		P80:                  e.P80,
		Confidence:           e.Confidence,
		HorizonDays:          e.HorizonDays,
		CreatedDate:          e.CreatedDate.UTC(),
		RealizedExcessReturn: e.RealizedExcessReturn,
		RealizedAt:           e.RealizedAt,
	}
}

func toEntity(m SignalModel) entity.Signal {
	e := entity.Signal{
		ID:                   m.ID,
		Ticker:               m.Ticker,
		Title:                m.Title,
		URL:                  m.URL,
		Source:               m.Source,
		Summary:              m.Summary,
		Drivers:              m.Drivers,
		P20:                  m.P20,
		P50:                  m.P50,
		P80:                  m.P80,
		Confidence:           m.Confidence,
		HorizonDays:          m.HorizonDays,
		CreatedDate:          m.CreatedDate.UTC(),
		RealizedExcessReturn: m.RealizedExcessReturn,
	}
	if m.RealizedAt != nil {
		at := m.RealizedAt.UTC()
		e.RealizedAt = &at
	}
	return e
}

func toEntities(rows []SignalModel) []entity.Signal {
	out := make([]entity.Signal, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out
}

func (r *signalGorm) List(ctx context.Context) ([]entity.Signal, error) {
	var rows []SignalModel
	if err := r.db.WithContext(ctx).Order("created_date DESC").Order("id").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (r *signalGorm) FindByID(ctx context.Context, id string) (*entity.Signal, error) {
	var m SignalModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrSignalNotFound
		}
		return nil, err
	}
	e := toEntity(m)
	return &e, nil
}

// Upsert は同じIDの行が存在すれば全カラムを置き換えます。
func (r *signalGorm) Upsert(ctx context.Context, s *entity.Signal) error {
	m := toModel(*s)
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

func (r *signalGorm) CreateBatch(ctx context.Context, signals []entity.Signal) error {
	if len(signals) == 0 {
		return nil
	}
	ms := make([]SignalModel, 0, len(signals))
	for _, e := range signals {
		ms = append(ms, toModel(e))
	}
	if err := r.db.WithContext(ctx).Create(&ms).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", usecase.ErrDuplicateSignal, err)
		}
		return err
	}
	return nil
}

func (r *signalGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&SignalModel{}).Count(&n).Error
	return n, err
}

func (r *signalGorm) ListUnrealized(ctx context.Context) ([]entity.Signal, error) {
	var rows []SignalModel
	if err := r.db.WithContext(ctx).
		Where("realized_excess_return IS NULL").
		Order("created_date").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (r *signalGorm) MarkRealized(ctx context.Context, id string, excess float64, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&SignalModel{}).Where("id = ?", id).Updates(map[string]any{
		"realized_excess_return": excess,
		"realized_at":            at.UTC(),
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrSignalNotFound
	}
	return nil
}
