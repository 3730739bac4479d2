package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"imi_backend/internal/feature/lab/domain/entity"
	"imi_backend/internal/feature/lab/usecase"
)

type analysisGorm struct {
	db *gorm.DB
}

var _ usecase.AnalysisRepository = (*analysisGorm)(nil)

func NewAnalysisRepository(db *gorm.DB) *analysisGorm {
	return &analysisGorm{db: db}
}

type AnalysisModel struct {
	ID           string    `gorm:"primaryKey;size:64"`
	UserID       string    `gorm:"size:128;not null;index:idx_analysis_user_created,priority:1"`
	SignalID     string    `gorm:"size:64;not null;index"`
	UserGuessP50 *float64
	Notes        string    `gorm:"type:text;not null"`
	Tags         []string  `gorm:"serializer:json"`
	CreatedAt    time.Time `gorm:"not null;index:idx_analysis_user_created,priority:2"`
}

func (AnalysisModel) TableName() string {
	return "user_analyses"
}

func (r *analysisGorm) ListByUser(ctx context.Context, userID string) ([]entity.UserAnalysis, error) {
	var rows []AnalysisModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.UserAnalysis, 0, len(rows))
	for _, m := range rows {
		tags := m.Tags
		if tags == nil {
			tags = []string{}
		}
		out = append(out, entity.UserAnalysis{
			ID:           m.ID,
			UserID:       m.UserID,
			SignalID:     m.SignalID,
			UserGuessP50: m.UserGuessP50,
			Notes:        m.Notes,
			Tags:         tags,
			CreatedAt:    m.CreatedAt.UTC(),
		})
	}
	return out, nil
}

func (r *analysisGorm) Create(ctx context.Context, a *entity.UserAnalysis) error {
	m := AnalysisModel{
		ID:           a.ID,
		UserID:       a.UserID,
		SignalID:     a.SignalID,
		UserGuessP50: a.UserGuessP50,
		Notes:        a.Notes,
		Tags:         a.Tags,
		CreatedAt:    a.CreatedAt,
	}
	return r.db.WithContext(ctx).Create(&m).Error
}

type watchlistGorm struct {
	db *gorm.DB
}

var _ usecase.WatchlistRepository = (*watchlistGorm)(nil)

func NewWatchlistRepository(db *gorm.DB) *watchlistGorm {
	return &watchlistGorm{db: db}
}

type WatchlistModel struct {
	ID        string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"size:128;not null;index"`
	Name      string    `gorm:"not null"`
	Tickers   []string  `gorm:"serializer:json"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime:false"`
}

func (WatchlistModel) TableName() string {
	return "watchlists"
}

func toWatchlist(m WatchlistModel) entity.Watchlist {
	tickers := m.Tickers
	if tickers == nil {
		tickers = []string{}
	}
	return entity.Watchlist{
		ID:        m.ID,
		UserID:    m.UserID,
		Name:      m.Name,
		Tickers:   tickers,
		CreatedAt: m.CreatedAt.UTC(),
	}
}

func (r *watchlistGorm) ListByUser(ctx context.Context, userID string) ([]entity.Watchlist, error) {
	var rows []WatchlistModel
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Watchlist, 0, len(rows))
	for _, m := range rows {
		out = append(out, toWatchlist(m))
	}
	return out, nil
}

func (r *watchlistGorm) FindByID(ctx context.Context, id string) (*entity.Watchlist, error) {
	var m WatchlistModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrWatchlistNotFound
		}
		return nil, err
	}
	w := toWatchlist(m)
	return &w, nil
}

// Save は同じIDの行があれば全カラムを置き換えます。
// 既存の行が別ユーザーのものであれば書き換えずに ErrWatchlistNotFound を返します。
func (r *watchlistGorm) Save(ctx context.Context, w *entity.Watchlist) error {
	m := WatchlistModel{
		ID:        w.ID,
		UserID:    w.UserID,
		Name:      w.Name,
		Tickers:   w.Tickers,
		CreatedAt: w.CreatedAt,
	}
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
		Where: clause.Where{Exprs: []clause.Expression{
			clause.Eq{Column: clause.Column{Table: "watchlists", Name: "user_id"}, Value: w.UserID},
		}},
	}).Create(&m)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrWatchlistNotFound
	}
	return nil
}
