package adapters

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"imi_backend/internal/feature/themes/domain/entity"
	"imi_backend/internal/feature/themes/usecase"
	"imi_backend/internal/platform/db"
)

type themeGorm struct {
	db *gorm.DB
}

var _ usecase.ThemeRepository = (*themeGorm)(nil)

func NewThemeRepository(db *gorm.DB) *themeGorm {
	return &themeGorm{db: db}
}

type ThemeModel struct {
	ID          string   `gorm:"primaryKey;size:64"`
	Slug        string   `gorm:"size:128;not null;uniqueIndex"`
	Name        string   `gorm:"not null"`
	Description string   `gorm:"type:text;not null"`
	Tickers     []string `gorm:"serializer:json"`
}

func (ThemeModel) TableName() string {
	return "themes"
}

func toEntity(m ThemeModel) entity.Theme {
	tickers := m.Tickers
	if tickers == nil {
		tickers = []string{}
	}
	return entity.Theme{
		ID:          m.ID,
		Slug:        m.Slug,
		Name:        m.Name,
		Description: m.Description,
		Tickers:     tickers,
	}
}

func (r *themeGorm) List(ctx context.Context) ([]entity.Theme, error) {
	var rows []ThemeModel
	if err := r.db.WithContext(ctx).Order("slug").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Theme, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

func (r *themeGorm) FindBySlug(ctx context.Context, slug string) (*entity.Theme, error) {
	var m ThemeModel
	if err := r.db.WithContext(ctx).Where("slug = ?", slug).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrThemeNotFound
		}
		return nil, err
	}
	t := toEntity(m)
	return &t, nil
}

func (r *themeGorm) CreateBatch(ctx context.Context, themes []entity.Theme) error {
	if len(themes) == 0 {
		return nil
	}
	rows := make([]ThemeModel, 0, len(themes))
	for _, t := range themes {
		rows = append(rows, ThemeModel{
			ID:          t.ID,
			Slug:        t.Slug,
			Name:        t.Name,
			Description: t.Description,
			Tickers:     t.Tickers,
		})
	}
	if err := r.db.WithContext(ctx).Create(&rows).Error; err != nil {
		if db.IsUniqueViolation(err) {
			return fmt.Errorf("%w: %w", usecase.ErrDuplicateTheme, err)
		}
		return err
	}
	return nil
}

func (r *themeGorm) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&ThemeModel{}).Count(&n).Error
	return n, err
}
