package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"imi_backend/internal/feature/themes/domain/entity"
	sigentity "imi_backend/internal/feature/signals/domain/entity"
)

// ThemeRepository はテーマの永続化を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type ThemeRepository interface {
	List(ctx context.Context) ([]entity.Theme, error)
	// FindBySlug は存在しない場合 ErrThemeNotFound を返します。
	FindBySlug(ctx context.Context, slug string) (*entity.Theme, error)
	// CreateBatch はスラッグが重複した場合 ErrDuplicateTheme を返します。
	CreateBatch(ctx context.Context, themes []entity.Theme) error
	Count(ctx context.Context) (int64, error)
}

// SignalLister はテーマ別シグナルの抽出に使うシグナル一覧の取得元です。
type SignalLister interface {
	ListSignals(ctx context.Context) ([]sigentity.Signal, error)
}

// ThemeUsecase はテーマのユースケースを提供します。
// ストアが空の場合、最初の参照時にデフォルトテーマを投入します。
type ThemeUsecase struct {
	repo     ThemeRepository
	signals  SignalLister
	defaults []entity.Theme
	newID    func() string
}

// NewThemeUsecase は新しい ThemeUsecase を作成します。
func NewThemeUsecase(repo ThemeRepository, signals SignalLister, defaults []entity.Theme) *ThemeUsecase {
	return &ThemeUsecase{
		repo:     repo,
		signals:  signals,
		defaults: defaults,
		newID:    func() string { return "th_" + uuid.NewString() },
	}
}

// ListThemes は全テーマを返します。
func (u *ThemeUsecase) ListThemes(ctx context.Context) ([]entity.Theme, error) {
	if err := u.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return u.repo.List(ctx)
}

// GetTheme はスラッグでテーマを取得します。
func (u *ThemeUsecase) GetTheme(ctx context.Context, slug string) (*entity.Theme, error) {
	if err := u.ensureSeeded(ctx); err != nil {
		return nil, err
	}
	return u.repo.FindBySlug(ctx, slug)
}

// ThemeSignals はテーマに属する銘柄のシグナルを返します。
// 未知のスラッグの場合は空のスライスを返します。
func (u *ThemeUsecase) ThemeSignals(ctx context.Context, slug string) ([]sigentity.Signal, error) {
	theme, err := u.GetTheme(ctx, slug)
	if errors.Is(err, ErrThemeNotFound) {
		return []sigentity.Signal{}, nil
	}
	if err != nil {
		return nil, err
	}

	all, err := u.signals.ListSignals(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]sigentity.Signal, 0, len(all))
	for _, s := range all {
		if theme.HasTicker(s.Ticker) {
			out = append(out, s)
		}
	}
	return out, nil
}

// SeedThemes はストアが空の場合のみ themes を投入し、投入件数を返します。
func (u *ThemeUsecase) SeedThemes(ctx context.Context, themes []entity.Theme) (int, error) {
	n, err := u.repo.Count(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 || len(themes) == 0 {
		return 0, nil
	}

	batch := make([]entity.Theme, 0, len(themes))
	for _, t := range themes {
		if t.ID == "" {
			t.ID = u.newID()
		}
		if t.Tickers == nil {
			t.Tickers = []string{}
		}
		batch = append(batch, t)
	}
	if err := u.repo.CreateBatch(ctx, batch); err != nil {
		return 0, fmt.Errorf("seed themes: %w", err)
	}
	slog.Info("seeded themes", "count", len(batch))
	return len(batch), nil
}

func (u *ThemeUsecase) ensureSeeded(ctx context.Context) error {
	_, err := u.SeedThemes(ctx, u.defaults)
	// 同時リクエストが先に投入した場合は成功として扱う
	if errors.Is(err, ErrDuplicateTheme) {
		return nil
	}
	return err
}
