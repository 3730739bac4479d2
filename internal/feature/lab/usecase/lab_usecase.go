package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"imi_backend/internal/feature/lab/domain/entity"
	sigentity "imi_backend/internal/feature/signals/domain/entity"
	sigusecase "imi_backend/internal/feature/signals/usecase"
)

const (
	// AlertMinConfidence は watchlist アラートに含めるシグナルの最低信頼度です。
	AlertMinConfidence = 60.0
	// AlertLimit は watchlist アラートの最大件数です。
	AlertLimit = 10
)

// AnalysisRepository はラボ分析記録の永続化を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type AnalysisRepository interface {
	// ListByUser は新しい順に返します。
	ListByUser(ctx context.Context, userID string) ([]entity.UserAnalysis, error)
	Create(ctx context.Context, a *entity.UserAnalysis) error
}

// WatchlistRepository はウォッチリストの永続化を抽象化します。
type WatchlistRepository interface {
	ListByUser(ctx context.Context, userID string) ([]entity.Watchlist, error)
	// FindByID は存在しない場合 ErrWatchlistNotFound を返します。
	FindByID(ctx context.Context, id string) (*entity.Watchlist, error)
	// Save は同じIDのウォッチリストを置き換えます。
	// 既存の行が w.UserID 以外のユーザーのものなら ErrWatchlistNotFound を返し、書き換えません。
	Save(ctx context.Context, w *entity.Watchlist) error
}

// SignalService はラボが利用するシグナル操作です。
type SignalService interface {
	ListSignals(ctx context.Context) ([]sigentity.Signal, error)
	UpsertSignal(ctx context.Context, s sigentity.Signal) (*sigentity.Signal, error)
	Screen(ctx context.Context, q sigusecase.ScreenerQuery) (*sigusecase.ScreenerResult, error)
}

// LabUsecase はIMI Labのユースケースを提供します。
type LabUsecase struct {
	analyses   AnalysisRepository
	watchlists WatchlistRepository
	signals    SignalService
	newID      func(prefix string) string
	now        func() time.Time
}

// NewLabUsecase は新しい LabUsecase を作成します。
func NewLabUsecase(analyses AnalysisRepository, watchlists WatchlistRepository, signals SignalService) *LabUsecase {
	return &LabUsecase{
		analyses:   analyses,
		watchlists: watchlists,
		signals:    signals,
		newID:      func(prefix string) string { return prefix + "_" + uuid.NewString() },
		now:        time.Now,
	}
}

// ListAnalyses はユーザーの分析記録を新しい順に返します。
func (u *LabUsecase) ListAnalyses(ctx context.Context, userID string) ([]entity.UserAnalysis, error) {
	return u.analyses.ListByUser(ctx, userID)
}

// AddAnalysis は分析記録を追加します。
// IDを持たない埋め込みシグナルは先に保存され、そのIDが記録に使われます。
func (u *LabUsecase) AddAnalysis(ctx context.Context, userID string, in entity.NewAnalysis) (*entity.UserAnalysis, error) {
	signalID := in.SignalID
	if in.Signal != nil {
		if in.Signal.ID == "" {
			saved, err := u.signals.UpsertSignal(ctx, *in.Signal)
			if err != nil {
				return nil, fmt.Errorf("store embedded signal: %w", err)
			}
			in.Signal = saved
		}
		signalID = in.Signal.ID
	}
	if strings.TrimSpace(signalID) == "" {
		return nil, ErrMissingSignal
	}

	tags := in.Tags
	if tags == nil {
		tags = []string{}
	}
	a := &entity.UserAnalysis{
		ID:           u.newID("ua"),
		UserID:       userID,
		SignalID:     signalID,
		UserGuessP50: in.UserGuessP50,
		Notes:        in.Notes,
		Tags:         tags,
		CreatedAt:    u.now().UTC(),
	}
	if err := u.analyses.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("create analysis: %w", err)
	}
	return a, nil
}

// Stats はユーザーの予測とモデルの予測の平均絶対誤差を比較します。
// シグナルが存在し、実現済みで、ユーザー予測がある記録のみを対象にします。
func (u *LabUsecase) Stats(ctx context.Context, userID string) (*entity.UserStats, error) {
	analyses, err := u.analyses.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	signals, err := u.signals.ListSignals(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]sigentity.Signal, len(signals))
	for _, s := range signals {
		byID[s.ID] = s
	}

	var n int
	var modelErr, userErr float64
	for _, a := range analyses {
		s, ok := byID[a.SignalID]
		if !ok || !s.IsRealized() || a.UserGuessP50 == nil {
			continue
		}
		realized := *s.RealizedExcessReturn
		if !finite(realized) || !finite(s.P50) || !finite(*a.UserGuessP50) {
			continue
		}
		n++
		modelErr += math.Abs(realized - s.P50)
		userErr += math.Abs(realized - *a.UserGuessP50)
	}

	stats := &entity.UserStats{Count: n}
	if n > 0 {
		m, us := modelErr/float64(n), userErr/float64(n)
		stats.ModelMAE = &m
		stats.UserMAE = &us
	}
	return stats, nil
}

// ListWatchlists はユーザーのウォッチリストを返します。
func (u *LabUsecase) ListWatchlists(ctx context.Context, userID string) ([]entity.Watchlist, error) {
	return u.watchlists.ListByUser(ctx, userID)
}

// SaveWatchlist はウォッチリストを保存します。IDが無ければ生成し、あれば置き換えます。
// 他のユーザーのIDを指定した場合は ErrWatchlistNotFound を返します。
func (u *LabUsecase) SaveWatchlist(ctx context.Context, userID string, w entity.Watchlist) (*entity.Watchlist, error) {
	w.Name = strings.TrimSpace(w.Name)
	if w.Name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidWatchlist)
	}

	if w.ID == "" {
		w.ID = u.newID("wl")
	} else {
		existing, err := u.watchlists.FindByID(ctx, w.ID)
		switch {
		case errors.Is(err, ErrWatchlistNotFound):
		case err != nil:
			return nil, err
		case existing.UserID != userID:
			return nil, ErrWatchlistNotFound
		}
	}

	w.UserID = userID
	w.Tickers = normalizeTickers(w.Tickers)
	w.CreatedAt = u.now().UTC()
	// 確認後に所有者が変わった場合はストア側で拒否される
	if err := u.watchlists.Save(ctx, &w); err != nil {
		if errors.Is(err, ErrWatchlistNotFound) {
			return nil, ErrWatchlistNotFound
		}
		return nil, fmt.Errorf("save watchlist %s: %w", w.ID, err)
	}
	return &w, nil
}

// Alerts はユーザーの全ウォッチリストの銘柄について、信頼度が AlertMinConfidence 以上の
// 実現済みシグナルを最大 AlertLimit 件返します。
func (u *LabUsecase) Alerts(ctx context.Context, userID string) ([]sigentity.Signal, error) {
	lists, err := u.watchlists.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var all []string
	for _, w := range lists {
		all = append(all, w.Tickers...)
	}
	tickers := normalizeTickers(all)
	if len(tickers) == 0 {
		return []sigentity.Signal{}, nil
	}
	sort.Strings(tickers)

	minConf := AlertMinConfidence
	res, err := u.signals.Screen(ctx, sigusecase.ScreenerQuery{Tickers: tickers, MinConfidence: &minConf})
	if err != nil {
		return nil, err
	}
	out := res.Signals
	if len(out) > AlertLimit {
		out = out[:AlertLimit]
	}
	return out, nil
}

// normalizeTickers は銘柄を大文字に揃え、空要素と重複を取り除きます（順序は維持）。
func normalizeTickers(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, t := range in {
		t = strings.ToUpper(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
