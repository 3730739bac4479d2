package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"

	"imi_backend/internal/feature/signals/domain/entity"
	"imi_backend/internal/shared/ratelimiter"
)

const (
	// DefaultBenchmark は超過リターン計算の基準となる銘柄です。
	DefaultBenchmark = "SPY"

	realizeInterval = "1day"
	minOutputSize   = 30
	maxOutputSize   = 5000
)

// PriceRepository は日足の株価データを取得するリポジトリのインターフェイスです。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type PriceRepository interface {
	GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error)
}

// RealizationStore は実現リターン未記録のシグナルを読み書きするストアです。
type RealizationStore interface {
	ListUnrealized(ctx context.Context) ([]entity.Signal, error)
	MarkRealized(ctx context.Context, id string, excess float64, at time.Time) error
}

// RealizeReport はRealizeDueの実行結果です。
type RealizeReport struct {
	Due      int
	Realized int
	Skipped  int
}

// RealizeUsecase はホライズンを過ぎたシグナルの実現超過リターンを計算して保存します。
type RealizeUsecase struct {
	store       RealizationStore
	market      PriceRepository
	rateLimiter ratelimiter.RateLimiterInterface
	benchmark   string
	now         func() time.Time
}

// NewRealizeUsecase は新しい RealizeUsecase を作成します。benchmark が空なら DefaultBenchmark を使います。
func NewRealizeUsecase(store RealizationStore, market PriceRepository, rateLimiter ratelimiter.RateLimiterInterface, benchmark string) *RealizeUsecase {
	if benchmark == "" {
		benchmark = DefaultBenchmark
	}
	return &RealizeUsecase{
		store:       store,
		market:      market,
		rateLimiter: rateLimiter,
		benchmark:   strings.ToUpper(benchmark),
		now:         time.Now,
	}
}

// BenchmarkFromEnv は IMI_BENCHMARK 環境変数から基準銘柄を読み込みます。
func BenchmarkFromEnv() string {
	if b := os.Getenv("IMI_BENCHMARK"); b != "" {
		return b
	}
	return DefaultBenchmark
}

// RealizeDue は期限到来済みのシグナルを最大 limit 件（0以下なら無制限）処理します。
// 個別銘柄の取得失敗はスキップとして記録し、ベンチマーク取得やストアへの書き込み失敗はエラーを返します。
func (u *RealizeUsecase) RealizeDue(ctx context.Context, limit int) (RealizeReport, error) {
	var report RealizeReport

	pending, err := u.store.ListUnrealized(ctx)
	if err != nil {
		return report, fmt.Errorf("list unrealized signals: %w", err)
	}

	now := u.now().UTC()
	due := make([]entity.Signal, 0, len(pending))
	for _, s := range pending {
		if s.IsDue(now) {
			due = append(due, s)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i].CreatedDate.Before(due[j].CreatedDate) })
	if limit > 0 && len(due) > limit {
		due = due[:limit]
	}
	report.Due = len(due)
	if len(due) == 0 {
		return report, nil
	}

	size := outputSizeFor(due[0].CreatedDate, now)
	bench, err := u.fetch(ctx, u.benchmark, size)
	if err != nil {
		return report, fmt.Errorf("fetch benchmark %s: %w", u.benchmark, err)
	}

	series := map[string][]entity.Candle{}
	for _, s := range due {
		ticker := strings.ToUpper(strings.TrimSpace(s.Ticker))
		bars, ok := series[ticker]
		if !ok {
			bars, err = u.fetch(ctx, ticker, size)
			if err != nil {
				if ctx.Err() != nil {
					return report, ctx.Err()
				}
				// 1つの銘柄でエラーが発生しても処理を止めずにログに出力し、次のシグナルへ
				slog.Error("failed to fetch prices", "ticker", ticker, "signal_id", s.ID, "error", err)
				report.Skipped++
				continue
			}
			series[ticker] = bars
		}

		excess, ok := ExcessReturn(bars, bench, s.CreatedDate, s.HorizonEnd())
		if !ok {
			slog.Warn("insufficient price history", "ticker", ticker, "signal_id", s.ID)
			report.Skipped++
			continue
		}
		if err := u.store.MarkRealized(ctx, s.ID, excess, now); err != nil {
			return report, fmt.Errorf("mark signal %s realized: %w", s.ID, err)
		}
		report.Realized++
	}

	slog.Info("realization finished", "due", report.Due, "realized", report.Realized, "skipped", report.Skipped)
	return report, nil
}

// fetch はレートリミットを守りつつ日足を取得し、古い順に並べて返します。
func (u *RealizeUsecase) fetch(ctx context.Context, symbol string, size int) ([]entity.Candle, error) {
	if err := u.rateLimiter.WaitIfNeeded(ctx); err != nil {
		return nil, err
	}
	bars, err := u.market.GetTimeSeries(ctx, symbol, realizeInterval, size)
	if err != nil {
		return nil, err
	}
	sorted := make([]entity.Candle, len(bars))
	copy(sorted, bars)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Time.Before(sorted[j].Time) })
	return sorted, nil
}

// outputSizeFor は oldest から now までをカバーする取得件数を返します。
// 暦日数は営業日数以上なので、そのまま上限として使えます。
func outputSizeFor(oldest, now time.Time) int {
	n := int(now.Sub(oldest).Hours()/24) + 10
	if n < minOutputSize {
		return minOutputSize
	}
	if n > maxOutputSize {
		return maxOutputSize
	}
	return n
}

// ExcessReturn は start 以降と end 以降の最初の終値を使い、
// ベンチマークに対する超過リターン(%)を計算します。bars は古い順である必要があります。
func ExcessReturn(bars, bench []entity.Candle, start, end time.Time) (float64, bool) {
	ts, ok1 := closeOnOrAfter(bars, start)
	te, ok2 := closeOnOrAfter(bars, end)
	bs, ok3 := closeOnOrAfter(bench, start)
	be, ok4 := closeOnOrAfter(bench, end)
	if !ok1 || !ok2 || !ok3 || !ok4 || ts == 0 || bs == 0 {
		return 0, false
	}
	return ((te/ts - 1) - (be/bs - 1)) * 100, true
}

func closeOnOrAfter(bars []entity.Candle, t time.Time) (float64, bool) {
	t = t.UTC()
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	i := sort.Search(len(bars), func(i int) bool { return !bars[i].Time.Before(day) })
	if i == len(bars) {
		return 0, false
	}
	return bars[i].Close, true
}
