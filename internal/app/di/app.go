package di

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"imi_backend/internal/app/router"
	"imi_backend/internal/app/seed"
	analyzehandler "imi_backend/internal/feature/analyze/transport/handler"
	analyzeusecase "imi_backend/internal/feature/analyze/usecase"
	clusteradapters "imi_backend/internal/feature/clusters/adapters"
	clusterhandler "imi_backend/internal/feature/clusters/transport/handler"
	clusterusecase "imi_backend/internal/feature/clusters/usecase"
	labadapters "imi_backend/internal/feature/lab/adapters"
	labhandler "imi_backend/internal/feature/lab/transport/handler"
	labusecase "imi_backend/internal/feature/lab/usecase"
	signaladapters "imi_backend/internal/feature/signals/adapters"
	signalhandler "imi_backend/internal/feature/signals/transport/handler"
	signalusecase "imi_backend/internal/feature/signals/usecase"
	themeadapters "imi_backend/internal/feature/themes/adapters"
	themehandler "imi_backend/internal/feature/themes/transport/handler"
	themeusecase "imi_backend/internal/feature/themes/usecase"
	"imi_backend/internal/platform/cache"
	healthhandler "imi_backend/internal/platform/http/handler"
)

// Models returns every gorm model the application persists, for migrations.
func Models() []any {
	return []any{
		&signaladapters.SignalModel{},
		&labadapters.AnalysisModel{},
		&labadapters.WatchlistModel{},
		&clusteradapters.ClusterModel{},
		&themeadapters.ThemeModel{},
	}
}

// NewSignalStore returns the gorm signal store wrapped in the Redis cache.
// A nil rdb yields a pass-through decorator.
func NewSignalStore(gdb *gorm.DB, rdb *redis.Client) *cache.CachingSignalRepository {
	return cache.NewCachingSignalRepository(rdb, cache.TTLFromEnv("SIGNAL_CACHE_TTL"), signaladapters.NewSignalRepository(gdb), "signals")
}

// NewSignalUsecase wires the signal feed over the cached store.
func NewSignalUsecase(gdb *gorm.DB, rdb *redis.Client) *signalusecase.SignalUsecase {
	return signalusecase.NewSignalUsecase(NewSignalStore(gdb, rdb))
}

// NewThemeUsecase wires themes with the given default set.
func NewThemeUsecase(gdb *gorm.DB, signals themeusecase.SignalLister, data *seed.Data) *themeusecase.ThemeUsecase {
	return themeusecase.NewThemeUsecase(themeadapters.NewThemeRepository(gdb), signals, data.Themes)
}

// NewRealizeUsecase wires the realization job to Twelve Data and the cached store,
// so realized signals invalidate cached reads.
func NewRealizeUsecase(gdb *gorm.DB, rdb *redis.Client) *signalusecase.RealizeUsecase {
	market, limiter := NewMarket()
	return signalusecase.NewRealizeUsecase(NewSignalStore(gdb, rdb), market, limiter, signalusecase.BenchmarkFromEnv())
}

// NewHandlers builds every HTTP handler of the API server.
func NewHandlers(ctx context.Context, gdb *gorm.DB, rdb *redis.Client, data *seed.Data) (router.Handlers, error) {
	scorer, err := NewScorer(ctx)
	if err != nil {
		return router.Handlers{}, fmt.Errorf("create scorer: %w", err)
	}

	signalUC := NewSignalUsecase(gdb, rdb)
	labUC := labusecase.NewLabUsecase(
		labadapters.NewAnalysisRepository(gdb),
		labadapters.NewWatchlistRepository(gdb),
		signalUC,
	)
	clusterUC := clusterusecase.NewClusterUsecase(clusteradapters.NewClusterRepository(gdb))
	themeUC := NewThemeUsecase(gdb, signalUC, data)

	checks := map[string]healthhandler.Check{
		"db": func(ctx context.Context) error {
			sqlDB, err := gdb.DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		},
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	return router.Handlers{
		Health:   healthhandler.NewHealthHandler(checks),
		Analyze:  analyzehandler.NewAnalyzeHandler(analyzeusecase.NewAnalyzeUsecase(scorer)),
		Signals:  signalhandler.NewSignalHandler(signalUC, data.Signals),
		Lab:      labhandler.NewLabHandler(labUC),
		Clusters: clusterhandler.NewClusterHandler(clusterUC),
		Themes:   themehandler.NewThemeHandler(themeUC),
	}, nil
}
