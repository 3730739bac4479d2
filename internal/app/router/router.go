// Package router はHTTPルーティングを定義します。
package router

import (
	"os"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	analyzehandler "imi_backend/internal/feature/analyze/transport/handler"
	clusterhandler "imi_backend/internal/feature/clusters/transport/handler"
	labhandler "imi_backend/internal/feature/lab/transport/handler"
	signalhandler "imi_backend/internal/feature/signals/transport/handler"
	themehandler "imi_backend/internal/feature/themes/transport/handler"
	platformhttp "imi_backend/internal/platform/http"
	healthhandler "imi_backend/internal/platform/http/handler"
)

// Handlers はルーターに登録するハンドラー群です。
type Handlers struct {
	Health   *healthhandler.HealthHandler
	Analyze  *analyzehandler.AnalyzeHandler
	Signals  *signalhandler.SignalHandler
	Lab      *labhandler.LabHandler
	Clusters *clusterhandler.ClusterHandler
	Themes   *themehandler.ThemeHandler
}

// AllowedOriginsFromEnv はカンマ区切りの CORS_ALLOWED_ORIGINS を読み込みます。
// 未設定の場合はすべてのオリジンを許可します。
func AllowedOriginsFromEnv() []string {
	var out []string
	for _, o := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		if o = strings.TrimSpace(o); o != "" {
			out = append(out, o)
		}
	}
	return out
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	cfg.AllowHeaders = append(cfg.AllowHeaders, platformhttp.HeaderUserID)
	return cfg
}

func NewRouter(h Handlers, logger *zap.Logger, allowedOrigins []string) *gin.Engine {
	r := gin.New()
	r.Use(ginzap.Ginzap(logger, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(logger, true))
	r.Use(cors.New(corsConfig(allowedOrigins)))

	// 導通確認用
	r.GET("/healthz", h.Health.Health)
	r.HEAD("/healthz", h.Health.Health)
	r.OPTIONS("/healthz", h.Health.Health)
	r.GET("/readyz", h.Health.Ready)

	api := r.Group("/api")
	{
		api.POST("/analyze", h.Analyze.Analyze)

		api.GET("/signals", h.Signals.ListSignals)
		api.POST("/signals", h.Signals.UpsertSignal)
		api.POST("/signals/seed", h.Signals.SeedSignals)
		api.GET("/signals/:id", h.Signals.GetSignal)
		api.GET("/screener", h.Signals.Screen)

		// X-User-ID で識別されるユーザー単位のデータ
		lab := api.Group("/lab")
		lab.GET("/analyses", h.Lab.ListAnalyses)
		lab.POST("/analyses", h.Lab.AddAnalysis)
		lab.GET("/stats", h.Lab.Stats)
		lab.GET("/watchlists", h.Lab.ListWatchlists)
		lab.POST("/watchlists", h.Lab.SaveWatchlist)
		lab.GET("/alerts", h.Lab.Alerts)

		api.GET("/clusters", h.Clusters.ListClusters)
		api.POST("/clusters", h.Clusters.CreateCluster)
		api.POST("/clusters/:id/signals", h.Clusters.AddSignal)

		api.GET("/themes", h.Themes.ListThemes)
		api.GET("/themes/:slug", h.Themes.GetTheme)
		api.GET("/themes/:slug/signals", h.Themes.ThemeSignals)
	}

	return r
}
