// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"imi_backend/internal/platform/externalapi/twelvedata"
	infrahttp "imi_backend/internal/platform/http"
	"imi_backend/internal/shared/ratelimiter"
)

// NewMarket creates a fully configured TwelveDataMarket with HTTP client,
// together with a rate limiter sized to the plan's per-minute quota.
func NewMarket() (*twelvedata.TwelveDataMarket, *ratelimiter.RateLimiter) {
	cfg := twelvedata.LoadConfig()
	httpClient := infrahttp.NewHTTPClient(cfg.Timeout)
	return twelvedata.NewTwelveDataMarket(cfg, httpClient), ratelimiter.NewRateLimiter(cfg.CallsPerMinute, time.Minute)
}
