package cache

import (
	"log/slog"
	"os"
	"time"
)

// DefaultTTL はシグナルキャッシュの既定の有効期間です。
const DefaultTTL = 5 * time.Minute

// TTLFromEnv は環境変数 key をtime.ParseDurationで解釈した有効期間を返します。
// 未設定または不正な値の場合は DefaultTTL を返します。
func TTLFromEnv(key string) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return DefaultTTL
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		slog.Warn("invalid cache ttl, using default", "key", key, "value", v, "default", DefaultTTL)
		return DefaultTTL
	}
	return d
}
