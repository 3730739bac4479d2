// Package remote は外部のモデル推論サービスをHTTP経由で呼び出すスコアラーを提供します。
package remote

import (
	"os"
	"time"
)

const defaultTimeout = 15 * time.Second

// Config はリモートスコアラーの設定を保持します。
type Config struct {
	URL     string        // 推論エンドポイントのURL（例: "http://imi-model:8000/predict"）
	APIKey  string        // Bearerトークン（任意）
	Timeout time.Duration // リクエスト全体のタイムアウト
}

// LoadConfig は環境変数からリモートスコアラーの設定を読み込みます。
func LoadConfig() Config {
	timeout := defaultTimeout
	if v := os.Getenv("SCORER_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			timeout = d
		}
	}
	return Config{
		URL:     os.Getenv("SCORER_URL"),
		APIKey:  os.Getenv("SCORER_API_KEY"),
		Timeout: timeout,
	}
}
