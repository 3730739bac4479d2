// Package api はHTTP APIのリクエスト/レスポンス型を定義します。
package api

import "time"

// ErrorResponse はエラー時の共通レスポンスボディです。
type ErrorResponse struct {
	Error   string       `json:"error"`
	Details []FieldError `json:"details,omitempty"`
}

// FieldError はバリデーションに失敗したフィールドを表します。
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// AnalyzeRequest は POST /api/analyze のリクエストボディです。
// title と content は必須ですが空文字は許容するため、nullと欠落を区別できるようポインタで受けます。
type AnalyzeRequest struct {
	Title   *string `json:"title" binding:"required"`
	Content *string `json:"content" binding:"required"`
	Ticker  *string `json:"ticker"`
}

// Signal はIMIシグナルのJSON表現です。
type Signal struct {
	ID                   string     `json:"id"`
	Ticker               string     `json:"ticker" binding:"required"`
	Title                string     `json:"title"`
	URL                  string     `json:"url"`
	Source               string     `json:"source"`
	Summary              string     `json:"summary"`
	Drivers              string     `json:"drivers"`
	P20                  float64    `json:"p20"`
	P50                  float64    `json:"p50"`
	P80                  float64    `json:"p80"`
	Confidence           float64    `json:"confidence"`
	HorizonDays          int        `json:"horizon_days"`
	CreatedDate          time.Time  `json:"created_date"`
	RealizedExcessReturn *float64   `json:"realized_excess_return"`
	RealizedAt           *time.Time `json:"realized_at"`
}

// ScreenerResponse はスクリーナーの集計結果です。
type ScreenerResponse struct {
	Count     int      `json:"count"`
	AvgExcess *float64 `json:"avg_excess"`
	StdExcess *float64 `json:"std_excess"`
	Signals   []Signal `json:"signals"`
}

// UserAnalysisRequest は POST /api/lab/analyses のリクエストボディです。
type UserAnalysisRequest struct {
	Signal       *Signal  `json:"signal"`
	SignalID     string   `json:"signal_id"`
	UserGuessP50 *float64 `json:"user_guess_p50"`
	Notes        string   `json:"notes"`
	Tags         []string `json:"tags"`
}

// UserAnalysis はIMI Labでの分析記録です。
type UserAnalysis struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	SignalID     string    `json:"signal_id"`
	UserGuessP50 *float64  `json:"user_guess_p50"`
	Notes        string    `json:"notes"`
	Tags         []string  `json:"tags"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStatsResponse はユーザー予測とモデル予測の誤差比較です。
type UserStatsResponse struct {
	Count    int      `json:"count"`
	ModelMAE *float64 `json:"model_mae"`
	UserMAE  *float64 `json:"user_mae"`
}

// WatchlistRequest は POST /api/lab/watchlists のリクエストボディです。
type WatchlistRequest struct {
	ID      string   `json:"id"`
	Name    string   `json:"name" binding:"required"`
	Tickers []string `json:"tickers"`
}

// Watchlist はユーザーのウォッチリストです。
type Watchlist struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Name      string    `json:"name"`
	Tickers   []string  `json:"tickers"`
	CreatedAt time.Time `json:"created_at"`
}

// ClusterRequest は POST /api/clusters のリクエストボディです。
type ClusterRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	SignalIDs   []string `json:"signal_ids"`
}

// ClusterSignalRequest は POST /api/clusters/:id/signals のリクエストボディです。
type ClusterSignalRequest struct {
	SignalID string `json:"signal_id" binding:"required"`
}

// Cluster は手動でまとめたイベント群です。
type Cluster struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	SignalIDs   []string  `json:"signal_ids"`
	CreatedAt   time.Time `json:"created_at"`
}

// Theme は銘柄テーマです。
type Theme struct {
	ID          string   `json:"id"`
	Slug        string   `json:"slug"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tickers     []string `json:"tickers"`
}
