// Package entity はanalyzeフィーチャーのドメインモデルを定義します。
package entity

import "encoding/json"

// AnalysisRequest はニュース記事のインパクト分析リクエストを表します。
type AnalysisRequest struct {
	Title   string  // 見出し（空文字可）
	Content string  // 本文（空文字可）
	Ticker  *string // 対象銘柄（未指定の場合はnil）
}

// HasTicker は銘柄が指定されているかを返します。
func (r AnalysisRequest) HasTicker() bool {
	return r.Ticker != nil
}

// AnalysisResult はスコアリング結果のJSONです。
// 形式はスコアラー側が決めるため、このサービスでは解釈も変換もしません。
type AnalysisResult json.RawMessage
