// Package gemini はGoogle Gemini APIを使用したニュースインパクトのスコアラーを提供します。
package gemini

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"

	"imi_backend/internal/feature/analyze/domain/entity"
	"imi_backend/internal/feature/analyze/usecase"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"

	// promptTemplate はインパクト予測のプロンプトです。%s には銘柄・見出し・本文が入ります。
	promptTemplate = `You estimate the short-term market impact of a news article.
Ticker: %s
Headline: %s
Body:
%s

Respond with a single JSON object with the keys
"ticker" (string or null), "horizon_days" (integer),
"median_excess_pct", "p20_excess_pct", "p80_excess_pct" (numbers, percent excess return over the horizon)
and "confidence" (number between 0 and 1).`
)

// ErrEmptyResponse はGeminiが空のテキストを返した場合に返されます。
var ErrEmptyResponse = errors.New("gemini returned an empty response")

// GeminiScorer はGoogle Gemini APIを使用してインパクト予測を生成します。
type GeminiScorer struct {
	client *genai.Client
	model  string
}

// GeminiScorerがScorerを実装していることをコンパイル時に検証します。
var _ usecase.Scorer = (*GeminiScorer)(nil)

// NewGeminiScorer はADCを使用してGeminiScorerの新しいインスタンスを生成します。
// 環境変数 GOOGLE_GENAI_USE_VERTEXAI, GOOGLE_CLOUD_PROJECT, GOOGLE_CLOUD_LOCATION
// もしくは GEMINI_API_KEY が必要です。GEMINI_MODEL でモデルを上書きできます。
func NewGeminiScorer(ctx context.Context) (*GeminiScorer, error) {
	client, err := genai.NewClient(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return NewGeminiScorerWithClient(client, os.Getenv("GEMINI_MODEL")), nil
}

// NewGeminiScorerWithClient は作成済みのクライアントを使います。model が空なら DefaultModel です。
func NewGeminiScorerWithClient(client *genai.Client, model string) *GeminiScorer {
	if model == "" {
		model = DefaultModel
	}
	return &GeminiScorer{client: client, model: model}
}

// Score はJSONモードでGeminiを呼び出し、生成されたJSONを返します。
func (g *GeminiScorer) Score(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error) {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(buildPrompt(req)), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini API request failed: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, ErrEmptyResponse
	}
	return entity.AnalysisResult(text), nil
}

// buildPrompt はリクエストからプロンプトを組み立てます。
func buildPrompt(req entity.AnalysisRequest) string {
	ticker := "none"
	if req.Ticker != nil {
		ticker = *req.Ticker
	}
	return fmt.Sprintf(promptTemplate, ticker, req.Title, req.Content)
}
