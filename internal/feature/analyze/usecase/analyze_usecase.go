// Package usecase はanalyzeフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"imi_backend/internal/feature/analyze/domain/entity"
)

var (
	// ErrScoringFailed はスコアラーの呼び出しが失敗した場合に返されます。
	ErrScoringFailed = errors.New("scoring failed")

	// ErrInvalidResult はスコアラーがJSONでない結果を返した場合に返されます。
	ErrInvalidResult = errors.New("scorer returned a non-JSON result")
)

// Scorer はニュース記事の市場インパクトを予測する外部コラボレーターです。
// Goの慣例に従い、インターフェースは利用者（usecase）側で定義します。
type Scorer interface {
	// Score は見出し・本文・銘柄（任意）から予測結果のJSONを返します。
	Score(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error)
}

// analyzeUsecase はリクエストをスコアラーに委譲します。
type analyzeUsecase struct {
	scorer Scorer
}

// NewAnalyzeUsecase はanalyzeUsecaseの新しいインスタンスを生成します。
func NewAnalyzeUsecase(s Scorer) *analyzeUsecase {
	return &analyzeUsecase{scorer: s}
}

// Analyze はスコアラーを一度だけ呼び出し、その結果を変更せずに返します。
func (u *analyzeUsecase) Analyze(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error) {
	res, err := u.scorer.Score(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScoringFailed, err)
	}
	if !json.Valid(res) {
		return nil, fmt.Errorf("%w: %w", ErrScoringFailed, ErrInvalidResult)
	}
	return res, nil
}
