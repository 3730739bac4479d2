package remote

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"imi_backend/internal/feature/analyze/domain/entity"
	"imi_backend/internal/feature/analyze/usecase"
)

// scoreRequest は推論サービスに送るリクエストボディです。
type scoreRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Ticker  *string `json:"ticker"`
}

// RemoteScorer は外部推論サービスにリクエストを転送するScorer実装です。
type RemoteScorer struct {
	client *resty.Client
	url    string
}

// RemoteScorerがScorerを実装していることをコンパイル時に検証します。
var _ usecase.Scorer = (*RemoteScorer)(nil)

// NewRemoteScorer は指定された設定でRemoteScorerの新しいインスタンスを生成します。
// hc が nil の場合はrestyの既定クライアントを使います。
func NewRemoteScorer(cfg Config, hc *http.Client) *RemoteScorer {
	client := resty.New()
	if hc != nil {
		client = resty.NewWithClient(hc)
	}
	client.
		SetTimeout(cfg.Timeout).
		SetHeader("Accept", "application/json")
	if cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}
	return &RemoteScorer{client: client, url: cfg.URL}
}

// Score は見出し・本文・銘柄をJSONで送信し、レスポンスボディをそのまま返します。
func (r *RemoteScorer) Score(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error) {
	resp, err := r.client.R().
		SetContext(ctx).
		SetBody(scoreRequest{
			Title:   req.Title,
			Content: req.Content,
			Ticker:  req.Ticker,
		}).
		Post(r.url)
	if err != nil {
		return nil, fmt.Errorf("scorer request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("scorer http %d", resp.StatusCode())
	}
	return entity.AnalysisResult(resp.Body()), nil
}
