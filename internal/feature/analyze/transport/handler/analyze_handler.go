// Package handler はanalyzeフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"imi_backend/internal/api"
	"imi_backend/internal/feature/analyze/domain/entity"
	platformhttp "imi_backend/internal/platform/http"
)

// AnalyzeUsecase はニュース分析のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type AnalyzeUsecase interface {
	Analyze(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error)
}

// AnalyzeHandler はニュース分析のHTTPリクエストを処理します。
type AnalyzeHandler struct {
	uc AnalyzeUsecase
}

// NewAnalyzeHandler はAnalyzeHandlerの新しいインスタンスを生成します。
func NewAnalyzeHandler(uc AnalyzeUsecase) *AnalyzeHandler {
	platformhttp.RegisterJSONTagNames()
	return &AnalyzeHandler{uc: uc}
}

// Analyze はニュースの見出し・本文・銘柄を受け取り、スコアラーの結果をそのまま返します。
//
// エンドポイント: POST /api/analyze
// Content-Type: application/json
// - title, content が欠落またはnullの場合は400を返却（スコアラーは呼び出さない）
// - スコアラーが失敗した場合は502を返却
// - 成功時はスコアラーのJSONを変更せずに200で返却
func (h *AnalyzeHandler) Analyze(c *gin.Context) {
	var req api.AnalyzeRequest
	if err := platformhttp.BindJSON(c, &req); err != nil {
		slog.Warn("analyze validation failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:   "invalid request",
			Details: platformhttp.FieldErrors(err),
		})
		return
	}

	in := entity.AnalysisRequest{
		Title:   *req.Title,
		Content: *req.Content,
		Ticker:  req.Ticker,
	}

	res, err := h.uc.Analyze(c.Request.Context(), in)
	if err != nil {
		slog.Error("analyze failed", "error", err, "has_ticker", in.HasTicker())
		c.JSON(http.StatusBadGateway, api.ErrorResponse{Error: "scoring failed"})
		return
	}

	c.Data(http.StatusOK, "application/json; charset=utf-8", res)
}
