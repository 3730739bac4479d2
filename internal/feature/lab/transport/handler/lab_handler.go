// Package handler はlabフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"imi_backend/internal/api"
	"imi_backend/internal/feature/lab/domain/entity"
	"imi_backend/internal/feature/lab/transport/http/dto"
	"imi_backend/internal/feature/lab/usecase"
	sigentity "imi_backend/internal/feature/signals/domain/entity"
	sigdto "imi_backend/internal/feature/signals/transport/http/dto"
	sigusecase "imi_backend/internal/feature/signals/usecase"
	platformhttp "imi_backend/internal/platform/http"
)

// LabUsecase はIMI Labのユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type LabUsecase interface {
	ListAnalyses(ctx context.Context, userID string) ([]entity.UserAnalysis, error)
	AddAnalysis(ctx context.Context, userID string, in entity.NewAnalysis) (*entity.UserAnalysis, error)
	Stats(ctx context.Context, userID string) (*entity.UserStats, error)
	ListWatchlists(ctx context.Context, userID string) ([]entity.Watchlist, error)
	SaveWatchlist(ctx context.Context, userID string, w entity.Watchlist) (*entity.Watchlist, error)
	Alerts(ctx context.Context, userID string) ([]sigentity.Signal, error)
}

// LabHandler はIMI LabのHTTPリクエストを処理します。
// ユーザーは X-User-ID ヘッダーで識別されます（認証は行いません）。
type LabHandler struct {
	uc LabUsecase
}

// NewLabHandler はLabHandlerの新しいインスタンスを生成します。
func NewLabHandler(uc LabUsecase) *LabHandler {
	platformhttp.RegisterJSONTagNames()
	return &LabHandler{uc: uc}
}

// ListAnalyses はユーザーの分析記録を新しい順に返します。
//
// エンドポイント: GET /api/lab/analyses
func (h *LabHandler) ListAnalyses(c *gin.Context) {
	userID := platformhttp.UserID(c)
	as, err := h.uc.ListAnalyses(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "failed to list analyses", userID, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromAnalyses(as))
}

// AddAnalysis は分析記録を追加します。
//
// エンドポイント: POST /api/lab/analyses
func (h *LabHandler) AddAnalysis(c *gin.Context) {
	userID := platformhttp.UserID(c)
	var req api.UserAnalysisRequest
	if err := platformhttp.BindJSON(c, &req); err != nil {
		slog.Warn("analysis validation failed", "error", err, "user_id", userID)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:   "invalid request",
			Details: platformhttp.FieldErrors(err),
		})
		return
	}

	a, err := h.uc.AddAnalysis(c.Request.Context(), userID, dto.ToNewAnalysis(req))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrMissingSignal):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{
				Error:   "invalid request",
				Details: []api.FieldError{{Field: "signal_id", Message: "is required"}},
			})
		case errors.Is(err, sigusecase.ErrInvalidSignal):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		default:
			internalError(c, "failed to add analysis", userID, err)
		}
		return
	}
	c.JSON(http.StatusCreated, dto.FromAnalysis(*a))
}

// Stats はユーザー予測とモデル予測の誤差比較を返します。
//
// エンドポイント: GET /api/lab/stats
func (h *LabHandler) Stats(c *gin.Context) {
	userID := platformhttp.UserID(c)
	s, err := h.uc.Stats(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "failed to compute stats", userID, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromStats(*s))
}

// ListWatchlists はユーザーのウォッチリストを返します。
//
// エンドポイント: GET /api/lab/watchlists
func (h *LabHandler) ListWatchlists(c *gin.Context) {
	userID := platformhttp.UserID(c)
	ws, err := h.uc.ListWatchlists(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "failed to list watchlists", userID, err)
		return
	}
	c.JSON(http.StatusOK, dto.FromWatchlists(ws))
}

// SaveWatchlist はウォッチリストを作成または置き換えます。
//
// エンドポイント: POST /api/lab/watchlists
func (h *LabHandler) SaveWatchlist(c *gin.Context) {
	userID := platformhttp.UserID(c)
	var req api.WatchlistRequest
	if err := platformhttp.BindJSON(c, &req); err != nil {
		slog.Warn("watchlist validation failed", "error", err, "user_id", userID)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:   "invalid request",
			Details: platformhttp.FieldErrors(err),
		})
		return
	}

	w, err := h.uc.SaveWatchlist(c.Request.Context(), userID, dto.ToWatchlist(req))
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidWatchlist):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
		case errors.Is(err, usecase.ErrWatchlistNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "watchlist not found"})
		default:
			internalError(c, "failed to save watchlist", userID, err)
		}
		return
	}
	c.JSON(http.StatusOK, dto.FromWatchlist(*w))
}

// Alerts はウォッチリスト銘柄の高信頼度シグナルを返します。
//
// エンドポイント: GET /api/lab/alerts
func (h *LabHandler) Alerts(c *gin.Context) {
	userID := platformhttp.UserID(c)
	signals, err := h.uc.Alerts(c.Request.Context(), userID)
	if err != nil {
		internalError(c, "failed to build alerts", userID, err)
		return
	}
	c.JSON(http.StatusOK, sigdto.FromEntities(signals))
}

func internalError(c *gin.Context, msg, userID string, err error) {
	slog.Error(msg, "user_id", userID, "error", err)
	c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
}
