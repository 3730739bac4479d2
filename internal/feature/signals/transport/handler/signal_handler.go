// Package handler はsignalsフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/oapi-codegen/runtime"
	openapi_types "github.com/oapi-codegen/runtime/types"

	"imi_backend/internal/api"
	"imi_backend/internal/feature/signals/domain/entity"
	"imi_backend/internal/feature/signals/transport/http/dto"
	"imi_backend/internal/feature/signals/usecase"
	platformhttp "imi_backend/internal/platform/http"
)

// SignalUsecase はシグナル操作のユースケースインターフェースを定義します。
// Goの慣例に従い、インターフェースは利用者（handler）側で定義します。
type SignalUsecase interface {
	ListSignals(ctx context.Context) ([]entity.Signal, error)
	GetSignal(ctx context.Context, id string) (*entity.Signal, error)
	UpsertSignal(ctx context.Context, s entity.Signal) (*entity.Signal, error)
	SeedSignals(ctx context.Context, seed []entity.Signal) ([]entity.Signal, error)
	Screen(ctx context.Context, q usecase.ScreenerQuery) (*usecase.ScreenerResult, error)
}

// SignalHandler はシグナルとスクリーナーのHTTPリクエストを処理します。
type SignalHandler struct {
	uc   SignalUsecase
	seed []entity.Signal
}

// NewSignalHandler はSignalHandlerの新しいインスタンスを生成します。
// seed は POST /api/signals/seed で投入される初期データです。
func NewSignalHandler(uc SignalUsecase, seed []entity.Signal) *SignalHandler {
	platformhttp.RegisterJSONTagNames()
	return &SignalHandler{uc: uc, seed: seed}
}

// ListSignals は全シグナルを新しい順に返します。
//
// エンドポイント: GET /api/signals
func (h *SignalHandler) ListSignals(c *gin.Context) {
	signals, err := h.uc.ListSignals(c.Request.Context())
	if err != nil {
		slog.Error("failed to list signals", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntities(signals))
}

// GetSignal はIDで指定されたシグナルを返します。
//
// エンドポイント: GET /api/signals/:id
func (h *SignalHandler) GetSignal(c *gin.Context) {
	s, err := h.uc.GetSignal(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrSignalNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "signal not found"})
			return
		}
		slog.Error("failed to get signal", "id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(*s))
}

// UpsertSignal はシグナルを作成または置き換えます。
//
// エンドポイント: POST /api/signals
// - id が無い場合は生成される
// - 既存の id の場合はボディの内容で置き換える
func (h *SignalHandler) UpsertSignal(c *gin.Context) {
	var req api.Signal
	if err := platformhttp.BindJSON(c, &req); err != nil {
		slog.Warn("signal validation failed", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:   "invalid request",
			Details: platformhttp.FieldErrors(err),
		})
		return
	}

	saved, err := h.uc.UpsertSignal(c.Request.Context(), dto.ToEntity(req))
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidSignal) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: err.Error()})
			return
		}
		slog.Error("failed to upsert signal", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(*saved))
}

// SeedSignals はストアが空の場合のみ初期データを投入し、保存済みのシグナルを返します。
//
// エンドポイント: POST /api/signals/seed
func (h *SignalHandler) SeedSignals(c *gin.Context) {
	signals, err := h.uc.SeedSignals(c.Request.Context(), h.seed)
	if err != nil {
		if errors.Is(err, usecase.ErrDuplicateSignal) {
			c.JSON(http.StatusConflict, api.ErrorResponse{Error: "seed conflicts with existing signals"})
			return
		}
		slog.Error("failed to seed signals", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntities(signals))
}

// Screen は条件に一致する実現済みシグナルとその超過リターンの統計を返します。
//
// エンドポイント例:
// GET /api/screener?tickers=AAPL,TSLA&direction=up&min_confidence=60&start_date=2025-01-01&end_date=2025-12-31
func (h *SignalHandler) Screen(c *gin.Context) {
	q, details := bindScreenerQuery(c)
	if len(details) > 0 {
		c.JSON(http.StatusBadRequest, api.ErrorResponse{Error: "invalid request", Details: details})
		return
	}

	res, err := h.uc.Screen(c.Request.Context(), q)
	if err != nil {
		slog.Error("failed to run screener", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.FromScreenerResult(*res))
}

// bindScreenerQuery はクエリパラメータをScreenerQueryに変換します。
// tickers はカンマ区切り、日付は YYYY-MM-DD 形式です。
func bindScreenerQuery(c *gin.Context) (usecase.ScreenerQuery, []api.FieldError) {
	var (
		q             usecase.ScreenerQuery
		details       []api.FieldError
		tickers       *[]string
		direction     *string
		minConfidence *float64
		startDate     *openapi_types.Date
		endDate       *openapi_types.Date
	)
	query := c.Request.URL.Query()

	bind := func(name string, explode bool, dest any) {
		if err := runtime.BindQueryParameter("form", explode, false, name, query, dest); err != nil {
			details = append(details, api.FieldError{Field: name, Message: "invalid value"})
		}
	}
	bind("tickers", false, &tickers)
	bind("direction", true, &direction)
	bind("min_confidence", true, &minConfidence)
	bind("start_date", true, &startDate)
	bind("end_date", true, &endDate)

	if direction != nil {
		d, err := usecase.ParseDirection(*direction)
		if err != nil {
			details = append(details, api.FieldError{Field: "direction", Message: "must be up, down or any"})
		}
		q.Direction = d
	}

	if tickers != nil {
		for _, t := range *tickers {
			if t = strings.TrimSpace(t); t != "" {
				q.Tickers = append(q.Tickers, t)
			}
		}
	}
	q.MinConfidence = minConfidence
	q.StartDate = dateToTime(startDate)
	q.EndDate = dateToTime(endDate)
	return q, details
}

func dateToTime(d *openapi_types.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
	return &t
}
