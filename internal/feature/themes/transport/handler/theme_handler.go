package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"imi_backend/internal/api"
	"imi_backend/internal/feature/themes/domain/entity"
	"imi_backend/internal/feature/themes/transport/http/dto"
	"imi_backend/internal/feature/themes/usecase"
	sigentity "imi_backend/internal/feature/signals/domain/entity"
	sigdto "imi_backend/internal/feature/signals/transport/http/dto"
)

// ThemeUsecase はテーマのユースケースインターフェースを定義します。
type ThemeUsecase interface {
	ListThemes(ctx context.Context) ([]entity.Theme, error)
	GetTheme(ctx context.Context, slug string) (*entity.Theme, error)
	ThemeSignals(ctx context.Context, slug string) ([]sigentity.Signal, error)
}

// ThemeHandler はテーマ関連のHTTPリクエストを処理します。
type ThemeHandler struct {
	uc ThemeUsecase
}

func NewThemeHandler(uc ThemeUsecase) *ThemeHandler {
	return &ThemeHandler{uc: uc}
}

// ListThemes は全テーマを返します。
//
// エンドポイント: GET /api/themes
func (h *ThemeHandler) ListThemes(c *gin.Context) {
	ts, err := h.uc.ListThemes(c.Request.Context())
	if err != nil {
		slog.Error("failed to list themes", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntities(ts))
}

// GetTheme はスラッグで指定されたテーマを返します。
//
// エンドポイント: GET /api/themes/:slug
func (h *ThemeHandler) GetTheme(c *gin.Context) {
	slug := c.Param("slug")
	t, err := h.uc.GetTheme(c.Request.Context(), slug)
	if err != nil {
		if errors.Is(err, usecase.ErrThemeNotFound) {
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "theme not found"})
			return
		}
		slog.Error("failed to get theme", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(*t))
}

// ThemeSignals はテーマに属する銘柄のシグナルを返します。
//
// エンドポイント: GET /api/themes/:slug/signals
func (h *ThemeHandler) ThemeSignals(c *gin.Context) {
	slug := c.Param("slug")
	signals, err := h.uc.ThemeSignals(c.Request.Context(), slug)
	if err != nil {
		slog.Error("failed to list theme signals", "slug", slug, "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, sigdto.FromEntities(signals))
}
