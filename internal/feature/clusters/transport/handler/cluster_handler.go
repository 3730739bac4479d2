package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"imi_backend/internal/api"
	"imi_backend/internal/feature/clusters/domain/entity"
	"imi_backend/internal/feature/clusters/transport/http/dto"
	"imi_backend/internal/feature/clusters/usecase"
	platformhttp "imi_backend/internal/platform/http"
)

// ClusterUsecase はクラスタのユースケースインターフェースを定義します。
type ClusterUsecase interface {
	ListClusters(ctx context.Context) ([]entity.Cluster, error)
	CreateCluster(ctx context.Context, name, description string, signalIDs []string) (*entity.Cluster, error)
	AddSignal(ctx context.Context, clusterID, signalID string) (*entity.Cluster, error)
}

// ClusterHandler はイベントクラスタのHTTPリクエストを処理します。
type ClusterHandler struct {
	uc ClusterUsecase
}

func NewClusterHandler(uc ClusterUsecase) *ClusterHandler {
	platformhttp.RegisterJSONTagNames()
	return &ClusterHandler{uc: uc}
}

// ListClusters は全クラスタを返します。
//
// エンドポイント: GET /api/clusters
func (h *ClusterHandler) ListClusters(c *gin.Context) {
	cs, err := h.uc.ListClusters(c.Request.Context())
	if err != nil {
		slog.Error("failed to list clusters", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusOK, dto.FromEntities(cs))
}

// CreateCluster はクラスタを作成します。
//
// エンドポイント: POST /api/clusters
func (h *ClusterHandler) CreateCluster(c *gin.Context) {
	var req api.ClusterRequest
	if err := platformhttp.BindJSON(c, &req); err != nil {
		slog.Warn("cluster validation failed", "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:   "invalid request",
			Details: platformhttp.FieldErrors(err),
		})
		return
	}

	cl, err := h.uc.CreateCluster(c.Request.Context(), req.Name, req.Description, req.SignalIDs)
	if err != nil {
		if errors.Is(err, usecase.ErrInvalidCluster) {
			c.JSON(http.StatusBadRequest, api.ErrorResponse{
				Error:   "invalid request",
				Details: []api.FieldError{{Field: "name", Message: "is required"}},
			})
			return
		}
		slog.Error("failed to create cluster", "error", err)
		c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		return
	}
	c.JSON(http.StatusCreated, dto.FromEntity(*cl))
}

// AddSignal はクラスタにシグナルを追加します。
//
// エンドポイント: POST /api/clusters/:id/signals
func (h *ClusterHandler) AddSignal(c *gin.Context) {
	id := c.Param("id")
	var req api.ClusterSignalRequest
	if err := platformhttp.BindJSON(c, &req); err != nil {
		slog.Warn("cluster signal validation failed", "cluster_id", id, "error", err)
		c.JSON(http.StatusBadRequest, api.ErrorResponse{
			Error:   "invalid request",
			Details: platformhttp.FieldErrors(err),
		})
		return
	}

	cl, err := h.uc.AddSignal(c.Request.Context(), id, req.SignalID)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrClusterNotFound):
			c.JSON(http.StatusNotFound, api.ErrorResponse{Error: "cluster not found"})
		case errors.Is(err, usecase.ErrMissingSignalID):
			c.JSON(http.StatusBadRequest, api.ErrorResponse{
				Error:   "invalid request",
				Details: []api.FieldError{{Field: "signal_id", Message: "is required"}},
			})
		default:
			slog.Error("failed to add signal to cluster", "cluster_id", id, "error", err)
			c.JSON(http.StatusInternalServerError, api.ErrorResponse{Error: "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, dto.FromEntity(*cl))
}
