package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"imi_backend/internal/feature/clusters/domain/entity"
)

// ClusterRepository はクラスタの永続化を抽象化します。
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type ClusterRepository interface {
	// List は作成順に返します。
	List(ctx context.Context) ([]entity.Cluster, error)
	// FindByID は存在しない場合 ErrClusterNotFound を返します。
	FindByID(ctx context.Context, id string) (*entity.Cluster, error)
	Save(ctx context.Context, c *entity.Cluster) error
	// Update は id のクラスタに fn をアトミックに適用します。fn が false を返した場合は書き込みません。
	Update(ctx context.Context, id string, fn func(c *entity.Cluster) bool) (*entity.Cluster, error)
}

// ClusterUsecase はイベントクラスタのユースケースを提供します。
type ClusterUsecase struct {
	repo  ClusterRepository
	newID func() string
	now   func() time.Time
}

// NewClusterUsecase は新しい ClusterUsecase を作成します。
func NewClusterUsecase(repo ClusterRepository) *ClusterUsecase {
	return &ClusterUsecase{
		repo:  repo,
		newID: func() string { return "clu_" + uuid.NewString() },
		now:   time.Now,
	}
}

// ListClusters は全クラスタを返します。
func (u *ClusterUsecase) ListClusters(ctx context.Context) ([]entity.Cluster, error) {
	return u.repo.List(ctx)
}

// CreateCluster は新しいクラスタを作成します。
// 初期シグナルIDは重複を除いて順序を保ちます。
func (u *ClusterUsecase) CreateCluster(ctx context.Context, name, description string, signalIDs []string) (*entity.Cluster, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrInvalidCluster
	}

	c := &entity.Cluster{
		ID:          u.newID(),
		Name:        name,
		Description: description,
		SignalIDs:   []string{},
		CreatedAt:   u.now().UTC(),
	}
	for _, id := range signalIDs {
		if id = strings.TrimSpace(id); id != "" {
			c.AddSignal(id)
		}
	}

	if err := u.repo.Save(ctx, c); err != nil {
		return nil, fmt.Errorf("create cluster: %w", err)
	}
	return c, nil
}

// AddSignal はクラスタにシグナルを追加します。既に含まれている場合は何もしません。
func (u *ClusterUsecase) AddSignal(ctx context.Context, clusterID, signalID string) (*entity.Cluster, error) {
	signalID = strings.TrimSpace(signalID)
	if signalID == "" {
		return nil, ErrMissingSignalID
	}

	c, err := u.repo.Update(ctx, clusterID, func(c *entity.Cluster) bool {
		return c.AddSignal(signalID)
	})
	if err != nil {
		if errors.Is(err, ErrClusterNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("add signal to cluster %s: %w", clusterID, err)
	}
	return c, nil
}
