package adapters

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"imi_backend/internal/feature/clusters/domain/entity"
	"imi_backend/internal/feature/clusters/usecase"
)

type clusterGorm struct {
	db *gorm.DB
}

var _ usecase.ClusterRepository = (*clusterGorm)(nil)

func NewClusterRepository(db *gorm.DB) *clusterGorm {
	return &clusterGorm{db: db}
}

type ClusterModel struct {
	ID          string    `gorm:"primaryKey;size:64"`
	Name        string    `gorm:"not null"`
	Description string    `gorm:"type:text;not null"`
	SignalIDs   []string  `gorm:"serializer:json"`
	CreatedAt   time.Time `gorm:"not null;autoCreateTime:false"`
}

func (ClusterModel) TableName() string {
	return "clusters"
}

func toEntity(m ClusterModel) entity.Cluster {
	ids := m.SignalIDs
	if ids == nil {
		ids = []string{}
	}
	return entity.Cluster{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		SignalIDs:   ids,
		CreatedAt:   m.CreatedAt.UTC(),
	}
}

func (r *clusterGorm) List(ctx context.Context) ([]entity.Cluster, error) {
	var rows []ClusterModel
	if err := r.db.WithContext(ctx).
		Order("created_at").
		Order("id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]entity.Cluster, 0, len(rows))
	for _, m := range rows {
		out = append(out, toEntity(m))
	}
	return out, nil
}

func (r *clusterGorm) FindByID(ctx context.Context, id string) (*entity.Cluster, error) {
	var m ClusterModel
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrClusterNotFound
		}
		return nil, err
	}
	c := toEntity(m)
	return &c, nil
}

// Save は同じIDの行があれば全カラムを置き換えます。
func (r *clusterGorm) Save(ctx context.Context, c *entity.Cluster) error {
	m := ClusterModel{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		SignalIDs:   c.SignalIDs,
		CreatedAt:   c.CreatedAt,
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&m).Error
}

// Update は行をロックして読み込み、fn が変更を報告した場合だけ signal_ids を書き戻します。
// 読み込みから書き込みまでを1トランザクションで行うため、同時の追加が失われません。
func (r *clusterGorm) Update(ctx context.Context, id string, fn func(c *entity.Cluster) bool) (*entity.Cluster, error) {
	var out entity.Cluster
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m ClusterModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", id).
			First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return usecase.ErrClusterNotFound
			}
			return err
		}

		out = toEntity(m)
		if !fn(&out) {
			return nil
		}
		m.SignalIDs = out.SignalIDs
		return tx.Model(&m).Select("signal_ids").Updates(&m).Error
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
