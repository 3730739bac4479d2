// Package dto はclustersフィーチャーのエンティティとHTTP表現の変換を提供します。
package dto

import (
	"imi_backend/internal/api"
	"imi_backend/internal/feature/clusters/domain/entity"
)

// FromEntity はエンティティをレスポンスに変換します。
func FromEntity(c entity.Cluster) api.Cluster {
	ids := c.SignalIDs
	if ids == nil {
		ids = []string{}
	}
	return api.Cluster{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		SignalIDs:   ids,
		CreatedAt:   c.CreatedAt,
	}
}

// FromEntities はスライスをまとめて変換します。
func FromEntities(cs []entity.Cluster) []api.Cluster {
	out := make([]api.Cluster, 0, len(cs))
	for _, c := range cs {
		out = append(out, FromEntity(c))
	}
	return out
}
