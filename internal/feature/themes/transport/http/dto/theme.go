// Package dto はthemesフィーチャーのエンティティとHTTP表現の変換を提供します。
package dto

import (
	"imi_backend/internal/api"
	"imi_backend/internal/feature/themes/domain/entity"
)

func FromEntity(t entity.Theme) api.Theme {
	tickers := t.Tickers
	if tickers == nil {
		tickers = []string{}
	}
	return api.Theme{
		ID:          t.ID,
		Slug:        t.Slug,
		Name:        t.Name,
		Description: t.Description,
		Tickers:     tickers,
	}
}

func FromEntities(ts []entity.Theme) []api.Theme {
	out := make([]api.Theme, 0, len(ts))
	for _, t := range ts {
		out = append(out, FromEntity(t))
	}
	return out
}
