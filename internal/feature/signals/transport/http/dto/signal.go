// Package dto はsignalsフィーチャーのエンティティとHTTP表現の変換を提供します。
package dto

import (
	"imi_backend/internal/api"
	"imi_backend/internal/feature/signals/domain/entity"
	"imi_backend/internal/feature/signals/usecase"
)

// FromEntity はエンティティをレスポンス用の表現に変換します。
func FromEntity(e entity.Signal) api.Signal {
	return api.Signal{
		ID:                   e.ID,
		Ticker:               e.Ticker,
		Title:                e.Title,
		URL:                  e.URL,
		Source:               e.Source,
		Summary:              e.Summary,
		Drivers:              e.Drivers,
		P20:                  e.P20,
		P50:                  e.P50,
		P80:                  e.P80,
		Confidence:           e.Confidence,
		HorizonDays:          e.HorizonDays,
		CreatedDate:          e.CreatedDate,
		RealizedExcessReturn: e.RealizedExcessReturn,
		RealizedAt:           e.RealizedAt,
	}
}

// FromEntities はスライスをまとめて変換します。nilの場合も空スライスを返します。
func FromEntities(es []entity.Signal) []api.Signal {
	out := make([]api.Signal, 0, len(es))
	for _, e := range es {
		out = append(out, FromEntity(e))
	}
	return out
}

// ToEntity はリクエストボディをエンティティに変換します。
func ToEntity(s api.Signal) entity.Signal {
	return entity.Signal{
		ID:                   s.ID,
		Ticker:               s.Ticker,
		Title:                s.Title,
		URL:                  s.URL,
		Source:               s.Source,
		Summary:              s.Summary,
		Drivers:              s.Drivers,
		P20:                  s.P20,
		P50:                  s.P50,
		P80:                  s.P80,
		Confidence:           s.Confidence,
		HorizonDays:          s.HorizonDays,
		CreatedDate:          s.CreatedDate,
		RealizedExcessReturn: s.RealizedExcessReturn,
		RealizedAt:           s.RealizedAt,
	}
}

// FromScreenerResult はスクリーナー結果をレスポンスに変換します。
func FromScreenerResult(r usecase.ScreenerResult) api.ScreenerResponse {
	return api.ScreenerResponse{
		Count:     r.Count,
		AvgExcess: r.AvgExcess,
		StdExcess: r.StdExcess,
		Signals:   FromEntities(r.Signals),
	}
}
