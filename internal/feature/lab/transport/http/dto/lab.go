// Package dto はlabフィーチャーのエンティティとHTTP表現の変換を提供します。
package dto

import (
	"imi_backend/internal/api"
	"imi_backend/internal/feature/lab/domain/entity"
	sigdto "imi_backend/internal/feature/signals/transport/http/dto"
)

// ToNewAnalysis はリクエストボディをユースケースの入力に変換します。
func ToNewAnalysis(req api.UserAnalysisRequest) entity.NewAnalysis {
	in := entity.NewAnalysis{
		SignalID:     req.SignalID,
		UserGuessP50: req.UserGuessP50,
		Notes:        req.Notes,
		Tags:         req.Tags,
	}
	if req.Signal != nil {
		s := sigdto.ToEntity(*req.Signal)
		in.Signal = &s
	}
	return in
}

// FromAnalysis はエンティティをレスポンスに変換します。
func FromAnalysis(a entity.UserAnalysis) api.UserAnalysis {
	tags := a.Tags
	if tags == nil {
		tags = []string{}
	}
	return api.UserAnalysis{
		ID:           a.ID,
		UserID:       a.UserID,
		SignalID:     a.SignalID,
		UserGuessP50: a.UserGuessP50,
		Notes:        a.Notes,
		Tags:         tags,
		CreatedAt:    a.CreatedAt,
	}
}

// FromAnalyses はスライスをまとめて変換します。
func FromAnalyses(as []entity.UserAnalysis) []api.UserAnalysis {
	out := make([]api.UserAnalysis, 0, len(as))
	for _, a := range as {
		out = append(out, FromAnalysis(a))
	}
	return out
}

// FromStats は集計結果をレスポンスに変換します。
func FromStats(s entity.UserStats) api.UserStatsResponse {
	return api.UserStatsResponse{Count: s.Count, ModelMAE: s.ModelMAE, UserMAE: s.UserMAE}
}

// ToWatchlist はリクエストボディをエンティティに変換します。
func ToWatchlist(req api.WatchlistRequest) entity.Watchlist {
	return entity.Watchlist{ID: req.ID, Name: req.Name, Tickers: req.Tickers}
}

// FromWatchlist はエンティティをレスポンスに変換します。
func FromWatchlist(w entity.Watchlist) api.Watchlist {
	tickers := w.Tickers
	if tickers == nil {
		tickers = []string{}
	}
	return api.Watchlist{
		ID:        w.ID,
		UserID:    w.UserID,
		Name:      w.Name,
		Tickers:   tickers,
		CreatedAt: w.CreatedAt,
	}
}

// FromWatchlists はスライスをまとめて変換します。
func FromWatchlists(ws []entity.Watchlist) []api.Watchlist {
	out := make([]api.Watchlist, 0, len(ws))
	for _, w := range ws {
		out = append(out, FromWatchlist(w))
	}
	return out
}
