package usecase

import (
	"context"
	"math"
	"strings"
	"time"

	"imi_backend/internal/feature/signals/domain/entity"
)

// Direction restricts the screener to signals whose median forecast points one way.
type Direction string

const (
	DirectionAny  Direction = ""
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

// ParseDirection converts a query value into a Direction. "all" and "any" mean no restriction.
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "all", "any":
		return DirectionAny, nil
	case "up":
		return DirectionUp, nil
	case "down":
		return DirectionDown, nil
	default:
		return DirectionAny, ErrInvalidDirection
	}
}

// ScreenerQuery holds the screener filters. Nil pointers and empty slices disable a filter.
type ScreenerQuery struct {
	Tickers       []string
	Direction     Direction
	MinConfidence *float64
	StartDate     *time.Time // inclusive
	EndDate       *time.Time // exclusive
}

// ScreenerResult summarizes the realized excess returns of the matched signals.
type ScreenerResult struct {
	Count     int
	AvgExcess *float64
	StdExcess *float64
	Signals   []entity.Signal
}

// Screen backtests the query against every stored signal.
func (u *SignalUsecase) Screen(ctx context.Context, q ScreenerQuery) (*ScreenerResult, error) {
	all, err := u.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	res := Screen(all, q)
	return &res, nil
}

// Screen filters signals by q and computes the mean and population standard deviation
// of their realized excess returns. Only realized signals can match.
func Screen(signals []entity.Signal, q ScreenerQuery) ScreenerResult {
	var tickerSet map[string]struct{}
	if len(q.Tickers) > 0 {
		tickerSet = make(map[string]struct{}, len(q.Tickers))
		for _, t := range q.Tickers {
			tickerSet[strings.ToUpper(strings.TrimSpace(t))] = struct{}{}
		}
	}

	filtered := make([]entity.Signal, 0)
	for _, s := range signals {
		if tickerSet != nil {
			if _, ok := tickerSet[strings.ToUpper(s.Ticker)]; !ok {
				continue
			}
		}
		if q.MinConfidence != nil && s.Confidence < *q.MinConfidence {
			continue
		}
		if q.Direction == DirectionUp && !(s.P50 > 0) {
			continue
		}
		if q.Direction == DirectionDown && !(s.P50 < 0) {
			continue
		}
		if q.StartDate != nil && s.CreatedDate.Before(*q.StartDate) {
			continue
		}
		if q.EndDate != nil && !s.CreatedDate.Before(*q.EndDate) {
			continue
		}
		if !s.IsRealized() {
			continue
		}
		filtered = append(filtered, s)
	}

	var n int
	var sum, sumSq float64
	for _, s := range filtered {
		r := *s.RealizedExcessReturn
		if math.IsNaN(r) || math.IsInf(r, 0) {
			continue
		}
		n++
		sum += r
		sumSq += r * r
	}

	res := ScreenerResult{Count: n, Signals: filtered}
	if n == 0 {
		return res
	}
	avg := sum / float64(n)
	res.AvgExcess = &avg
	variance := sumSq/float64(n) - avg*avg
	if variance < 0 && variance > -1e-9 {
		variance = 0
	}
	if variance >= 0 {
		std := math.Sqrt(variance)
		res.StdExcess = &std
	}
	return res
}
