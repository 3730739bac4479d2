package entity

import "time"

// Candle is one daily OHLCV bar used to measure realized returns.
type Candle struct {
	Symbol string
	Time   time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume int64
}
