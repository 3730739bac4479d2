package twelvedata

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"imi_backend/internal/feature/signals/domain/entity"
	"imi_backend/internal/feature/signals/usecase"
	"imi_backend/internal/platform/externalapi/twelvedata/dto"
)

// TwelveDataMarket はTwelve Data外部APIから株価データを取得するPriceRepository実装です。
type TwelveDataMarket struct {
	cfg    Config
	client *resty.Client
}

// TwelveDataMarketがPriceRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.PriceRepository = (*TwelveDataMarket)(nil)

// NewTwelveDataMarket は指定された設定とHTTPクライアントでTwelveDataMarketの新しいインスタンスを生成します。
// client のタイムアウトとTransportはそのまま使われます。
func NewTwelveDataMarket(cfg Config, client *http.Client) *TwelveDataMarket {
	rc := resty.NewWithClient(client).
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetHeader("Accept", "application/json")
	return &TwelveDataMarket{cfg: cfg, client: rc}
}

// GetTimeSeries はTwelve Data APIから時系列株価データを取得し、
// entity.Candleのスライスとして返します。APIの返却順（新しい順）を保ちます。
func (t *TwelveDataMarket) GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]entity.Candle, error) {
	var body dto.TimeSeriesResponse
	res, err := t.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":     symbol,
			"interval":   interval,
			"outputsize": strconv.Itoa(outputsize),
			"apikey":     t.cfg.TwelveDataAPIKey,
		}).
		SetResult(&body).
		Get("/time_series")
	if err != nil {
		return nil, err
	}
	if res.IsError() {
		return nil, fmt.Errorf("twelvedata http %d", res.StatusCode())
	}
	if body.Status == "error" {
		return nil, fmt.Errorf("twelvedata: %s", body.Message)
	}

	candles := make([]entity.Candle, 0, len(body.Values))
	for _, v := range body.Values {
		c, err := toCandle(symbol, v)
		if err != nil {
			return nil, err
		}
		candles = append(candles, c)
	}
	return candles, nil
}

func toCandle(symbol string, v dto.TimeSeriesValue) (entity.Candle, error) {
	// タイムスタンプをパース（日足は日付のみ、分足は時刻付き）
	tm, err := time.Parse("2006-01-02 15:04:05", v.Datetime)
	if err != nil {
		tm, err = time.Parse("2006-01-02", v.Datetime)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse time %q: %w", v.Datetime, err)
		}
	}
	o, err := strconv.ParseFloat(v.Open, 64)
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse open %q: %w", v.Open, err)
	}
	h, err := strconv.ParseFloat(v.High, 64)
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse high %q: %w", v.High, err)
	}
	l, err := strconv.ParseFloat(v.Low, 64)
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse low %q: %w", v.Low, err)
	}
	c, err := strconv.ParseFloat(v.Close, 64)
	if err != nil {
		return entity.Candle{}, fmt.Errorf("parse close %q: %w", v.Close, err)
	}
	// 指数などは出来高が返らないことがある
	var vol int64
	if v.Volume != "" {
		vol, err = strconv.ParseInt(v.Volume, 10, 64)
		if err != nil {
			return entity.Candle{}, fmt.Errorf("parse volume %q: %w", v.Volume, err)
		}
	}

	return entity.Candle{
		Symbol: symbol,
		Time:   tm,
		Open:   o,
		High:   h,
		Low:    l,
		Close:  c,
		Volume: vol,
	}, nil
}
