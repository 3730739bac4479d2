// Package seed はテーマとシグナルの初期データを読み込みます。
// デフォルトデータはバイナリに埋め込まれ、YAMLファイルで差し替えられます。
package seed

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	sigentity "imi_backend/internal/feature/signals/domain/entity"
	themeentity "imi_backend/internal/feature/themes/domain/entity"
)

//go:embed seed.yaml
var defaultYAML []byte

const dateLayout = "2006-01-02"

// Data は初期投入するテーマとシグナルです。
type Data struct {
	Themes  []themeentity.Theme
	Signals []sigentity.Signal
}

type file struct {
	Themes  []themeRecord  `yaml:"themes"`
	Signals []signalRecord `yaml:"signals"`
}

type themeRecord struct {
	ID          string   `yaml:"id"`
	Slug        string   `yaml:"slug"`
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Tickers     []string `yaml:"tickers"`
}

type signalRecord struct {
	ID          string  `yaml:"id"`
	Ticker      string  `yaml:"ticker"`
	Title       string  `yaml:"title"`
	URL         string  `yaml:"url"`
	Source      string  `yaml:"source"`
	Summary     string  `yaml:"summary"`
	Drivers     string  `yaml:"drivers"`
	P20         float64 `yaml:"p20"`
	P50         float64 `yaml:"p50"`
	P80         float64 `yaml:"p80"`
	Confidence  float64 `yaml:"confidence"`
	HorizonDays int     `yaml:"horizon_days"`
	// CreatedDate は YYYY-MM-DD または RFC3339 で記述します。
	CreatedDate string `yaml:"created_date"`
}

// Default は埋め込みの初期データを返します。
func Default() (*Data, error) {
	return Parse(defaultYAML)
}

// MustDefault は埋め込みデータが壊れている場合 panic します。
func MustDefault() *Data {
	d, err := Default()
	if err != nil {
		panic(err)
	}
	return d
}

// Load は path が空なら埋め込みデータを、そうでなければファイルを読み込みます。
func Load(path string) (*Data, error) {
	if path == "" {
		return Default()
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(b)
}

// Parse はYAMLを初期データに変換します。
func Parse(b []byte) (*Data, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse seed yaml: %w", err)
	}

	d := &Data{
		Themes:  make([]themeentity.Theme, 0, len(f.Themes)),
		Signals: make([]sigentity.Signal, 0, len(f.Signals)),
	}
	slugs := make(map[string]struct{}, len(f.Themes))
	for i, t := range f.Themes {
		slug := strings.TrimSpace(t.Slug)
		if slug == "" {
			return nil, fmt.Errorf("theme %d: slug is required", i)
		}
		if _, dup := slugs[slug]; dup {
			return nil, fmt.Errorf("theme %d: duplicate slug %q", i, slug)
		}
		slugs[slug] = struct{}{}

		tickers := make([]string, 0, len(t.Tickers))
		for _, x := range t.Tickers {
			tickers = append(tickers, strings.ToUpper(strings.TrimSpace(x)))
		}
		d.Themes = append(d.Themes, themeentity.Theme{
			ID:          t.ID,
			Slug:        slug,
			Name:        t.Name,
			Description: t.Description,
			Tickers:     tickers,
		})
	}

	for i, s := range f.Signals {
		if strings.TrimSpace(s.Ticker) == "" {
			return nil, fmt.Errorf("signal %d: ticker is required", i)
		}
		created, err := parseDate(s.CreatedDate)
		if err != nil {
			return nil, fmt.Errorf("signal %d: %w", i, err)
		}
		d.Signals = append(d.Signals, sigentity.Signal{
			ID:          s.ID,
			Ticker:      s.Ticker,
			Title:       s.Title,
			URL:         s.URL,
			Source:      s.Source,
			Summary:     s.Summary,
			Drivers:     s.Drivers,
			P20:         s.P20,
			P50:         s.P50,
			P80:         s.P80,
			Confidence:  s.Confidence,
			HorizonDays: s.HorizonDays,
			CreatedDate: created,
		})
	}
	return d, nil
}

func parseDate(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(dateLayout, v); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid created_date %q", v)
	}
	return t.UTC(), nil
}
