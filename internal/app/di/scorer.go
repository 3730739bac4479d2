package di

import (
	"context"
	"fmt"
	"os"
	"strings"

	"imi_backend/internal/feature/analyze/adapters/gemini"
	"imi_backend/internal/feature/analyze/adapters/remote"
	"imi_backend/internal/feature/analyze/usecase"
	infrahttp "imi_backend/internal/platform/http"
)

const (
	ScorerRemote = "remote"
	ScorerGemini = "gemini"
)

// NewScorer selects the scoring collaborator from SCORER_BACKEND (default "remote").
func NewScorer(ctx context.Context) (usecase.Scorer, error) {
	backend := strings.ToLower(strings.TrimSpace(os.Getenv("SCORER_BACKEND")))
	switch backend {
	case "", ScorerRemote:
		cfg := remote.LoadConfig()
		if cfg.URL == "" {
			return nil, fmt.Errorf("SCORER_URL is required for the %s scorer", ScorerRemote)
		}
		return remote.NewRemoteScorer(cfg, infrahttp.NewHTTPClient(cfg.Timeout)), nil
	case ScorerGemini:
		return gemini.NewGeminiScorer(ctx)
	default:
		return nil, fmt.Errorf("unsupported SCORER_BACKEND %q", backend)
	}
}
