package handler_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"imi_backend/internal/api"
	"imi_backend/internal/feature/analyze/domain/entity"
	"imi_backend/internal/feature/analyze/transport/handler"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockAnalyzeUsecase はAnalyzeUsecaseインターフェースのモック実装です。
type mockAnalyzeUsecase struct {
	AnalyzeFunc func(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error)
	Calls       []entity.AnalysisRequest
}

func (m *mockAnalyzeUsecase) Analyze(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error) {
	m.Calls = append(m.Calls, req)
	return m.AnalyzeFunc(ctx, req)
}

func newRouter(uc handler.AnalyzeUsecase) *gin.Engine {
	h := handler.NewAnalyzeHandler(uc)
	r := gin.New()
	r.POST("/api/analyze", h.Analyze)
	return r
}

func doAnalyze(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestAnalyzeHandler_Analyze_Success(t *testing.T) {
	collaboratorResult := `{"ticker":"ACME","horizon_days":10,"median_excess_pct":1.2,"p20_excess_pct":-0.8,"p80_excess_pct":3.4,"confidence":0.72}`

	tests := []struct {
		name       string
		body       string
		wantTitle  string
		wantBody   string
		wantTicker *string
	}{
		{
			name:       "all three fields",
			body:       `{"title":"Acme beats earnings","content":"Acme Corp reported EPS of $1.20 vs $1.00 expected.","ticker":"ACME"}`,
			wantTitle:  "Acme beats earnings",
			wantBody:   "Acme Corp reported EPS of $1.20 vs $1.00 expected.",
			wantTicker: func() *string { s := "ACME"; return &s }(),
		},
		{
			name:      "ticker omitted",
			body:      `{"title":"Fed holds rates","content":"No change."}`,
			wantTitle: "Fed holds rates",
			wantBody:  "No change.",
		},
		{
			name:      "ticker null",
			body:      `{"title":"Fed holds rates","content":"No change.","ticker":null}`,
			wantTitle: "Fed holds rates",
			wantBody:  "No change.",
		},
		{
			name: "empty strings are schema-valid",
			body: `{"title":"","content":""}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockAnalyzeUsecase{
				AnalyzeFunc: func(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error) {
					return entity.AnalysisResult(collaboratorResult), nil
				},
			}

			w := doAnalyze(newRouter(uc), tt.body)

			assert.Equal(t, http.StatusOK, w.Code)
			assert.Equal(t, collaboratorResult, w.Body.String(), "result must be passed through byte for byte")
			assert.Contains(t, w.Header().Get("Content-Type"), "application/json")

			require.Len(t, uc.Calls, 1)
			got := uc.Calls[0]
			assert.Equal(t, tt.wantTitle, got.Title)
			assert.Equal(t, tt.wantBody, got.Content)
			assert.Equal(t, tt.wantTicker, got.Ticker)
		})
	}
}

func TestAnalyzeHandler_Analyze_ValidationError(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantField string
	}{
		{"missing title", `{"content":"missing title field"}`, "title"},
		{"missing content", `{"title":"only a title"}`, "content"},
		{"null title", `{"title":null,"content":"x"}`, "title"},
		{"title is a number", `{"title":42,"content":"x"}`, "title"},
		{"ticker is an object", `{"title":"t","content":"c","ticker":{"a":1}}`, "ticker"},
		{"malformed json", `{"title":`, "body"},
		{"empty body", ``, "body"},
		{"whitespace body", "  \n", "body"},
		{"trailing garbage after object", `{"title":"a","content":"b"} garbage`, "body"},
		{"two objects", `{"title":"a","content":"b"}{"title":"c","content":"d"}`, "body"},
		{"array body", `[1]`, "body"},
		{"string body", `"x"`, "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockAnalyzeUsecase{
				AnalyzeFunc: func(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error) {
					t.Fatal("scorer must not be invoked on validation failure")
					return nil, nil
				},
			}

			w := doAnalyze(newRouter(uc), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, uc.Calls)

			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, "invalid request", resp.Error)
			require.NotEmpty(t, resp.Details)
			assert.Equal(t, tt.wantField, resp.Details[0].Field)
			assert.NotContains(t, resp.Details[0].Message, "api.")
		})
	}
}

func TestAnalyzeHandler_Analyze_ValidationMessages(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{"trailing garbage", `{"title":"a","content":"b"} garbage`, "malformed JSON"},
		{"array body", `[1]`, "must be a JSON object"},
		{"string body", `"x"`, "must be a JSON object"},
		{"title is a number", `{"title":42,"content":"x"}`, "must be a string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			uc := &mockAnalyzeUsecase{}

			w := doAnalyze(newRouter(uc), tt.body)

			assert.Equal(t, http.StatusBadRequest, w.Code)
			assert.Empty(t, uc.Calls)
			var resp api.ErrorResponse
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			require.Len(t, resp.Details, 1)
			assert.Equal(t, tt.wantMessage, resp.Details[0].Message)
		})
	}
}

func TestAnalyzeHandler_Analyze_ScorerError(t *testing.T) {
	uc := &mockAnalyzeUsecase{
		AnalyzeFunc: func(ctx context.Context, req entity.AnalysisRequest) (entity.AnalysisResult, error) {
			return nil, errors.New("model service unavailable")
		},
	}

	w := doAnalyze(newRouter(uc), `{"title":"t","content":"c"}`)

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"scoring failed"}`, w.Body.String())
	assert.Len(t, uc.Calls, 1)
}
