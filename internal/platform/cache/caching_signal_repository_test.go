package cache

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"

	"imi_backend/internal/feature/signals/domain/entity"
	"imi_backend/internal/feature/signals/usecase"
)

// mockSignalStore はテスト用のSignalStoreモック実装です。
type mockSignalStore struct {
	listFn       func(ctx context.Context) ([]entity.Signal, error)
	findFn       func(ctx context.Context, id string) (*entity.Signal, error)
	upsertFn     func(ctx context.Context, s *entity.Signal) error
	batchFn      func(ctx context.Context, signals []entity.Signal) error
	markFn       func(ctx context.Context, id string, excess float64, at time.Time) error
	listCalls    int
	findCalls    int
	countCalls   int
	pendingCalls int
}

func (m *mockSignalStore) List(ctx context.Context) ([]entity.Signal, error) {
	m.listCalls++
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}

func (m *mockSignalStore) FindByID(ctx context.Context, id string) (*entity.Signal, error) {
	m.findCalls++
	if m.findFn != nil {
		return m.findFn(ctx, id)
	}
	return nil, usecase.ErrSignalNotFound
}

func (m *mockSignalStore) Upsert(ctx context.Context, s *entity.Signal) error {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, s)
	}
	return nil
}

func (m *mockSignalStore) CreateBatch(ctx context.Context, signals []entity.Signal) error {
	if m.batchFn != nil {
		return m.batchFn(ctx, signals)
	}
	return nil
}

func (m *mockSignalStore) Count(ctx context.Context) (int64, error) {
	m.countCalls++
	return 0, nil
}

func (m *mockSignalStore) ListUnrealized(ctx context.Context) ([]entity.Signal, error) {
	m.pendingCalls++
	return nil, nil
}

func (m *mockSignalStore) MarkRealized(ctx context.Context, id string, excess float64, at time.Time) error {
	if m.markFn != nil {
		return m.markFn(ctx, id, excess, at)
	}
	return nil
}

var testSignals = []entity.Signal{
	{ID: "1", Ticker: "AAPL", P50: 1.2, HorizonDays: 10, CreatedDate: time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)},
}

// TestNewCachingSignalRepository_Defaults はデフォルト値（TTLとnamespace）が正しく設定されることを検証します。
func TestNewCachingSignalRepository_Defaults(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name              string
		ttl               time.Duration
		namespace         string
		expectedTTL       time.Duration
		expectedNamespace string
	}{
		{"default values when zero/empty", 0, "", 5 * time.Minute, "signals"},
		{"negative ttl uses default", -1 * time.Minute, "", 5 * time.Minute, "signals"},
		{"custom values preserved", 10 * time.Minute, "custom", 10 * time.Minute, "custom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			repo := NewCachingSignalRepository(nil, tt.ttl, &mockSignalStore{}, tt.namespace)

			if repo.ttl != tt.expectedTTL {
				t.Errorf("expected TTL %v, got %v", tt.expectedTTL, repo.ttl)
			}
			if repo.namespace != tt.expectedNamespace {
				t.Errorf("expected namespace %q, got %q", tt.expectedNamespace, repo.namespace)
			}
		})
	}
}

// TestCachingSignalRepository_NilRedis はRedisがnilの場合に常に内部リポジトリを呼び出すことを検証します。
func TestCachingSignalRepository_NilRedis(t *testing.T) {
	t.Parallel()

	inner := &mockSignalStore{
		listFn: func(ctx context.Context) ([]entity.Signal, error) { return testSignals, nil },
		findFn: func(ctx context.Context, id string) (*entity.Signal, error) { return &testSignals[0], nil },
	}
	repo := NewCachingSignalRepository(nil, 0, inner, "")
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		if _, err := repo.List(ctx); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if _, err := repo.FindByID(ctx, "1"); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := repo.Upsert(ctx, &entity.Signal{ID: "1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.CreateBatch(ctx, testSignals); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.listCalls != 2 || inner.findCalls != 2 {
		t.Errorf("expected 2 list and 2 find calls, got %d and %d", inner.listCalls, inner.findCalls)
	}
}

// TestCachingSignalRepository_List_CacheHit はキャッシュヒット時に内部リポジトリを呼ばないことを検証します。
func TestCachingSignalRepository_List_CacheHit(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	cachedJSON, _ := json.Marshal(testSignals)
	mock.ExpectGet("signals:all").SetVal(string(cachedJSON))

	inner := &mockSignalStore{}
	repo := NewCachingSignalRepository(rdb, 5*time.Minute, inner, "signals")

	got, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.listCalls != 0 {
		t.Error("inner repository should not be called on cache hit")
	}
	if len(got) != 1 || got[0].Ticker != "AAPL" {
		t.Errorf("unexpected signals: %+v", got)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSignalRepository_List_CacheMiss はキャッシュミス時にDBから取得し、キャッシュに保存することを検証します。
func TestCachingSignalRepository_List_CacheMiss(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(testSignals)
	mock.ExpectGet("signals:all").RedisNil()
	mock.ExpectSet("signals:all", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockSignalStore{
		listFn: func(ctx context.Context) ([]entity.Signal, error) { return testSignals, nil },
	}
	repo := NewCachingSignalRepository(rdb, 5*time.Minute, inner, "signals")

	if _, err := repo.List(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.listCalls != 1 {
		t.Errorf("expected 1 inner call, got %d", inner.listCalls)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSignalRepository_FindByID_CorruptedCache は破損したキャッシュを削除してDBにフォールバックすることを検証します。
func TestCachingSignalRepository_FindByID_CorruptedCache(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedJSON, _ := json.Marshal(&testSignals[0])
	mock.ExpectGet("signals:id:1").SetVal("invalid json")
	mock.ExpectDel("signals:id:1").SetVal(1)
	mock.ExpectSet("signals:id:1", expectedJSON, 5*time.Minute).SetVal("OK")

	inner := &mockSignalStore{
		findFn: func(ctx context.Context, id string) (*entity.Signal, error) { return &testSignals[0], nil },
	}
	repo := NewCachingSignalRepository(rdb, 5*time.Minute, inner, "signals")

	got, err := repo.FindByID(context.Background(), "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "1" {
		t.Errorf("expected signal 1, got %q", got.ID)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSignalRepository_FindByID_NotFoundIsNotCached は存在しないIDをキャッシュしないことを検証します。
func TestCachingSignalRepository_FindByID_NotFoundIsNotCached(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectGet("signals:id:missing").RedisNil()

	repo := NewCachingSignalRepository(rdb, 5*time.Minute, &mockSignalStore{}, "signals")

	_, err := repo.FindByID(context.Background(), "missing")
	if !errors.Is(err, usecase.ErrSignalNotFound) {
		t.Errorf("expected ErrSignalNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSignalRepository_Upsert_Invalidates は書き込み後にフィードと個別キーが削除されることを検証します。
func TestCachingSignalRepository_Upsert_Invalidates(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectDel("signals:all", "signals:id:sig_1").SetVal(2)

	repo := NewCachingSignalRepository(rdb, 5*time.Minute, &mockSignalStore{}, "signals")
	if err := repo.Upsert(context.Background(), &entity.Signal{ID: "sig_1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSignalRepository_Upsert_InnerError は内部エラー時にキャッシュを触らないことを検証します。
func TestCachingSignalRepository_Upsert_InnerError(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	expectedErr := errors.New("upsert error")
	inner := &mockSignalStore{
		upsertFn: func(ctx context.Context, s *entity.Signal) error { return expectedErr },
	}
	repo := NewCachingSignalRepository(rdb, 5*time.Minute, inner, "signals")

	err := repo.Upsert(context.Background(), &entity.Signal{ID: "1"})
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected error %v, got %v", expectedErr, err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSignalRepository_CreateBatch_Invalidation はバッチ投入後にnamespace全体が削除されることを検証します。
func TestCachingSignalRepository_CreateBatch_Invalidation(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectScan(0, "signals:*", 200).SetVal([]string{"signals:all", "signals:id:1"}, 0)
	mock.ExpectDel("signals:all", "signals:id:1").SetVal(2)

	repo := NewCachingSignalRepository(rdb, 5*time.Minute, &mockSignalStore{}, "signals")
	if err := repo.CreateBatch(context.Background(), testSignals); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSignalRepository_MarkRealized_Invalidates は実現リターン記録後にキャッシュが削除されることを検証します。
func TestCachingSignalRepository_MarkRealized_Invalidates(t *testing.T) {
	t.Parallel()

	rdb, mock := redismock.NewClientMock()
	defer func() { _ = rdb.Close() }()

	mock.ExpectDel("signals:all", "signals:id:1").SetVal(1)

	repo := NewCachingSignalRepository(rdb, 5*time.Minute, &mockSignalStore{}, "signals")
	if err := repo.MarkRealized(context.Background(), "1", 2.5, time.Now()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled mock expectations: %v", err)
	}
}

// TestCachingSignalRepository_RoundTrip は実際のRedisプロトコル上で読み込み・無効化が一貫することを検証します。
func TestCachingSignalRepository_RoundTrip(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	stored := map[string]entity.Signal{"1": testSignals[0]}
	inner := &mockSignalStore{
		listFn: func(ctx context.Context) ([]entity.Signal, error) {
			out := make([]entity.Signal, 0, len(stored))
			for _, s := range stored {
				out = append(out, s)
			}
			return out, nil
		},
		findFn: func(ctx context.Context, id string) (*entity.Signal, error) {
			s, ok := stored[id]
			if !ok {
				return nil, usecase.ErrSignalNotFound
			}
			return &s, nil
		},
		upsertFn: func(ctx context.Context, s *entity.Signal) error {
			stored[s.ID] = *s
			return nil
		},
	}
	repo := NewCachingSignalRepository(rdb, time.Minute, inner, "signals")
	ctx := context.Background()

	first, err := repo.FindByID(ctx, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := repo.FindByID(ctx, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.findCalls != 1 {
		t.Errorf("expected 1 inner find call, got %d", inner.findCalls)
	}
	if !first.CreatedDate.Equal(second.CreatedDate) || first.P50 != second.P50 {
		t.Errorf("cached signal differs: %+v vs %+v", first, second)
	}
	if ttl := mr.TTL("signals:id:1"); ttl != time.Minute {
		t.Errorf("expected TTL 1m, got %v", ttl)
	}

	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !mr.Exists("signals:all") {
		t.Error("expected feed to be cached")
	}

	updated := testSignals[0]
	updated.P50 = -3
	if err := repo.Upsert(ctx, &updated); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mr.Exists("signals:all") || mr.Exists("signals:id:1") {
		t.Error("expected cache to be invalidated after upsert")
	}

	got, err := repo.FindByID(ctx, "1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.P50 != -3 {
		t.Errorf("expected fresh value after invalidation, got %v", got.P50)
	}
}

// TestKeySegment はキーに埋め込むIDのエンコードが区切り文字やグロブ文字を残さないことを検証します。
func TestKeySegment(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"sig_1", "sig_1"},
		{"BRK A", "BRK+A"},
		{"key:value", "key%3Avalue"},
		{"a*", "a%2A"},
		{"a+b", "a%2Bb"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			if result := keySegment(tt.input); result != tt.expected {
				t.Errorf("keySegment(%q) = %q, expected %q", tt.input, result, tt.expected)
			}
		})
	}
}

// TestCachingSignalRepository_FindByID_DistinctIDsDoNotShareKeys は
// 似た形のIDが同じキャッシュエントリを共有しないことを検証します。
func TestCachingSignalRepository_FindByID_DistinctIDsDoNotShareKeys(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = rdb.Close() }()

	ids := []string{"a b", "a_b", "a:b", "a+b", "a%20b"}
	stored := make(map[string]entity.Signal, len(ids))
	for i, id := range ids {
		stored[id] = entity.Signal{ID: id, Ticker: "T" + string(rune('A'+i)), HorizonDays: 10}
	}
	inner := &mockSignalStore{
		findFn: func(ctx context.Context, id string) (*entity.Signal, error) {
			s, ok := stored[id]
			if !ok {
				return nil, usecase.ErrSignalNotFound
			}
			return &s, nil
		},
	}
	repo := NewCachingSignalRepository(rdb, time.Minute, inner, "signals")
	ctx := context.Background()

	// 1巡目で全件キャッシュし、2巡目はキャッシュから読む
	for round := 0; round < 2; round++ {
		for _, id := range ids {
			got, err := repo.FindByID(ctx, id)
			if err != nil {
				t.Fatalf("FindByID(%q): unexpected error: %v", id, err)
			}
			if got.ID != id || got.Ticker != stored[id].Ticker {
				t.Errorf("FindByID(%q) returned %q (%s)", id, got.ID, got.Ticker)
			}
		}
	}
	if inner.findCalls != len(ids) {
		t.Errorf("expected %d inner find calls, got %d", len(ids), inner.findCalls)
	}
	if n := len(mr.Keys()); n != len(ids) {
		t.Errorf("expected %d cache keys, got %d: %v", len(ids), n, mr.Keys())
	}
}
