package adapters

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"imi_backend/internal/feature/clusters/domain/entity"
	"imi_backend/internal/feature/clusters/usecase"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to initialize test database")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&ClusterModel{}), "failed to migrate clusters table")
	return db
}

func TestClusterGorm_SaveFindList(t *testing.T) {
	ctx := context.Background()
	repo := NewClusterRepository(setupTestDB(t))

	t1 := time.Date(2025, 12, 1, 1, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	require.NoError(t, repo.Save(ctx, &entity.Cluster{ID: "clu_b", Name: "B", SignalIDs: []string{}, CreatedAt: t2}))
	require.NoError(t, repo.Save(ctx, &entity.Cluster{ID: "clu_a", Name: "A", Description: "first", SignalIDs: []string{"1"}, CreatedAt: t1}))

	got, err := repo.FindByID(ctx, "clu_a")
	require.NoError(t, err)
	assert.Equal(t, "first", got.Description)
	assert.Equal(t, []string{"1"}, got.SignalIDs)
	assert.True(t, t1.Equal(got.CreatedAt))

	got.AddSignal("2")
	require.NoError(t, repo.Save(ctx, got))

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "clu_a", all[0].ID)
	assert.Equal(t, []string{"1", "2"}, all[0].SignalIDs)
	assert.True(t, t1.Equal(all[0].CreatedAt), "created_at must survive replace")
	assert.Equal(t, "clu_b", all[1].ID)
	assert.Equal(t, []string{}, all[1].SignalIDs)
}

func TestClusterGorm_FindByID_NotFound(t *testing.T) {
	repo := NewClusterRepository(setupTestDB(t))

	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, usecase.ErrClusterNotFound)
}

func TestClusterGorm_Update(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 12, 1, 1, 0, 0, 0, time.UTC)

	tests := []struct {
		name        string
		id          string
		add         string
		expectedIDs []string
		expectedErr error
	}{
		{name: "appends new signal", id: "clu_a", add: "2", expectedIDs: []string{"1", "2"}},
		{name: "existing signal is a no-op", id: "clu_a", add: "1", expectedIDs: []string{"1"}},
		{name: "unknown cluster", id: "clu_missing", add: "2", expectedErr: usecase.ErrClusterNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := NewClusterRepository(setupTestDB(t))
			require.NoError(t, repo.Save(ctx, &entity.Cluster{ID: "clu_a", Name: "A", Description: "d", SignalIDs: []string{"1"}, CreatedAt: created}))

			got, err := repo.Update(ctx, tt.id, func(c *entity.Cluster) bool { return c.AddSignal(tt.add) })

			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedIDs, got.SignalIDs)

			stored, err := repo.FindByID(ctx, tt.id)
			require.NoError(t, err)
			assert.Equal(t, tt.expectedIDs, stored.SignalIDs)
			assert.Equal(t, "A", stored.Name)
			assert.Equal(t, "d", stored.Description)
			assert.True(t, created.Equal(stored.CreatedAt))
		})
	}
}

func TestClusterGorm_Update_ConcurrentAppendsAreKept(t *testing.T) {
	ctx := context.Background()
	repo := NewClusterRepository(setupTestDB(t))
	require.NoError(t, repo.Save(ctx, &entity.Cluster{ID: "clu_a", Name: "A", SignalIDs: []string{}, CreatedAt: time.Now().UTC()}))

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := repo.Update(ctx, "clu_a", func(c *entity.Cluster) bool { return c.AddSignal(id) })
			errs <- err
		}(fmt.Sprintf("sig_%02d", i))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	got, err := repo.FindByID(ctx, "clu_a")
	require.NoError(t, err)
	want := make([]string, 0, n)
	for i := 0; i < n; i++ {
		want = append(want, fmt.Sprintf("sig_%02d", i))
	}
	assert.ElementsMatch(t, want, got.SignalIDs)
}
