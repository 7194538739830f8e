package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"souq/internal/domain/catalog"
	"souq/internal/i18n"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testClient returns a Redis client on DB 15. Skips if Redis is unavailable.
func testClient(t *testing.T) *redis.Client {
	t.Helper()

	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client, err := Connect(addr, os.Getenv("TEST_REDIS_PASSWORD"), 15)
	if err != nil {
		t.Skipf("skipping integration test: redis not reachable: %v", err)
	}
	t.Cleanup(func() {
		client.Del(context.Background(), categoriesKey)
		client.Close()
	})
	return client
}

func TestNilCategoriesIsAlwaysMiss(t *testing.T) {
	var c *Categories
	ctx := context.Background()

	c.Set(ctx, []catalog.Category{{ID: 1}})
	c.Invalidate(ctx)
	_, ok := c.Get(ctx)
	assert.False(t, ok)

	assert.Nil(t, NewCategories(nil, time.Minute, zap.NewNop().Sugar()))
}

func TestCategoriesRoundTrip(t *testing.T) {
	c := NewCategories(testClient(t), time.Minute, zap.NewNop().Sugar())
	ctx := context.Background()
	c.Invalidate(ctx)

	_, ok := c.Get(ctx)
	require.False(t, ok)

	want := []catalog.Category{{
		ID:            1,
		Name:          i18n.Text{En: "Home", Ar: "المنزل"},
		SubCategories: []catalog.SubCategory{{ID: 2, CategoryID: 1, Name: i18n.Text{En: "Kitchen", Ar: "مطبخ"}}},
	}}
	c.Set(ctx, want)

	got, ok := c.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, want[0].Name, got[0].Name)
	assert.Equal(t, "مطبخ", got[0].SubCategories[0].Name.Ar)

	c.Invalidate(ctx)
	_, ok = c.Get(ctx)
	assert.False(t, ok)
}
