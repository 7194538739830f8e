package ads

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func ptr[T any](v T) *T { return &v }

func TestActiveAt(t *testing.T) {
	tests := []struct {
		name string
		ad   Advertisement
		want bool
	}{
		{"open window", Advertisement{IsActive: true}, true},
		{"inactive", Advertisement{IsActive: false}, false},
		{"started", Advertisement{IsActive: true, StartDate: ptr(now.Add(-time.Hour))}, true},
		{"start equals now", Advertisement{IsActive: true, StartDate: ptr(now)}, true},
		{"future start", Advertisement{IsActive: true, StartDate: ptr(now.Add(time.Second))}, false},
		{"end equals now", Advertisement{IsActive: true, EndDate: ptr(now)}, true},
		{"ended", Advertisement{IsActive: true, EndDate: ptr(now.Add(-time.Second))}, false},
		{"inside window", Advertisement{IsActive: true, StartDate: ptr(now.Add(-time.Hour)), EndDate: ptr(now.Add(time.Hour))}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ad.ActiveAt(now))
		})
	}

	var nilAd *Advertisement
	assert.False(t, nilAd.ActiveAt(now))
}

func TestPrefer(t *testing.T) {
	base := Advertisement{ID: 1, DisplayOrder: 2, CreatedAt: now}

	lower := base
	lower.ID, lower.DisplayOrder = 2, 1
	assert.True(t, Prefer(&lower, &base))
	assert.False(t, Prefer(&base, &lower))

	newer := base
	newer.ID, newer.CreatedAt = 3, now.Add(time.Minute)
	assert.True(t, Prefer(&newer, &base))

	higherID := base
	higherID.ID = 9
	assert.True(t, Prefer(&higherID, &base))
	assert.False(t, Prefer(&base, &higherID))
}

func TestIndexPicksOnePerProductRegardlessOfOrder(t *testing.T) {
	a := Advertisement{ID: 10, IsActive: true, ProductID: ptr(int64(7)), DisplayOrder: 3, CreatedAt: now}
	b := Advertisement{ID: 11, IsActive: true, ProductID: ptr(int64(7)), DisplayOrder: 1, CreatedAt: now.Add(-time.Hour)}

	for _, list := range [][]Advertisement{{a, b}, {b, a}} {
		idx := Index(list, now)
		require.Len(t, idx, 1)
		require.Contains(t, idx, int64(7))
		assert.Equal(t, int64(11), idx[7].ID)
	}
}

func TestIndexSkipsInactiveAndUnlinked(t *testing.T) {
	list := []Advertisement{
		{ID: 1, IsActive: true},
		{ID: 2, IsActive: true, ProductID: ptr(int64(5)), StartDate: ptr(now.Add(24 * time.Hour))},
		{ID: 3, IsActive: false, ProductID: ptr(int64(6))},
		{ID: 4, IsActive: true, ProductID: ptr(int64(8)), EndDate: ptr(now)},
	}

	idx := Index(list, now)
	assert.Len(t, idx, 1)
	assert.Equal(t, int64(4), idx[8].ID)
}

func TestTypeValid(t *testing.T) {
	assert.True(t, TypeWeeklyOffer.Valid())
	assert.False(t, Type("banner").Valid())
}
