package discounts

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCheck(t *testing.T) {
	now := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	past, future := now.Add(-time.Hour), now.Add(time.Hour)
	two := 2

	tests := []struct {
		name     string
		d        Discount
		subtotal string
		want     error
	}{
		{"applies", Discount{IsActive: true}, "10", nil},
		{"inactive", Discount{IsActive: false}, "10", ErrInactive},
		{"not started", Discount{IsActive: true, StartDate: &future}, "10", ErrInactive},
		{"ended", Discount{IsActive: true, EndDate: &past}, "10", ErrInactive},
		{"end equals now", Discount{IsActive: true, EndDate: &now}, "10", nil},
		{"exhausted", Discount{IsActive: true, MaxUses: &two, UsedCount: 2}, "10", ErrExhausted},
		{"below minimum", Discount{IsActive: true, MinOrder: dec("50")}, "49.99", ErrMinOrder},
		{"at minimum", Discount{IsActive: true, MinOrder: dec("50")}, "50", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, tt.d.Check(now, dec(tt.subtotal)), tt.want)
		})
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		name     string
		d        Discount
		subtotal string
		want     string
	}{
		{"percent", Discount{Kind: KindPercent, Value: dec("15")}, "200", "30"},
		{"percent rounds", Discount{Kind: KindPercent, Value: dec("10")}, "9.99", "1"},
		{"fixed", Discount{Kind: KindFixed, Value: dec("25")}, "200", "25"},
		{"fixed capped", Discount{Kind: KindFixed, Value: dec("25")}, "20", "20"},
		{"unknown kind", Discount{Kind: "bogus", Value: dec("25")}, "20", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.d.Amount(dec(tt.subtotal))
			assert.True(t, got.Equal(dec(tt.want)), "got %s", got)
		})
	}
}

func TestNewQuote(t *testing.T) {
	q := NewQuote(&Discount{Kind: KindPercent, Value: dec("50")}, dec("80"))
	assert.True(t, q.Amount.Equal(dec("40")))
	assert.True(t, q.Total.Equal(dec("40")))
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "SUMMER10", NormalizeCode("  summer10 "))
	assert.True(t, KindFixed.Valid())
	assert.False(t, Kind("bogo").Valid())
}
