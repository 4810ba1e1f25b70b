package pricing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyVIPDiscount(t *testing.T) {
	testCases := []struct {
		name         string
		price        int64
		percent      int64
		wantTotal    int64
		wantDiscount int64
		wantErr      bool
	}{
		{name: "TenPercent", price: 50000, percent: 10, wantTotal: 45000, wantDiscount: 5000},
		{name: "RoundsHalfUp", price: 12345, percent: 10, wantTotal: 11110, wantDiscount: 1235},
		{name: "ZeroPercent", price: 80000, percent: 0, wantTotal: 80000, wantDiscount: 0},
		{name: "FullDiscount", price: 80000, percent: 100, wantTotal: 0, wantDiscount: 80000},
		{name: "ZeroPrice", price: 0, percent: 50, wantTotal: 0, wantDiscount: 0},
		{name: "NegativePercent", price: 1000, percent: -1, wantErr: true},
		{name: "PercentAboveHundred", price: 1000, percent: 101, wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			total, discount, err := ApplyVIPDiscount(tc.price, tc.percent)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrInvalidPercent)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tc.wantTotal, total)
			assert.Equal(t, tc.wantDiscount, discount)
			assert.Equal(t, tc.price, total+discount)
		})
	}
}

func TestQuoteOrder(t *testing.T) {
	t.Run("LocalSheepActiveVIP", func(t *testing.T) {
		quote, err := QuoteOrder(60000, true, true, 10)
		require.NoError(t, err)
		assert.True(t, quote.VIPApplied)
		assert.Equal(t, int64(54000), quote.TotalAmount)
		assert.Equal(t, int64(6000), quote.DiscountAmount)
		assert.Equal(t, int64(60000), quote.OriginalPrice)
	})

	t.Run("ForeignSheepKeepsRegulatedPrice", func(t *testing.T) {
		quote, err := QuoteOrder(60000, false, true, 10)
		require.NoError(t, err)
		assert.False(t, quote.VIPApplied)
		assert.Equal(t, int64(60000), quote.TotalAmount)
		assert.Zero(t, quote.DiscountAmount)
	})

	t.Run("NotVIP", func(t *testing.T) {
		quote, err := QuoteOrder(60000, true, false, 10)
		require.NoError(t, err)
		assert.False(t, quote.VIPApplied)
		assert.Equal(t, int64(60000), quote.TotalAmount)
	})

	t.Run("InvalidPercent", func(t *testing.T) {
		_, err := QuoteOrder(60000, true, true, 150)
		require.ErrorIs(t, err, ErrInvalidPercent)
	})
}

func TestSplitInstallments(t *testing.T) {
	firstDue := time.Date(2025, time.January, 31, 0, 0, 0, 0, time.UTC)

	schedule, err := SplitInstallments(100000, 3, firstDue)
	require.NoError(t, err)
	require.Len(t, schedule, 3)

	assert.Equal(t, int64(33334), schedule[0].Amount)
	assert.Equal(t, int64(33333), schedule[1].Amount)
	assert.Equal(t, int64(33333), schedule[2].Amount)

	wantDue := []time.Time{
		firstDue,
		time.Date(2025, time.February, 28, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
	}

	var sum int64
	for i, entry := range schedule {
		sum += entry.Amount
		assert.Equal(t, int64(i+1), entry.Sequence)
		assert.Equal(t, wantDue[i], entry.DueDate)
	}
	assert.Equal(t, int64(100000), sum)

	_, err = SplitInstallments(100000, 0, firstDue)
	require.ErrorIs(t, err, ErrInvalidInstallmentCount)

	_, err = SplitInstallments(-1, 2, firstDue)
	require.Error(t, err)
}

func TestAddMonthsClampsToMonthEnd(t *testing.T) {
	testCases := []struct {
		name  string
		start time.Time
		n     int
		want  time.Time
	}{
		{
			name:  "LeapYearFebruary",
			start: time.Date(2028, time.January, 31, 9, 30, 0, 0, time.UTC),
			n:     1,
			want:  time.Date(2028, time.February, 29, 9, 30, 0, 0, time.UTC),
		},
		{
			name:  "ThirtyDayMonth",
			start: time.Date(2025, time.March, 31, 0, 0, 0, 0, time.UTC),
			n:     1,
			want:  time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "AcrossYearEnd",
			start: time.Date(2025, time.October, 31, 0, 0, 0, 0, time.UTC),
			n:     4,
			want:  time.Date(2026, time.February, 28, 0, 0, 0, 0, time.UTC),
		},
		{
			name:  "MidMonthUnchanged",
			start: time.Date(2025, time.January, 15, 0, 0, 0, 0, time.UTC),
			n:     5,
			want:  time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, addMonths(tc.start, tc.n))
		})
	}
}
