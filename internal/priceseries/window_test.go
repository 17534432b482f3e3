package priceseries

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonthWindowContiguity(t *testing.T) {
	refs := []time.Time{
		time.Date(2026, time.March, 15, 10, 0, 0, 0, time.UTC),
		time.Date(2026, time.January, 31, 23, 59, 59, 0, time.UTC),
		time.Date(2024, time.February, 29, 0, 0, 0, 0, time.UTC),
		time.Date(2025, time.December, 1, 0, 0, 0, 0, time.UTC),
	}
	counts := []int{1, 6, 24, 37}

	for _, ref := range refs {
		for _, count := range counts {
			window := MonthWindow(ref, count, nil)
			require.Len(t, window, count)

			// Last bucket is the reference month and the only current one.
			assert.Equal(t, ref.Format("2006-01"), window[count-1].Key)
			assert.True(t, window[count-1].Current)
			for i := 0; i < count-1; i++ {
				assert.False(t, window[i].Current)
			}

			// Strictly increasing, no gaps across year boundaries.
			for i := 1; i < count; i++ {
				prev, err := time.Parse("2006-01", window[i-1].Key)
				require.NoError(t, err)
				assert.Equal(t, prev.AddDate(0, 1, 0).Format("2006-01"), window[i].Key)
			}
		}
	}
}

func TestMonthWindowEndOfMonthReference(t *testing.T) {
	// Jan 31 minus one month must land in December, not skip into
	// February via a nonexistent Dec 31 -> Jan 31 -> Feb 31 chain.
	ref := time.Date(2026, time.March, 31, 12, 0, 0, 0, time.UTC)
	window := MonthWindow(ref, 3, nil)

	require.Len(t, window, 3)
	assert.Equal(t, "2026-01", window[0].Key)
	assert.Equal(t, "2026-02", window[1].Key)
	assert.Equal(t, "2026-03", window[2].Key)
}

func TestMonthWindowLabels(t *testing.T) {
	ref := time.Date(2024, time.March, 10, 0, 0, 0, 0, time.UTC)

	window := MonthWindow(ref, 2, nil)
	require.Len(t, window, 2)
	assert.Equal(t, "Feb/24", window[0].Label)
	assert.Equal(t, "Mar/24", window[1].Label)

	custom := MonthWindow(ref, 1, func(m time.Time) string { return m.Format("01/2006") })
	assert.Equal(t, "03/2024", custom[0].Label)
}

func TestMonthWindowNonPositiveCount(t *testing.T) {
	ref := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)
	assert.Empty(t, MonthWindow(ref, 0, nil))
	assert.Empty(t, MonthWindow(ref, -3, nil))
}
