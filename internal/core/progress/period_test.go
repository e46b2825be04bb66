package progress_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/comitanigiacomo/kanso-progress/internal/core/domain"
	"github.com/comitanigiacomo/kanso-progress/internal/core/progress"
)

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := domain.ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestResolvePeriod(t *testing.T) {
	tests := []struct {
		name      string
		freq      domain.Frequency
		ref       string
		wantStart string
		wantEnd   string
		wantLabel string
	}{
		{"Daily is the reference day", domain.FrequencyDaily, "2024-03-13", "2024-03-13", "2024-03-13", progress.LabelToday},
		{"Weekly starts on the previous Sunday", domain.FrequencyWeekly, "2024-03-13", "2024-03-10", "2024-03-16", progress.LabelThisWeek},
		{"Weekly on a Sunday starts that day", domain.FrequencyWeekly, "2024-03-10", "2024-03-10", "2024-03-16", progress.LabelThisWeek},
		{"Weekly on a Saturday ends that day", domain.FrequencyWeekly, "2024-03-16", "2024-03-10", "2024-03-16", progress.LabelThisWeek},
		{"Weekly crossing a year boundary", domain.FrequencyWeekly, "2025-01-01", "2024-12-29", "2025-01-04", progress.LabelThisWeek},
		{"Monthly in a leap February", domain.FrequencyMonthly, "2024-02-15", "2024-02-01", "2024-02-29", progress.LabelThisMonth},
		{"Monthly in a common February", domain.FrequencyMonthly, "2023-02-15", "2023-02-01", "2023-02-28", progress.LabelThisMonth},
		{"Monthly in December", domain.FrequencyMonthly, "2023-12-05", "2023-12-01", "2023-12-31", progress.LabelThisMonth},
		{"Yearly covers the calendar year", domain.FrequencyYearly, "2024-07-04", "2024-01-01", "2024-12-31", progress.LabelThisYear},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := progress.ResolvePeriod(tt.freq, day(t, tt.ref))
			require.NoError(t, err)

			start, end := p.Bounds()
			assert.Equal(t, tt.wantStart, start)
			assert.Equal(t, tt.wantEnd, end)
			assert.Equal(t, tt.wantLabel, p.Label)
			assert.False(t, p.Unbounded)
		})
	}

	t.Run("Custom has no fixed period", func(t *testing.T) {
		p, err := progress.ResolvePeriod(domain.FrequencyCustom, day(t, "2024-03-13"))
		require.NoError(t, err)

		assert.True(t, p.Unbounded)
		assert.Equal(t, progress.LabelLogged, p.Label)
		assert.True(t, p.Contains(day(t, "1999-01-01")))

		start, end := p.Bounds()
		assert.Empty(t, start)
		assert.Empty(t, end)
	})

	t.Run("Fail: unknown frequency", func(t *testing.T) {
		_, err := progress.ResolvePeriod(domain.Frequency("fortnightly"), day(t, "2024-03-13"))
		assert.ErrorIs(t, err, domain.ErrInvalidFrequency)
	})

	t.Run("Uses the calendar day of the reference location", func(t *testing.T) {
		eastern := time.FixedZone("EST", -5*60*60)
		ref := time.Date(2024, 3, 13, 23, 30, 0, 0, eastern)

		p, err := progress.ResolvePeriod(domain.FrequencyDaily, ref)
		require.NoError(t, err)

		start, _ := p.Bounds()
		assert.Equal(t, "2024-03-13", start, "23:30 EST is already the 14th in UTC but must stay the 13th")
	})
}

func TestPeriod_ContainsAndDays(t *testing.T) {
	p, err := progress.ResolvePeriod(domain.FrequencyWeekly, day(t, "2024-03-13"))
	require.NoError(t, err)

	assert.Equal(t, 7, p.Days())
	assert.True(t, p.Contains(day(t, "2024-03-10")))
	assert.True(t, p.Contains(day(t, "2024-03-16")))
	assert.False(t, p.Contains(day(t, "2024-03-09")))
	assert.False(t, p.Contains(day(t, "2024-03-17")))
}
