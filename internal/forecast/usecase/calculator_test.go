package usecase

import (
	"fmt"
	"testing"
	"time"

	forecastdomain "migralog-backend/internal/forecast/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSettings = forecastdomain.Settings{
	Weights: forecastdomain.DecayTable{
		forecastdomain.SeverityHigh: {10, 8, 6, 4, 2, 1, 0},
		forecastdomain.SeverityMild: {5, 4, 3, 2, 1, 0, 0},
		forecastdomain.SeverityLow:  {3, 2, 1, 0, 0, 0, 0},
	},
	Thresholds: forecastdomain.Thresholds{High: 10, Mild: 5, Low: 3},
}

func day(offset int) time.Time {
	return time.Date(2026, 8, 20, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestHighSeverityEventDecaysAcrossForecastDays(t *testing.T) {
	events := []forecastdomain.ScoredEvent{
		{Name: "red wine", Severity: forecastdomain.SeverityHigh, Date: day(0)},
	}

	days := Forecast(day(0), events, testSettings)
	require.Len(t, days, 7)

	wantScores := []float64{10, 8, 6, 4, 2, 1, 0}
	for i, want := range wantScores {
		assert.Equalf(t, want, days[i].Score, "day %d", i)
	}
	// Weight zero means the event no longer contributes at all.
	assert.Empty(t, days[6].TopContributors)
}

func TestEventsBeforeAndAfterWindowDoNotContribute(t *testing.T) {
	events := []forecastdomain.ScoredEvent{
		// 7 days before today: stale for every forecast day it could reach.
		{Name: "stress", Severity: forecastdomain.SeverityHigh, Date: day(-7)},
		// 3 days ahead: contributes from its own day onward, not before.
		{Name: "travel", Severity: forecastdomain.SeverityHigh, Date: day(3)},
	}

	days := Forecast(day(0), events, testSettings)
	assert.Zero(t, days[0].Score)
	assert.Zero(t, days[2].Score)
	assert.Equal(t, 10.0, days[3].Score)
	assert.Equal(t, 8.0, days[4].Score)
}

func TestZoneBucketingAgainstThresholds(t *testing.T) {
	cases := []struct {
		score float64
		want  forecastdomain.RiskZone
	}{
		{12.0, forecastdomain.ZoneHigh},
		{10.0, forecastdomain.ZoneHigh},
		{7.5, forecastdomain.ZoneMild},
		{3.0, forecastdomain.ZoneLow},
		{2.9, forecastdomain.ZoneNone},
		{0, forecastdomain.ZoneNone},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, bucketZone(tc.score, testSettings.Thresholds), "score %v", tc.score)
	}
}

func TestPercentNormalizationUsesGaugeMax(t *testing.T) {
	// High threshold 10 puts the gauge max at 12.
	assert.Equal(t, 50, normalizePercent(6, testSettings.Thresholds))
	assert.Equal(t, 100, normalizePercent(15, testSettings.Thresholds))
	assert.Equal(t, 0, normalizePercent(0, testSettings.Thresholds))
}

func TestNoneSeverityEventsAreExcluded(t *testing.T) {
	events := []forecastdomain.ScoredEvent{
		{Name: "walking", Severity: forecastdomain.SeverityNone, Date: day(0)},
	}
	days := Forecast(day(0), events, testSettings)
	assert.Zero(t, days[0].Score)
	assert.Empty(t, days[0].TopContributors)
}

func TestTopContributorsCappedAtFiveSortedDescending(t *testing.T) {
	var events []forecastdomain.ScoredEvent
	for i := 0; i < 8; i++ {
		// Spread events across past days so each name contributes a
		// different weight to today.
		events = append(events, forecastdomain.ScoredEvent{
			Name:     fmt.Sprintf("trigger-%d", i),
			Severity: forecastdomain.SeverityHigh,
			Date:     day(-i % 6),
		})
	}

	days := Forecast(day(0), events, testSettings)
	top := days[0].TopContributors
	require.Len(t, top, 5)
	for i := 1; i < len(top); i++ {
		assert.GreaterOrEqual(t, top[i-1].Contribution, top[i].Contribution)
	}
}

func TestContributorsGroupByNameWithMaxSeverityAndDistinctDays(t *testing.T) {
	events := []forecastdomain.ScoredEvent{
		{Name: "chocolate", Severity: forecastdomain.SeverityLow, Date: day(0)},
		{Name: "chocolate", Severity: forecastdomain.SeverityHigh, Date: day(-1)},
		{Name: "chocolate", Severity: forecastdomain.SeverityHigh, Date: day(-1)},
	}

	days := Forecast(day(0), events, testSettings)
	top := days[0].TopContributors
	require.Len(t, top, 1)
	assert.Equal(t, "chocolate", top[0].Name)
	assert.Equal(t, forecastdomain.SeverityHigh, top[0].Severity)
	// low same-day 3 + high one-day-ago 8 twice.
	assert.Equal(t, 19, top[0].Contribution)
	assert.Equal(t, 2, top[0].Days)
}

func TestForecastIsDeterministic(t *testing.T) {
	events := []forecastdomain.ScoredEvent{
		{Name: "a", Severity: forecastdomain.SeverityHigh, Date: day(-2)},
		{Name: "b", Severity: forecastdomain.SeverityMild, Date: day(1)},
		{Name: "c", Severity: forecastdomain.SeverityLow, Date: day(0)},
	}
	first := Forecast(day(0), events, testSettings)
	second := Forecast(day(0), events, testSettings)
	assert.Equal(t, first, second)
}
