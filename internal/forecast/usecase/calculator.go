package usecase

import (
	"math"
	"sort"
	"time"

	forecastdomain "migralog-backend/internal/forecast/domain"
)

// maxContributors caps the ranked list returned per day.
const maxContributors = 5

// Forecast computes the rolling risk for today plus the six days ahead. It is
// a pure function of its inputs; callers resolve settings and events first.
func Forecast(today time.Time, events []forecastdomain.ScoredEvent, settings forecastdomain.Settings) []forecastdomain.DayRisk {
	todayDate := dateOnly(today)
	days := make([]forecastdomain.DayRisk, 0, forecastdomain.ForecastDays)

	for offset := 0; offset < forecastdomain.ForecastDays; offset++ {
		perspective := todayDate.AddDate(0, 0, offset)
		days = append(days, scoreDay(perspective, events, settings))
	}
	return days
}

type contributorAgg struct {
	name         string
	contribution int
	severity     forecastdomain.Severity
	dates        map[string]struct{}
}

func scoreDay(perspective time.Time, events []forecastdomain.ScoredEvent, settings forecastdomain.Settings) forecastdomain.DayRisk {
	var score float64
	aggs := make(map[string]*contributorAgg)

	for _, ev := range events {
		if ev.Severity == forecastdomain.SeverityNone || ev.Severity == "" {
			continue
		}
		daysAgo := daysBetween(dateOnly(ev.Date), perspective)
		if daysAgo < 0 || daysAgo >= forecastdomain.ForecastDays {
			// Either in the perspective day's future or too stale to matter.
			continue
		}
		weights, ok := settings.Weights[ev.Severity]
		if !ok {
			continue
		}
		weight := weights[daysAgo]
		if weight <= 0 {
			continue
		}

		score += weight

		agg, ok := aggs[ev.Name]
		if !ok {
			agg = &contributorAgg{name: ev.Name, severity: ev.Severity, dates: make(map[string]struct{})}
			aggs[ev.Name] = agg
		}
		agg.contribution += int(math.Round(weight))
		if severityRank(ev.Severity) > severityRank(agg.severity) {
			agg.severity = ev.Severity
		}
		agg.dates[dateOnly(ev.Date).Format("2006-01-02")] = struct{}{}
	}

	return forecastdomain.DayRisk{
		Date:            perspective,
		Score:           score,
		Zone:            bucketZone(score, settings.Thresholds),
		Percent:         normalizePercent(score, settings.Thresholds),
		TopContributors: rankContributors(aggs),
	}
}

// bucketZone compares the score against the thresholds in descending order;
// the first threshold met wins.
func bucketZone(score float64, t forecastdomain.Thresholds) forecastdomain.RiskZone {
	switch {
	case score >= t.High:
		return forecastdomain.ZoneHigh
	case score >= t.Mild:
		return forecastdomain.ZoneMild
	case score >= t.Low:
		return forecastdomain.ZoneLow
	default:
		return forecastdomain.ZoneNone
	}
}

func normalizePercent(score float64, t forecastdomain.Thresholds) int {
	gaugeMax := t.GaugeMax()
	if gaugeMax <= 0 {
		return 0
	}
	percent := int(math.Round(score / gaugeMax * 100))
	if percent < 0 {
		return 0
	}
	if percent > 100 {
		return 100
	}
	return percent
}

func rankContributors(aggs map[string]*contributorAgg) []forecastdomain.Contributor {
	contributors := make([]forecastdomain.Contributor, 0, len(aggs))
	for _, agg := range aggs {
		contributors = append(contributors, forecastdomain.Contributor{
			Name:         agg.name,
			Contribution: agg.contribution,
			Severity:     agg.severity,
			Days:         len(agg.dates),
		})
	}
	sort.Slice(contributors, func(i, j int) bool {
		if contributors[i].Contribution != contributors[j].Contribution {
			return contributors[i].Contribution > contributors[j].Contribution
		}
		return contributors[i].Name < contributors[j].Name
	})
	if len(contributors) > maxContributors {
		contributors = contributors[:maxContributors]
	}
	return contributors
}

func severityRank(s forecastdomain.Severity) int {
	switch s {
	case forecastdomain.SeverityHigh:
		return 3
	case forecastdomain.SeverityMild:
		return 2
	case forecastdomain.SeverityLow:
		return 1
	default:
		return 0
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// daysBetween returns the whole-day difference to - from for midnight-UTC dates.
func daysBetween(from, to time.Time) int {
	return int(to.Sub(from).Hours() / 24)
}
