package domain

import "time"

// Severity classifies how strongly an event type is believed to contribute
// to migraine risk. NONE events are excluded from scoring entirely.
type Severity string

const (
	SeverityHigh Severity = "HIGH"
	SeverityMild Severity = "MILD"
	SeverityLow  Severity = "LOW"
	SeverityNone Severity = "NONE"
)

// RiskZone is the discrete bucket a day's summed score falls into.
type RiskZone string

const (
	ZoneNone RiskZone = "NONE"
	ZoneLow  RiskZone = "LOW"
	ZoneMild RiskZone = "MILD"
	ZoneHigh RiskZone = "HIGH"
)

// ForecastDays is the rolling window length: today plus six days ahead.
const ForecastDays = 7

// WeightVector holds one decay curve: index 0 is the same-day weight,
// index 6 the weight six days after the event.
type WeightVector [ForecastDays]float64

// DecayTable maps a severity to its decay curve.
type DecayTable map[Severity]WeightVector

// Thresholds are the minimum scores to enter each zone. Sane bucketing
// requires High >= Mild >= Low; the settings repository enforces this.
type Thresholds struct {
	High float64 `json:"high"`
	Mild float64 `json:"mild"`
	Low  float64 `json:"low"`
}

// GaugeMax is the score that maps to 100 percent on the risk gauge.
func (t Thresholds) GaugeMax() float64 {
	return t.High * 1.2
}

// Settings bundles everything the calculator needs besides the events.
type Settings struct {
	Weights    DecayTable
	Thresholds Thresholds
	Severities map[string]Severity
}

// ScoredEvent is one trigger or prodrome occurrence with its severity
// already resolved. Ephemeral; rebuilt on every forecast request.
type ScoredEvent struct {
	Name     string
	Severity Severity
	Date     time.Time
}

// Contributor is one event name's aggregate contribution to a single day.
type Contributor struct {
	Name         string   `json:"name"`
	Contribution int      `json:"contribution"`
	Severity     Severity `json:"severity"`
	Days         int      `json:"days"`
}

// DayRisk is the forecast for one calendar day.
type DayRisk struct {
	Date            time.Time     `json:"date"`
	Score           float64       `json:"score"`
	Zone            RiskZone      `json:"zone"`
	Percent         int           `json:"percent"`
	TopContributors []Contributor `json:"top_contributors"`
}
