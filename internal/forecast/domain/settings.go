package domain

import "time"

// ForecastSettings is the stored scoring configuration: one decay curve per
// severity (comma-separated weights, same-day first) and the zone thresholds.
type ForecastSettings struct {
	ID            uint      `json:"id" gorm:"primaryKey"`
	HighWeights   string    `json:"high_weights"`
	MildWeights   string    `json:"mild_weights"`
	LowWeights    string    `json:"low_weights"`
	ThresholdHigh float64   `json:"threshold_high"`
	ThresholdMild float64   `json:"threshold_mild"`
	ThresholdLow  float64   `json:"threshold_low"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// SeverityMapping classifies one event type (by name) into a severity.
type SeverityMapping struct {
	EventName string    `json:"event_name" gorm:"primaryKey;size:128"`
	Severity  Severity  `json:"severity" gorm:"size:8;not null"`
	UpdatedAt time.Time `json:"updated_at"`
}
