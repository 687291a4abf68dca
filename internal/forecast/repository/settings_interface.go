package repository

import (
	"errors"

	forecastdomain "migralog-backend/internal/forecast/domain"
)

// ErrSettingsUnavailable means no scoring configuration exists. Callers must
// surface an explicit "forecast unavailable" state; substituting defaults
// silently would hide a misconfigured deployment.
var ErrSettingsUnavailable = errors.New("forecast settings unavailable")

// SettingsRepository loads and stores the forecast scoring configuration
type SettingsRepository interface {
	// Load returns the validated scoring settings, or ErrSettingsUnavailable
	// when none are configured
	Load() (*forecastdomain.Settings, error)
	// Save validates and stores new settings
	Save(settings *forecastdomain.ForecastSettings) error
	// Raw returns the stored row as-is for the settings API
	Raw() (*forecastdomain.ForecastSettings, error)
	// SeverityFor resolves an event name to its severity, NONE when unmapped
	SeverityFor(eventName string) (forecastdomain.Severity, error)
	// SaveSeverityMapping creates or updates one event-name classification
	SaveSeverityMapping(mapping *forecastdomain.SeverityMapping) error
	// SeverityMap returns the full event-name classification table
	SeverityMap() (map[string]forecastdomain.Severity, error)
}
