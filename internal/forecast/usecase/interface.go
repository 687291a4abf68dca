package usecase

import (
	forecastdomain "migralog-backend/internal/forecast/domain"
)

// ForecastUsecase defines the forecast operations exposed to the API layer
type ForecastUsecase interface {
	// GetForecast computes the 7-day risk forecast for a user. Returns
	// repository.ErrSettingsUnavailable when scoring is not configured.
	GetForecast(userID string) ([]forecastdomain.DayRisk, error)
	GetSettings() (*forecastdomain.ForecastSettings, error)
	UpdateSettings(settings *forecastdomain.ForecastSettings) error
	ClassifyEvent(mapping *forecastdomain.SeverityMapping) error
	GetSeverityMap() (map[string]forecastdomain.Severity, error)
}
