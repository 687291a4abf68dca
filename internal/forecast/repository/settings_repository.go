package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	forecastdomain "migralog-backend/internal/forecast/domain"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// settingsRepository implements SettingsRepository interface
type settingsRepository struct {
	db *gorm.DB
}

// NewSettingsRepository creates a new instance of settingsRepository
func NewSettingsRepository(db *gorm.DB) SettingsRepository {
	return &settingsRepository{
		db: db,
	}
}

func (r *settingsRepository) Load() (*forecastdomain.Settings, error) {
	row, err := r.Raw()
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, ErrSettingsUnavailable
	}

	settings := &forecastdomain.Settings{
		Weights: forecastdomain.DecayTable{},
		Thresholds: forecastdomain.Thresholds{
			High: row.ThresholdHigh,
			Mild: row.ThresholdMild,
			Low:  row.ThresholdLow,
		},
	}
	if err := validateThresholds(settings.Thresholds); err != nil {
		return nil, err
	}

	for severity, raw := range map[forecastdomain.Severity]string{
		forecastdomain.SeverityHigh: row.HighWeights,
		forecastdomain.SeverityMild: row.MildWeights,
		forecastdomain.SeverityLow:  row.LowWeights,
	} {
		vector, err := parseWeights(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid %s weights: %w", severity, err)
		}
		settings.Weights[severity] = vector
	}

	severities, err := r.SeverityMap()
	if err != nil {
		return nil, err
	}
	settings.Severities = severities

	return settings, nil
}

func (r *settingsRepository) Raw() (*forecastdomain.ForecastSettings, error) {
	var row forecastdomain.ForecastSettings
	err := r.db.Order("id ASC").First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &row, nil
}

func (r *settingsRepository) Save(settings *forecastdomain.ForecastSettings) error {
	if err := validateThresholds(forecastdomain.Thresholds{
		High: settings.ThresholdHigh,
		Mild: settings.ThresholdMild,
		Low:  settings.ThresholdLow,
	}); err != nil {
		return err
	}
	for _, raw := range []string{settings.HighWeights, settings.MildWeights, settings.LowWeights} {
		if _, err := parseWeights(raw); err != nil {
			return err
		}
	}

	existing, err := r.Raw()
	if err != nil {
		return err
	}
	now := time.Now()
	settings.UpdatedAt = now
	if existing == nil {
		settings.CreatedAt = now
		return r.db.Create(settings).Error
	}
	settings.ID = existing.ID
	settings.CreatedAt = existing.CreatedAt
	return r.db.Save(settings).Error
}

func (r *settingsRepository) SeverityFor(eventName string) (forecastdomain.Severity, error) {
	var mapping forecastdomain.SeverityMapping
	err := r.db.Where("event_name = ?", eventName).First(&mapping).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return forecastdomain.SeverityNone, nil
		}
		return forecastdomain.SeverityNone, err
	}
	return mapping.Severity, nil
}

func (r *settingsRepository) SaveSeverityMapping(mapping *forecastdomain.SeverityMapping) error {
	switch mapping.Severity {
	case forecastdomain.SeverityHigh, forecastdomain.SeverityMild, forecastdomain.SeverityLow, forecastdomain.SeverityNone:
	default:
		return fmt.Errorf("unknown severity %q", mapping.Severity)
	}
	mapping.UpdatedAt = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "event_name"}},
		DoUpdates: clause.AssignmentColumns([]string{"severity", "updated_at"}),
	}).Create(mapping).Error
}

func (r *settingsRepository) SeverityMap() (map[string]forecastdomain.Severity, error) {
	var mappings []forecastdomain.SeverityMapping
	if err := r.db.Find(&mappings).Error; err != nil {
		return nil, err
	}
	result := make(map[string]forecastdomain.Severity, len(mappings))
	for _, m := range mappings {
		result[m.EventName] = m.Severity
	}
	return result, nil
}

// validateThresholds rejects misordered cutoffs instead of trusting stored
// configuration blindly: bucketing compares High first, so High >= Mild >= Low
// must hold or days silently land in wrong zones.
func validateThresholds(t forecastdomain.Thresholds) error {
	if t.High <= 0 {
		return fmt.Errorf("high threshold must be positive, got %v", t.High)
	}
	if t.High < t.Mild || t.Mild < t.Low {
		return fmt.Errorf("thresholds must be ordered high >= mild >= low, got %v/%v/%v", t.High, t.Mild, t.Low)
	}
	return nil
}

// parseWeights parses a comma-separated decay curve, same-day weight first.
// Fewer than seven entries pads with zeros; more than seven is an error.
func parseWeights(raw string) (forecastdomain.WeightVector, error) {
	var vector forecastdomain.WeightVector
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return vector, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) > forecastdomain.ForecastDays {
		return vector, fmt.Errorf("at most %d weights allowed, got %d", forecastdomain.ForecastDays, len(parts))
	}
	for i, part := range parts {
		value, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return vector, fmt.Errorf("weight %d: %w", i, err)
		}
		if value < 0 {
			return vector, fmt.Errorf("weight %d must not be negative", i)
		}
		vector[i] = value
	}
	return vector, nil
}
