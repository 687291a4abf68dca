package scheduler

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	authdomain "migralog-backend/internal/auth/domain"
	authrepo "migralog-backend/internal/auth/repository"
	forecastdomain "migralog-backend/internal/forecast/domain"
)

type stubForecast struct {
	days  []forecastdomain.DayRisk
	calls int
}

func (s *stubForecast) GetForecast(userID string) ([]forecastdomain.DayRisk, error) {
	s.calls++
	return s.days, nil
}

func (s *stubForecast) GetSettings() (*forecastdomain.ForecastSettings, error) { return nil, nil }

func (s *stubForecast) UpdateSettings(settings *forecastdomain.ForecastSettings) error { return nil }

func (s *stubForecast) ClassifyEvent(mapping *forecastdomain.SeverityMapping) error { return nil }

func (s *stubForecast) GetSeverityMap() (map[string]forecastdomain.Severity, error) { return nil, nil }

func newSchedulerFixture(t *testing.T, forecast *stubForecast) *RiskAlertScheduler {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&authdomain.User{}, &authdomain.FCMToken{}))

	userRepo := authrepo.NewUserRepository(db)
	require.NoError(t, userRepo.Create(&authdomain.User{Email: "ana@example.com", HealthRefreshToken: "rt"}))

	fcmRepo := authrepo.NewFCMTokenRepository(db)
	return NewRiskAlertScheduler(forecast, userRepo, fcmRepo, nil, time.Hour)
}

func TestHighRiskDayAlertsOncePerDay(t *testing.T) {
	tomorrow := time.Now().AddDate(0, 0, 1)
	forecast := &stubForecast{days: []forecastdomain.DayRisk{
		{Date: tomorrow, Zone: forecastdomain.ZoneHigh, Percent: 80},
	}}
	s := newSchedulerFixture(t, forecast)

	s.checkAndSendAlerts()
	s.checkAndSendAlerts()

	// Recomputed each cycle, but the alert is remembered.
	assert.Equal(t, 2, forecast.calls)
	assert.Len(t, s.alerted, 1)
}

func TestLowerZonesDoNotAlert(t *testing.T) {
	forecast := &stubForecast{days: []forecastdomain.DayRisk{
		{Date: time.Now(), Zone: forecastdomain.ZoneMild, Percent: 40},
		{Date: time.Now().AddDate(0, 0, 1), Zone: forecastdomain.ZoneLow, Percent: 20},
	}}
	s := newSchedulerFixture(t, forecast)

	s.checkAndSendAlerts()

	assert.Empty(t, s.alerted)
}

func TestPruneAlertedDropsPastDays(t *testing.T) {
	s := newSchedulerFixture(t, &stubForecast{})
	today := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)

	s.alerted["u1|2026-08-24"] = true // past, outside the window
	s.alerted["u1|2026-08-30"] = true // yesterday
	s.alerted["u1|2026-08-31"] = true // today
	s.alerted["u1|2026-09-02"] = true // upcoming forecast day

	s.pruneAlerted(today)

	assert.Len(t, s.alerted, 2)
	assert.True(t, s.alerted["u1|2026-08-31"])
	assert.True(t, s.alerted["u1|2026-09-02"])
}
