package usecase

import (
	"time"

	forecastdomain "migralog-backend/internal/forecast/domain"
	"migralog-backend/internal/forecast/repository"
	journaldomain "migralog-backend/internal/journal/domain"
	journalrepo "migralog-backend/internal/journal/repository"
)

// eventWindowDays covers both the retrospective decay contributions and the
// forward-looking forecast days.
const eventWindowDays = 7

// forecastUsecase implements ForecastUsecase interface
type forecastUsecase struct {
	settingsRepo repository.SettingsRepository
	entryRepo    journalrepo.EntryRepository
	now          func() time.Time
}

// NewForecastUsecase creates a new instance of forecastUsecase
func NewForecastUsecase(settingsRepo repository.SettingsRepository, entryRepo journalrepo.EntryRepository) ForecastUsecase {
	return &forecastUsecase{
		settingsRepo: settingsRepo,
		entryRepo:    entryRepo,
		now:          time.Now,
	}
}

func (u *forecastUsecase) GetForecast(userID string) ([]forecastdomain.DayRisk, error) {
	settings, err := u.settingsRepo.Load()
	if err != nil {
		// Including ErrSettingsUnavailable: no silent default scoring.
		return nil, err
	}

	today := u.now()
	from := today.AddDate(0, 0, -eventWindowDays)
	to := today.AddDate(0, 0, eventWindowDays)

	entries, err := u.entryRepo.FindByKindsInRange(userID,
		[]journaldomain.EntryKind{journaldomain.KindTrigger, journaldomain.KindProdrome},
		from, to)
	if err != nil {
		return nil, err
	}

	events := make([]forecastdomain.ScoredEvent, 0, len(entries))
	for _, entry := range entries {
		severity, ok := settings.Severities[entry.Name]
		if !ok {
			severity = forecastdomain.SeverityNone
		}
		events = append(events, forecastdomain.ScoredEvent{
			Name:     entry.Name,
			Severity: severity,
			Date:     entry.StartedAt,
		})
	}

	return Forecast(today, events, *settings), nil
}

func (u *forecastUsecase) GetSettings() (*forecastdomain.ForecastSettings, error) {
	return u.settingsRepo.Raw()
}

func (u *forecastUsecase) UpdateSettings(settings *forecastdomain.ForecastSettings) error {
	return u.settingsRepo.Save(settings)
}

func (u *forecastUsecase) ClassifyEvent(mapping *forecastdomain.SeverityMapping) error {
	return u.settingsRepo.SaveSeverityMapping(mapping)
}

func (u *forecastUsecase) GetSeverityMap() (map[string]forecastdomain.Severity, error) {
	return u.settingsRepo.SeverityMap()
}
