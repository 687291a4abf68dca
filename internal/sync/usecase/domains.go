package usecase

import (
	"time"

	syncdomain "migralog-backend/internal/sync/domain"
)

// The conflict key every domain shares: the source record id plus the owner.
const conflictKey = "external_id,user_id"

// NutritionDomain tracks meals, hydration and caffeine from the health
// platform's nutrition records.
func NutritionDomain() DomainConfig {
	return DomainConfig{
		Name:         "nutrition",
		RecordType:   "nutrition",
		LookbackDays: 14,
		RemoteTable:  "nutrition_records",
		ConflictKey:  conflictKey,
		MapRecord: func(userID string, rec *syncdomain.Record) syncdomain.Row {
			row := baseRow(userID, rec)
			copyFields(row, rec, "meal_type", "calories", "water_ml", "caffeine_mg")
			return row
		},
	}
}

// MenstruationDomain tracks cycle records, a known migraine trigger signal.
func MenstruationDomain() DomainConfig {
	return DomainConfig{
		Name:         "menstruation",
		RecordType:   "menstruation",
		LookbackDays: 30,
		RemoteTable:  "menstruation_records",
		ConflictKey:  conflictKey,
		MapRecord: func(userID string, rec *syncdomain.Record) syncdomain.Row {
			row := baseRow(userID, rec)
			copyFields(row, rec, "flow", "cycle_day")
			return row
		},
	}
}

// ActivityDomain tracks exercise sessions from the wearable.
func ActivityDomain() DomainConfig {
	return DomainConfig{
		Name:         "activity",
		RecordType:   "activity",
		LookbackDays: 30,
		RemoteTable:  "activity_records",
		ConflictKey:  conflictKey,
		MapRecord: func(userID string, rec *syncdomain.Record) syncdomain.Row {
			row := baseRow(userID, rec)
			copyFields(row, rec, "activity_type", "duration_min", "steps", "avg_heart_rate")
			return row
		},
	}
}

func baseRow(userID string, rec *syncdomain.Record) syncdomain.Row {
	return syncdomain.Row{
		"external_id": rec.ID,
		"user_id":     userID,
		"recorded_at": rec.RecordedAt.UTC().Format(time.RFC3339),
	}
}

func copyFields(row syncdomain.Row, rec *syncdomain.Record, keys ...string) {
	for _, key := range keys {
		if v, ok := rec.Fields[key]; ok {
			row[key] = v
		}
	}
}
