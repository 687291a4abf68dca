package domain

import "time"

type User struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Email    string `json:"email" gorm:"uniqueIndex;not null"`
	Password string `json:"-"` // Never return password in JSON
	Name     string `json:"name"`

	// Health-platform connection. The mobile app completes the OAuth consent
	// flow and hands the resulting tokens to the backend, which refreshes
	// them as needed for background sync.
	HealthAccessToken  string     `json:"-"`
	HealthRefreshToken string     `json:"-"`
	HealthTokenExpiry  *time.Time `json:"-"`
	HealthConnectedAt  *time.Time `json:"health_connected_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// HealthConnected reports whether the user has linked a health source.
func (u *User) HealthConnected() bool {
	return u.HealthRefreshToken != ""
}

type RefreshToken struct {
	Token     string    `json:"token" gorm:"primaryKey"`
	UserID    string    `json:"user_id" gorm:"index;not null"`
	ExpiresAt time.Time `json:"expires_at"`
}
