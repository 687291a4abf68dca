package healthapi

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/oauth2"

	authrepository "migralog-backend/internal/auth/repository"
)

// OAuthTokenProvider exchanges a user's stored refresh token for a valid
// access token, persisting refreshed tokens back to the user record so
// the next cycle does not have to refresh again.
type OAuthTokenProvider struct {
	config   *oauth2.Config
	userRepo authrepository.UserRepository
}

func NewOAuthTokenProvider(clientID, clientSecret, tokenURL string, userRepo authrepository.UserRepository) *OAuthTokenProvider {
	return &OAuthTokenProvider{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: tokenURL,
			},
		},
		userRepo: userRepo,
	}
}

// GetValidAccessToken returns an access token for the user, refreshing
// through the OAuth endpoint when the stored one has expired
func (p *OAuthTokenProvider) GetValidAccessToken(ctx context.Context, userID string) (string, error) {
	user, err := p.userRepo.FindByID(userID)
	if err != nil {
		return "", fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return "", errors.New("user not found")
	}
	if user.HealthRefreshToken == "" {
		return "", errors.New("user has no linked health source")
	}

	token := &oauth2.Token{
		AccessToken:  user.HealthAccessToken,
		RefreshToken: user.HealthRefreshToken,
		TokenType:    "Bearer",
	}
	if user.HealthTokenExpiry != nil {
		token.Expiry = *user.HealthTokenExpiry
	} else {
		// Unknown expiry, force a refresh
		token.Expiry = time.Now()
	}

	fresh, err := p.config.TokenSource(ctx, token).Token()
	if err != nil {
		return "", fmt.Errorf("failed to refresh access token: %w", err)
	}

	// Persist the new token so subsequent cycles skip the refresh
	if fresh.AccessToken != user.HealthAccessToken {
		user.HealthAccessToken = fresh.AccessToken
		if fresh.RefreshToken != "" {
			user.HealthRefreshToken = fresh.RefreshToken
		}
		expiry := fresh.Expiry
		user.HealthTokenExpiry = &expiry
		if err := p.userRepo.Update(user); err != nil {
			log.Printf("[HealthAPI] Failed to persist refreshed token for user %s: %v", userID, err)
		}
	}

	return fresh.AccessToken, nil
}
