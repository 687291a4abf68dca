package usecase

import (
	authdomain "migralog-backend/internal/auth/domain"
	authdto "migralog-backend/internal/auth/dto"
)

// AuthUsecase defines the authentication operations exposed to the API layer
type AuthUsecase interface {
	Register(req *authdto.RegisterRequest) (*authdto.TokenResponse, error)
	Login(req *authdto.LoginRequest) (*authdto.TokenResponse, error)
	RefreshToken(refreshToken string) (*authdto.TokenResponse, error)
	Logout(refreshToken string) error
	ValidateToken(token string) (*authdomain.User, error)
	ConnectHealthSource(userID string, req *authdto.ConnectHealthSourceRequest) error
	DisconnectHealthSource(userID string) error
	RegisterFCMToken(userID, token, deviceInfo string) error
	UnregisterFCMToken(token string) error
}
