package service

import (
	"hilfo_survey_backend/internal/config"
	"hilfo_survey_backend/internal/util"

	"golang.org/x/crypto/bcrypt"
)

// AuthService guards the study administration surface. The study has a
// single configured admin account; participants never authenticate
// beyond their session token.
type AuthService struct {
	Cfg *config.Config
}

func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{Cfg: cfg}
}

func (s *AuthService) Login(username, password string) (string, error) {
	if username != s.Cfg.Admin.Username {
		return "", util.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.Cfg.Admin.PasswordHash), []byte(password)); err != nil {
		return "", util.ErrInvalidCredentials
	}
	return util.GenerateAdminJWT(username, s.Cfg.JWT.Secret, s.Cfg.JWT.ExpireTime)
}
