package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fdg312/calorie-diary/internal/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrAuthDisabled = errors.New("auth disabled")
)

// diaryScope marks tokens issued for diary access.
const diaryScope = "diary"

// Claims - содержимое токена установки. Subject - owner id дневника.
type Claims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Service выдаёт и проверяет токены установок. Каждая установка клиента
// получает свой owner id, дневник хранится под этим id.
type Service struct {
	config *config.Config
	now    func() time.Time
}

func NewService(cfg *config.Config) *Service {
	return &Service{config: cfg, now: time.Now}
}

func (s *Service) enabled() bool {
	return s.config.AuthMode == "install"
}

func (s *Service) ttl() time.Duration {
	return time.Duration(s.config.JWTTTLMinutes) * time.Minute
}

// Install выдаёт токен для новой установки
func (s *Service) Install(ctx context.Context) (*InstallResponse, error) {
	if !s.enabled() {
		return nil, ErrAuthDisabled
	}
	return s.respond(uuid.NewString())
}

// Refresh перевыпускает токен для уже известного владельца
func (s *Service) Refresh(ctx context.Context, ownerID string) (*InstallResponse, error) {
	if !s.enabled() {
		return nil, ErrAuthDisabled
	}
	if ownerID == "" {
		return nil, ErrInvalidToken
	}
	return s.respond(ownerID)
}

func (s *Service) respond(ownerID string) (*InstallResponse, error) {
	token, err := s.sign(ownerID, s.ttl())
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &InstallResponse{
		AccessToken:    token,
		TokenType:      "Bearer",
		ExpiresIn:      int64(s.ttl().Seconds()),
		InstallationID: ownerID,
	}, nil
}

func (s *Service) sign(ownerID string, ttl time.Duration) (string, error) {
	now := s.now()
	claims := Claims{
		Scope: diaryScope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   ownerID,
			Issuer:    s.config.JWTIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.config.JWTSecret))
}

// Verify проверяет подпись, issuer, срок и scope; возвращает owner id.
func (s *Service) Verify(raw string) (string, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(raw, &claims, func(*jwt.Token) (any, error) {
		return []byte(s.config.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.config.JWTIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || claims.Scope != diaryScope || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}
