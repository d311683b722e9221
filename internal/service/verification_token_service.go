package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rbyte/rbyte-api/internal/config"
	"github.com/sirupsen/logrus"
)

const verificationTokenType = "phone_verification"

var ErrInvalidToken = errors.New("invalid verification token")

// VerificationClaims ties a successful OTP check to one phone key.
type VerificationClaims struct {
	Phone string `json:"phone"`
	Type  string `json:"type"`
	jwt.RegisteredClaims
}

type VerificationToken struct {
	Token     string
	ExpiresIn int64
}

type VerificationTokenService struct {
	secretKey []byte
	expiry    time.Duration
	logger    *logrus.Logger
	now       func() time.Time
}

func NewVerificationTokenService(cfg *config.VerificationConfig, logger *logrus.Logger) (*VerificationTokenService, error) {
	secretKey := []byte(cfg.SecretKey)
	if len(secretKey) < 32 {
		return nil, fmt.Errorf("secret key must be at least 32 bytes")
	}

	return &VerificationTokenService{
		secretKey: secretKey,
		expiry:    cfg.Expiry,
		logger:    logger,
		now:       time.Now,
	}, nil
}

func (s *VerificationTokenService) Issue(phoneKey string) (*VerificationToken, error) {
	now := s.now()

	claims := &VerificationClaims{
		Phone: phoneKey,
		Type:  verificationTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   phoneKey,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiry)),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		s.logger.WithError(err).Error("Failed to sign verification token")
		return nil, fmt.Errorf("failed to sign verification token: %w", err)
	}

	return &VerificationToken{
		Token:     signed,
		ExpiresIn: int64(s.expiry.Seconds()),
	}, nil
}

func (s *VerificationTokenService) Verify(tokenString string) (*VerificationClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &VerificationClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*VerificationClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	if claims.Type != verificationTokenType {
		return nil, fmt.Errorf("%w: unexpected token type %q", ErrInvalidToken, claims.Type)
	}

	return claims, nil
}
