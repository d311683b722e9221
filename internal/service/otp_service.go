package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/rbyte/rbyte-api/internal/config"
	"github.com/rbyte/rbyte-api/internal/metrics"
	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/rbyte/rbyte-api/internal/repository"
	"github.com/rbyte/rbyte-api/internal/sms"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	// OTPLength is fixed; codes are always six decimal digits.
	OTPLength = 6

	otpMessageFormat = "Your RByte.ai verification code is: %s"
)

// PhoneKey joins a country code and a national number the way the SMS
// provider expects them, without a separator.
func PhoneKey(countryCode, phone string) string {
	return strings.TrimSpace(countryCode) + strings.TrimSpace(phone)
}

type IssuedOTP struct {
	Code       string
	DeliveryID string
	ExpiresAt  time.Time
}

type OTPService struct {
	store   repository.OTPStore
	gateway sms.Gateway
	cfg     *config.OTPConfig
	metrics *metrics.Metrics
	logger  *logrus.Logger
	locks   keyLocks

	now      func() time.Time
	generate func(length int) (string, error)
}

func NewOTPService(store repository.OTPStore, gateway sms.Gateway, cfg *config.OTPConfig, m *metrics.Metrics, logger *logrus.Logger) *OTPService {
	return &OTPService{
		store:    store,
		gateway:  gateway,
		cfg:      cfg,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
		generate: generateRandomOTP,
	}
}

// Issue stores a fresh code for phoneKey, replacing any pending one, and
// sends it by SMS. The stored code stays valid when delivery fails.
func (s *OTPService) Issue(ctx context.Context, phoneKey string) (*IssuedOTP, error) {
	otp, err := s.generate(OTPLength)
	if err != nil {
		s.metrics.RecordOTPIssued("error")
		return nil, internalError("generate OTP", err)
	}

	hashedOTP, err := bcrypt.GenerateFromPassword([]byte(otp), s.cfg.HashCost)
	if err != nil {
		s.metrics.RecordOTPIssued("error")
		return nil, internalError("hash OTP", err)
	}

	now := s.now()
	otpData := models.OTPData{
		OTPHash:   string(hashedOTP),
		Phone:     phoneKey,
		CreatedAt: now,
		ExpiresAt: now.Add(s.cfg.Expiry),
	}

	unlock := s.locks.lock(phoneKey)
	err = s.store.Save(ctx, phoneKey, otpData)
	unlock()
	if err != nil {
		s.logger.WithError(err).WithField("phone", phoneKey).Error("Failed to store OTP")
		s.metrics.RecordOTPIssued("error")
		return nil, internalError("store OTP", err)
	}

	deliveryID, err := s.gateway.Send(ctx, phoneKey, fmt.Sprintf(otpMessageFormat, otp))
	if err != nil {
		s.logger.WithError(err).WithField("phone", phoneKey).Error("Failed to deliver OTP")
		s.metrics.RecordOTPIssued("delivery_failed")
		return nil, fmt.Errorf("%w: %w", ErrDelivery, err)
	}

	s.logger.WithFields(logrus.Fields{
		"phone":       phoneKey,
		"delivery_id": deliveryID,
	}).Info("OTP sent")
	s.logger.WithFields(logrus.Fields{
		"phone": phoneKey,
		"otp":   otp,
	}).Debug("OTP generated (logged for development)")
	s.metrics.RecordOTPIssued("sent")

	return &IssuedOTP{Code: otp, DeliveryID: deliveryID, ExpiresAt: otpData.ExpiresAt}, nil
}

// Verify checks code against the pending entry for phoneKey. The entry is
// consumed on success and on expiry; a wrong code leaves it in place.
func (s *OTPService) Verify(ctx context.Context, phoneKey, code string) error {
	unlock := s.locks.lock(phoneKey)
	defer unlock()

	log := s.logger.WithField("phone", phoneKey)

	otpData, err := s.store.Get(ctx, phoneKey)
	if errors.Is(err, repository.ErrNotFound) {
		log.Warn("No OTP found for phone")
		s.metrics.RecordOTPVerified("not_found")
		return ErrOTPNotFound
	}
	if err != nil {
		log.WithError(err).Error("Failed to get OTP")
		s.metrics.RecordOTPVerified("error")
		return internalError("get OTP", err)
	}

	if otpData.Expired(s.now()) {
		log.Warn("OTP expired for phone")
		if err := s.store.Delete(ctx, phoneKey); err != nil {
			log.WithError(err).Error("Failed to delete expired OTP")
			s.metrics.RecordOTPVerified("error")
			return internalError("delete OTP", err)
		}
		s.metrics.RecordOTPVerified("expired")
		return ErrOTPExpired
	}

	err = bcrypt.CompareHashAndPassword([]byte(otpData.OTPHash), []byte(code))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		log.Warn("Invalid OTP for phone")
		s.metrics.RecordOTPVerified("mismatch")
		return ErrOTPMismatch
	}
	if err != nil {
		s.metrics.RecordOTPVerified("error")
		return internalError("compare OTP", err)
	}

	if err := s.store.Delete(ctx, phoneKey); err != nil {
		log.WithError(err).Error("Failed to delete verified OTP")
		s.metrics.RecordOTPVerified("error")
		return internalError("delete OTP", err)
	}

	log.Info("OTP verified successfully")
	s.metrics.RecordOTPVerified("success")
	return nil
}

// PendingCount reports how many entries the OTP store currently holds,
// including expired ones that have not been looked up yet.
func (s *OTPService) PendingCount(ctx context.Context) (int, error) {
	n, err := s.store.Size(ctx)
	if err != nil {
		return 0, internalError("count OTPs", err)
	}
	return n, nil
}

func generateRandomOTP(length int) (string, error) {
	var b strings.Builder
	b.Grow(length)
	for i := 0; i < length; i++ {
		num, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		b.WriteString(num.String())
	}
	return b.String(), nil
}
