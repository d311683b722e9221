package handlers

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rbyte/rbyte-api/internal/service"
	"github.com/rbyte/rbyte-api/internal/sms"
	"github.com/sirupsen/logrus"
)

type OTPHandlers struct {
	otpService *service.OTPService
	tokens     *service.VerificationTokenService
	validate   *validator.Validate
	logger     *logrus.Logger
}

// NewOTPHandlers wires the OTP endpoints. tokens may be nil, in which case a
// successful verification returns no verification token.
func NewOTPHandlers(otpService *service.OTPService, tokens *service.VerificationTokenService, logger *logrus.Logger) *OTPHandlers {
	return &OTPHandlers{
		otpService: otpService,
		tokens:     tokens,
		validate:   newValidator(),
		logger:     logger,
	}
}

type SendOTPRequest struct {
	Phone       string `json:"phone" validate:"required,max=20"`
	CountryCode string `json:"country_code" validate:"required,max=6"`
}

func (r *SendOTPRequest) normalize() {
	r.Phone = trimmed(r.Phone)
	r.CountryCode = countryCodeOrDefault(r.CountryCode)
}

type VerifyOTPRequest struct {
	Phone       string `json:"phone" validate:"required,max=20"`
	CountryCode string `json:"country_code" validate:"required,max=6"`
	OTP         string `json:"otp" validate:"required,max=10"`
}

func (r *VerifyOTPRequest) normalize() {
	r.Phone = trimmed(r.Phone)
	r.CountryCode = countryCodeOrDefault(r.CountryCode)
	r.OTP = trimmed(r.OTP)
}

type OTPResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type VerifyOTPResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	VerificationToken string `json:"verification_token,omitempty"`
	ExpiresIn         int64  `json:"expires_in,omitempty"`
}

func (h *OTPHandlers) SendOTP(w http.ResponseWriter, r *http.Request) {
	var req SendOTPRequest
	if msg, ok := decodeAndValidate(r, h.validate, &req); !ok {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	phoneKey := service.PhoneKey(req.CountryCode, req.Phone)
	if _, err := h.otpService.Issue(r.Context(), phoneKey); err != nil {
		respondWithIssueError(w, h.logger, err, "Failed to send OTP")
		return
	}

	respondWithJSON(w, http.StatusOK, OTPResponse{
		Success: true,
		Message: "OTP sent successfully",
	})
}

func (h *OTPHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if msg, ok := decodeAndValidate(r, h.validate, &req); !ok {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}

	phoneKey := service.PhoneKey(req.CountryCode, req.Phone)
	if err := h.otpService.Verify(r.Context(), phoneKey, req.OTP); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to verify OTP")
		return
	}

	resp := VerifyOTPResponse{
		Success: true,
		Message: "OTP verified successfully",
	}

	if h.tokens != nil {
		token, err := h.tokens.Issue(phoneKey)
		if err != nil {
			h.logger.WithError(err).Error("Failed to issue verification token")
			respondWithError(w, http.StatusInternalServerError, "Failed to issue verification token")
			return
		}
		resp.VerificationToken = token.Token
		resp.ExpiresIn = token.ExpiresIn
	}

	respondWithJSON(w, http.StatusOK, resp)
}

// respondWithIssueError reports delivery failures with the gateway's reason.
func respondWithIssueError(w http.ResponseWriter, logger *logrus.Logger, err error, prefix string) {
	if !errors.Is(err, service.ErrDelivery) {
		respondWithServiceError(w, logger, err, prefix)
		return
	}

	reason := err.Error()
	var deliveryErr *sms.DeliveryError
	if errors.As(err, &deliveryErr) {
		reason = deliveryErr.Reason
	}
	respondWithError(w, http.StatusInternalServerError, prefix+": "+reason)
}
