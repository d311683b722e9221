package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rbyte/rbyte-api/internal/service"
	"github.com/sirupsen/logrus"
)

type ErrorResponse struct {
	Detail string `json:"detail"`
}

func respondWithJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, status int, detail string) {
	respondWithJSON(w, status, ErrorResponse{Detail: detail})
}

// respondWithServiceError maps service errors onto a status and detail.
// fallback is shown for unexpected failures so store internals never leak.
func respondWithServiceError(w http.ResponseWriter, logger *logrus.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respondWithError(w, http.StatusBadRequest, strings.TrimPrefix(err.Error(), service.ErrValidation.Error()+": "))
	case errors.Is(err, service.ErrOTPNotFound):
		respondWithError(w, http.StatusBadRequest, "No OTP was sent to this number")
	case errors.Is(err, service.ErrOTPExpired):
		respondWithError(w, http.StatusBadRequest, "OTP has expired")
	case errors.Is(err, service.ErrOTPMismatch):
		respondWithError(w, http.StatusBadRequest, "Invalid OTP")
	case errors.Is(err, service.ErrNotFound):
		respondWithError(w, http.StatusNotFound, strings.TrimPrefix(err.Error(), service.ErrNotFound.Error()+": "))
	default:
		logger.WithError(err).Error(fallback)
		respondWithError(w, http.StatusInternalServerError, fallback)
	}
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeAndValidate reads a JSON body into dst and runs its validate tags.
// The returned message is suitable for the client.
func decodeAndValidate(r *http.Request, v *validator.Validate, dst interface{ normalize() }) (string, bool) {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return "Invalid request body", false
	}
	dst.normalize()

	if err := v.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return validationMessage(verrs[0]), false
		}
		return "Invalid request body", false
	}
	return "", true
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "numeric":
		return fmt.Sprintf("%s must contain only digits", fe.Field())
	case "startswith":
		return fmt.Sprintf("%s must start with %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

const defaultCountryCode = "+91"

func trimmed(s string) string {
	return strings.TrimSpace(s)
}

// trimmedOptional drops optional fields that are blank after trimming.
func trimmedOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func countryCodeOrDefault(cc string) string {
	cc = strings.TrimSpace(cc)
	if cc == "" {
		return defaultCountryCode
	}
	return cc
}
