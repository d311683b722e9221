package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rbyte/rbyte-api/internal/service"
	"github.com/sirupsen/logrus"
)

const VerificationTokenHeader = "X-Verification-Token"

// VerifiedPhone returns the phone key proven by the request's verification
// token. ok is false when the route is not guarded.
func VerifiedPhone(ctx context.Context) (phoneKey string, ok bool) {
	phoneKey, ok = ctx.Value(verifiedPhoneKey).(string)
	return phoneKey, ok
}

type VerificationMiddleware struct {
	tokens *service.VerificationTokenService
	logger *logrus.Logger
}

func NewVerificationMiddleware(tokens *service.VerificationTokenService, logger *logrus.Logger) *VerificationMiddleware {
	return &VerificationMiddleware{
		tokens: tokens,
		logger: logger,
	}
}

// RequireVerification rejects requests without a valid verification token.
// Matching the token's phone against the submitted form is left to the handler.
func (m *VerificationMiddleware) RequireVerification(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodOptions {
			next.ServeHTTP(w, r)
			return
		}

		tokenString := strings.TrimSpace(r.Header.Get(VerificationTokenHeader))
		if tokenString == "" {
			m.respondUnauthorized(w, "Phone verification required")
			return
		}

		claims, err := m.tokens.Verify(tokenString)
		if err != nil {
			m.logger.WithError(err).Debug("Verification token rejected")
			m.respondUnauthorized(w, "Phone verification required")
			return
		}

		ctx := context.WithValue(r.Context(), verifiedPhoneKey, claims.Phone)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (m *VerificationMiddleware) respondUnauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"detail": message})
}
