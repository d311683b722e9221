package config

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SMS_PROVIDER", "log")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, StoreMemory, cfg.OTP.Store)
	assert.Equal(t, 5*time.Minute, cfg.OTP.Expiry)
	assert.Equal(t, 10*time.Minute, cfg.Verification.Expiry)
	assert.False(t, cfg.Verification.Required)
	assert.False(t, cfg.Server.EnableDebug)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SMS_PROVIDER", "LOG")
	t.Setenv("PORT", "9090")
	t.Setenv("OTP_EXPIRY", "90s")
	t.Setenv("OTP_STORE", "redis")
	t.Setenv("ENABLE_DEBUG_ENDPOINTS", "true")
	t.Setenv("OTP_HASH_COST", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, SMSProviderLog, cfg.SMS.Provider)
	assert.Equal(t, 90*time.Second, cfg.OTP.Expiry)
	assert.Equal(t, StoreRedis, cfg.OTP.Store)
	assert.True(t, cfg.Server.EnableDebug)
	assert.Equal(t, 10, cfg.OTP.HashCost)
}

func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "twilio without credentials",
			env:     map[string]string{"SMS_PROVIDER": "twilio"},
			wantErr: "TWILIO_ACCOUNT_SID",
		},
		{
			name:    "postgres without dsn",
			env:     map[string]string{"SMS_PROVIDER": "log", "STORE_DRIVER": "postgres"},
			wantErr: "DATABASE_URL",
		},
		{
			name:    "unknown store",
			env:     map[string]string{"SMS_PROVIDER": "log", "STORE_DRIVER": "sqlite"},
			wantErr: "unsupported STORE_DRIVER",
		},
		{
			name:    "unknown otp store",
			env:     map[string]string{"SMS_PROVIDER": "log", "OTP_STORE": "memcached"},
			wantErr: "unsupported OTP_STORE",
		},
		{
			name:    "short verification secret",
			env:     map[string]string{"SMS_PROVIDER": "log", "VERIFICATION_SECRET": "short"},
			wantErr: "at least 32 bytes",
		},
		{
			name:    "verification required without secret",
			env:     map[string]string{"SMS_PROVIDER": "log", "REQUIRE_VERIFICATION": "true"},
			wantErr: "VERIFICATION_SECRET is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.wantErr), err.Error())
		})
	}
}

func TestLoad_TwilioConfigured(t *testing.T) {
	t.Setenv("SMS_PROVIDER", "twilio")
	t.Setenv("TWILIO_ACCOUNT_SID", "AC123")
	t.Setenv("TWILIO_AUTH_TOKEN", "secret")
	t.Setenv("TWILIO_PHONE_NUMBER", "+15005550006")
	t.Setenv("OWNER_PHONE", "+919999999999")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "+15005550006", cfg.SMS.FromNumber)
	assert.Equal(t, "+919999999999", cfg.SMS.OwnerPhone)
}
