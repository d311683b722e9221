package models

import "time"

// OTPData is the pending code for one phone key. The code itself is never stored,
// only its bcrypt hash.
type OTPData struct {
	OTPHash   string    `json:"otp_hash" dynamodbav:"OTPHash"`
	Phone     string    `json:"phone" dynamodbav:"Phone"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"CreatedAt"`
	ExpiresAt time.Time `json:"expires_at" dynamodbav:"ExpiresAt"`
}

func (d *OTPData) Expired(now time.Time) bool {
	return now.After(d.ExpiresAt)
}
