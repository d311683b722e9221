package handlers

import (
	"time"

	"github.com/rbyte/rbyte-api/internal/models"
)

type RegistrationItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email"`
	Phone       string    `json:"phone"`
	CountryCode string    `json:"country_code"`
	HeardFrom   *string   `json:"heard_from"`
	CreatedAt   time.Time `json:"created_at"`
}

type EnrollmentItem struct {
	ID                    int64     `json:"id"`
	Name                  string    `json:"name"`
	Email                 string    `json:"email"`
	Phone                 string    `json:"phone"`
	CountryCode           string    `json:"country_code"`
	CurrentRole           string    `json:"current_role"`
	Experience            string    `json:"experience"`
	ProgrammingExperience string    `json:"programming_experience"`
	Goals                 string    `json:"goals"`
	HeardFrom             *string   `json:"heard_from"`
	PreferredBatch        string    `json:"preferred_batch"`
	CreatedAt             time.Time `json:"created_at"`
	PaymentStatus         bool      `json:"payment_status"`
}

type MasterclassRegistrationItem struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email"`
	Phone       string    `json:"phone"`
	CountryCode string    `json:"country_code"`
	CreatedAt   time.Time `json:"created_at"`
	Attended    bool      `json:"attended"`
}

func toRegistrationItem(r models.Registration) RegistrationItem {
	return RegistrationItem{
		ID:          r.ID,
		Name:        r.Name,
		Email:       r.Email,
		Phone:       r.Phone,
		CountryCode: r.CountryCode,
		HeardFrom:   r.HeardFrom,
		CreatedAt:   r.CreatedAt,
	}
}

func toEnrollmentItem(e models.Enrollment) EnrollmentItem {
	return EnrollmentItem{
		ID:                    e.ID,
		Name:                  e.Name,
		Email:                 e.Email,
		Phone:                 e.Phone,
		CountryCode:           e.CountryCode,
		CurrentRole:           e.CurrentRole,
		Experience:            e.Experience,
		ProgrammingExperience: e.ProgrammingExperience,
		Goals:                 e.Goals,
		HeardFrom:             e.HeardFrom,
		PreferredBatch:        e.PreferredBatch,
		CreatedAt:             e.CreatedAt,
		PaymentStatus:         e.PaymentStatus,
	}
}

func toMasterclassRegistrationItem(m models.MasterclassRegistration) MasterclassRegistrationItem {
	return MasterclassRegistrationItem{
		ID:          m.ID,
		Name:        m.Name,
		Email:       m.Email,
		Phone:       m.Phone,
		CountryCode: m.CountryCode,
		CreatedAt:   m.CreatedAt,
		Attended:    m.Attended,
	}
}

func mapItems[T, U any](items []T, fn func(T) U) []U {
	out := make([]U, 0, len(items))
	for _, item := range items {
		out = append(out, fn(item))
	}
	return out
}
