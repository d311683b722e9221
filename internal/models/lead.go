package models

import (
	"time"

	"github.com/uptrace/bun"
)

type LeadKind string

const (
	KindRegistration            LeadKind = "registrations"
	KindEnrollment              LeadKind = "enrollments"
	KindMasterclassRegistration LeadKind = "masterclass_registrations"
)

// LeadKinds lists every record kind in display order.
var LeadKinds = []LeadKind{KindRegistration, KindEnrollment, KindMasterclassRegistration}

// Registration is a basic expression of interest in the course.
type Registration struct {
	bun.BaseModel `bun:"table:registrations,alias:r" json:"-" dynamodbav:"-"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id" dynamodbav:"id"`
	Name        string    `bun:"name,notnull" json:"name" dynamodbav:"name"`
	Email       *string   `bun:"email" json:"email" dynamodbav:"email,omitempty"`
	Phone       string    `bun:"phone,notnull" json:"phone" dynamodbav:"phone"`
	CountryCode string    `bun:"country_code,notnull" json:"country_code" dynamodbav:"country_code"`
	HeardFrom   *string   `bun:"heard_from" json:"heard_from" dynamodbav:"heard_from,omitempty"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at" dynamodbav:"created_at"`
}

// Enrollment is a full course application.
type Enrollment struct {
	bun.BaseModel `bun:"table:enrollments,alias:e" json:"-" dynamodbav:"-"`

	ID                    int64     `bun:"id,pk,autoincrement" json:"id" dynamodbav:"id"`
	Name                  string    `bun:"name,notnull" json:"name" dynamodbav:"name"`
	Email                 string    `bun:"email,notnull" json:"email" dynamodbav:"email"`
	Phone                 string    `bun:"phone,notnull" json:"phone" dynamodbav:"phone"`
	CountryCode           string    `bun:"country_code,notnull" json:"country_code" dynamodbav:"country_code"`
	CurrentRole           string    `bun:"current_role,notnull" json:"current_role" dynamodbav:"current_role"`
	Experience            string    `bun:"experience,notnull" json:"experience" dynamodbav:"experience"`
	ProgrammingExperience string    `bun:"programming_experience,notnull" json:"programming_experience" dynamodbav:"programming_experience"`
	Goals                 string    `bun:"goals,notnull,type:text" json:"goals" dynamodbav:"goals"`
	HeardFrom             *string   `bun:"heard_from" json:"heard_from" dynamodbav:"heard_from,omitempty"`
	PreferredBatch        string    `bun:"preferred_batch,notnull" json:"preferred_batch" dynamodbav:"preferred_batch"`
	CreatedAt             time.Time `bun:"created_at,notnull" json:"created_at" dynamodbav:"created_at"`
	PaymentStatus         bool      `bun:"payment_status,notnull,default:false" json:"payment_status" dynamodbav:"payment_status"`
}

// MasterclassRegistration is a signup for the free masterclass.
type MasterclassRegistration struct {
	bun.BaseModel `bun:"table:masterclass_registrations,alias:m" json:"-" dynamodbav:"-"`

	ID          int64     `bun:"id,pk,autoincrement" json:"id" dynamodbav:"id"`
	Name        string    `bun:"name,notnull" json:"name" dynamodbav:"name"`
	Email       *string   `bun:"email" json:"email" dynamodbav:"email,omitempty"`
	Phone       string    `bun:"phone,notnull" json:"phone" dynamodbav:"phone"`
	CountryCode string    `bun:"country_code,notnull" json:"country_code" dynamodbav:"country_code"`
	CreatedAt   time.Time `bun:"created_at,notnull" json:"created_at" dynamodbav:"created_at"`
	Attended    bool      `bun:"attended,notnull,default:false" json:"attended" dynamodbav:"attended"`
}
