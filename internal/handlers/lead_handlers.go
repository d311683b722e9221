package handlers

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rbyte/rbyte-api/internal/middleware"
	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/rbyte/rbyte-api/internal/service"
	"github.com/sirupsen/logrus"
)

type LeadHandlers struct {
	leadService *service.LeadService
	validate    *validator.Validate
	logger      *logrus.Logger
}

func NewLeadHandlers(leadService *service.LeadService, logger *logrus.Logger) *LeadHandlers {
	return &LeadHandlers{
		leadService: leadService,
		validate:    newValidator(),
		logger:      logger,
	}
}

type RegistrationRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Email       *string `json:"email" validate:"omitempty,email,max=254"`
	Phone       string  `json:"phone" validate:"required,max=20"`
	CountryCode string  `json:"country_code" validate:"required,max=6"`
	HeardFrom   *string `json:"heard_from" validate:"omitempty,max=200"`
}

func (r *RegistrationRequest) normalize() {
	r.Name = trimmed(r.Name)
	r.Email = trimmedOptional(r.Email)
	r.Phone = trimmed(r.Phone)
	r.CountryCode = countryCodeOrDefault(r.CountryCode)
	r.HeardFrom = trimmedOptional(r.HeardFrom)
}

type EnrollmentRequest struct {
	Name                  string  `json:"name" validate:"required,max=200"`
	Email                 string  `json:"email" validate:"required,email,max=254"`
	Phone                 string  `json:"phone" validate:"required,max=20"`
	CountryCode           string  `json:"country_code" validate:"required,max=6"`
	CurrentRole           string  `json:"current_role" validate:"required,max=200"`
	Experience            string  `json:"experience" validate:"required,max=100"`
	ProgrammingExperience string  `json:"programming_experience" validate:"required,max=100"`
	Goals                 string  `json:"goals" validate:"required,max=5000"`
	HeardFrom             *string `json:"heard_from" validate:"omitempty,max=200"`
	PreferredBatch        string  `json:"preferred_batch" validate:"required,max=100"`
}

func (r *EnrollmentRequest) normalize() {
	r.Name = trimmed(r.Name)
	r.Email = trimmed(r.Email)
	r.Phone = trimmed(r.Phone)
	r.CountryCode = countryCodeOrDefault(r.CountryCode)
	r.CurrentRole = trimmed(r.CurrentRole)
	r.Experience = trimmed(r.Experience)
	r.ProgrammingExperience = trimmed(r.ProgrammingExperience)
	r.Goals = trimmed(r.Goals)
	r.HeardFrom = trimmedOptional(r.HeardFrom)
	r.PreferredBatch = trimmed(r.PreferredBatch)
}

type MasterclassRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Phone       string  `json:"phone" validate:"required,max=20"`
	CountryCode string  `json:"country_code" validate:"required,max=6"`
	Email       *string `json:"email" validate:"omitempty,email,max=254"`
}

func (r *MasterclassRequest) normalize() {
	r.Name = trimmed(r.Name)
	r.Phone = trimmed(r.Phone)
	r.CountryCode = countryCodeOrDefault(r.CountryCode)
	r.Email = trimmedOptional(r.Email)
}

type CreatedResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func (h *LeadHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegistrationRequest
	if msg, ok := decodeAndValidate(r, h.validate, &req); !ok {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}
	if !h.checkVerifiedPhone(w, r, req.CountryCode, req.Phone) {
		return
	}

	reg := &models.Registration{
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		CountryCode: req.CountryCode,
		HeardFrom:   req.HeardFrom,
	}
	if err := h.leadService.CreateRegistration(r.Context(), reg); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to save registration")
		return
	}

	respondWithJSON(w, http.StatusOK, CreatedResponse{Success: true, Message: "Registration successful", ID: reg.ID})
}

func (h *LeadHandlers) Enroll(w http.ResponseWriter, r *http.Request) {
	var req EnrollmentRequest
	if msg, ok := decodeAndValidate(r, h.validate, &req); !ok {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}
	if !h.checkVerifiedPhone(w, r, req.CountryCode, req.Phone) {
		return
	}

	enrollment := &models.Enrollment{
		Name:                  req.Name,
		Email:                 req.Email,
		Phone:                 req.Phone,
		CountryCode:           req.CountryCode,
		CurrentRole:           req.CurrentRole,
		Experience:            req.Experience,
		ProgrammingExperience: req.ProgrammingExperience,
		Goals:                 req.Goals,
		HeardFrom:             req.HeardFrom,
		PreferredBatch:        req.PreferredBatch,
	}
	if err := h.leadService.CreateEnrollment(r.Context(), enrollment); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to save enrollment")
		return
	}

	respondWithJSON(w, http.StatusOK, CreatedResponse{Success: true, Message: "Enrollment successful", ID: enrollment.ID})
}

func (h *LeadHandlers) RegisterMasterclass(w http.ResponseWriter, r *http.Request) {
	var req MasterclassRequest
	if msg, ok := decodeAndValidate(r, h.validate, &req); !ok {
		respondWithError(w, http.StatusBadRequest, msg)
		return
	}
	if !h.checkVerifiedPhone(w, r, req.CountryCode, req.Phone) {
		return
	}

	reg := &models.MasterclassRegistration{
		Name:        req.Name,
		Phone:       req.Phone,
		CountryCode: req.CountryCode,
		Email:       req.Email,
	}
	if err := h.leadService.CreateMasterclassRegistration(r.Context(), reg); err != nil {
		respondWithServiceError(w, h.logger, err, "Failed to save masterclass registration")
		return
	}

	respondWithJSON(w, http.StatusOK, CreatedResponse{Success: true, Message: "Masterclass registration successful", ID: reg.ID})
}

// checkVerifiedPhone enforces that a verification token, when the route
// requires one, was issued for the phone being submitted.
func (h *LeadHandlers) checkVerifiedPhone(w http.ResponseWriter, r *http.Request, countryCode, phone string) bool {
	verified, guarded := middleware.VerifiedPhone(r.Context())
	if !guarded {
		return true
	}
	if verified != service.PhoneKey(countryCode, phone) {
		h.logger.WithFields(logrus.Fields{
			"verified":  verified,
			"submitted": service.PhoneKey(countryCode, phone),
		}).Warn("Verification token does not match submitted phone")
		respondWithError(w, http.StatusBadRequest, "Verified phone number does not match the submitted phone number")
		return false
	}
	return true
}
