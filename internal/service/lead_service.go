package service

import (
	"context"
	"fmt"

	"github.com/rbyte/rbyte-api/internal/metrics"
	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/rbyte/rbyte-api/internal/repository"
	"github.com/rbyte/rbyte-api/internal/sms"
	"github.com/sirupsen/logrus"
)

type LeadService struct {
	repo       repository.LeadRepository
	gateway    sms.Gateway
	ownerPhone string
	metrics    *metrics.Metrics
	logger     *logrus.Logger
}

// NewLeadService builds the lead intake service. When ownerPhone is empty no
// owner notification is sent for masterclass signups.
func NewLeadService(repo repository.LeadRepository, gateway sms.Gateway, ownerPhone string, m *metrics.Metrics, logger *logrus.Logger) *LeadService {
	return &LeadService{
		repo:       repo,
		gateway:    gateway,
		ownerPhone: ownerPhone,
		metrics:    m,
		logger:     logger,
	}
}

func (s *LeadService) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	if err := s.repo.CreateRegistration(ctx, reg); err != nil {
		s.logger.WithError(err).Error("Failed to create registration")
		return internalError("create registration", err)
	}
	s.created(models.KindRegistration, reg.ID)
	return nil
}

func (s *LeadService) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	if err := s.repo.CreateEnrollment(ctx, enrollment); err != nil {
		s.logger.WithError(err).Error("Failed to create enrollment")
		return internalError("create enrollment", err)
	}
	s.created(models.KindEnrollment, enrollment.ID)
	return nil
}

func (s *LeadService) CreateMasterclassRegistration(ctx context.Context, reg *models.MasterclassRegistration) error {
	if err := s.repo.CreateMasterclassRegistration(ctx, reg); err != nil {
		s.logger.WithError(err).Error("Failed to create masterclass registration")
		return internalError("create masterclass registration", err)
	}
	s.created(models.KindMasterclassRegistration, reg.ID)
	s.notifyOwner(ctx, reg)
	return nil
}

func (s *LeadService) created(kind models.LeadKind, id int64) {
	s.metrics.RecordLeadCreated(string(kind))
	s.logger.WithFields(logrus.Fields{
		"kind": kind,
		"id":   id,
	}).Info("Lead created")
}

// notifyOwner is best effort; the signup is already stored.
func (s *LeadService) notifyOwner(ctx context.Context, reg *models.MasterclassRegistration) {
	if s.ownerPhone == "" {
		return
	}

	email := "-"
	if reg.Email != nil && *reg.Email != "" {
		email = *reg.Email
	}
	body := fmt.Sprintf("New Masterclass Registration\n\nName: %s\nPhone: %s\nEmail: %s",
		reg.Name, PhoneKey(reg.CountryCode, reg.Phone), email)

	if _, err := s.gateway.Send(ctx, s.ownerPhone, body); err != nil {
		s.logger.WithError(err).WithField("id", reg.ID).Warn("Failed to notify owner about masterclass registration")
	}
}
