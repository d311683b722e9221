package service

import (
	"context"
	"time"

	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/rbyte/rbyte-api/internal/repository"
	"github.com/sirupsen/logrus"
)

const (
	MaxPageSize   = 100
	RecentLeadMax = 5
)

type ListingService struct {
	repo   repository.LeadRepository
	logger *logrus.Logger
	now    func() time.Time
}

func NewListingService(repo repository.LeadRepository, logger *logrus.Logger) *ListingService {
	return &ListingService{
		repo:   repo,
		logger: logger,
		now:    time.Now,
	}
}

func (s *ListingService) ListRegistrations(ctx context.Context, page, pageSize int) (*models.Page[models.Registration], error) {
	return listPage(ctx, s, models.KindRegistration, page, pageSize, s.repo.ListRegistrations)
}

func (s *ListingService) ListEnrollments(ctx context.Context, page, pageSize int) (*models.Page[models.Enrollment], error) {
	return listPage(ctx, s, models.KindEnrollment, page, pageSize, s.repo.ListEnrollments)
}

func (s *ListingService) ListMasterclassRegistrations(ctx context.Context, page, pageSize int) (*models.Page[models.MasterclassRegistration], error) {
	return listPage(ctx, s, models.KindMasterclassRegistration, page, pageSize, s.repo.ListMasterclassRegistrations)
}

// listPage returns one newest-first page of kind. A page past the end of a
// non-empty listing is answered with page 1 rather than an empty page.
func listPage[T any](ctx context.Context, s *ListingService, kind models.LeadKind, page, pageSize int, fetch func(ctx context.Context, offset, limit int) ([]T, error)) (*models.Page[T], error) {
	if page < 1 {
		return nil, validationError("page must be greater than or equal to 1")
	}
	if pageSize < 1 || pageSize > MaxPageSize {
		return nil, validationError("page_size must be between 1 and %d", MaxPageSize)
	}

	log := s.logger.WithField("kind", kind)

	total, err := s.repo.Count(ctx, kind)
	if err != nil {
		log.WithError(err).Error("Failed to count records")
		return nil, internalError("count "+string(kind), err)
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + pageSize - 1) / pageSize
	}

	var items []T
	if total > 0 {
		if page > totalPages {
			log.WithFields(logrus.Fields{
				"requested_page": page,
				"total_pages":    totalPages,
			}).Info("Requested page out of range, returning first page")
			page = 1
		}

		// page <= totalPages here, so the offset cannot overflow.
		items, err = fetch(ctx, (page-1)*pageSize, pageSize)
		if err != nil {
			log.WithError(err).Error("Failed to fetch records")
			return nil, internalError("fetch "+string(kind), err)
		}
	}

	if items == nil {
		items = []T{}
	}

	log.WithFields(logrus.Fields{
		"returned": len(items),
		"total":    total,
	}).Debug("Listing query completed")

	return &models.Page[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Summary counts every kind and returns the most recent records of each.
// Any failing sub-query fails the whole summary.
func (s *ListingService) Summary(ctx context.Context) (*models.LeadSummary, error) {
	counts := make(map[models.LeadKind]int, len(models.LeadKinds))
	for _, kind := range models.LeadKinds {
		n, err := s.repo.Count(ctx, kind)
		if err != nil {
			s.logger.WithError(err).WithField("kind", kind).Error("Failed to count records")
			return nil, internalError("count "+string(kind), err)
		}
		counts[kind] = n
	}

	registrations, err := s.repo.ListRegistrations(ctx, 0, RecentLeadMax)
	if err != nil {
		return nil, internalError("fetch recent registrations", err)
	}
	enrollments, err := s.repo.ListEnrollments(ctx, 0, RecentLeadMax)
	if err != nil {
		return nil, internalError("fetch recent enrollments", err)
	}
	masterclass, err := s.repo.ListMasterclassRegistrations(ctx, 0, RecentLeadMax)
	if err != nil {
		return nil, internalError("fetch recent masterclass registrations", err)
	}

	summary := &models.LeadSummary{
		Counts: models.LeadCounts{
			Registrations:            counts[models.KindRegistration],
			Enrollments:              counts[models.KindEnrollment],
			MasterclassRegistrations: counts[models.KindMasterclassRegistration],
		},
		Registrations:            registrations,
		Enrollments:              enrollments,
		MasterclassRegistrations: masterclass,
		Timestamp:                s.now(),
	}
	summary.Counts.TotalLeads = summary.Counts.Registrations + summary.Counts.Enrollments + summary.Counts.MasterclassRegistrations

	return summary, nil
}
