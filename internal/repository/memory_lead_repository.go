package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/sirupsen/logrus"
)

// MemoryLeadRepository keeps leads in process memory. It is the default
// backend for development and the one the service tests run against.
type MemoryLeadRepository struct {
	mu            sync.RWMutex
	registrations []models.Registration
	enrollments   []models.Enrollment
	masterclass   []models.MasterclassRegistration
	now           func() time.Time
	logger        *logrus.Logger
}

func NewMemoryLeadRepository(logger *logrus.Logger) *MemoryLeadRepository {
	return &MemoryLeadRepository{
		now:    time.Now,
		logger: logger,
	}
}

// WithClock replaces the clock used to stamp CreatedAt.
func (r *MemoryLeadRepository) WithClock(now func() time.Time) *MemoryLeadRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
	return r
}

func (r *MemoryLeadRepository) CreateRegistration(_ context.Context, reg *models.Registration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg.ID = int64(len(r.registrations)) + 1
	reg.CreatedAt = r.now()
	r.registrations = append(r.registrations, *reg)
	return nil
}

func (r *MemoryLeadRepository) CreateEnrollment(_ context.Context, enrollment *models.Enrollment) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	enrollment.ID = int64(len(r.enrollments)) + 1
	enrollment.CreatedAt = r.now()
	r.enrollments = append(r.enrollments, *enrollment)
	return nil
}

func (r *MemoryLeadRepository) CreateMasterclassRegistration(_ context.Context, reg *models.MasterclassRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reg.ID = int64(len(r.masterclass)) + 1
	reg.CreatedAt = r.now()
	r.masterclass = append(r.masterclass, *reg)
	return nil
}

func (r *MemoryLeadRepository) Count(_ context.Context, kind models.LeadKind) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch kind {
	case models.KindRegistration:
		return len(r.registrations), nil
	case models.KindEnrollment:
		return len(r.enrollments), nil
	case models.KindMasterclassRegistration:
		return len(r.masterclass), nil
	}
	return 0, errUnknownKind(kind)
}

func (r *MemoryLeadRepository) ListRegistrations(_ context.Context, offset, limit int) ([]models.Registration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return newestFirst(r.registrations, offset, limit, func(x models.Registration) (time.Time, int64) {
		return x.CreatedAt, x.ID
	}), nil
}

func (r *MemoryLeadRepository) ListEnrollments(_ context.Context, offset, limit int) ([]models.Enrollment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return newestFirst(r.enrollments, offset, limit, func(x models.Enrollment) (time.Time, int64) {
		return x.CreatedAt, x.ID
	}), nil
}

func (r *MemoryLeadRepository) ListMasterclassRegistrations(_ context.Context, offset, limit int) ([]models.MasterclassRegistration, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return newestFirst(r.masterclass, offset, limit, func(x models.MasterclassRegistration) (time.Time, int64) {
		return x.CreatedAt, x.ID
	}), nil
}

func (r *MemoryLeadRepository) Ping(context.Context) error {
	return nil
}

// newestFirst copies rows, orders them by created_at then id, both
// descending, and applies offset/limit.
func newestFirst[T any](rows []T, offset, limit int, key func(T) (time.Time, int64)) []T {
	sorted := make([]T, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		ti, idi := key(sorted[i])
		tj, idj := key(sorted[j])
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return idi > idj
	})

	offset, limit = clampWindow(offset, limit)
	if offset >= len(sorted) || limit == 0 {
		return []T{}
	}
	end := min(offset+limit, len(sorted))
	return sorted[offset:end]
}
