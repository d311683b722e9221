package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/uptrace/bun"
)

type PostgresLeadRepository struct {
	db     *bun.DB
	now    func() time.Time
	logger *logrus.Logger
}

func NewPostgresLeadRepository(db *bun.DB, logger *logrus.Logger) *PostgresLeadRepository {
	return &PostgresLeadRepository{
		db:     db,
		now:    time.Now,
		logger: logger,
	}
}

// Migrate creates the lead tables and their created_at indexes if missing.
func (r *PostgresLeadRepository) Migrate(ctx context.Context) error {
	tables := []struct {
		model interface{}
		name  string
	}{
		{(*models.Registration)(nil), string(models.KindRegistration)},
		{(*models.Enrollment)(nil), string(models.KindEnrollment)},
		{(*models.MasterclassRegistration)(nil), string(models.KindMasterclassRegistration)},
	}

	for _, t := range tables {
		if _, err := r.db.NewCreateTable().Model(t.model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table %s: %w", t.name, err)
		}
		_, err := r.db.NewCreateIndex().
			Model(t.model).
			Index(t.name + "_created_at_idx").
			Column("created_at").
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to create index on %s: %w", t.name, err)
		}
	}

	r.logger.Info("Database migrations completed")
	return nil
}

func (r *PostgresLeadRepository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	reg.ID = 0
	reg.CreatedAt = r.now()
	if _, err := r.db.NewInsert().Model(reg).Returning("id").Exec(ctx); err != nil {
		r.logger.WithError(err).Error("Failed to insert registration")
		return fmt.Errorf("failed to create registration: %w", err)
	}
	return nil
}

func (r *PostgresLeadRepository) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	enrollment.ID = 0
	enrollment.CreatedAt = r.now()
	if _, err := r.db.NewInsert().Model(enrollment).Returning("id").Exec(ctx); err != nil {
		r.logger.WithError(err).Error("Failed to insert enrollment")
		return fmt.Errorf("failed to create enrollment: %w", err)
	}
	return nil
}

func (r *PostgresLeadRepository) CreateMasterclassRegistration(ctx context.Context, reg *models.MasterclassRegistration) error {
	reg.ID = 0
	reg.CreatedAt = r.now()
	if _, err := r.db.NewInsert().Model(reg).Returning("id").Exec(ctx); err != nil {
		r.logger.WithError(err).Error("Failed to insert masterclass registration")
		return fmt.Errorf("failed to create masterclass registration: %w", err)
	}
	return nil
}

func (r *PostgresLeadRepository) Count(ctx context.Context, kind models.LeadKind) (int, error) {
	var model interface{}
	switch kind {
	case models.KindRegistration:
		model = (*models.Registration)(nil)
	case models.KindEnrollment:
		model = (*models.Enrollment)(nil)
	case models.KindMasterclassRegistration:
		model = (*models.MasterclassRegistration)(nil)
	default:
		return 0, errUnknownKind(kind)
	}

	count, err := r.db.NewSelect().Model(model).Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", kind, err)
	}
	return count, nil
}

func (r *PostgresLeadRepository) ListRegistrations(ctx context.Context, offset, limit int) ([]models.Registration, error) {
	rows := []models.Registration{}
	offset, limit = clampWindow(offset, limit)
	if limit == 0 {
		return rows, nil
	}
	if err := r.newestFirst(&rows, offset, limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list registrations: %w", err)
	}
	return rows, nil
}

func (r *PostgresLeadRepository) ListEnrollments(ctx context.Context, offset, limit int) ([]models.Enrollment, error) {
	rows := []models.Enrollment{}
	offset, limit = clampWindow(offset, limit)
	if limit == 0 {
		return rows, nil
	}
	if err := r.newestFirst(&rows, offset, limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list enrollments: %w", err)
	}
	return rows, nil
}

func (r *PostgresLeadRepository) ListMasterclassRegistrations(ctx context.Context, offset, limit int) ([]models.MasterclassRegistration, error) {
	rows := []models.MasterclassRegistration{}
	offset, limit = clampWindow(offset, limit)
	if limit == 0 {
		return rows, nil
	}
	if err := r.newestFirst(&rows, offset, limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to list masterclass registrations: %w", err)
	}
	return rows, nil
}

func (r *PostgresLeadRepository) newestFirst(dest interface{}, offset, limit int) *bun.SelectQuery {
	return r.db.NewSelect().
		Model(dest).
		Order("created_at DESC", "id DESC").
		Offset(offset).
		Limit(limit)
}

func (r *PostgresLeadRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
