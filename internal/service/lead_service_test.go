package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/rbyte/rbyte-api/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCreateRepo struct {
	repository.LeadRepository
}

func (failingCreateRepo) CreateEnrollment(context.Context, *models.Enrollment) error {
	return errors.New("disk full")
}

func TestLeadService_CreateAssignsID(t *testing.T) {
	repo := repository.NewMemoryLeadRepository(testLogger())
	svc := NewLeadService(repo, &fakeGateway{}, "", testMetrics(), testLogger())
	ctx := context.Background()

	reg := &models.Registration{Name: "Asha", Phone: "1234567890", CountryCode: "+91"}
	require.NoError(t, svc.CreateRegistration(ctx, reg))
	assert.Equal(t, int64(1), reg.ID)
	assert.False(t, reg.CreatedAt.IsZero())

	enrollment := &models.Enrollment{Name: "Asha", Email: "asha@example.com", Phone: "1234567890", CountryCode: "+91"}
	require.NoError(t, svc.CreateEnrollment(ctx, enrollment))
	assert.Equal(t, int64(1), enrollment.ID)
	assert.False(t, enrollment.PaymentStatus)
}

func TestLeadService_MasterclassNotifiesOwner(t *testing.T) {
	gateway := &fakeGateway{}
	svc := NewLeadService(repository.NewMemoryLeadRepository(testLogger()), gateway, "+919999999999", testMetrics(), testLogger())

	email := "asha@example.com"
	reg := &models.MasterclassRegistration{Name: "Asha", Email: &email, Phone: "1234567890", CountryCode: "+91"}
	require.NoError(t, svc.CreateMasterclassRegistration(context.Background(), reg))

	sent := gateway.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "+919999999999", sent[0].To)
	assert.Equal(t, "New Masterclass Registration\n\nName: Asha\nPhone: +911234567890\nEmail: asha@example.com", sent[0].Body)
}

func TestLeadService_MasterclassWithoutOwner(t *testing.T) {
	gateway := &fakeGateway{}
	svc := NewLeadService(repository.NewMemoryLeadRepository(testLogger()), gateway, "", testMetrics(), testLogger())

	require.NoError(t, svc.CreateMasterclassRegistration(context.Background(), &models.MasterclassRegistration{Name: "Asha"}))
	assert.Empty(t, gateway.messages())
}

func TestLeadService_OwnerNotificationFailureIsIgnored(t *testing.T) {
	gateway := &fakeGateway{err: errors.New("twilio down")}
	svc := NewLeadService(repository.NewMemoryLeadRepository(testLogger()), gateway, "+919999999999", testMetrics(), testLogger())

	reg := &models.MasterclassRegistration{Name: "Asha", Phone: "1234567890", CountryCode: "+91"}
	require.NoError(t, svc.CreateMasterclassRegistration(context.Background(), reg))
	assert.Equal(t, int64(1), reg.ID)
}

func TestLeadService_StoreFailure(t *testing.T) {
	repo := failingCreateRepo{LeadRepository: repository.NewMemoryLeadRepository(testLogger())}
	svc := NewLeadService(repo, &fakeGateway{}, "", testMetrics(), testLogger())

	err := svc.CreateEnrollment(context.Background(), &models.Enrollment{Name: "Asha"})
	assert.ErrorIs(t, err, ErrInternal)
}
