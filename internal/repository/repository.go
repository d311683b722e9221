package repository

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/rbyte/rbyte-api/internal/models"
)

var ErrNotFound = errors.New("not found")

func errUnknownKind(kind models.LeadKind) error {
	return fmt.Errorf("unknown lead kind %q", kind)
}

// clampWindow normalises a list window: negative values become zero and
// limit is capped so that offset+limit cannot overflow.
func clampWindow(offset, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}
	if limit > math.MaxInt-offset {
		limit = math.MaxInt - offset
	}
	return offset, limit
}

// OTPStore keeps at most one pending OTP per phone key. Callers are
// responsible for serialising read-modify-write sequences on a key.
type OTPStore interface {
	Save(ctx context.Context, phoneKey string, data models.OTPData) error
	// Get returns ErrNotFound when no entry exists for phoneKey.
	Get(ctx context.Context, phoneKey string) (*models.OTPData, error)
	Delete(ctx context.Context, phoneKey string) error
	Size(ctx context.Context) (int, error)
}

// LeadRepository is an append-only store for the three lead kinds. Create
// methods assign ID and CreatedAt on the passed record.
type LeadRepository interface {
	CreateRegistration(ctx context.Context, reg *models.Registration) error
	CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error
	CreateMasterclassRegistration(ctx context.Context, reg *models.MasterclassRegistration) error

	Count(ctx context.Context, kind models.LeadKind) (int, error)

	// List methods return records ordered by created_at descending, newest first.
	ListRegistrations(ctx context.Context, offset, limit int) ([]models.Registration, error)
	ListEnrollments(ctx context.Context, offset, limit int) ([]models.Enrollment, error)
	ListMasterclassRegistrations(ctx context.Context, offset, limit int) ([]models.MasterclassRegistration, error)

	Ping(ctx context.Context) error
}

// DynamoDBAPI is the subset of *dynamodb.Client used by the DynamoDB backends.
type DynamoDBAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	DeleteItem(ctx context.Context, params *dynamodb.DeleteItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error)
	UpdateItem(ctx context.Context, params *dynamodb.UpdateItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.UpdateItemOutput, error)
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
	Scan(ctx context.Context, params *dynamodb.ScanInput, optFns ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error)
	DescribeTable(ctx context.Context, params *dynamodb.DescribeTableInput, optFns ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error)
}
