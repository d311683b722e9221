package repository

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/sirupsen/logrus"
)

// Fixed width so that lexical order of sort keys equals chronological order.
const sortKeyTimeLayout = "2006-01-02T15:04:05.000000000Z"

// DynamoLeadRepository stores every lead kind in one partition per kind:
//
//	PK = LEAD#<kind>, SK = <created_at>#<zero padded id>
//
// IDs come from a per-kind atomic counter item (PK = COUNTER#<kind>).
type DynamoLeadRepository struct {
	client    DynamoDBAPI
	tableName string
	now       func() time.Time
	logger    *logrus.Logger
}

func NewDynamoLeadRepository(client DynamoDBAPI, tableName string, logger *logrus.Logger) *DynamoLeadRepository {
	return &DynamoLeadRepository{
		client:    client,
		tableName: tableName,
		now:       time.Now,
		logger:    logger,
	}
}

func leadPK(kind models.LeadKind) string {
	return "LEAD#" + string(kind)
}

func leadSK(createdAt time.Time, id int64) string {
	return fmt.Sprintf("%s#%020d", createdAt.UTC().Format(sortKeyTimeLayout), id)
}

func (r *DynamoLeadRepository) nextID(ctx context.Context, kind models.LeadKind) (int64, error) {
	result, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "COUNTER#" + string(kind)},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		UpdateExpression:         aws.String("ADD #value :one"),
		ExpressionAttributeNames: map[string]string{"#value": "Value"},
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":one": &types.AttributeValueMemberN{Value: "1"},
		},
		ReturnValues: types.ReturnValueUpdatedNew,
	})
	if err != nil {
		r.logger.WithError(err).WithField("kind", kind).Error("Failed to allocate lead ID")
		return 0, fmt.Errorf("failed to allocate id: %w", err)
	}

	attr, ok := result.Attributes["Value"].(*types.AttributeValueMemberN)
	if !ok {
		return 0, fmt.Errorf("counter for %s returned no value", kind)
	}
	return strconv.ParseInt(attr.Value, 10, 64)
}

func (r *DynamoLeadRepository) put(ctx context.Context, kind models.LeadKind, id int64, createdAt time.Time, record interface{}) error {
	item, err := attributevalue.MarshalMap(record)
	if err != nil {
		r.logger.WithError(err).Error("Failed to marshal lead for DynamoDB")
		return fmt.Errorf("failed to marshal %s record: %w", kind, err)
	}

	item["PK"] = &types.AttributeValueMemberS{Value: leadPK(kind)}
	item["SK"] = &types.AttributeValueMemberS{Value: leadSK(createdAt, id)}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(r.tableName),
		Item:                item,
		ConditionExpression: aws.String("attribute_not_exists(PK)"),
	})
	if err != nil {
		r.logger.WithError(err).WithField("kind", kind).Error("Failed to create lead in DynamoDB")
		return fmt.Errorf("failed to create %s record: %w", kind, err)
	}

	return nil
}

func (r *DynamoLeadRepository) CreateRegistration(ctx context.Context, reg *models.Registration) error {
	id, err := r.nextID(ctx, models.KindRegistration)
	if err != nil {
		return err
	}
	reg.ID = id
	reg.CreatedAt = r.now()
	return r.put(ctx, models.KindRegistration, reg.ID, reg.CreatedAt, reg)
}

func (r *DynamoLeadRepository) CreateEnrollment(ctx context.Context, enrollment *models.Enrollment) error {
	id, err := r.nextID(ctx, models.KindEnrollment)
	if err != nil {
		return err
	}
	enrollment.ID = id
	enrollment.CreatedAt = r.now()
	return r.put(ctx, models.KindEnrollment, enrollment.ID, enrollment.CreatedAt, enrollment)
}

func (r *DynamoLeadRepository) CreateMasterclassRegistration(ctx context.Context, reg *models.MasterclassRegistration) error {
	id, err := r.nextID(ctx, models.KindMasterclassRegistration)
	if err != nil {
		return err
	}
	reg.ID = id
	reg.CreatedAt = r.now()
	return r.put(ctx, models.KindMasterclassRegistration, reg.ID, reg.CreatedAt, reg)
}

func (r *DynamoLeadRepository) Count(ctx context.Context, kind models.LeadKind) (int, error) {
	var (
		count    int
		startKey map[string]types.AttributeValue
	)
	for {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: leadPK(kind)},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to count %s: %w", kind, err)
		}
		count += int(result.Count)
		if len(result.LastEvaluatedKey) == 0 {
			return count, nil
		}
		startKey = result.LastEvaluatedKey
	}
}

func (r *DynamoLeadRepository) ListRegistrations(ctx context.Context, offset, limit int) ([]models.Registration, error) {
	return queryNewestFirst[models.Registration](ctx, r, models.KindRegistration, offset, limit)
}

func (r *DynamoLeadRepository) ListEnrollments(ctx context.Context, offset, limit int) ([]models.Enrollment, error) {
	return queryNewestFirst[models.Enrollment](ctx, r, models.KindEnrollment, offset, limit)
}

func (r *DynamoLeadRepository) ListMasterclassRegistrations(ctx context.Context, offset, limit int) ([]models.MasterclassRegistration, error) {
	return queryNewestFirst[models.MasterclassRegistration](ctx, r, models.KindMasterclassRegistration, offset, limit)
}

func (r *DynamoLeadRepository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	return err
}

// queryNewestFirst walks the kind's partition backwards and skips the first
// offset items. DynamoDB has no server-side offset, so deep pages cost more.
func queryNewestFirst[T any](ctx context.Context, r *DynamoLeadRepository, kind models.LeadKind, offset, limit int) ([]T, error) {
	offset, limit = clampWindow(offset, limit)
	if limit == 0 {
		return []T{}, nil
	}
	want := offset + limit

	var (
		items    []map[string]types.AttributeValue
		startKey map[string]types.AttributeValue
	)
	for len(items) < want {
		result, err := r.client.Query(ctx, &dynamodb.QueryInput{
			TableName:              aws.String(r.tableName),
			KeyConditionExpression: aws.String("PK = :pk"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk": &types.AttributeValueMemberS{Value: leadPK(kind)},
			},
			ScanIndexForward:  aws.Bool(false),
			Limit:             aws.Int32(int32(min(want-len(items), math.MaxInt32))),
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", kind, err)
		}
		items = append(items, result.Items...)
		if len(result.LastEvaluatedKey) == 0 {
			break
		}
		startKey = result.LastEvaluatedKey
	}

	rows := []T{}
	if offset >= len(items) {
		return rows, nil
	}
	end := min(want, len(items))
	if err := attributevalue.UnmarshalListOfMaps(items[offset:end], &rows); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", kind, err)
	}
	return rows, nil
}
