package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/rbyte/rbyte-api/internal/models"
	"github.com/sirupsen/logrus"
)

const dynamoOTPPrefix = "OTP#"

// DynamoOTPStore stores OTP entries in the shared single table. The item TTL
// is ExpiresAt plus retention, see RedisOTPStore for why.
type DynamoOTPStore struct {
	client    DynamoDBAPI
	tableName string
	retention time.Duration
	logger    *logrus.Logger
}

func NewDynamoOTPStore(client DynamoDBAPI, tableName string, retention time.Duration, logger *logrus.Logger) *DynamoOTPStore {
	return &DynamoOTPStore{
		client:    client,
		tableName: tableName,
		retention: retention,
		logger:    logger,
	}
}

func otpKey(phoneKey string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: dynamoOTPPrefix + phoneKey},
		"SK": &types.AttributeValueMemberS{Value: "METADATA"},
	}
}

// Save stores OTP data in DynamoDB with TTL, replacing any previous entry.
func (r *DynamoOTPStore) Save(ctx context.Context, phoneKey string, data models.OTPData) error {
	ttl := data.ExpiresAt.Add(r.retention).Unix()

	item := otpKey(phoneKey)
	item["OTPHash"] = &types.AttributeValueMemberS{Value: data.OTPHash}
	item["Phone"] = &types.AttributeValueMemberS{Value: data.Phone}
	item["CreatedAt"] = &types.AttributeValueMemberS{Value: data.CreatedAt.Format(time.RFC3339Nano)}
	item["ExpiresAt"] = &types.AttributeValueMemberS{Value: data.ExpiresAt.Format(time.RFC3339Nano)}
	item["TTL"] = &types.AttributeValueMemberN{Value: fmt.Sprintf("%d", ttl)}

	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to store OTP in DynamoDB")
		return fmt.Errorf("failed to store OTP: %w", err)
	}

	return nil
}

func (r *DynamoOTPStore) Get(ctx context.Context, phoneKey string) (*models.OTPData, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            otpKey(phoneKey),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get OTP: %w", err)
	}

	if result.Item == nil {
		return nil, ErrNotFound
	}

	var data models.OTPData
	if err := attributevalue.UnmarshalMap(result.Item, &data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal OTP data: %w", err)
	}

	return &data, nil
}

func (r *DynamoOTPStore) Delete(ctx context.Context, phoneKey string) error {
	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key:       otpKey(phoneKey),
	})
	if err != nil {
		return fmt.Errorf("failed to delete OTP: %w", err)
	}

	return nil
}

// Size counts OTP items with a filtered scan. Only used by the debug endpoint.
func (r *DynamoOTPStore) Size(ctx context.Context) (int, error) {
	var (
		count    int
		startKey map[string]types.AttributeValue
	)
	for {
		result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:        aws.String(r.tableName),
			FilterExpression: aws.String("begins_with(PK, :pk_prefix)"),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":pk_prefix": &types.AttributeValueMemberS{Value: dynamoOTPPrefix},
			},
			Select:            types.SelectCount,
			ExclusiveStartKey: startKey,
		})
		if err != nil {
			return 0, fmt.Errorf("failed to count OTP entries: %w", err)
		}
		count += int(result.Count)
		if len(result.LastEvaluatedKey) == 0 {
			return count, nil
		}
		startKey = result.LastEvaluatedKey
	}
}
