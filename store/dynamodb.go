package store

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// DynamoDBAPI is the subset of the DynamoDB client used by DynamoDB.
type DynamoDBAPI interface {
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// kvItem is one stored key. The table's partition key is PK (string).
type kvItem struct {
	PK        string `dynamodbav:"PK"`
	Value     string `dynamodbav:"Value"`
	UpdatedAt int64  `dynamodbav:"UpdatedAt"`
}

// DynamoDB stores each key as one item in a table keyed by PK.
type DynamoDB struct {
	client    DynamoDBAPI
	tableName string
	now       func() time.Time
}

var _ Backend = (*DynamoDB)(nil)

// NewDynamoDB wraps an existing client.
func NewDynamoDB(client DynamoDBAPI, tableName string) *DynamoDB {
	return &DynamoDB{
		client:    client,
		tableName: tableName,
		now:       time.Now,
	}
}

// NewDynamoDBFromEnv builds a client from the default AWS credential chain.
func NewDynamoDBFromEnv(ctx context.Context, tableName string) (*DynamoDB, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	return NewDynamoDB(dynamodb.NewFromConfig(cfg), tableName), nil
}

func (d *DynamoDB) Get(ctx context.Context, key string) (string, bool, error) {
	if key == "" {
		return "", false, ErrInvalidKey
	}

	result, err := d.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(d.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: key},
		},
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return "", false, fmt.Errorf("failed to get %s: %w", key, err)
	}
	if result.Item == nil {
		return "", false, nil
	}

	var item kvItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return "", false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return item.Value, true, nil
}

func (d *DynamoDB) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrInvalidKey
	}

	item, err := attributevalue.MarshalMap(kvItem{
		PK:        key,
		Value:     value,
		UpdatedAt: d.now().UnixMilli(),
	})
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}

	_, err = d.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(d.tableName),
		Item:      item,
	})
	if err != nil {
		return fmt.Errorf("failed to put %s: %w", key, err)
	}
	return nil
}
