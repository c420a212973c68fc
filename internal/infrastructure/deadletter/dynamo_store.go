package deadletter

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"

	"github.com/workmatch/marketplace-backend/internal/config"
	"github.com/workmatch/marketplace-backend/internal/domain/entity"
)

// putItemAPI часть dynamodb.Client, нужная хранилищу.
type putItemAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
}

// item запись таблицы. PK: id (string).
type item struct {
	ID         string   `dynamodbav:"id"`
	UserID     *string  `dynamodbav:"user_id,omitempty"`
	Role       string   `dynamodbav:"role,omitempty"`
	Recipients []string `dynamodbav:"recipients,omitempty"`
	Kind       string   `dynamodbav:"kind"`
	Title      string   `dynamodbav:"title"`
	Message    string   `dynamodbav:"message"`
	ServiceID  *string  `dynamodbav:"service_id,omitempty"`
	ProposalID *string  `dynamodbav:"proposal_id,omitempty"`
	PaymentID  *string  `dynamodbav:"payment_id,omitempty"`
	Attempts   int      `dynamodbav:"attempts"`
	LastError  string   `dynamodbav:"last_error"`
	FailedAt   string   `dynamodbav:"failed_at"`
}

// DynamoStore пишет недоставленные уведомления в таблицу DynamoDB.
type DynamoStore struct {
	ddb   putItemAPI
	table string
}

func NewDynamoStore(ddb putItemAPI, table string) *DynamoStore {
	return &DynamoStore{ddb: ddb, table: table}
}

// NewDynamoClient собирает клиента из настроек; endpoint нужен для локального DynamoDB.
func NewDynamoClient(ctx context.Context, cfg config.NotificationsConfig) (*dynamodb.Client, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.AWSRegion),
	}
	if cfg.AWSAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AWSAccessKey, cfg.AWSSecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("deadletter: конфигурация aws: %w", err)
	}
	return dynamodb.NewFromConfig(awsCfg, func(o *dynamodb.Options) {
		if cfg.DynamoEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.DynamoEndpoint)
		}
	}), nil
}

func (s *DynamoStore) Put(ctx context.Context, letter entity.DeadLetter) error {
	av, err := attributevalue.MarshalMap(toItem(letter))
	if err != nil {
		return fmt.Errorf("deadletter: сериализация: %w", err)
	}
	_, err = s.ddb.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:           aws.String(s.table),
		Item:                av,
		ConditionExpression: aws.String("attribute_not_exists(#id)"),
		ExpressionAttributeNames: map[string]string{
			"#id": "id",
		},
	})
	if err != nil {
		return fmt.Errorf("deadletter: запись %s: %w", letter.ID, err)
	}
	return nil
}

func toItem(letter entity.DeadLetter) item {
	req := letter.Request
	it := item{
		ID:         letter.ID.String(),
		Role:       string(req.Role),
		Kind:       string(req.Kind),
		Title:      req.Title,
		Message:    req.Message,
		ServiceID:  uuidString(req.ServiceID),
		ProposalID: uuidString(req.ProposalID),
		PaymentID:  uuidString(req.PaymentID),
		Attempts:   letter.Attempts,
		LastError:  letter.LastError,
		FailedAt:   letter.FailedAt.UTC().Format(time.RFC3339Nano),
	}
	if letter.UserID != nil {
		it.UserID = uuidString(letter.UserID)
	}
	for _, id := range req.Recipients {
		it.Recipients = append(it.Recipients, id.String())
	}
	return it
}
