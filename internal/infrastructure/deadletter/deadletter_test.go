package deadletter

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workmatch/marketplace-backend/internal/domain/entity"
	"github.com/workmatch/marketplace-backend/internal/domain/valueobject"
)

type fakeDynamo struct {
	inputs []*dynamodb.PutItemInput
	err    error
}

func (f *fakeDynamo) PutItem(_ context.Context, params *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, params)
	return &dynamodb.PutItemOutput{}, nil
}

func sampleLetter() entity.DeadLetter {
	userID := uuid.New()
	paymentID := uuid.New()
	return entity.DeadLetter{
		ID:     uuid.New(),
		UserID: &userID,
		Request: entity.NotificationRequest{
			Role:      valueobject.RoleAdmin,
			Kind:      valueobject.NotificationRefundRequested,
			Title:     "Новая заявка на возврат",
			Message:   "Запрошен возврат 100.00",
			PaymentID: &paymentID,
		},
		Attempts:  3,
		LastError: "connection refused",
		FailedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestDynamoStorePutsItem(t *testing.T) {
	ddb := &fakeDynamo{}
	store := NewDynamoStore(ddb, "notification-deadletters")
	letter := sampleLetter()

	require.NoError(t, store.Put(context.Background(), letter))
	require.Len(t, ddb.inputs, 1)
	in := ddb.inputs[0]
	assert.Equal(t, "notification-deadletters", *in.TableName)
	assert.Equal(t, "attribute_not_exists(#id)", *in.ConditionExpression)

	var got item
	require.NoError(t, attributevalue.UnmarshalMap(in.Item, &got))
	assert.Equal(t, letter.ID.String(), got.ID)
	require.NotNil(t, got.UserID)
	assert.Equal(t, letter.UserID.String(), *got.UserID)
	assert.Equal(t, "admin", got.Role)
	assert.Equal(t, "refund_requested", got.Kind)
	assert.Equal(t, 3, got.Attempts)
	require.NotNil(t, got.PaymentID)
	assert.Nil(t, got.ServiceID)
	assert.Equal(t, "2026-03-01T12:00:00Z", got.FailedAt)
}

func TestDynamoStoreWrapsErrors(t *testing.T) {
	store := NewDynamoStore(&fakeDynamo{err: errors.New("throttled")}, "t")
	err := store.Put(context.Background(), sampleLetter())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "throttled")
}

func TestLogStoreNeverFails(t *testing.T) {
	assert.NoError(t, NewLogStore().Put(context.Background(), sampleLetter()))
}
