package services

import (
	"context"
	"time"

	"pairlink_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// IdentityService issues anonymous, durable identities. The id is
// opaque everywhere outside this service.
type IdentityService struct {
	Dynamo *DynamoService
}

// SignInAnonymously mints a fresh anonymous identity and persists it.
func (s *IdentityService) SignInAnonymously(ctx context.Context) (*models.Identity, error) {
	identity := models.Identity{
		UserID:    uuid.NewString(),
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := s.Dynamo.PutItem(ctx, models.Identity{}.TableName(), identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// GetIdentity retrieves an identity by id.
func (s *IdentityService) GetIdentity(ctx context.Context, userID string) (*models.Identity, error) {
	item, err := s.Dynamo.GetItem(ctx, models.Identity{}.TableName(), map[string]types.AttributeValue{
		"userId": &types.AttributeValueMemberS{Value: userID},
	})
	if err != nil {
		return nil, err
	}
	var identity models.Identity
	if err := attributevalue.UnmarshalMap(item, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}
