package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"pairlink_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
)

// ChatService struct
type ChatService struct {
	Dynamo *DynamoService

	Now func() time.Time
}

func (s *ChatService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// SendMessage validates and stores a new message. Messages are
// append-only; the room's lastMessageAt bump is the caller's separate
// write.
func (s *ChatService) SendMessage(ctx context.Context, message models.Message) (*models.Message, error) {
	if err := message.ValidatePayload(); err != nil {
		return nil, err
	}
	if message.SenderID == "" {
		return nil, errors.New("message requires senderId")
	}

	message.MessageID = uuid.NewString()
	message.CreatedAt = s.now().UTC().Format(time.RFC3339Nano)
	message.Reactions = map[string][]string{}

	if err := s.Dynamo.PutItem(ctx, models.MessagesTable, message); err != nil {
		log.Printf("❌ Failed to store message: %v", err)
		return nil, fmt.Errorf("failed to store message: %w", err)
	}
	return &message, nil
}

// GetMessages fetches the latest messages for a room (capped at
// models.MessageLimit), returned in ascending creation order so the
// newest message lands at the bottom of the stream.
func (s *ChatService) GetMessages(ctx context.Context, roomID string, limit int) ([]models.Message, error) {
	if limit <= 0 || limit > models.MessageLimit {
		limit = models.MessageLimit
	}

	keyCondition := "#roomId = :roomId"
	expressionValues := map[string]types.AttributeValue{
		":roomId": &types.AttributeValueMemberS{Value: roomID},
	}
	expressionNames := map[string]string{
		"#roomId": "roomId",
	}

	items, err := s.Dynamo.QueryItemsWithOptions(ctx, models.MessagesTable, keyCondition, expressionValues, expressionNames, int32(limit), true)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch messages: %w", err)
	}

	var messages []models.Message
	if err := attributevalue.UnmarshalListOfMaps(items, &messages); err != nil {
		return nil, fmt.Errorf("failed to parse messages: %w", err)
	}

	// Query ran newest-first; reverse so the stream reads oldest to newest.
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

// ToggleReaction flips identity's membership in the emoji's reaction
// set on a stored message and returns the updated message. The flip
// is read-modify-write: the emoji's set is rewritten whole, so of two
// racing toggles on the same emoji the later write wins.
func (s *ChatService) ToggleReaction(ctx context.Context, roomID, createdAt, messageID, emoji, identity string) (*models.Message, error) {
	if !models.AllowedReaction(emoji) {
		return nil, fmt.Errorf("unsupported reaction %q", emoji)
	}

	key := map[string]types.AttributeValue{
		"roomId":    &types.AttributeValueMemberS{Value: roomID},
		"createdAt": &types.AttributeValueMemberS{Value: createdAt},
	}

	item, err := s.Dynamo.GetItem(ctx, models.MessagesTable, key)
	if err != nil {
		return nil, err
	}
	var message models.Message
	if err := attributevalue.UnmarshalMap(item, &message); err != nil {
		return nil, fmt.Errorf("failed to parse message: %w", err)
	}
	if message.MessageID != messageID {
		return nil, ErrItemNotFound
	}

	flipped := models.ToggleReaction(message.Reactions, emoji, identity)
	updateExpression, expressionValues := reactionUpdate(flipped, emoji)
	expressionNames := map[string]string{
		"#r": "reactions",
		"#e": emoji,
	}

	attrs, err := s.Dynamo.UpdateItem(ctx, models.MessagesTable, updateExpression, key, expressionValues, expressionNames)
	if err != nil {
		return nil, err
	}
	var updated models.Message
	if err := attributevalue.UnmarshalMap(attrs, &updated); err != nil {
		return nil, fmt.Errorf("failed to parse updated message: %w", err)
	}
	return &updated, nil
}

// reactionUpdate builds the update persisting a flipped reaction set.
// ADD and DELETE are legal on top-level attributes only, so the nested
// emoji set is written whole: SET while members remain, REMOVE once
// the set empties.
func reactionUpdate(flipped map[string][]string, emoji string) (string, map[string]types.AttributeValue) {
	ids := flipped[emoji]
	if len(ids) == 0 {
		return "REMOVE #r.#e", nil
	}
	return "SET #r.#e = :set", map[string]types.AttributeValue{
		":set": &types.AttributeValueMemberSS{Value: ids},
	}
}
