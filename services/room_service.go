package services

import (
	"context"
	"time"

	"pairlink_server/models"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// RoomService handles room reads and the presence field writes
// (typing flags and seen markers), both dotted-path updates on the
// room document.
type RoomService struct {
	Dynamo *DynamoService

	Now func() time.Time
}

func (s *RoomService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// GetRoom fetches a room by id.
func (s *RoomService) GetRoom(ctx context.Context, roomID string) (*models.Room, error) {
	item, err := s.Dynamo.GetItem(ctx, models.Room{}.TableName(), map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: roomID},
	})
	if err != nil {
		return nil, err
	}
	var room models.Room
	if err := attributevalue.UnmarshalMap(item, &room); err != nil {
		return nil, err
	}
	return &room, nil
}

// SetTyping writes typing.{identity} on the room document.
func (s *RoomService) SetTyping(ctx context.Context, roomID, identity string, typing bool) error {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: roomID},
	}
	expressionNames := map[string]string{
		"#t": "typing",
		"#u": identity,
	}
	expressionValues := map[string]types.AttributeValue{
		":typing": &types.AttributeValueMemberBOOL{Value: typing},
	}

	_, err := s.Dynamo.UpdateItem(ctx, models.Room{}.TableName(), "SET #t.#u = :typing", key, expressionValues, expressionNames)
	return err
}

// MarkSeen stamps seenAt.{identity} with the current server time and
// returns the timestamp written. Callers gate this on the
// visible-and-at-bottom conjunction; the write itself is
// unconditional.
func (s *RoomService) MarkSeen(ctx context.Context, roomID, identity string) (int64, error) {
	seenAt := s.now().UnixMilli()

	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: roomID},
	}
	expressionNames := map[string]string{
		"#s": "seenAt",
		"#u": identity,
	}
	expressionValues := map[string]types.AttributeValue{
		":seenAt": &types.AttributeValueMemberN{Value: formatMillis(seenAt)},
	}

	_, err := s.Dynamo.UpdateItem(ctx, models.Room{}.TableName(), "SET #s.#u = :seenAt", key, expressionValues, expressionNames)
	if err != nil {
		return 0, err
	}
	return seenAt, nil
}

// TouchLastMessage bumps the room's lastMessageAt. This is a separate
// write from the message insert; an observer can transiently see one
// without the other.
func (s *RoomService) TouchLastMessage(ctx context.Context, roomID, createdAt string) error {
	key := map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: roomID},
	}
	expressionValues := map[string]types.AttributeValue{
		":t": &types.AttributeValueMemberS{Value: createdAt},
	}

	_, err := s.Dynamo.UpdateItem(ctx, models.Room{}.TableName(), "SET lastMessageAt = :t", key, expressionValues, nil)
	return err
}
