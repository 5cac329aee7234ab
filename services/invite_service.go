package services

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"pairlink_server/models"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const (
	ClaimOK      = "ok"
	ClaimFull    = "full"
	ClaimExpired = "expired"
	ClaimInvalid = "invalid"

	inviteCodeLength = 10
	roomIDLength     = 16
)

// ClaimResult is the tagged outcome of a claim attempt. RoomID is set
// only for ClaimOK.
type ClaimResult struct {
	Kind   string `json:"kind"`
	RoomID string `json:"roomId,omitempty"`
}

// CreatedInvite is returned to the host after creating an invite.
type CreatedInvite struct {
	Code      string `json:"code"`
	RoomID    string `json:"roomId"`
	Path      string `json:"path"`
	ExpiresAt int64  `json:"expiresAt"`
}

// InviteStore is the slice of the document store the invite flow
// uses. *DynamoService satisfies it.
type InviteStore interface {
	GetItem(ctx context.Context, tableName string, key map[string]types.AttributeValue) (map[string]types.AttributeValue, error)
	PutItem(ctx context.Context, tableName string, item interface{}) error
	TransactWriteItems(ctx context.Context, items []types.TransactWriteItem) error
}

// InviteService handles invite creation and the claim transaction.
type InviteService struct {
	Dynamo InviteStore
	TTL    time.Duration

	// Now is overridable for tests; nil means time.Now.
	Now func() time.Time
}

func (s *InviteService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// CreateInvite creates a room owned by hostID and an open invite
// pointing at it. The two writes are not atomic; an invite without its
// room classifies as invalid at claim time.
func (s *InviteService) CreateInvite(ctx context.Context, hostID string) (*CreatedInvite, error) {
	code, err := gonanoid.New(inviteCodeLength)
	if err != nil {
		return nil, err
	}
	roomID, err := gonanoid.New(roomIDLength)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	createdAt := now.Format(time.RFC3339)

	room := models.Room{
		ID:            roomID,
		Members:       []string{hostID},
		CreatedAt:     createdAt,
		LastMessageAt: createdAt,
		SeenAt:        map[string]int64{},
		Typing:        map[string]bool{},
	}
	if err := s.Dynamo.PutItem(ctx, models.Room{}.TableName(), room); err != nil {
		return nil, err
	}

	invite := models.Invite{
		Code:      code,
		RoomID:    roomID,
		HostID:    hostID,
		Status:    models.InviteStatusOpen,
		CreatedAt: createdAt,
		ExpiresAt: now.Add(s.TTL).UnixMilli(),
	}
	if err := s.Dynamo.PutItem(ctx, models.Invite{}.TableName(), invite); err != nil {
		return nil, err
	}

	return &CreatedInvite{
		Code:      code,
		RoomID:    roomID,
		Path:      "/chat/" + code,
		ExpiresAt: invite.ExpiresAt,
	}, nil
}

// GetInvite fetches an invite by code.
func (s *InviteService) GetInvite(ctx context.Context, code string) (*models.Invite, error) {
	item, err := s.Dynamo.GetItem(ctx, models.Invite{}.TableName(), map[string]types.AttributeValue{
		"code": &types.AttributeValueMemberS{Value: code},
	})
	if err != nil {
		return nil, err
	}
	var invite models.Invite
	if err := attributevalue.UnmarshalMap(item, &invite); err != nil {
		return nil, err
	}
	return &invite, nil
}

// EvaluateClaim classifies a claim attempt against a snapshot of the
// invite and room. Preconditions are checked in a fixed order:
// missing invite, expiry, missing room, idempotent re-entry, foreign
// guest, full room. A nil invite or room means the document does not
// exist.
func EvaluateClaim(invite *models.Invite, room *models.Room, identity string, nowMillis int64) ClaimResult {
	if invite == nil {
		return ClaimResult{Kind: ClaimInvalid}
	}
	if invite.Expired(nowMillis) {
		return ClaimResult{Kind: ClaimExpired}
	}
	if room == nil {
		// Room missing behind a live invite: same external symptom as
		// a bad code.
		return ClaimResult{Kind: ClaimInvalid}
	}
	if room.HasMember(identity) {
		return ClaimResult{Kind: ClaimOK, RoomID: invite.RoomID}
	}
	if invite.ClaimedBy(identity) {
		return ClaimResult{Kind: ClaimFull}
	}
	if room.Full() {
		return ClaimResult{Kind: ClaimFull}
	}
	return ClaimResult{Kind: ClaimOK, RoomID: invite.RoomID}
}

// ClaimInvite attempts to join identity to the room behind code.
//
// The snapshot read classifies the attempt; when a membership write is
// needed, a two-item conditional transaction re-asserts every
// precondition so that concurrent claims by distinct identities are
// serialized and at most one append ever observes a single-member
// room. A canceled transaction is re-read and re-classified: the race
// loser sees full, a reloading member sees ok.
//
// Any failure outside the claim taxonomy collapses to invalid; the
// cause is logged here since the surface does not distinguish it.
func (s *InviteService) ClaimInvite(ctx context.Context, code, identity string) ClaimResult {
	nowMillis := s.now().UnixMilli()

	invite, room, err := s.readClaimState(ctx, code)
	if err != nil {
		log.Printf("claim %s: read failed: %v", code, err)
		return ClaimResult{Kind: ClaimInvalid}
	}

	res := EvaluateClaim(invite, room, identity, nowMillis)
	if res.Kind != ClaimOK {
		return res
	}
	if room.HasMember(identity) {
		return res
	}

	err = s.Dynamo.TransactWriteItems(ctx, s.claimTransaction(invite, identity, nowMillis))
	if err == nil {
		return ClaimResult{Kind: ClaimOK, RoomID: invite.RoomID}
	}

	var canceled *types.TransactionCanceledException
	if !errors.As(err, &canceled) {
		log.Printf("claim %s: transaction failed: %v", code, err)
		return ClaimResult{Kind: ClaimInvalid}
	}

	// Lost a race or the documents moved under us. Re-read and
	// classify the new state; an ok here can only mean identity is
	// already a member.
	invite, room, err = s.readClaimState(ctx, code)
	if err != nil {
		log.Printf("claim %s: re-read after cancellation failed: %v", code, err)
		return ClaimResult{Kind: ClaimInvalid}
	}
	res = EvaluateClaim(invite, room, identity, nowMillis)
	if res.Kind == ClaimOK && !room.HasMember(identity) {
		log.Printf("claim %s: canceled but state still claimable: %v", code, canceled.ErrorMessage())
		return ClaimResult{Kind: ClaimInvalid}
	}
	return res
}

// readClaimState fetches the invite and its room. A missing document
// comes back as nil rather than an error so EvaluateClaim can order
// the checks itself.
func (s *InviteService) readClaimState(ctx context.Context, code string) (*models.Invite, *models.Room, error) {
	item, err := s.Dynamo.GetItem(ctx, models.Invite{}.TableName(), map[string]types.AttributeValue{
		"code": &types.AttributeValueMemberS{Value: code},
	})
	if errors.Is(err, ErrItemNotFound) {
		return nil, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var invite models.Invite
	if err := attributevalue.UnmarshalMap(item, &invite); err != nil {
		return nil, nil, err
	}

	item, err = s.Dynamo.GetItem(ctx, models.Room{}.TableName(), map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: invite.RoomID},
	})
	if errors.Is(err, ErrItemNotFound) {
		return &invite, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}

	var room models.Room
	if err := attributevalue.UnmarshalMap(item, &room); err != nil {
		return nil, nil, err
	}
	return &invite, &room, nil
}

// claimTransaction builds the two conditional updates: mark the invite
// claimed and append identity to the room members, each guarded so a
// concurrent claim cancels the whole transaction.
func (s *InviteService) claimTransaction(invite *models.Invite, identity string, nowMillis int64) []types.TransactWriteItem {
	inviteUpdate := types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(models.Invite{}.TableName()),
			Key: map[string]types.AttributeValue{
				"code": &types.AttributeValueMemberS{Value: invite.Code},
			},
			UpdateExpression: aws.String("SET guestId = :guest, #s = :claimed"),
			ConditionExpression: aws.String(
				"attribute_exists(code) AND #s = :open AND " +
					"(attribute_not_exists(guestId) OR guestId = :guest) AND " +
					"expiresAt >= :now",
			),
			ExpressionAttributeNames: map[string]string{
				"#s": "status",
			},
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":guest":   &types.AttributeValueMemberS{Value: identity},
				":claimed": &types.AttributeValueMemberS{Value: models.InviteStatusClaimed},
				":open":    &types.AttributeValueMemberS{Value: models.InviteStatusOpen},
				":now":     &types.AttributeValueMemberN{Value: formatMillis(nowMillis)},
			},
		},
	}

	roomUpdate := types.TransactWriteItem{
		Update: &types.Update{
			TableName: aws.String(models.Room{}.TableName()),
			Key: map[string]types.AttributeValue{
				"id": &types.AttributeValueMemberS{Value: invite.RoomID},
			},
			UpdateExpression: aws.String("SET members = list_append(members, :newMember)"),
			ConditionExpression: aws.String(
				"attribute_exists(id) AND size(members) < :max AND NOT contains(members, :guest)",
			),
			ExpressionAttributeValues: map[string]types.AttributeValue{
				":newMember": &types.AttributeValueMemberL{
					Value: []types.AttributeValue{&types.AttributeValueMemberS{Value: identity}},
				},
				":guest": &types.AttributeValueMemberS{Value: identity},
				":max":   &types.AttributeValueMemberN{Value: "2"},
			},
		},
	}

	return []types.TransactWriteItem{inviteUpdate, roomUpdate}
}

func formatMillis(ms int64) string {
	return strconv.FormatInt(ms, 10)
}
