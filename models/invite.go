package models

const (
	InviteStatusOpen    = "open"
	InviteStatusClaimed = "claimed"
)

// Invite represents a single-use chat invite in DynamoDB.
// GuestID stays unset until the invite is claimed; invites are never
// deleted, expiry is checked at claim time.
type Invite struct {
	Code      string  `json:"code" dynamodbav:"code"` // PK (the invite code in the shared link)
	RoomID    string  `json:"roomId" dynamodbav:"roomId"`
	HostID    string  `json:"hostId" dynamodbav:"hostId"`
	GuestID   *string `json:"guestId" dynamodbav:"guestId,omitempty"`
	Status    string  `json:"status" dynamodbav:"status"`       // "open" or "claimed"
	CreatedAt string  `json:"createdAt" dynamodbav:"createdAt"` // RFC3339
	ExpiresAt int64   `json:"expiresAt" dynamodbav:"expiresAt"` // unix millis
}

// TableName returns the DynamoDB table name
func (Invite) TableName() string {
	return "Invites"
}

// Expired reports whether the invite is past its TTL at the given unix-millis instant.
func (i Invite) Expired(nowMillis int64) bool {
	return nowMillis > i.ExpiresAt
}

// ClaimedBy reports whether the invite was already claimed by a different identity.
func (i Invite) ClaimedBy(identity string) bool {
	return i.GuestID != nil && *i.GuestID != "" && *i.GuestID != identity
}
