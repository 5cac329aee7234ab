package models

// MaxRoomMembers caps a room at two participants.
const MaxRoomMembers = 2

// Room is a two-party conversation container. SeenAt and Typing are
// keyed by identity and only gain an entry once that identity first
// writes it.
type Room struct {
	ID            string           `json:"id" dynamodbav:"id"` // PK
	Members       []string         `json:"members" dynamodbav:"members"`
	CreatedAt     string           `json:"createdAt" dynamodbav:"createdAt"`
	LastMessageAt string           `json:"lastMessageAt" dynamodbav:"lastMessageAt"`
	SeenAt        map[string]int64 `json:"seenAt" dynamodbav:"seenAt"` // identity -> unix millis
	Typing        map[string]bool  `json:"typing" dynamodbav:"typing"`
}

// TableName returns the DynamoDB table name
func (Room) TableName() string {
	return "Rooms"
}

// HasMember reports whether identity already belongs to the room.
func (r Room) HasMember(identity string) bool {
	for _, m := range r.Members {
		if m == identity {
			return true
		}
	}
	return false
}

// OtherMember returns the counterpart of identity, if one has joined.
func (r Room) OtherMember(identity string) (string, bool) {
	for _, m := range r.Members {
		if m != identity {
			return m, true
		}
	}
	return "", false
}

// Full reports whether the room already holds two members.
func (r Room) Full() bool {
	return len(r.Members) >= MaxRoomMembers
}
