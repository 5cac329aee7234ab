package models

import (
	"errors"
	"fmt"
)

const (
	MessageTypeText    = "text"
	MessageTypeSticker = "sticker"

	// MessageLimit caps how many messages a room stream delivers.
	MessageLimit = 50
)

// ReactionPalette is the fixed set of emoji a participant may react with.
var ReactionPalette = []string{"👍", "❤️", "😂", "😮", "😢", "😡"}

// Message is an append-only chat message. Exactly one payload shape is
// populated per type: Text for "text", StickerID+StickerURL for
// "sticker". Reactions is the only field mutated after creation and is
// stored as a map of emoji to DynamoDB string sets.
type Message struct {
	RoomID     string              `json:"roomId" dynamodbav:"roomId"`       // PK
	CreatedAt  string              `json:"createdAt" dynamodbav:"createdAt"` // SK (RFC3339Nano)
	MessageID  string              `json:"messageId" dynamodbav:"messageId"`
	Type       string              `json:"type" dynamodbav:"type"`
	Text       string              `json:"text,omitempty" dynamodbav:"text,omitempty"`
	StickerID  string              `json:"stickerId,omitempty" dynamodbav:"stickerId,omitempty"`
	StickerURL string              `json:"stickerUrl,omitempty" dynamodbav:"stickerUrl,omitempty"`
	SenderID   string              `json:"senderId" dynamodbav:"senderId"`
	Reactions  map[string][]string `json:"reactions,omitempty" dynamodbav:"reactions"` // emoji -> identities
}

// MessagesTable is the DynamoDB table name for room messages
const MessagesTable = "Messages"

// ValidatePayload enforces the one-shape-per-type rule at the store boundary.
func (m Message) ValidatePayload() error {
	switch m.Type {
	case MessageTypeText:
		if m.Text == "" {
			return errors.New("text message requires text")
		}
		if m.StickerID != "" || m.StickerURL != "" {
			return errors.New("text message cannot carry a sticker payload")
		}
	case MessageTypeSticker:
		if m.StickerID == "" || m.StickerURL == "" {
			return errors.New("sticker message requires stickerId and stickerUrl")
		}
		if m.Text != "" {
			return errors.New("sticker message cannot carry text")
		}
	default:
		return fmt.Errorf("unknown message type %q", m.Type)
	}
	return nil
}

// AllowedReaction reports whether emoji belongs to the reaction palette.
func AllowedReaction(emoji string) bool {
	for _, e := range ReactionPalette {
		if e == emoji {
			return true
		}
	}
	return false
}

// HasReacted reports whether identity is in the emoji's reaction set.
func HasReacted(reactions map[string][]string, emoji, identity string) bool {
	for _, id := range reactions[emoji] {
		if id == identity {
			return true
		}
	}
	return false
}

// ToggleReaction flips identity's membership in the emoji's reaction
// set and returns the resulting sets. Toggling twice restores the
// original state. The input map is not mutated.
func ToggleReaction(reactions map[string][]string, emoji, identity string) map[string][]string {
	out := make(map[string][]string, len(reactions))
	for e, ids := range reactions {
		out[e] = append([]string(nil), ids...)
	}
	if HasReacted(reactions, emoji, identity) {
		var kept []string
		for _, id := range out[emoji] {
			if id != identity {
				kept = append(kept, id)
			}
		}
		if len(kept) == 0 {
			delete(out, emoji)
		} else {
			out[emoji] = kept
		}
	} else {
		out[emoji] = append(out[emoji], identity)
	}
	return out
}
