package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name    string
		message Message
		wantErr bool
	}{
		{"text ok", Message{Type: MessageTypeText, Text: "hello"}, false},
		{"text empty", Message{Type: MessageTypeText}, true},
		{"text with sticker payload", Message{Type: MessageTypeText, Text: "hi", StickerID: "1"}, true},
		{"sticker ok", Message{Type: MessageTypeSticker, StickerID: "1", StickerURL: "/stickers/1.png"}, false},
		{"sticker missing url", Message{Type: MessageTypeSticker, StickerID: "1"}, true},
		{"sticker with text", Message{Type: MessageTypeSticker, StickerID: "1", StickerURL: "/stickers/1.png", Text: "hi"}, true},
		{"unknown type", Message{Type: "gif", Text: "hi"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.message.ValidatePayload()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestToggleReaction_AddsAndRemoves(t *testing.T) {
	reactions := map[string][]string{"👍": {"host"}}

	added := ToggleReaction(reactions, "👍", "guest")
	assert.ElementsMatch(t, []string{"host", "guest"}, added["👍"])

	removed := ToggleReaction(added, "👍", "guest")
	assert.ElementsMatch(t, []string{"host"}, removed["👍"])
}

func TestToggleReaction_DoubleToggleIsIdentity(t *testing.T) {
	original := map[string][]string{"❤️": {"host"}}

	once := ToggleReaction(original, "😂", "guest")
	twice := ToggleReaction(once, "😂", "guest")

	assert.Equal(t, original, twice)
}

func TestToggleReaction_EmptySetIsDropped(t *testing.T) {
	reactions := map[string][]string{"😮": {"guest"}}

	out := ToggleReaction(reactions, "😮", "guest")

	_, ok := out["😮"]
	assert.False(t, ok)
}

func TestToggleReaction_DoesNotMutateInput(t *testing.T) {
	reactions := map[string][]string{"👍": {"host"}}

	_ = ToggleReaction(reactions, "👍", "guest")

	require.Equal(t, map[string][]string{"👍": {"host"}}, reactions)
}

func TestAllowedReaction(t *testing.T) {
	for _, emoji := range ReactionPalette {
		assert.True(t, AllowedReaction(emoji))
	}
	assert.False(t, AllowedReaction("🙃"))
}
