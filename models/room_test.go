package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoomMembership(t *testing.T) {
	room := Room{ID: "r1", Members: []string{"host"}}

	assert.True(t, room.HasMember("host"))
	assert.False(t, room.HasMember("guest"))
	assert.False(t, room.Full())

	_, ok := room.OtherMember("host")
	assert.False(t, ok, "no counterpart before the claim")

	room.Members = append(room.Members, "guest")
	assert.True(t, room.Full())

	other, ok := room.OtherMember("host")
	assert.True(t, ok)
	assert.Equal(t, "guest", other)
}

func TestInviteExpiryAndClaim(t *testing.T) {
	guest := "guest"
	invite := Invite{Code: "abc123", RoomID: "r1", HostID: "host", ExpiresAt: 1_000}

	assert.False(t, invite.Expired(1_000), "expiry is strict")
	assert.True(t, invite.Expired(1_001))

	assert.False(t, invite.ClaimedBy("guest"), "open invite claims nobody")

	invite.GuestID = &guest
	assert.False(t, invite.ClaimedBy("guest"), "own claim is not foreign")
	assert.True(t, invite.ClaimedBy("intruder"))
}
