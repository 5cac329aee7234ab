package services

import (
	"sync/atomic"
	"testing"
	"time"

	"pairlink_server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testBase = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func msgAt(id, sender string, offset time.Duration) models.Message {
	return models.Message{
		MessageID: id,
		SenderID:  sender,
		Type:      models.MessageTypeText,
		Text:      "hi",
		CreatedAt: testBase.Add(offset).Format(time.RFC3339Nano),
	}
}

func TestReconciler_UnreadCountsHiddenCounterpartMessages(t *testing.T) {
	r := NewPresenceReconciler("self", testBase)
	r.SetVisible(false)

	r.ApplyMessages([]models.Message{
		msgAt("m1", "other", 1*time.Second),
		msgAt("m2", "other", 2*time.Second),
		msgAt("m3", "other", 3*time.Second),
	})

	assert.Equal(t, 3, r.State().Unread)
}

func TestReconciler_UnreadIgnoresOwnAndStaleMessages(t *testing.T) {
	r := NewPresenceReconciler("self", testBase)
	r.SetVisible(false)

	r.ApplyMessages([]models.Message{
		msgAt("m0", "other", -1*time.Minute), // older than the watermark
		msgAt("m1", "self", 1*time.Second),
		msgAt("m2", "other", 2*time.Second),
	})

	assert.Equal(t, 1, r.State().Unread)
}

func TestReconciler_UnreadNotDoubleCountedAcrossDeliveries(t *testing.T) {
	r := NewPresenceReconciler("self", testBase)
	r.SetVisible(false)

	delivery := []models.Message{msgAt("m1", "other", 1*time.Second)}
	r.ApplyMessages(delivery)
	// Snapshot streams redeliver the full window on every change.
	r.ApplyMessages(append(delivery, msgAt("m2", "other", 2*time.Second)))

	assert.Equal(t, 2, r.State().Unread)
}

func TestReconciler_BecomingVisibleResetsUnread(t *testing.T) {
	r := NewPresenceReconciler("self", testBase)
	r.SetVisible(false)
	r.ApplyMessages([]models.Message{msgAt("m1", "other", 1*time.Second)})
	require.Equal(t, 1, r.State().Unread)

	r.SetVisible(true)

	assert.Equal(t, 0, r.State().Unread)
}

func TestReconciler_MessagesWhileVisibleNeverCount(t *testing.T) {
	r := NewPresenceReconciler("self", testBase)

	r.ApplyMessages([]models.Message{msgAt("m1", "other", 1*time.Second)})
	// Hiding afterwards must not retro-count the message seen while visible.
	r.SetVisible(false)
	r.ApplyMessages([]models.Message{msgAt("m1", "other", 1*time.Second)})

	assert.Equal(t, 0, r.State().Unread)
}

func TestReconciler_MarkSeenRequiresVisibleAndAtBottom(t *testing.T) {
	r := NewPresenceReconciler("self", testBase)

	assert.False(t, r.SetAtBottom(false))
	assert.False(t, r.SetVisible(false))
	assert.False(t, r.SetAtBottom(true), "hidden page never marks seen")
	assert.True(t, r.SetVisible(true), "both signals satisfied")

	// Message arrival while visible and at bottom re-triggers the mark.
	assert.True(t, r.ApplyMessages([]models.Message{msgAt("m1", "other", 1*time.Second)}))

	// Scrolled up: arrival must not mark seen.
	r.SetAtBottom(false)
	assert.False(t, r.ApplyMessages([]models.Message{msgAt("m2", "other", 2*time.Second)}))

	// Hidden deliveries never mark seen either.
	r.SetAtBottom(true)
	r.SetVisible(false)
	assert.False(t, r.ApplyMessages([]models.Message{msgAt("m3", "other", 3*time.Second)}))
}

func TestReconciler_SeenAnnotationOnLastOwnMessage(t *testing.T) {
	// Messages at t=100ms (host) and t=200ms (guest, self); host's
	// seen marker at 250ms annotates the guest's last message.
	r := NewPresenceReconciler("guest", testBase)
	r.ApplyMessages([]models.Message{
		msgAt("m-host", "host", 100*time.Millisecond),
		msgAt("m-guest", "guest", 200*time.Millisecond),
	})
	r.ApplyRoom(&models.Room{
		ID:      "r1",
		Members: []string{"host", "guest"},
		SeenAt:  map[string]int64{"host": testBase.Add(250 * time.Millisecond).UnixMilli()},
	})

	assert.Equal(t, "m-guest", r.State().SeenMessageID)
}

func TestReconciler_NoAnnotationWhenSeenMarkerOlder(t *testing.T) {
	r := NewPresenceReconciler("guest", testBase)
	r.ApplyMessages([]models.Message{
		msgAt("m-old", "guest", 100*time.Millisecond),
		msgAt("m-new", "guest", 300*time.Millisecond),
	})
	r.ApplyRoom(&models.Room{
		ID:      "r1",
		Members: []string{"host", "guest"},
		SeenAt:  map[string]int64{"host": testBase.Add(200 * time.Millisecond).UnixMilli()},
	})

	// The marker covers m-old but the annotation only ever attaches to
	// the newest own message, which it does not cover.
	assert.Empty(t, r.State().SeenMessageID)
}

func TestReconciler_TypingMirrorsCounterpartOnly(t *testing.T) {
	r := NewPresenceReconciler("guest", testBase)

	r.ApplyRoom(&models.Room{
		ID:      "r1",
		Members: []string{"host", "guest"},
		Typing:  map[string]bool{"guest": true},
	})
	assert.False(t, r.State().OtherTyping, "own flag must not echo back")

	r.ApplyRoom(&models.Room{
		ID:      "r1",
		Members: []string{"host", "guest"},
		Typing:  map[string]bool{"host": true},
	})
	assert.True(t, r.State().OtherTyping)
}

func TestTypingDebouncer_FiresAfterQuietPeriod(t *testing.T) {
	fired := make(chan struct{}, 1)
	d := NewTypingDebouncer(20*time.Millisecond, func() { fired <- struct{}{} })

	d.Arm()

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("debouncer never fired")
	}
}

func TestTypingDebouncer_RearmReplacesPendingTimer(t *testing.T) {
	var fires atomic.Int32
	d := NewTypingDebouncer(30*time.Millisecond, func() { fires.Add(1) })

	d.Arm()
	time.Sleep(10 * time.Millisecond)
	d.Arm()
	time.Sleep(10 * time.Millisecond)
	d.Arm()

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load(), "at most one pending timer per session")
}

func TestTypingDebouncer_FlushFiresNowAndCancelsTimer(t *testing.T) {
	var fires atomic.Int32
	d := NewTypingDebouncer(30*time.Millisecond, func() { fires.Add(1) })

	d.Arm()
	d.Flush()
	require.Equal(t, int32(1), fires.Load())

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(1), fires.Load(), "flushed timer must not fire again")
}

func TestTypingDebouncer_CancelDropsPendingTimer(t *testing.T) {
	var fires atomic.Int32
	d := NewTypingDebouncer(20*time.Millisecond, func() { fires.Add(1) })

	d.Arm()
	d.Cancel()

	time.Sleep(80 * time.Millisecond)
	assert.Equal(t, int32(0), fires.Load())
}
