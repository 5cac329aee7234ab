package services

import (
	"sync"
	"time"

	"pairlink_server/models"
)

// TypingTimeout is how long after the last keystroke the typing flag
// auto-clears.
const TypingTimeout = 1200 * time.Millisecond

// PresenceState is the derived presence view for one session: what
// the counterpart is doing, how many messages piled up while the tab
// was hidden, and which of the session's own messages carries the
// "seen" annotation.
type PresenceState struct {
	OtherTyping   bool   `json:"otherTyping"`
	OtherSeenAt   int64  `json:"otherSeenAt,omitempty"` // unix millis, 0 = never
	Unread        int    `json:"unread"`
	SeenMessageID string `json:"seenMessageId,omitempty"`
}

// PresenceReconciler derives presence state for a single session from
// the live room document, the message stream, and two local signals:
// page visibility and whether the viewport sits near the bottom of
// the stream. Marking the session's own seen timestamp is gated on
// the conjunction of both signals; the Apply/Set methods report when
// that side effect should fire.
type PresenceReconciler struct {
	mu sync.Mutex

	selfID   string
	visible  bool
	atBottom bool

	otherTyping bool
	otherSeenAt int64

	unread int
	// Newest message time observed while the page was visible; only
	// counterpart messages newer than this can count as unread.
	lastVisibleAt int64
	// Newest counterpart message already counted, so repeated
	// snapshot deliveries do not double-count.
	countedThrough int64

	lastOwnID   string
	lastOwnTime int64
}

// NewPresenceReconciler builds a reconciler for identity. Sessions
// start visible, not at bottom, with the unread watermark at now.
func NewPresenceReconciler(identity string, now time.Time) *PresenceReconciler {
	millis := now.UnixMilli()
	return &PresenceReconciler{
		selfID:         identity,
		visible:        true,
		lastVisibleAt:  millis,
		countedThrough: millis,
	}
}

// SetVisible records a visibility change. Becoming visible resets the
// unread counter. Returns true when the seen marker should be written.
func (r *PresenceReconciler) SetVisible(visible bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if visible && !r.visible {
		r.unread = 0
	}
	r.visible = visible
	return r.markSeenGate()
}

// SetAtBottom records whether the viewport is scrolled near the bottom
// of the stream. Returns true when the seen marker should be written.
func (r *PresenceReconciler) SetAtBottom(atBottom bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.atBottom = atBottom
	return r.markSeenGate()
}

// ApplyRoom folds a room snapshot in: the counterpart's typing flag
// and seen marker. Until a counterpart joins, both stay untouched.
func (r *PresenceReconciler) ApplyRoom(room *models.Room) {
	r.mu.Lock()
	defer r.mu.Unlock()

	other, ok := room.OtherMember(r.selfID)
	if !ok {
		return
	}
	r.otherTyping = room.Typing[other]
	if seen, ok := room.SeenAt[other]; ok {
		r.otherSeenAt = seen
	}
}

// ApplyMessages folds a message delivery (ascending creation order)
// in. While visible it advances the unread watermark; while hidden it
// counts each not-yet-counted counterpart message newer than the
// watermark. Returns true when the seen marker should be written
// (messages changed while visible and at bottom).
func (r *PresenceReconciler) ApplyMessages(messages []models.Message) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	var newest int64
	for _, m := range messages {
		t := messageMillis(m)
		if t > newest {
			newest = t
		}
		if m.SenderID == r.selfID && t >= r.lastOwnTime {
			r.lastOwnID = m.MessageID
			r.lastOwnTime = t
		}
	}

	if r.visible {
		if newest > r.lastVisibleAt {
			r.lastVisibleAt = newest
		}
		if r.lastVisibleAt > r.countedThrough {
			r.countedThrough = r.lastVisibleAt
		}
		return r.markSeenGate()
	}

	for _, m := range messages {
		t := messageMillis(m)
		if m.SenderID == r.selfID {
			continue
		}
		if t > r.lastVisibleAt && t > r.countedThrough {
			r.unread++
		}
	}
	if newest > r.countedThrough {
		r.countedThrough = newest
	}
	return false
}

// State returns the current derived presence view. The seen
// annotation attaches to the session's most recent own message, and
// only when the counterpart's seen marker is at or past it.
func (r *PresenceReconciler) State() PresenceState {
	r.mu.Lock()
	defer r.mu.Unlock()

	state := PresenceState{
		OtherTyping: r.otherTyping,
		OtherSeenAt: r.otherSeenAt,
		Unread:      r.unread,
	}
	if r.lastOwnID != "" && r.otherSeenAt > 0 && r.otherSeenAt >= r.lastOwnTime {
		state.SeenMessageID = r.lastOwnID
	}
	return state
}

func (r *PresenceReconciler) markSeenGate() bool {
	return r.visible && r.atBottom
}

func messageMillis(m models.Message) int64 {
	t, err := time.Parse(time.RFC3339Nano, m.CreatedAt)
	if err != nil {
		return 0
	}
	return t.UnixMilli()
}

// TypingDebouncer is a single-slot cancellable delayed task guarding
// the typing flag: each keystroke re-arms it, and the clear callback
// runs after TypingTimeout of quiet. Send and teardown clear
// immediately. At most one timer is pending per session.
type TypingDebouncer struct {
	mu    sync.Mutex
	delay time.Duration
	clear func()
	timer *time.Timer
}

func NewTypingDebouncer(delay time.Duration, clear func()) *TypingDebouncer {
	if delay <= 0 {
		delay = TypingTimeout
	}
	return &TypingDebouncer{delay: delay, clear: clear}
}

// Arm schedules the clear callback, replacing any pending timer.
func (d *TypingDebouncer) Arm() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, d.clear)
}

// Cancel drops any pending timer without firing the clear callback.
func (d *TypingDebouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush cancels any pending timer and fires the clear callback now.
// Used on send and on session teardown.
func (d *TypingDebouncer) Flush() {
	d.Cancel()
	d.clear()
}
