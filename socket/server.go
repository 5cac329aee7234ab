package socket

import (
	"context"
	"log"
	"sync"
	"time"

	"pairlink_server/models"
	"pairlink_server/services"

	socketio "github.com/googollee/go-socket.io"
)

// Server is the real-time channel: clients join a room, stream
// message and room pushes, and feed back the two local signals
// (visibility, at-bottom) that drive the per-session presence
// reconciler. Event handlers must not block.
type Server struct {
	IO *socketio.Server

	rooms *services.RoomService
	chat  *services.ChatService

	mu       sync.Mutex
	sessions map[string]*session // conn ID -> session
}

type session struct {
	conn       socketio.Conn
	roomID     string
	userID     string
	reconciler *services.PresenceReconciler
	typing     *services.TypingDebouncer
}

type joinRequest struct {
	RoomID string `json:"roomId"`
	UserID string `json:"userId"`
}

// NewServer initializes the Socket.IO server and its event handlers.
func NewServer(roomService *services.RoomService, chatService *services.ChatService) *Server {
	s := &Server{
		IO:       socketio.NewServer(nil),
		rooms:    roomService,
		chat:     chatService,
		sessions: make(map[string]*session),
	}

	s.IO.OnConnect("/", func(c socketio.Conn) error {
		log.Println("✅ Socket connected:", c.ID())
		return nil
	})

	s.IO.OnEvent("/", "join", func(c socketio.Conn, req joinRequest) {
		s.handleJoin(c, req)
	})

	// One keystroke: set the typing flag and re-arm the debounce timer.
	s.IO.OnEvent("/", "typing", func(c socketio.Conn) {
		sess := s.session(c.ID())
		if sess == nil {
			return
		}
		if err := s.rooms.SetTyping(context.Background(), sess.roomID, sess.userID, true); err != nil {
			log.Printf("typing write failed for room %s: %v", sess.roomID, err)
			return
		}
		sess.typing.Arm()
		s.fanOutRoom(sess.roomID)
	})

	// Sent a message (or blurred the input): clear typing immediately.
	s.IO.OnEvent("/", "stopTyping", func(c socketio.Conn) {
		if sess := s.session(c.ID()); sess != nil {
			sess.typing.Flush()
		}
	})

	s.IO.OnEvent("/", "visibility", func(c socketio.Conn, visible bool) {
		sess := s.session(c.ID())
		if sess == nil {
			return
		}
		if sess.reconciler.SetVisible(visible) {
			s.markSeen(sess)
		}
		sess.conn.Emit("presence", sess.reconciler.State())
	})

	s.IO.OnEvent("/", "atBottom", func(c socketio.Conn, atBottom bool) {
		sess := s.session(c.ID())
		if sess == nil {
			return
		}
		if sess.reconciler.SetAtBottom(atBottom) {
			s.markSeen(sess)
		}
	})

	s.IO.OnError("/", func(c socketio.Conn, err error) {
		log.Println("socket error:", err)
	})

	s.IO.OnDisconnect("/", func(c socketio.Conn, reason string) {
		log.Println("❌ Socket disconnected:", c.ID(), reason)
		s.mu.Lock()
		sess := s.sessions[c.ID()]
		delete(s.sessions, c.ID())
		s.mu.Unlock()
		if sess != nil {
			// Best-effort typing cleanup; failures are swallowed.
			sess.typing.Flush()
		}
	})

	return s
}

func (s *Server) handleJoin(c socketio.Conn, req joinRequest) {
	if req.RoomID == "" || req.UserID == "" {
		c.Emit("joinError", "roomId and userId are required")
		return
	}

	room, err := s.rooms.GetRoom(context.Background(), req.RoomID)
	if err != nil {
		c.Emit("joinError", "room not found")
		return
	}
	if !room.HasMember(req.UserID) {
		c.Emit("joinError", "not a member of this room")
		return
	}

	sess := &session{
		conn:       c,
		roomID:     req.RoomID,
		userID:     req.UserID,
		reconciler: services.NewPresenceReconciler(req.UserID, time.Now()),
	}
	sess.typing = services.NewTypingDebouncer(services.TypingTimeout, func() {
		_ = s.rooms.SetTyping(context.Background(), sess.roomID, sess.userID, false)
		s.fanOutRoom(sess.roomID)
	})

	s.mu.Lock()
	s.sessions[c.ID()] = sess
	s.mu.Unlock()

	c.Join(req.RoomID)
	log.Printf("👥 User %s joined room %s", req.UserID, req.RoomID)

	sess.reconciler.ApplyRoom(room)

	messages, err := s.chat.GetMessages(context.Background(), req.RoomID, models.MessageLimit)
	if err != nil {
		log.Printf("failed to load history for room %s: %v", req.RoomID, err)
		messages = nil
	}
	if sess.reconciler.ApplyMessages(messages) {
		s.markSeen(sess)
	}

	c.Emit("history", messages)
	c.Emit("presence", sess.reconciler.State())
}

// NotifyMessage fans a new or updated message out to the room channel
// and folds it into each live session's reconciler.
func (s *Server) NotifyMessage(roomID string, message models.Message) {
	s.IO.BroadcastToRoom("/", roomID, "newMessage", message)

	for _, sess := range s.sessionsInRoom(roomID) {
		if sess.reconciler.ApplyMessages([]models.Message{message}) {
			s.markSeen(sess)
		}
		sess.conn.Emit("presence", sess.reconciler.State())
	}
}

// NotifyRoom fans a room snapshot out, mirroring a document-store
// subscription push.
func (s *Server) NotifyRoom(roomID string, room models.Room) {
	s.IO.BroadcastToRoom("/", roomID, "room", room)

	for _, sess := range s.sessionsInRoom(roomID) {
		sess.reconciler.ApplyRoom(&room)
		sess.conn.Emit("presence", sess.reconciler.State())
	}
}

// markSeen is the gated side effect: the reconciler decided the
// session plausibly saw the latest content, so stamp its seen marker
// and push the new room state.
func (s *Server) markSeen(sess *session) {
	if _, err := s.rooms.MarkSeen(context.Background(), sess.roomID, sess.userID); err != nil {
		log.Printf("seen write failed for room %s: %v", sess.roomID, err)
		return
	}
	s.fanOutRoom(sess.roomID)
}

func (s *Server) fanOutRoom(roomID string) {
	room, err := s.rooms.GetRoom(context.Background(), roomID)
	if err != nil {
		return
	}
	s.NotifyRoom(roomID, *room)
}

func (s *Server) session(connID string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[connID]
}

func (s *Server) sessionsInRoom(roomID string) []*session {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*session
	for _, sess := range s.sessions {
		if sess.roomID == roomID {
			out = append(out, sess)
		}
	}
	return out
}
