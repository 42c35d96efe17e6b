package ws

import (
	"context"
	"encoding/json"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/capiorg/backend/internal/events"
)

// ActivityTracker records user presence transitions.
type ActivityTracker interface {
	MarkOnline(ctx context.Context, userID uuid.UUID, online bool)
}

// Server bridges the Redis broadcast channel to connected websocket clients.
// Events published while a subscriber is offline are permanently missed;
// this is a real-time channel, not a durable log.
type Server struct {
	hub      *Hub
	rdb      *redis.Client
	activity ActivityTracker
	log      *zap.SugaredLogger
}

func NewServer(hub *Hub, rdb *redis.Client, activity ActivityTracker, log *zap.SugaredLogger) *Server {
	return &Server{hub: hub, rdb: rdb, activity: activity, log: log}
}

// Run consumes the namespace channel until the context is cancelled.
func (s *Server) Run(ctx context.Context) {
	sub := s.rdb.Subscribe(ctx, events.ChannelFor(events.NamespaceV1))
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			s.dispatch([]byte(msg.Payload))
		}
	}
}

// dispatch routes an envelope to the room of the conversation it concerns.
func (s *Server) dispatch(payload []byte) {
	var env events.Envelope
	if err := json.Unmarshal(payload, &env); err != nil {
		s.log.Warnw("bad event envelope", "err", err)
		return
	}
	var ref struct {
		ConversationID string `json:"conversation_id"`
	}
	if err := json.Unmarshal(env.Data, &ref); err != nil || ref.ConversationID == "" {
		s.log.Debugw("event without conversation reference", "event", env.Event)
		return
	}
	s.hub.Broadcast(ref.ConversationID, env)
}

type clientCommand struct {
	Action         string `json:"action"`
	ConversationID string `json:"conversation_id"`
}

// Handler registers the connection and pumps room join/leave commands until
// the client disconnects.
func (s *Server) Handler() func(*websocket.Conn) {
	return func(conn *websocket.Conn) {
		userID, _ := conn.Locals("user_id").(string)
		if userID == "" {
			_ = conn.Close()
			return
		}

		client := NewClient(userID, conn)
		s.hub.AddClient(userID, client)
		defer s.hub.RemoveClient(userID, client)

		if id, err := uuid.Parse(userID); err == nil && s.activity != nil {
			s.activity.MarkOnline(context.Background(), id, true)
			defer s.activity.MarkOnline(context.Background(), id, false)
		}

		go client.WritePump()

		for {
			var cmd clientCommand
			if err := conn.ReadJSON(&cmd); err != nil {
				return
			}
			switch cmd.Action {
			case "join":
				s.hub.JoinRoom(cmd.ConversationID, userID)
			case "leave":
				s.hub.LeaveRoom(cmd.ConversationID, userID)
			}
		}
	}
}
