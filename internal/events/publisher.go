package events

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/capiorg/backend/internal/metrics"
)

// Socket event names. Payload shapes mirror the view DTOs.
const (
	EventNewMessage    = "newMessageResponse"
	EventUpdateMessage = "updateMessageResponse"
	EventDeleteMessage = "deleteMessageResponse"
)

const NamespaceV1 = "/v1"

// Publisher pushes a named event with a JSON payload to a namespace-scoped
// broadcast channel. Delivery is fire-and-forget: no ack, no retry, no
// persistence. Implementations must only be invoked after the owning
// database transaction has committed.
type Publisher interface {
	Emit(ctx context.Context, event string, payload any, namespace string) error
}

// Envelope is the wire format on the broadcast channel.
type Envelope struct {
	Event     string          `json:"event"`
	Namespace string          `json:"namespace"`
	Data      json.RawMessage `json:"data"`
}

// ChannelFor maps a namespace to its Redis pub/sub channel, e.g. "/v1" ->
// "socket:v1".
func ChannelFor(namespace string) string {
	return "socket:" + strings.TrimPrefix(namespace, "/")
}

type RedisPublisher struct {
	client *redis.Client
	log    *zap.SugaredLogger
}

func NewRedisPublisher(client *redis.Client, log *zap.SugaredLogger) *RedisPublisher {
	return &RedisPublisher{client: client, log: log}
}

func (p *RedisPublisher) Emit(ctx context.Context, event string, payload any, namespace string) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	env := Envelope{Event: event, Namespace: namespace, Data: data}
	body, err := json.Marshal(env)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, ChannelFor(namespace), body).Err(); err != nil {
		metrics.EventPublishErrors.Inc()
		p.log.Warnw("event publish failed", "event", event, "err", err)
		return err
	}
	metrics.EventsPublished.WithLabelValues(event).Inc()
	return nil
}
