package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/minsukang/accounts/pkg/logger"
)

// TopicUserLifecycle carries all user lifecycle events
const TopicUserLifecycle = "user.lifecycle"

// User lifecycle event names
const (
	UserCreated = "user.created"
	UserUpdated = "user.updated"
	UserDeleted = "user.deleted"
)

// UserEvent is the envelope published for every user lifecycle change.
// It carries identifiers only, never credential material.
type UserEvent struct {
	Name      string    `json:"name"`
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Timestamp time.Time `json:"timestamp"`
}

// Publisher is the narrow interface services use to emit events
type Publisher interface {
	PublishUserEvent(name string, userID string, email string) error
}

// Bus is an in-process pub/sub for domain events
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *logger.Logger
}

// NewBus creates a new in-process event bus
func NewBus(log *logger.Logger) *Bus {
	if log == nil {
		log = logger.GetGlobalLogger()
	}

	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 64,
	}, watermill.NewStdLogger(false, false))

	return &Bus{
		pubsub: pubsub,
		logger: log.WithComponent("events"),
	}
}

// PublishUserEvent publishes a user lifecycle event. Publish failures
// are reported to the caller; lifecycle events are advisory and must
// not fail the originating operation.
func (b *Bus) PublishUserEvent(name string, userID string, email string) error {
	payload, err := json.Marshal(UserEvent{
		Name:      name,
		UserID:    userID,
		Email:     email,
		Timestamp: time.Now().UTC(),
	})
	if err != nil {
		return err
	}

	msg := message.NewMessage(uuid.NewString(), payload)
	return b.pubsub.Publish(TopicUserLifecycle, msg)
}

// Subscribe returns a channel of user lifecycle events
func (b *Bus) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, TopicUserLifecycle)
}

// Close shuts the bus down and closes all subscriber channels
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

// RunAuditLogger consumes lifecycle events and logs them until ctx is
// cancelled or the bus is closed.
func RunAuditLogger(ctx context.Context, bus *Bus, log *logger.Logger) error {
	messages, err := bus.Subscribe(ctx)
	if err != nil {
		return err
	}

	auditLog := log.WithComponent("audit")

	go func() {
		for msg := range messages {
			var event UserEvent
			if err := json.Unmarshal(msg.Payload, &event); err != nil {
				auditLog.Warn("Malformed lifecycle event", zap.String("message_id", msg.UUID))
				msg.Ack()
				continue
			}

			auditLog.Info("User lifecycle event",
				zap.String("event", event.Name),
				zap.String("user_id", event.UserID),
				zap.String("email", event.Email),
				zap.Time("timestamp", event.Timestamp),
			)
			msg.Ack()
		}
	}()

	return nil
}
