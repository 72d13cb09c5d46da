package events

import (
	"context"
	"strconv"
	"time"

	"github.com/google/uuid"

	"profile-service/internal/models"
	"profile-service/pkg/kafka"
)

// Reasons carried by ConfirmationRequiredEvent.
const (
	ReasonProfileCreated = "profile_created"
	ReasonAddressEdited  = "address_edited"
)

// ConfirmationRequiredEvent is published to profile.confirmation_required
// whenever a driver needs (re-)review.
type ConfirmationRequiredEvent struct {
	EventID    string          `json:"event_id"`
	UserID     models.CallerID `json:"uid"`
	ProfileID  int64           `json:"profile_id"`
	Reason     string          `json:"reason"`
	OccurredAt string          `json:"occurred_at"`
}

// ConfirmationDecidedEvent is consumed from profile.confirmation_decided.
type ConfirmationDecidedEvent struct {
	UserID    models.CallerID `json:"uid"`
	Confirmed bool            `json:"confirmed"`
	DecidedAt string          `json:"decided_at"`
}

// Publisher is satisfied by *kafka.Client.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, value any) error
}

// ConfirmationRequired builds the event for driver profile p.
func ConfirmationRequired(p *models.Profile, reason string, at time.Time) ConfirmationRequiredEvent {
	return ConfirmationRequiredEvent{
		EventID:    uuid.NewString(),
		UserID:     p.UserID,
		ProfileID:  p.ID,
		Reason:     reason,
		OccurredAt: at.UTC().Format(time.RFC3339),
	}
}

// PublishConfirmationRequired sends ev keyed by the driver's uid so all
// events of one driver keep their order.
func PublishConfirmationRequired(ctx context.Context, pub Publisher, ev ConfirmationRequiredEvent) error {
	return pub.Publish(ctx, kafka.TopicConfirmationRequired, strconv.FormatInt(int64(ev.UserID), 10), ev)
}
