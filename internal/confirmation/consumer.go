// Package confirmation applies review decisions coming from the external
// confirmation workflow.
package confirmation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"profile-service/internal/events"
	"profile-service/internal/models"
	"profile-service/internal/profiles"
	"profile-service/internal/storage"
	"profile-service/pkg/kafka"
	"profile-service/pkg/logger"
)

// Subscriber is satisfied by *kafka.Client.
type Subscriber interface {
	Consume(ctx context.Context, topic, groupID string, handler func(context.Context, []byte) error) error
}

// Confirmer writes a decision. *profiles.Service implements it.
type Confirmer interface {
	SetConfirmation(ctx context.Context, uid models.CallerID, confirmed bool, decidedAt time.Time) (*models.Profile, error)
}

// Notifier pushes the applied decision to the driver. *notify.Hub implements it.
type Notifier interface {
	NotifyConfirmation(uid models.CallerID, confirmed bool)
}

// Consumer reads profile.confirmation_decided and applies each decision.
type Consumer struct {
	sub      Subscriber
	groupID  string
	profiles Confirmer
	notifier Notifier
	observe  func(confirmed bool)
	log      logger.ILogger
}

func NewConsumer(sub Subscriber, groupID string, profiles Confirmer, notifier Notifier, observe func(bool), log logger.ILogger) *Consumer {
	return &Consumer{
		sub:      sub,
		groupID:  groupID,
		profiles: profiles,
		notifier: notifier,
		observe:  observe,
		log:      log,
	}
}

// Run blocks until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) error {
	c.log.Info("confirmation consumer started", logger.String("topic", kafka.TopicConfirmationDecided))
	return c.sub.Consume(ctx, kafka.TopicConfirmationDecided, c.groupID, c.Handle)
}

// Handle applies one encoded ConfirmationDecidedEvent. Decisions for
// drivers that no longer exist, and decisions older than the driver's
// latest review request, are dropped.
func (c *Consumer) Handle(ctx context.Context, data []byte) error {
	const op = "confirmation.Handle"

	var ev events.ConfirmationDecidedEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if ev.UserID <= 0 {
		return fmt.Errorf("%s: invalid uid %d", op, ev.UserID)
	}

	decidedAt, err := time.Parse(time.RFC3339, ev.DecidedAt)
	if err != nil {
		return fmt.Errorf("%s: decided_at: %w", op, err)
	}

	p, err := c.profiles.SetConfirmation(ctx, ev.UserID, ev.Confirmed, decidedAt)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			c.log.Warning("confirmation for unknown driver dropped", logger.Int64("uid", int64(ev.UserID)))
			return nil
		case errors.Is(err, profiles.ErrStaleDecision):
			c.log.Warning("outdated confirmation dropped",
				logger.Int64("uid", int64(ev.UserID)), logger.String("decided_at", ev.DecidedAt))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	if c.observe != nil {
		c.observe(p.Confirmed)
	}
	if c.notifier != nil {
		c.notifier.NotifyConfirmation(p.UserID, p.Confirmed)
	}
	c.log.Info("confirmation decision applied",
		logger.Int64("uid", int64(p.UserID)), logger.Bool("confirmed", p.Confirmed))
	return nil
}
