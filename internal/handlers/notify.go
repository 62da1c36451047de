package handlers

import (
	"context"

	"go.uber.org/zap"

	"github.com/jestfly/community-backend/internal/models"
	"github.com/jestfly/community-backend/internal/realtime"
	"github.com/jestfly/community-backend/internal/repositories"
	"github.com/jestfly/community-backend/pkg/firebase"
)

// NotificationDispatcher persists engagement notifications and pushes them
// out over every delivery path: the realtime bridge (Redis pub/sub for other
// instances), a direct hub delivery for clients on this instance, and a
// best-effort FCM push. Direct and bridged deliveries share one event id, so
// the hub's duplicate window collapses the echo into a single client write.
type NotificationDispatcher struct {
	notificationRepo repositories.NotificationRepository
	userRepo         repositories.UserRepository
	notifier         *realtime.Notifier
	hub              *realtime.Hub
	push             *firebase.App
	log              *zap.Logger
}

// NewNotificationDispatcher creates a NotificationDispatcher
func NewNotificationDispatcher(
	notificationRepo repositories.NotificationRepository,
	userRepo repositories.UserRepository,
	notifier *realtime.Notifier,
	hub *realtime.Hub,
	push *firebase.App,
	log *zap.Logger,
) *NotificationDispatcher {
	return &NotificationDispatcher{
		notificationRepo: notificationRepo,
		userRepo:         userRepo,
		notifier:         notifier,
		hub:              hub,
		push:             push,
		log:              log,
	}
}

// notificationEvent is the bridge payload for a delivered notification
type notificationEvent struct {
	models.Notification
	Actor models.UserCompact `json:"actor"`
}

// Dispatch stores and delivers one notification. Self-notifications are
// dropped. Delivery failures never fail the triggering request; the stored
// row is the source of truth and list reads will pick it up.
func (d *NotificationDispatcher) Dispatch(ctx context.Context, n *models.Notification) {
	if n.ActorID == n.RecipientID {
		return
	}

	if err := d.notificationRepo.CreateNotification(n); err != nil {
		d.log.Error("storing notification", zap.Error(err))
		return
	}

	payload := notificationEvent{Notification: *n}
	if actor, err := d.userRepo.GetUserByID(n.ActorID); err == nil {
		payload.Actor = actor.ToCompact()
	}

	event, err := realtime.NewEvent(realtime.EventNotificationCreated, payload)
	if err != nil {
		d.log.Error("encoding notification event", zap.Error(err))
		return
	}

	if d.hub != nil {
		d.hub.Broadcast(n.RecipientID, event)
	}
	if d.notifier != nil {
		if err := d.notifier.PublishUser(ctx, n.RecipientID, event); err != nil {
			d.log.Warn("publishing notification event", zap.Error(err))
		}
	}

	if recipient, err := d.userRepo.GetUserByID(n.RecipientID); err == nil {
		d.push.SendPush(ctx, recipient.DeviceToken, "JESTFLY", n.Message)
	}
}
