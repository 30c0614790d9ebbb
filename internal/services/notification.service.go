package services

import (
	"context"
	"fmt"

	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/pkg/logger"
	"github.com/realhub/condo-api/pkg/prom"
)

type EventPublisher interface {
	PublishJSON(ctx context.Context, v any) (string, error)
}

type PushSubscriptionStore interface {
	Create(ctx context.Context, sub *model.PushSubscription) error
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

// NotificationService publishes outbound notification events. Publishing is
// best effort: failures are logged and dropped, callers never see them.
type NotificationService struct {
	publisher EventPublisher
	subs      PushSubscriptionStore
}

func NewNotificationService(publisher EventPublisher, subs PushSubscriptionStore) *NotificationService {
	return &NotificationService{publisher: publisher, subs: subs}
}

func (s *NotificationService) PaymentCreated(ctx context.Context, p *model.Payment, actorID int64) {
	title := "New payment registered"
	body := fmt.Sprintf("A %s of %.2f was registered", p.Type, p.Amount)
	if p.Type == model.PaymentPending {
		title = "New due for your unit"
		body = fmt.Sprintf("A due of %.2f is awaiting your proof of payment", p.Amount)
	}

	event := model.NewNotificationEvent(title, body, p.UnitID, &actorID, map[string]string{
		"payment_id": fmt.Sprintf("%d", p.ID),
		"type":       string(p.Type),
	})
	s.publish(ctx, event)
}

func (s *NotificationService) publish(ctx context.Context, event model.NotificationEvent) {
	if _, err := s.publisher.PublishJSON(ctx, event); err != nil {
		logger.Error("notification: failed to publish event",
			"event_id", event.ID.String(),
			"error", err,
		)
		return
	}
	prom.Inc(prom.SystemNotifications, prom.MetricNotificationsPublished)
}

// Subscribe registers a web-push endpoint for the caller.
func (s *NotificationService) Subscribe(ctx context.Context, caller model.Caller, endpoint, p256dh, auth string) error {
	if endpoint == "" {
		return fmt.Errorf("endpoint is required")
	}
	return s.subs.Create(ctx, &model.PushSubscription{
		UserID:   caller.ID,
		Endpoint: endpoint,
		P256dh:   p256dh,
		Auth:     auth,
	})
}

func (s *NotificationService) Unsubscribe(ctx context.Context, endpoint string) error {
	return s.subs.DeleteByEndpoint(ctx, endpoint)
}
