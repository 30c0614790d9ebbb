package notifier

import (
	"context"
	"encoding/json"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/realhub/condo-api/internal/model"
	"github.com/realhub/condo-api/internal/queue"
	"github.com/realhub/condo-api/pkg/logger"
	"github.com/realhub/condo-api/pkg/prom"
	"github.com/realhub/condo-api/pkg/worker"
	"github.com/valyala/fasthttp"
)

const (
	channelEmail = "email"
	channelPush  = "push"
)

type RecipientStore interface {
	ListRecipients(ctx context.Context, unitID, excludeUserID *int64) ([]*model.User, error)
}

type SubscriptionStore interface {
	FindAll(ctx context.Context) ([]*model.PushSubscription, error)
	FindByUnit(ctx context.Context, unitID int64) ([]*model.PushSubscription, error)
	DeleteByEndpoint(ctx context.Context, endpoint string) error
}

type MailSender interface {
	Enabled() bool
	Send(to, subject, body string) error
}

// Service consumes notification events from the queue and fans each one out
// to email and web-push recipients. Every delivery failure is logged and
// dropped; nothing here ever reaches back into the request path.
type Service struct {
	queue   *queue.Queue
	workers *worker.WorkerManager
	users   RecipientStore
	subs    SubscriptionStore
	mailer  MailSender
	client  *fasthttp.Client
}

func New(q *queue.Queue, numWorkers int, users RecipientStore, subs SubscriptionStore, mailer MailSender) *Service {
	return &Service{
		queue:   q,
		workers: worker.NewWorkerManager(numWorkers*2, numWorkers, nil),
		users:   users,
		subs:    subs,
		mailer:  mailer,
		client: &fasthttp.Client{
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 5 * time.Second,
		},
	}
}

// Start blocks until the worker pool is terminated.
func (s *Service) Start() error {
	s.workers.SetWorker(func(workerIndex int, job interface{}) {
		event, ok := job.(model.NotificationEvent)
		if !ok {
			logger.Error("notifier: unexpected job type", "worker", workerIndex)
			return
		}
		s.deliver(context.Background(), event)
	})

	s.queue.StartConsumer(func(ctx context.Context, msg queue.Message) error {
		var event model.NotificationEvent
		if err := queue.DecodeJSON(msg, &event); err != nil {
			// a malformed event will never decode, ack it away
			logger.Error("notifier: dropping undecodable event", "id", msg.ID, "error", err)
			return nil
		}
		s.workers.Enqueue(event)
		return nil
	})

	return s.workers.Start()
}

func (s *Service) Stop() {
	s.queue.Close()
	s.workers.Exit()
}

func (s *Service) deliver(ctx context.Context, event model.NotificationEvent) {
	recipients, err := s.users.ListRecipients(ctx, event.UnitID, event.ExcludeUserID)
	if err != nil {
		logger.Error("notifier: failed to load recipients", "event_id", event.ID.String(), "error", err)
		return
	}

	if s.mailer.Enabled() {
		for _, u := range recipients {
			if u.Email == "" {
				continue
			}
			s.sendEmail(u.Email, event)
		}
	}

	subs, err := s.loadSubscriptions(ctx, event)
	if err != nil {
		logger.Error("notifier: failed to load push subscriptions", "event_id", event.ID.String(), "error", err)
		return
	}
	for _, sub := range subs {
		if event.ExcludeUserID != nil && sub.UserID == *event.ExcludeUserID {
			continue
		}
		s.sendPush(ctx, sub, event)
	}
}

func (s *Service) loadSubscriptions(ctx context.Context, event model.NotificationEvent) ([]*model.PushSubscription, error) {
	if event.UnitID != nil {
		return s.subs.FindByUnit(ctx, *event.UnitID)
	}
	return s.subs.FindAll(ctx)
}

func (s *Service) sendEmail(to string, event model.NotificationEvent) {
	start := time.Now()
	err := s.mailer.Send(to, event.Title, event.Body)
	prom.Observe(prom.SystemNotifications, prom.MetricDeliveryDuration,
		time.Since(start).Seconds(), prometheus.Labels{"channel": channelEmail})

	if err != nil {
		prom.IncWithLabels(prom.SystemNotifications, prom.MetricNotificationsFailed,
			prometheus.Labels{"channel": channelEmail})
		logger.Warn("notifier: email delivery failed", "to", to, "event_id", event.ID.String(), "error", err)
		return
	}
	prom.IncWithLabels(prom.SystemNotifications, prom.MetricNotificationsDelivered,
		prometheus.Labels{"channel": channelEmail})
}

// sendPush posts the event payload to the subscription endpoint. Endpoints
// answering 404 or 410 are gone and their subscriptions are dropped.
func (s *Service) sendPush(ctx context.Context, sub *model.PushSubscription, event model.NotificationEvent) {
	payload, err := json.Marshal(map[string]any{
		"title": event.Title,
		"body":  event.Body,
		"data":  event.Data,
	})
	if err != nil {
		logger.Error("notifier: failed to encode push payload", "event_id", event.ID.String(), "error", err)
		return
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(sub.Endpoint)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.SetBody(payload)

	start := time.Now()
	err = s.client.Do(req, resp)
	prom.Observe(prom.SystemNotifications, prom.MetricDeliveryDuration,
		time.Since(start).Seconds(), prometheus.Labels{"channel": channelPush})

	if err != nil {
		prom.IncWithLabels(prom.SystemNotifications, prom.MetricNotificationsFailed,
			prometheus.Labels{"channel": channelPush})
		logger.Warn("notifier: push delivery failed", "endpoint", sub.Endpoint, "error", err)
		return
	}

	status := resp.StatusCode()
	switch {
	case status == fasthttp.StatusNotFound || status == fasthttp.StatusGone:
		prom.IncWithLabels(prom.SystemNotifications, prom.MetricNotificationsFailed,
			prometheus.Labels{"channel": channelPush})
		if err := s.subs.DeleteByEndpoint(ctx, sub.Endpoint); err != nil {
			logger.Warn("notifier: failed to drop dead subscription", "endpoint", sub.Endpoint, "error", err)
		}
	case status >= 200 && status < 300:
		prom.IncWithLabels(prom.SystemNotifications, prom.MetricNotificationsDelivered,
			prometheus.Labels{"channel": channelPush})
	default:
		prom.IncWithLabels(prom.SystemNotifications, prom.MetricNotificationsFailed,
			prometheus.Labels{"channel": channelPush})
		logger.Warn("notifier: push endpoint answered non-2xx",
			"endpoint", sub.Endpoint, "status", status)
	}
}
