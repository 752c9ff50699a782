package types

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WebhookEventType names the job lifecycle transitions a subscription can
// observe.
type WebhookEventType string

const (
	WebhookEventJobCompleted WebhookEventType = "job.completed"
	WebhookEventJobFailed    WebhookEventType = "job.failed"
)

// WebhookSubscription binds a destination URL and per-subscription HMAC
// secret to the event types it wants delivered. Secret is never returned by
// any list/read path outside this subscription's own owner.
type WebhookSubscription struct {
	ID        uuid.UUID
	SchemaTag string
	URL       string
	Secret    string
	Events    []WebhookEventType
	Active    bool
	CreatedAt time.Time
}

// Wants reports whether the subscription is active and listed for the
// given event type.
func (s WebhookSubscription) Wants(event WebhookEventType) bool {
	if !s.Active {
		return false
	}
	for _, e := range s.Events {
		if e == event {
			return true
		}
	}
	return false
}

// WebhookEvent is the payload body delivered to a subscriber, built from a
// completed or failed job.
type WebhookEvent struct {
	Type      WebhookEventType `json:"type"`
	JobID     uuid.UUID        `json:"job_id"`
	JobType   JobType          `json:"job_type"`
	Schema    string           `json:"schema"`
	Result    json.RawMessage  `json:"result,omitempty"`
	Error     string           `json:"error,omitempty"`
	Timestamp time.Time        `json:"timestamp"`
}

// WebhookDeliveryStatus is the outcome of one delivery attempt.
type WebhookDeliveryStatus string

const (
	DeliveryDelivered WebhookDeliveryStatus = "delivered"
	DeliveryRetrying  WebhookDeliveryStatus = "retrying"
	DeliveryFailed    WebhookDeliveryStatus = "failed"
)

// WebhookDelivery records one attempt (or the final outcome across
// attempts) at delivering an event to a subscription, for observability and
// manual replay.
type WebhookDelivery struct {
	ID             uuid.UUID
	SubscriptionID uuid.UUID
	EventType      WebhookEventType
	Status         WebhookDeliveryStatus
	AttemptCount   int
	LastStatusCode int
	LastError      string
	CreatedAt      time.Time
	DeliveredAt    *time.Time
}
