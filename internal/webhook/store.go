package webhook

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"matric-memory/internal/types"
)

// Store owns subscription and delivery-log rows in public.webhook_subscriptions
// and public.webhook_deliveries, following the same
// package-owns-its-own-SQL-against-a-pool discipline as the job queue and
// blob store — no shared repository layer.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Create inserts a new subscription, generating its ID.
func (s *Store) Create(ctx context.Context, sub types.WebhookSubscription) (types.WebhookSubscription, error) {
	sub.ID = uuid.New()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO public.webhook_subscriptions (id, schema_tag, url, secret, events, active)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, sub.ID, sub.SchemaTag, sub.URL, sub.Secret, eventsToStrings(sub.Events), sub.Active)
	if err != nil {
		return types.WebhookSubscription{}, fmt.Errorf("insert webhook subscription: %w", err)
	}
	return sub, nil
}

// Delete removes a subscription by ID.
func (s *Store) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM public.webhook_subscriptions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete webhook subscription: %w", err)
	}
	return nil
}

// ListActiveForEvent returns every active subscription for schema listing
// eventType among its events.
func (s *Store) ListActiveForEvent(ctx context.Context, schema string, eventType types.WebhookEventType) ([]types.WebhookSubscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, schema_tag, url, secret, events, active, created_at
		FROM public.webhook_subscriptions
		WHERE schema_tag = $1 AND active = true AND $2 = ANY(events)
	`, schema, string(eventType))
	if err != nil {
		return nil, fmt.Errorf("list webhook subscriptions: %w", err)
	}
	defer rows.Close()

	var out []types.WebhookSubscription
	for rows.Next() {
		var sub types.WebhookSubscription
		var events []string
		if err := rows.Scan(&sub.ID, &sub.SchemaTag, &sub.URL, &sub.Secret, &events, &sub.Active, &sub.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan webhook subscription: %w", err)
		}
		sub.Events = stringsToEvents(events)
		out = append(out, sub)
	}
	return out, rows.Err()
}

// RecordDelivery appends a delivery-attempt record for audit and manual
// replay; it never returns an error the caller must act on, since a
// logging failure must not mask the delivery outcome itself.
func (s *Store) RecordDelivery(ctx context.Context, d types.WebhookDelivery) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO public.webhook_deliveries
			(id, subscription_id, event_type, status, attempt_count, last_status_code, last_error, delivered_at)
		VALUES (gen_random_uuid(), $1, $2, $3, $4, $5, $6, $7)
	`, d.SubscriptionID, string(d.EventType), string(d.Status), d.AttemptCount, d.LastStatusCode, d.LastError, d.DeliveredAt)
	if err != nil {
		return fmt.Errorf("record webhook delivery: %w", err)
	}
	return nil
}

func eventsToStrings(events []types.WebhookEventType) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = string(e)
	}
	return out
}

func stringsToEvents(strs []string) []types.WebhookEventType {
	out := make([]types.WebhookEventType, len(strs))
	for i, s := range strs {
		out[i] = types.WebhookEventType(s)
	}
	return out
}
