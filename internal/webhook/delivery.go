package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"

	"matric-memory/internal/jobs"
	"matric-memory/internal/obslog"
	"matric-memory/internal/types"
)

// Retry policy uses the job pipeline's backoff (base=30s, cap=1h), with at
// most 3 delivery attempts in total.
const (
	retryBase       = 30 * time.Second
	retryCap        = 1 * time.Hour
	defaultAttempts = 3
)

// Dispatcher delivers WebhookEvents to every active, subscribed
// WebhookSubscription and implements jobs.Observer so it can be registered
// directly on a jobs.Queue.
type Dispatcher struct {
	store       *Store
	httpClient  *http.Client
	maxAttempts int
}

func NewDispatcher(store *Store) *Dispatcher {
	return &Dispatcher{
		store:       store,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		maxAttempts: defaultAttempts,
	}
}

var _ jobs.Observer = (*Dispatcher)(nil)

// OnJobCompleted fans a job.completed event out to every subscription that
// wants it. Delivery runs in its own goroutine per subscription so a slow
// or unreachable subscriber never blocks the worker's claim loop.
func (d *Dispatcher) OnJobCompleted(ctx context.Context, job *types.Job, result json.RawMessage) {
	d.fanOut(ctx, types.WebhookEvent{
		Type:      types.WebhookEventJobCompleted,
		JobID:     job.ID,
		JobType:   job.Type,
		Schema:    job.SchemaTag,
		Result:    result,
		Timestamp: time.Now(),
	})
}

// OnJobFailed fans a job.failed event out the same way.
func (d *Dispatcher) OnJobFailed(ctx context.Context, job *types.Job, errMsg string) {
	d.fanOut(ctx, types.WebhookEvent{
		Type:      types.WebhookEventJobFailed,
		JobID:     job.ID,
		JobType:   job.Type,
		Schema:    job.SchemaTag,
		Error:     errMsg,
		Timestamp: time.Now(),
	})
}

func (d *Dispatcher) fanOut(ctx context.Context, event types.WebhookEvent) {
	if d.store == nil {
		return
	}
	log := obslog.FromContext(ctx)
	subs, err := d.store.ListActiveForEvent(ctx, event.Schema, event.Type)
	if err != nil {
		log.Error("failed to list webhook subscriptions", obslog.ErrorMsg, err)
		return
	}
	for _, sub := range subs {
		sub := sub
		go func() {
			if _, err := d.Deliver(context.WithoutCancel(ctx), sub, event); err != nil {
				log.Error("webhook delivery exhausted retries",
					obslog.ErrorMsg, err, "subscription_id", sub.ID, "event_type", event.Type)
			}
		}()
	}
}

// Deliver POSTs event to sub.URL, retrying on 5xx responses and transport
// errors following the same exponential-backoff policy as the job queue,
// up to maxAttempts. Returns the final delivery record whether or not it
// ultimately succeeded.
func (d *Dispatcher) Deliver(ctx context.Context, sub types.WebhookSubscription, event types.WebhookEvent) (types.WebhookDelivery, error) {
	return d.deliverWithBackoff(ctx, sub, event, retryBase)
}

// deliverWithBackoff is Deliver with the initial retry interval exposed, so
// tests can shrink it without waiting out the real 30s base.
func (d *Dispatcher) deliverWithBackoff(ctx context.Context, sub types.WebhookSubscription, event types.WebhookEvent, initialInterval time.Duration) (types.WebhookDelivery, error) {
	body, err := json.Marshal(event)
	if err != nil {
		return types.WebhookDelivery{}, fmt.Errorf("marshal webhook event: %w", err)
	}

	delivery := types.WebhookDelivery{
		SubscriptionID: sub.ID,
		EventType:      event.Type,
		Status:         types.DeliveryRetrying,
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = initialInterval
	b.Multiplier = 2.0
	b.MaxInterval = retryCap
	b.RandomizationFactor = 0.2
	b.MaxElapsedTime = 0

	var lastErr error
	for attempt := 0; attempt < d.maxAttempts; attempt++ {
		delivery.AttemptCount++
		status, err := d.sendOnce(ctx, sub, body)
		delivery.LastStatusCode = status
		if err == nil {
			delivery.Status = types.DeliveryDelivered
			now := time.Now()
			delivery.DeliveredAt = &now
			d.recordDelivery(ctx, delivery)
			return delivery, nil
		}
		lastErr = err
		delivery.LastError = err.Error()

		if attempt == d.maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			delivery.Status = types.DeliveryFailed
			d.recordDelivery(ctx, delivery)
			return delivery, ctx.Err()
		case <-time.After(b.NextBackOff()):
		}
	}

	delivery.Status = types.DeliveryFailed
	d.recordDelivery(ctx, delivery)
	return delivery, fmt.Errorf("webhook delivery to %s exhausted %d attempts: %w", sub.URL, d.maxAttempts, lastErr)
}

func (d *Dispatcher) recordDelivery(ctx context.Context, delivery types.WebhookDelivery) {
	if d.store == nil {
		return
	}
	_ = d.store.RecordDelivery(ctx, delivery)
}

// sendOnce issues a single signed POST, returning the response status code
// and a non-nil error for transport failures or 5xx responses (both
// retryable); 4xx responses are treated as a terminal failure for this
// attempt but are not retried by the caller beyond normal attempt counting.
func (d *Dispatcher) sendOnce(ctx context.Context, sub types.WebhookSubscription, body []byte) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(SignatureHeader, Sign(sub.Secret, body))

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("webhook request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 500 {
		respBody, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("webhook returned status %d: %s", resp.StatusCode, string(respBody))
	}
	if resp.StatusCode >= 400 {
		respBody, _ := io.ReadAll(resp.Body)
		return resp.StatusCode, fmt.Errorf("webhook rejected with status %d: %s", resp.StatusCode, string(respBody))
	}
	return resp.StatusCode, nil
}
