package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/sony/gobreaker"

	"github.com/AchilleasB/blood-portal/matching-service/internal/config"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

const (
	// PostgreSQL NOTIFY/LISTEN configuration
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	// Event processing timeouts
	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	// Health check configuration
	healthCheckStaleThreshold = 5 * time.Minute

	// Batch processing limits
	maxEventsPerBatch = 100
)

// ErrMalformedEvent marks an outbox payload that can never be published.
var ErrMalformedEvent = errors.New("malformed outbox event")

// Relay listens for PostgreSQL NOTIFY signals on the outbox_channel
// and publishes donation events to RabbitMQ.
type Relay struct {
	db        *sql.DB
	publisher ports.DonationEventPublisher
	dbURL     string
	dbCB      *gobreaker.CircuitBreaker
	logger    *slog.Logger

	mu            sync.RWMutex
	lastProcessed time.Time
	healthy       bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.DonationEventPublisher, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		db:            db,
		dbURL:         dbURL,
		publisher:     publisher,
		dbCB:          config.NewCircuitBreaker("Relay-PostgreSQL"),
		logger:        logger,
		lastProcessed: time.Now(),
		healthy:       true,
	}
}

// IsHealthy reports whether the relay loop is alive. An open breaker is
// degraded but recoverable and does not make the relay unhealthy.
func (r *Relay) IsHealthy() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.healthy
}

// IsReady reports whether the relay can currently move events.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	if time.Since(r.lastProcessed) > healthCheckStaleThreshold {
		return false
	}
	return r.healthy
}

func (r *Relay) markProcessed() {
	r.mu.Lock()
	r.lastProcessed = time.Now()
	r.healthy = true
	r.mu.Unlock()
}

func (r *Relay) setHealthy(ok bool) {
	r.mu.Lock()
	r.healthy = ok
	r.mu.Unlock()
}

// Start listens for outbox notifications until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Error("outbox listener error", "event", int(ev), "error", err)
		}
	}

	listener := pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(outboxChannelName); err != nil {
		return fmt.Errorf("listen on %s: %w", outboxChannelName, err)
	}

	r.logger.Info("outbox relay listening", "channel", outboxChannelName)

	// Catch up on anything written while the relay was down.
	if err := r.processUnprocessedEvents(ctx); err != nil {
		r.logger.Error("outbox startup backlog failed", "error", err)
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay shutting down")
			return ctx.Err()

		case n := <-listener.Notify:
			if n == nil {
				// Connection was lost and re-established; events may have been missed.
				r.logger.Warn("outbox listener reconnected")
				r.setHealthy(false)
				if err := r.processUnprocessedEvents(ctx); err == nil {
					r.markProcessed()
				}
				continue
			}

			if err := r.processEventByID(ctx, n.Extra); err != nil {
				r.logger.Error("outbox event failed", "event_id", n.Extra, "error", err)
				continue
			}
			r.markProcessed()

		case <-ticker.C:
			go listener.Ping()

			if err := r.processUnprocessedEvents(ctx); err != nil {
				r.logger.Error("outbox periodic processing failed", "error", err)
				continue
			}
			r.markProcessed()
		}
	}
}

// dispatch publishes one outbox record. Unknown event types are skipped and
// malformed payloads return ErrMalformedEvent.
func (r *Relay) dispatch(ctx context.Context, id, eventType string, payload []byte) error {
	switch eventType {
	case domain.EventDonationApproved:
		var evt domain.DonationApprovedEvent
		if err := json.Unmarshal(payload, &evt); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrMalformedEvent, id, err)
		}
		if evt.EventID == "" {
			evt.EventID = id
		}
		return r.publisher.PublishDonationApproved(ctx, evt)
	default:
		r.logger.Warn("outbox event type not routed", "event_id", id, "event_type", eventType)
		return nil
	}
}

// handle dispatches a record. A nil result means the record may be marked
// processed; malformed records are dropped so they are not retried forever.
func (r *Relay) handle(ctx context.Context, id, eventType string, payload []byte) error {
	err := r.dispatch(ctx, id, eventType, payload)
	if errors.Is(err, ErrMalformedEvent) {
		r.logger.Error("outbox event dropped", "event_id", id, "error", err)
		return nil
	}
	return err
}

func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		var id, eventType string
		var payload []byte
		err = tx.QueryRowContext(ctx, `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&id, &eventType, &payload)
		if errors.Is(err, sql.ErrNoRows) {
			// Already processed or held by another relay.
			return nil, nil
		}
		if err != nil {
			return nil, err
		}

		if err := r.handle(ctx, id, eventType, payload); err != nil {
			return nil, err
		}

		if err := markProcessed(ctx, tx, id); err != nil {
			return nil, err
		}
		r.logger.Info("outbox event published", "event_id", id, "event_type", eventType)
		return nil, tx.Commit()
	})
	return err
}

func (r *Relay) processUnprocessedEvents(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		rows, err := tx.QueryContext(ctx, `
			SELECT id, event_type, payload
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return nil, err
		}

		type record struct {
			ID        string
			EventType string
			Payload   []byte
		}

		var records []record
		for rows.Next() {
			var rec record
			if err := rows.Scan(&rec.ID, &rec.EventType, &rec.Payload); err != nil {
				rows.Close()
				return nil, err
			}
			records = append(records, rec)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return nil, err
		}

		for _, rec := range records {
			if err := r.handle(ctx, rec.ID, rec.EventType, rec.Payload); err != nil {
				r.logger.Error("outbox publish failed", "event_id", rec.ID, "error", err)
				continue
			}
			if err := markProcessed(ctx, tx, rec.ID); err != nil {
				return nil, err
			}
		}
		if len(records) > 0 {
			r.logger.Info("outbox batch processed", "events", len(records))
		}

		return nil, tx.Commit()
	})
	return err
}

func markProcessed(ctx context.Context, tx *sql.Tx, id string) error {
	_, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
	return err
}
