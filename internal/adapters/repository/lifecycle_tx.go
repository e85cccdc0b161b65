package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
	"github.com/AchilleasB/blood-portal/matching-service/internal/core/ports"
)

// lifecycleTx runs approval steps on an open transaction. The breaker and
// timeout are applied once around the whole transaction by RunInTx.
type lifecycleTx struct {
	tx *sql.Tx
}

var _ ports.LifecycleTx = (*lifecycleTx)(nil)

func (t *lifecycleTx) GetRequestForUpdate(ctx context.Context, requestID int64) (*domain.BloodRequest, error) {
	row := t.tx.QueryRowContext(ctx,
		`SELECT `+requestColumns+` FROM blood_requests br WHERE br.id = $1 FOR UPDATE`, requestID)
	br, err := scanRequest(row)
	if err != nil {
		return nil, translate(err)
	}
	return &br, nil
}

func (t *lifecycleTx) CreateDonation(ctx context.Context, d domain.Donation) (*domain.Donation, error) {
	err := t.tx.QueryRowContext(ctx, `
		INSERT INTO donations (donor_id, patient_id, request_id, status, donated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		d.DonorID, d.PatientID, d.RequestID, d.Status, d.DonatedAt,
	).Scan(&d.ID)
	if err != nil {
		return nil, translate(err)
	}
	return &d, nil
}

func (t *lifecycleTx) SetRequestStatus(ctx context.Context, requestID int64, from, to domain.RequestStatus) error {
	res, err := t.tx.ExecContext(ctx,
		`UPDATE blood_requests SET status = $1 WHERE id = $2 AND status = $3`, to, requestID, from)
	if err != nil {
		return translate(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrStaleState
	}
	return nil
}

func (t *lifecycleTx) EnqueueEvent(ctx context.Context, eventID, eventType string, payload []byte) error {
	id, err := uuid.Parse(eventID)
	if err != nil {
		return fmt.Errorf("outbox event id: %w", err)
	}
	_, err = t.tx.ExecContext(ctx,
		`INSERT INTO outbox_events (id, event_type, payload) VALUES ($1, $2, $3)`,
		id, eventType, payload)
	return translate(err)
}
