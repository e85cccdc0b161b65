package repository

import (
	"context"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

func (r *SQLRepository) GetRequest(ctx context.Context, requestID int64) (*domain.BloodRequest, error) {
	return run(ctx, r, func(ctx context.Context) (*domain.BloodRequest, error) {
		row := r.db.QueryRowContext(ctx,
			`SELECT `+requestColumns+` FROM blood_requests br WHERE br.id = $1`, requestID)
		br, err := scanRequest(row)
		if err != nil {
			return nil, translate(err)
		}
		return &br, nil
	})
}

func (r *SQLRepository) CreateRequest(ctx context.Context, req domain.BloodRequest) (*domain.BloodRequest, error) {
	return run(ctx, r, func(ctx context.Context) (*domain.BloodRequest, error) {
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO blood_requests (patient_id, blood_group, units_required, urgency_level, status, requested_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			req.PatientID, req.BloodGroup, req.UnitsRequired, req.Urgency, req.Status, req.RequestedAt,
		).Scan(&req.ID)
		if err != nil {
			return nil, translate(err)
		}
		return &req, nil
	})
}

func (r *SQLRepository) ListRequestsByPatient(ctx context.Context, patientID int64) ([]domain.BloodRequest, error) {
	return run(ctx, r, func(ctx context.Context) ([]domain.BloodRequest, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT `+requestColumns+`
			FROM blood_requests br
			WHERE br.patient_id = $1
			ORDER BY br.requested_at DESC, br.id DESC`, patientID)
		if err != nil {
			return nil, err
		}
		return collect(rows, func(row rowScanner) (domain.BloodRequest, error) {
			return scanRequest(row)
		})
	})
}

func (r *SQLRepository) ListDonationsByDonor(ctx context.Context, donorID int64) ([]domain.DonationSummary, error) {
	return run(ctx, r, func(ctx context.Context) ([]domain.DonationSummary, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT dn.id, dn.donor_id, dn.patient_id, dn.request_id, dn.status, dn.donated_at,
			       br.blood_group, br.units_required
			FROM donations dn
			JOIN blood_requests br ON br.id = dn.request_id
			WHERE dn.donor_id = $1
			ORDER BY dn.donated_at DESC, dn.id DESC`, donorID)
		if err != nil {
			return nil, err
		}
		return collect(rows, func(row rowScanner) (domain.DonationSummary, error) {
			var s domain.DonationSummary
			err := row.Scan(
				&s.ID, &s.DonorID, &s.PatientID, &s.RequestID, &s.Status, &s.DonatedAt,
				&s.BloodGroup, &s.UnitsRequired,
			)
			return s, err
		})
	})
}
