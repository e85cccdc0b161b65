package repository

import (
	"context"
	"database/sql"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

const requestColumns = `br.id, br.patient_id, br.blood_group, br.units_required, br.urgency_level, br.status, br.requested_at`

// urgencyRank mirrors domain.Urgency.Rank so the store can order by it.
const urgencyRank = `CASE br.urgency_level
	WHEN 'Critical' THEN 4
	WHEN 'High' THEN 3
	WHEN 'Medium' THEN 2
	WHEN 'Low' THEN 1
	ELSE 0 END`

func scanRequest(row rowScanner, extra ...any) (domain.BloodRequest, error) {
	var br domain.BloodRequest
	dest := append([]any{
		&br.ID, &br.PatientID, &br.BloodGroup, &br.UnitsRequired,
		&br.Urgency, &br.Status, &br.RequestedAt,
	}, extra...)
	err := row.Scan(dest...)
	return br, err
}

func (r *SQLRepository) ListPendingRequestsByCityAndGroup(ctx context.Context, city, bloodGroup string) ([]domain.PatientMatch, error) {
	return run(ctx, r, func(ctx context.Context) ([]domain.PatientMatch, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT `+patientColumns+`, `+requestColumns+`, u.username, u.email
			FROM blood_requests br
			JOIN patients p ON p.id = br.patient_id
			JOIN users u ON u.id = p.user_id
			WHERE p.city = $1 AND br.blood_group = $2 AND br.status = 'Pending'
			ORDER BY `+urgencyRank+` DESC, br.requested_at DESC, br.id DESC`,
			city, bloodGroup)
		if err != nil {
			return nil, err
		}
		return collect(rows, func(row rowScanner) (domain.PatientMatch, error) {
			var m domain.PatientMatch
			err := row.Scan(
				&m.Patient.ID, &m.Patient.UserID, &m.Patient.BloodGroupNeeded, &m.Patient.HospitalName,
				&m.Patient.City, &m.Patient.State, &m.Patient.ContactNumber,
				&m.Request.ID, &m.Request.PatientID, &m.Request.BloodGroup, &m.Request.UnitsRequired,
				&m.Request.Urgency, &m.Request.Status, &m.Request.RequestedAt,
				&m.Username, &m.Email,
			)
			return m, err
		})
	})
}

func (r *SQLRepository) ListAvailableDonorsByCityAndGroup(ctx context.Context, city, bloodGroup string) ([]domain.DonorMatch, error) {
	return run(ctx, r, func(ctx context.Context) ([]domain.DonorMatch, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT `+donorColumns+`, u.username, u.email
			FROM donors d
			JOIN users u ON u.id = d.user_id
			WHERE d.city = $1 AND d.blood_group = $2 AND d.availability_status = 'Available'
			ORDER BY d.age ASC, d.id ASC`,
			city, bloodGroup)
		if err != nil {
			return nil, err
		}
		return collect(rows, func(row rowScanner) (domain.DonorMatch, error) {
			var m domain.DonorMatch
			d, err := scanDonor(row, &m.Username, &m.Email)
			m.Donor = d
			return m, err
		})
	})
}

func affectedOrNotFound(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
