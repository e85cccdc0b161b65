package repository

import (
	"context"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

func (r *SQLRepository) count(ctx context.Context, table string) (int64, error) {
	return run(ctx, r, func(ctx context.Context) (int64, error) {
		var n int64
		// table is always one of the constants below.
		err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&n)
		return n, err
	})
}

func (r *SQLRepository) CountDonors(ctx context.Context) (int64, error) {
	return r.count(ctx, "donors")
}

func (r *SQLRepository) CountPatients(ctx context.Context) (int64, error) {
	return r.count(ctx, "patients")
}

func (r *SQLRepository) CountRequests(ctx context.Context) (int64, error) {
	return r.count(ctx, "blood_requests")
}

func (r *SQLRepository) CountDonations(ctx context.Context) (int64, error) {
	return r.count(ctx, "donations")
}

func (r *SQLRepository) ListDonors(ctx context.Context) ([]domain.DonorDetail, error) {
	return run(ctx, r, func(ctx context.Context) ([]domain.DonorDetail, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT `+donorColumns+`, u.username, u.email
			FROM donors d
			JOIN users u ON u.id = d.user_id
			ORDER BY d.id`)
		if err != nil {
			return nil, err
		}
		return collect(rows, func(row rowScanner) (domain.DonorDetail, error) {
			var dd domain.DonorDetail
			d, err := scanDonor(row, &dd.Username, &dd.Email)
			dd.Donor = d
			return dd, err
		})
	})
}

func (r *SQLRepository) ListPatients(ctx context.Context) ([]domain.PatientDetail, error) {
	return run(ctx, r, func(ctx context.Context) ([]domain.PatientDetail, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT `+patientColumns+`, u.username, u.email
			FROM patients p
			JOIN users u ON u.id = p.user_id
			ORDER BY p.id`)
		if err != nil {
			return nil, err
		}
		return collect(rows, func(row rowScanner) (domain.PatientDetail, error) {
			var pd domain.PatientDetail
			p, err := scanPatient(row, &pd.Username, &pd.Email)
			pd.Patient = p
			return pd, err
		})
	})
}

func (r *SQLRepository) ListRequests(ctx context.Context) ([]domain.RequestDetail, error) {
	return run(ctx, r, func(ctx context.Context) ([]domain.RequestDetail, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT `+requestColumns+`, p.hospital_name, p.city, p.contact_number, u.username, u.email
			FROM blood_requests br
			JOIN patients p ON p.id = br.patient_id
			JOIN users u ON u.id = p.user_id
			ORDER BY br.requested_at DESC, br.id DESC`)
		if err != nil {
			return nil, err
		}
		return collect(rows, func(row rowScanner) (domain.RequestDetail, error) {
			var rd domain.RequestDetail
			br, err := scanRequest(row, &rd.HospitalName, &rd.City, &rd.ContactNumber, &rd.Username, &rd.Email)
			rd.BloodRequest = br
			return rd, err
		})
	})
}

func (r *SQLRepository) ListDonations(ctx context.Context) ([]domain.DonationDetail, error) {
	return run(ctx, r, func(ctx context.Context) ([]domain.DonationDetail, error) {
		rows, err := r.db.QueryContext(ctx, `
			SELECT dn.id, dn.donor_id, dn.patient_id, dn.request_id, dn.status, dn.donated_at,
			       du.username, du.email, pu.username, pu.email,
			       br.blood_group, br.units_required, br.urgency_level, p.hospital_name
			FROM donations dn
			JOIN donors d ON d.id = dn.donor_id
			JOIN users du ON du.id = d.user_id
			JOIN patients p ON p.id = dn.patient_id
			JOIN users pu ON pu.id = p.user_id
			JOIN blood_requests br ON br.id = dn.request_id
			ORDER BY dn.donated_at DESC, dn.id DESC`)
		if err != nil {
			return nil, err
		}
		return collect(rows, func(row rowScanner) (domain.DonationDetail, error) {
			var dd domain.DonationDetail
			err := row.Scan(
				&dd.ID, &dd.DonorID, &dd.PatientID, &dd.RequestID, &dd.Status, &dd.DonatedAt,
				&dd.DonorName, &dd.DonorEmail, &dd.PatientName, &dd.PatientEmail,
				&dd.BloodGroup, &dd.UnitsRequired, &dd.Urgency, &dd.HospitalName,
			)
			return dd, err
		})
	})
}
