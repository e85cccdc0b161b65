package repository

import (
	"context"

	"github.com/AchilleasB/blood-portal/matching-service/internal/core/domain"
)

const donorColumns = `d.id, d.user_id, d.blood_group, d.age, d.gender, d.city, d.state, d.contact_number, d.availability_status`

const patientColumns = `p.id, p.user_id, p.blood_group_needed, p.hospital_name, p.city, p.state, p.contact_number`

func scanDonor(row rowScanner, extra ...any) (domain.Donor, error) {
	var d domain.Donor
	dest := append([]any{
		&d.ID, &d.UserID, &d.BloodGroup, &d.Age, &d.Gender,
		&d.City, &d.State, &d.ContactNumber, &d.Availability,
	}, extra...)
	err := row.Scan(dest...)
	return d, err
}

func scanPatient(row rowScanner, extra ...any) (domain.Patient, error) {
	var p domain.Patient
	dest := append([]any{
		&p.ID, &p.UserID, &p.BloodGroupNeeded, &p.HospitalName,
		&p.City, &p.State, &p.ContactNumber,
	}, extra...)
	err := row.Scan(dest...)
	return p, err
}

func (r *SQLRepository) GetDonorByUser(ctx context.Context, userID int64) (*domain.Donor, error) {
	return run(ctx, r, func(ctx context.Context) (*domain.Donor, error) {
		row := r.db.QueryRowContext(ctx,
			`SELECT `+donorColumns+` FROM donors d WHERE d.user_id = $1`, userID)
		d, err := scanDonor(row)
		if err != nil {
			return nil, translate(err)
		}
		return &d, nil
	})
}

func (r *SQLRepository) GetPatientByUser(ctx context.Context, userID int64) (*domain.Patient, error) {
	return run(ctx, r, func(ctx context.Context) (*domain.Patient, error) {
		row := r.db.QueryRowContext(ctx,
			`SELECT `+patientColumns+` FROM patients p WHERE p.user_id = $1`, userID)
		p, err := scanPatient(row)
		if err != nil {
			return nil, translate(err)
		}
		return &p, nil
	})
}

func (r *SQLRepository) CreateDonor(ctx context.Context, donor domain.Donor) (*domain.Donor, error) {
	return run(ctx, r, func(ctx context.Context) (*domain.Donor, error) {
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO donors (user_id, blood_group, age, gender, city, state, contact_number, availability_status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING id`,
			donor.UserID, donor.BloodGroup, donor.Age, donor.Gender,
			donor.City, donor.State, donor.ContactNumber, donor.Availability,
		).Scan(&donor.ID)
		if err != nil {
			return nil, translate(err)
		}
		return &donor, nil
	})
}

func (r *SQLRepository) CreatePatient(ctx context.Context, patient domain.Patient) (*domain.Patient, error) {
	return run(ctx, r, func(ctx context.Context) (*domain.Patient, error) {
		err := r.db.QueryRowContext(ctx, `
			INSERT INTO patients (user_id, blood_group_needed, hospital_name, city, state, contact_number)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			patient.UserID, patient.BloodGroupNeeded, patient.HospitalName,
			patient.City, patient.State, patient.ContactNumber,
		).Scan(&patient.ID)
		if err != nil {
			return nil, translate(err)
		}
		return &patient, nil
	})
}

func (r *SQLRepository) SetDonorAvailability(ctx context.Context, donorID int64, availability domain.Availability) error {
	return r.exec(ctx, func(ctx context.Context) error {
		res, err := r.db.ExecContext(ctx,
			`UPDATE donors SET availability_status = $1 WHERE id = $2`, availability, donorID)
		if err != nil {
			return translate(err)
		}
		return affectedOrNotFound(res)
	})
}
