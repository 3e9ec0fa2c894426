package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/pkg/apperrors"
)

// =========== Patient Repository ===========

type patientRepoPG struct{ pool *pgxpool.Pool }

func NewPatientRepoPG(pool *pgxpool.Pool) PatientRepository { return &patientRepoPG{pool: pool} }

const patientCols = `id, name, age, gender, contact, address, created_at, updated_at`

func (r *patientRepoPG) scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Contact, &p.Address, &p.CreatedAt, &p.UpdatedAt)
	return &p, err
}

func (r *patientRepoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	_, err := r.pool.Exec(ctx, `
		INSERT INTO patient (`+patientCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		p.ID, p.Name, p.Age, p.Gender, p.Contact, p.Address, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return apperrors.Storage("create patient", err)
	}
	return nil
}

func (r *patientRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := r.scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("patient", id)
	}
	if err != nil {
		return nil, apperrors.Storage("get patient", err)
	}
	return p, nil
}

func (r *patientRepoPG) Update(ctx context.Context, p *Patient) error {
	p.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE patient SET name=$2, age=$3, gender=$4, contact=$5, address=$6, updated_at=$7
		WHERE id = $1`,
		p.ID, p.Name, p.Age, p.Gender, p.Contact, p.Address, p.UpdatedAt)
	if err != nil {
		return apperrors.Storage("update patient", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("patient", p.ID)
	}
	return nil
}

func (r *patientRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	if err != nil {
		return apperrors.Storage("delete patient", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("patient", id)
	}
	return nil
}

func (r *patientRepoPG) List(ctx context.Context) ([]*Patient, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+patientCols+` FROM patient ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperrors.Storage("list patients", err)
	}
	defer rows.Close()
	items := []*Patient{}
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, apperrors.Storage("scan patient", err)
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list patients", err)
	}
	return items, nil
}

func (r *patientRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM patient WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, apperrors.Storage("check patient", err)
	}
	return ok, nil
}

// =========== Doctor Repository ===========

type doctorRepoPG struct{ pool *pgxpool.Pool }

func NewDoctorRepoPG(pool *pgxpool.Pool) DoctorRepository { return &doctorRepoPG{pool: pool} }

const doctorCols = `id, name, specialization, experience, contact, email, created_at, updated_at`

func (r *doctorRepoPG) scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	err := row.Scan(&d.ID, &d.Name, &d.Specialization, &d.Experience, &d.Contact, &d.Email, &d.CreatedAt, &d.UpdatedAt)
	return &d, err
}

func (r *doctorRepoPG) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctor (`+doctorCols+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		d.ID, d.Name, d.Specialization, d.Experience, d.Contact, d.Email, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		return apperrors.Storage("create doctor", err)
	}
	return nil
}

func (r *doctorRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	d, err := r.scanDoctor(r.pool.QueryRow(ctx, `SELECT `+doctorCols+` FROM doctor WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("doctor", id)
	}
	if err != nil {
		return nil, apperrors.Storage("get doctor", err)
	}
	return d, nil
}

func (r *doctorRepoPG) Update(ctx context.Context, d *Doctor) error {
	d.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE doctor SET name=$2, specialization=$3, experience=$4, contact=$5, email=$6, updated_at=$7
		WHERE id = $1`,
		d.ID, d.Name, d.Specialization, d.Experience, d.Contact, d.Email, d.UpdatedAt)
	if err != nil {
		return apperrors.Storage("update doctor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("doctor", d.ID)
	}
	return nil
}

func (r *doctorRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM doctor WHERE id = $1`, id)
	if err != nil {
		return apperrors.Storage("delete doctor", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("doctor", id)
	}
	return nil
}

func (r *doctorRepoPG) List(ctx context.Context) ([]*Doctor, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+doctorCols+` FROM doctor ORDER BY created_at DESC`)
	if err != nil {
		return nil, apperrors.Storage("list doctors", err)
	}
	defer rows.Close()
	items := []*Doctor{}
	for rows.Next() {
		d, err := r.scanDoctor(rows)
		if err != nil {
			return nil, apperrors.Storage("scan doctor", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list doctors", err)
	}
	return items, nil
}

func (r *doctorRepoPG) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var ok bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM doctor WHERE id = $1)`, id).Scan(&ok); err != nil {
		return false, apperrors.Storage("check doctor", err)
	}
	return ok, nil
}
