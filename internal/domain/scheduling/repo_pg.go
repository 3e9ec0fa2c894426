package scheduling

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/pkg/apperrors"
	"github.com/clinic/clinic/pkg/calendar"
)

type appointmentRepoPG struct{ pool *pgxpool.Pool }

func NewAppointmentRepoPG(pool *pgxpool.Pool) AppointmentRepository {
	return &appointmentRepoPG{pool: pool}
}

const apptCols = `id, patient_id, doctor_id, appt_date, appt_time, reason, status, created_at, updated_at`

const apptOrder = ` ORDER BY appt_date, appt_time, created_at`

func (r *appointmentRepoPG) scanAppt(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var day time.Time
	err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &day, &a.Time, &a.Reason, &a.Status, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	// DATE columns come back as UTC midnight; rebuild the day in the local zone
	y, m, d := day.Date()
	a.Date = calendar.New(y, m, d, time.Local)
	return &a, nil
}

func (r *appointmentRepoPG) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	_, err := r.pool.Exec(ctx, `
		INSERT INTO appointment (`+apptCols+`)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7, $8, $9)`,
		a.ID, a.PatientID, a.DoctorID, a.Date.String(), a.Time, a.Reason, a.Status, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return apperrors.Storage("create appointment", err)
	}
	return nil
}

func (r *appointmentRepoPG) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	a, err := r.scanAppt(r.pool.QueryRow(ctx, `SELECT `+apptCols+` FROM appointment WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", id)
	}
	if err != nil {
		return nil, apperrors.Storage("get appointment", err)
	}
	return a, nil
}

func (r *appointmentRepoPG) Update(ctx context.Context, a *Appointment) error {
	a.UpdatedAt = time.Now().UTC()
	tag, err := r.pool.Exec(ctx, `
		UPDATE appointment SET patient_id=$2, doctor_id=$3, appt_date=$4::date, appt_time=$5,
			reason=$6, status=$7, updated_at=$8
		WHERE id = $1`,
		a.ID, a.PatientID, a.DoctorID, a.Date.String(), a.Time, a.Reason, a.Status, a.UpdatedAt)
	if err != nil {
		return apperrors.Storage("update appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("appointment", a.ID)
	}
	return nil
}

func (r *appointmentRepoPG) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	tag, err := r.pool.Exec(ctx, `UPDATE appointment SET status=$2, updated_at=$3 WHERE id = $1`,
		id, status, time.Now().UTC())
	if err != nil {
		return apperrors.Storage("update appointment status", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("appointment", id)
	}
	return nil
}

func (r *appointmentRepoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE id = $1`, id)
	if err != nil {
		return apperrors.Storage("delete appointment", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("appointment", id)
	}
	return nil
}

func (r *appointmentRepoPG) List(ctx context.Context) ([]*Appointment, error) {
	return r.query(ctx, `SELECT `+apptCols+` FROM appointment`+apptOrder)
}

func (r *appointmentRepoPG) ListByDateRange(ctx context.Context, from, to calendar.Day) ([]*Appointment, error) {
	return r.query(ctx, `SELECT `+apptCols+` FROM appointment
		WHERE appt_date >= $1::date AND appt_date < $2::date`+apptOrder,
		from.String(), to.String())
}

func (r *appointmentRepoPG) query(ctx context.Context, sql string, args ...interface{}) ([]*Appointment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, apperrors.Storage("list appointments", err)
	}
	defer rows.Close()
	items := []*Appointment{}
	for rows.Next() {
		a, err := r.scanAppt(rows)
		if err != nil {
			return nil, apperrors.Storage("scan appointment", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("list appointments", err)
	}
	return items, nil
}

func (r *appointmentRepoPG) DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE patient_id = $1`, patientID)
	if err != nil {
		return 0, apperrors.Storage("delete patient appointments", err)
	}
	return tag.RowsAffected(), nil
}

func (r *appointmentRepoPG) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM appointment WHERE doctor_id = $1`, doctorID)
	if err != nil {
		return 0, apperrors.Storage("delete doctor appointments", err)
	}
	return tag.RowsAffected(), nil
}
