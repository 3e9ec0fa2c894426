package scheduling

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/apperrors"
	"github.com/clinic/clinic/pkg/calendar"
)

type appointmentRepoSQLite struct {
	conn *sql.DB
	qb   *goqu.Database
}

func NewAppointmentRepoSQLite(conn *sql.DB) AppointmentRepository {
	return &appointmentRepoSQLite{conn: conn, qb: goqu.New("sqlite3", conn)}
}

var apptColumns = []interface{}{
	"id", "patient_id", "doctor_id", "appt_date", "appt_time",
	"reason", "status", "created_at", "updated_at",
}

func scanApptSQLite(row interface{ Scan(...interface{}) error }) (*Appointment, error) {
	var a Appointment
	var day, created, updated string
	if err := row.Scan(&a.ID, &a.PatientID, &a.DoctorID, &day, &a.Time, &a.Reason, &a.Status, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if a.Date, err = calendar.Parse(day, time.Local); err != nil {
		return nil, fmt.Errorf("stored date: %w", err)
	}
	if a.CreatedAt, err = db.ParseTime(created); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = db.ParseTime(updated); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *appointmentRepoSQLite) selectAppts() *goqu.SelectDataset {
	return r.qb.From("appointment").Prepared(true).
		Select(apptColumns...).
		Order(goqu.C("appt_date").Asc(), goqu.C("appt_time").Asc(), goqu.C("created_at").Asc())
}

func (r *appointmentRepoSQLite) Create(ctx context.Context, a *Appointment) error {
	a.ID = uuid.New()
	a.CreatedAt = time.Now().UTC()
	a.UpdatedAt = a.CreatedAt
	query, args, err := r.qb.Insert("appointment").Prepared(true).Rows(goqu.Record{
		"id":         a.ID.String(),
		"patient_id": a.PatientID.String(),
		"doctor_id":  a.DoctorID.String(),
		"appt_date":  a.Date.String(),
		"appt_time":  a.Time,
		"reason":     a.Reason,
		"status":     string(a.Status),
		"created_at": db.FormatTime(a.CreatedAt),
		"updated_at": db.FormatTime(a.UpdatedAt),
	}).ToSQL()
	if err != nil {
		return apperrors.Storage("build insert appointment", err)
	}
	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Storage("create appointment", err)
	}
	return nil
}

func (r *appointmentRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	query, args, err := r.qb.From("appointment").Prepared(true).
		Select(apptColumns...).
		Where(goqu.Ex{"id": id.String()}).
		ToSQL()
	if err != nil {
		return nil, apperrors.Storage("build get appointment", err)
	}
	a, err := scanApptSQLite(r.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("appointment", id)
	}
	if err != nil {
		return nil, apperrors.Storage("get appointment", err)
	}
	return a, nil
}

func (r *appointmentRepoSQLite) Update(ctx context.Context, a *Appointment) error {
	a.UpdatedAt = time.Now().UTC()
	return r.update(ctx, a.ID, "update appointment", goqu.Record{
		"patient_id": a.PatientID.String(),
		"doctor_id":  a.DoctorID.String(),
		"appt_date":  a.Date.String(),
		"appt_time":  a.Time,
		"reason":     a.Reason,
		"status":     string(a.Status),
		"updated_at": db.FormatTime(a.UpdatedAt),
	})
}

func (r *appointmentRepoSQLite) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	return r.update(ctx, id, "update appointment status", goqu.Record{
		"status":     string(status),
		"updated_at": db.FormatTime(time.Now()),
	})
}

func (r *appointmentRepoSQLite) update(ctx context.Context, id uuid.UUID, op string, set goqu.Record) error {
	query, args, err := r.qb.Update("appointment").Prepared(true).
		Set(set).
		Where(goqu.Ex{"id": id.String()}).
		ToSQL()
	if err != nil {
		return apperrors.Storage("build "+op, err)
	}
	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Storage(op, err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return apperrors.Storage(op, err)
	} else if n == 0 {
		return apperrors.NotFound("appointment", id)
	}
	return nil
}

func (r *appointmentRepoSQLite) Delete(ctx context.Context, id uuid.UUID) error {
	n, err := r.deleteWhere(ctx, "delete appointment", goqu.Ex{"id": id.String()})
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.NotFound("appointment", id)
	}
	return nil
}

func (r *appointmentRepoSQLite) DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	return r.deleteWhere(ctx, "delete patient appointments", goqu.Ex{"patient_id": patientID.String()})
}

func (r *appointmentRepoSQLite) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	return r.deleteWhere(ctx, "delete doctor appointments", goqu.Ex{"doctor_id": doctorID.String()})
}

func (r *appointmentRepoSQLite) deleteWhere(ctx context.Context, op string, where goqu.Ex) (int64, error) {
	query, args, err := r.qb.Delete("appointment").Prepared(true).Where(where).ToSQL()
	if err != nil {
		return 0, apperrors.Storage("build "+op, err)
	}
	res, err := r.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.Storage(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.Storage(op, err)
	}
	return n, nil
}

func (r *appointmentRepoSQLite) List(ctx context.Context) ([]*Appointment, error) {
	return r.query(ctx, r.selectAppts())
}

func (r *appointmentRepoSQLite) ListByDateRange(ctx context.Context, from, to calendar.Day) ([]*Appointment, error) {
	return r.query(ctx, r.selectAppts().Where(
		goqu.C("appt_date").Gte(from.String()),
		goqu.C("appt_date").Lt(to.String()),
	))
}

func (r *appointmentRepoSQLite) query(ctx context.Context, ds *goqu.SelectDataset) ([]*Appointment, error) {
	query, args, err := ds.ToSQL()
	if err != nil {
		return nil, apperrors.Storage("build list appointments", err)
	}
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Storage("list appointments", err)
	}
	defer rows.Close()
	items := []*Appointment{}
	for rows.Next() {
		a, err := scanApptSQLite(rows)
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
