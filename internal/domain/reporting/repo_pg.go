package reporting

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/clinic/clinic/pkg/apperrors"
	"github.com/clinic/clinic/pkg/calendar"
)

type sourcePG struct{ pool *pgxpool.Pool }

func NewSourcePG(pool *pgxpool.Pool) Source {
	return &sourcePG{pool: pool}
}

func (s *sourcePG) count(ctx context.Context, what, sql string, args ...interface{}) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, apperrors.Storage("count "+what, err)
	}
	return n, nil
}

func (s *sourcePG) CountPatients(ctx context.Context) (int64, error) {
	return s.count(ctx, "patients", `SELECT COUNT(*) FROM patient`)
}

func (s *sourcePG) CountDoctors(ctx context.Context) (int64, error) {
	return s.count(ctx, "doctors", `SELECT COUNT(*) FROM doctor`)
}

func (s *sourcePG) CountAppointments(ctx context.Context) (int64, error) {
	return s.count(ctx, "appointments", `SELECT COUNT(*) FROM appointment`)
}

func (s *sourcePG) CountAppointmentsBetween(ctx context.Context, from, to calendar.Day) (int64, error) {
	return s.count(ctx, "appointments", `SELECT COUNT(*) FROM appointment
		WHERE appt_date >= $1::date AND appt_date < $2::date`, from.String(), to.String())
}

func (s *sourcePG) CountByStatus(ctx context.Context) (map[string]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT status, COUNT(*) FROM appointment GROUP BY status`)
	if err != nil {
		return nil, apperrors.Storage("count appointments by status", err)
	}
	defer rows.Close()
	out := make(map[string]int64)
	for rows.Next() {
		var status string
		var n int64
		if err := rows.Scan(&status, &n); err != nil {
			return nil, apperrors.Storage("scan status count", err)
		}
		out[status] = n
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("count appointments by status", err)
	}
	return out, nil
}

func (s *sourcePG) CountByDay(ctx context.Context, from, to calendar.Day) ([]DayCount, error) {
	rows, err := s.pool.Query(ctx, `SELECT to_char(appt_date, 'YYYY-MM-DD') AS day, COUNT(*)
		FROM appointment
		WHERE appt_date >= $1::date AND appt_date < $2::date
		GROUP BY appt_date ORDER BY appt_date`, from.String(), to.String())
	if err != nil {
		return nil, apperrors.Storage("count appointments by day", err)
	}
	defer rows.Close()
	out := []DayCount{}
	for rows.Next() {
		var dc DayCount
		if err := rows.Scan(&dc.Day, &dc.Count); err != nil {
			return nil, apperrors.Storage("scan day count", err)
		}
		out = append(out, dc)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Storage("count appointments by day", err)
	}
	return out, nil
}
