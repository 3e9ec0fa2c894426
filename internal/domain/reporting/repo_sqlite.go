package reporting

import (
	"context"
	"database/sql"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"

	"github.com/clinic/clinic/pkg/apperrors"
	"github.com/clinic/clinic/pkg/calendar"
)

type sourceSQLite struct {
	conn *sql.DB
	qb   *goqu.Database
}

func NewSourceSQLite(conn *sql.DB) Source {
	return &sourceSQLite{conn: conn, qb: goqu.New("sqlite3", conn)}
}

func (s *sourceSQLite) countTable(ctx context.Context, table string) (int64, error) {
	n, err := s.qb.From(table).Prepared(true).CountContext(ctx)
	if err != nil {
		return 0, apperrors.Storage("count "+table, err)
	}
	return n, nil
}

func (s *sourceSQLite) CountPatients(ctx context.Context) (int64, error) {
	return s.countTable(ctx, "patient")
}

func (s *sourceSQLite) CountDoctors(ctx context.Context) (int64, error) {
	return s.countTable(ctx, "doctor")
}

func (s *sourceSQLite) CountAppointments(ctx context.Context) (int64, error) {
	return s.countTable(ctx, "appointment")
}

// Days are stored as YYYY-MM-DD text, so lexical order is calendar order.
func dayWindow(from, to calendar.Day) goqu.Ex {
	return goqu.Ex{"appt_date": goqu.Op{"gte": from.String(), "lt": to.String()}}
}

func (s *sourceSQLite) CountAppointmentsBetween(ctx context.Context, from, to calendar.Day) (int64, error) {
	n, err := s.qb.From("appointment").Prepared(true).Where(dayWindow(from, to)).CountContext(ctx)
	if err != nil {
		return 0, apperrors.Storage("count appointments", err)
	}
	return n, nil
}

func (s *sourceSQLite) CountByStatus(ctx context.Context) (map[string]int64, error) {
	ds := s.qb.From("appointment").Prepared(true).
		Select(goqu.C("status"), goqu.COUNT(goqu.Star())).
		GroupBy("status")
	out := make(map[string]int64)
	err := s.grouped(ctx, ds, "count appointments by status", func(key string, n int64) {
		out[key] = n
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *sourceSQLite) CountByDay(ctx context.Context, from, to calendar.Day) ([]DayCount, error) {
	ds := s.qb.From("appointment").Prepared(true).
		Select(goqu.C("appt_date"), goqu.COUNT(goqu.Star())).
		Where(dayWindow(from, to)).
		GroupBy("appt_date").
		Order(goqu.C("appt_date").Asc())
	out := []DayCount{}
	err := s.grouped(ctx, ds, "count appointments by day", func(key string, n int64) {
		out = append(out, DayCount{Day: key, Count: n})
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// grouped runs a two-column (key, count) query and feeds each row to emit.
func (s *sourceSQLite) grouped(ctx context.Context, ds *goqu.SelectDataset, op string, emit func(string, int64)) error {
	query, args, err := ds.ToSQL()
	if err != nil {
		return apperrors.Storage("build "+op, err)
	}
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return apperrors.Storage(op, err)
	}
	defer rows.Close()
	for rows.Next() {
		var key string
		var n int64
		if err := rows.Scan(&key, &n); err != nil {
			return apperrors.Storage(op, err)
		}
		emit(key, n)
	}
	if err := rows.Err(); err != nil {
		return apperrors.Storage(op, err)
	}
	return nil
}
