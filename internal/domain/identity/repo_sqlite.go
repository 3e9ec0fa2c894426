package identity

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/sqlite3"
	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/apperrors"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// =========== Patient Repository ===========

type patientRepoSQLite struct {
	conn *sql.DB
	qb   *goqu.Database
}

func NewPatientRepoSQLite(conn *sql.DB) PatientRepository {
	return &patientRepoSQLite{conn: conn, qb: goqu.New("sqlite3", conn)}
}

var patientColumns = []interface{}{"id", "name", "age", "gender", "contact", "address", "created_at", "updated_at"}

func scanPatientSQLite(row rowScanner) (*Patient, error) {
	var p Patient
	var created, updated string
	if err := row.Scan(&p.ID, &p.Name, &p.Age, &p.Gender, &p.Contact, &p.Address, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if p.CreatedAt, err = db.ParseTime(created); err != nil {
		return nil, err
	}
	if p.UpdatedAt, err = db.ParseTime(updated); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *patientRepoSQLite) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	p.CreatedAt = time.Now().UTC()
	p.UpdatedAt = p.CreatedAt
	query, args, err := r.qb.Insert("patient").Prepared(true).Rows(goqu.Record{
		"id":         p.ID.String(),
		"name":       p.Name,
		"age":        p.Age,
		"gender":     string(p.Gender),
		"contact":    p.Contact,
		"address":    p.Address,
		"created_at": db.FormatTime(p.CreatedAt),
		"updated_at": db.FormatTime(p.UpdatedAt),
	}).ToSQL()
	if err != nil {
		return apperrors.Storage("build insert patient", err)
	}
	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Storage("create patient", err)
	}
	return nil
}

func (r *patientRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	query, args, err := r.qb.From("patient").Prepared(true).
		Select(patientColumns...).
		Where(goqu.Ex{"id": id.String()}).
		ToSQL()
	if err != nil {
		return nil, apperrors.Storage("build get patient", err)
	}
	p, err := scanPatientSQLite(r.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", id)
	}
	if err != nil {
		return nil, apperrors.Storage("get patient", err)
	}
	return p, nil
}

func (r *patientRepoSQLite) Update(ctx context.Context, p *Patient) error {
	p.UpdatedAt = time.Now().UTC()
	query, args, err := r.qb.Update("patient").Prepared(true).Set(goqu.Record{
		"name":       p.Name,
		"age":        p.Age,
		"gender":     string(p.Gender),
		"contact":    p.Contact,
		"address":    p.Address,
		"updated_at": db.FormatTime(p.UpdatedAt),
	}).Where(goqu.Ex{"id": p.ID.String()}).ToSQL()
	if err != nil {
		return apperrors.Storage("build update patient", err)
	}
	return execOne(ctx, r.conn, query, args, "update patient", "patient", p.ID)
}

func (r *patientRepoSQLite) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.qb.Delete("patient").Prepared(true).Where(goqu.Ex{"id": id.String()}).ToSQL()
	if err != nil {
		return apperrors.Storage("build delete patient", err)
	}
	return execOne(ctx, r.conn, query, args, "delete patient", "patient", id)
}

func (r *patientRepoSQLite) List(ctx context.Context) ([]*Patient, error) {
	query, args, err := r.qb.From("patient").Prepared(true).
		Select(patientColumns...).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.Storage("build list patients", err)
	}
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Storage("list patients", err)
	}
	defer rows.Close()
	items := []*Patient{}
	for rows.Next() {
		p, err := scanPatientSQLite(rows)
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

func (r *patientRepoSQLite) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, r.qb, "patient", id)
}

// =========== Doctor Repository ===========

type doctorRepoSQLite struct {
	conn *sql.DB
	qb   *goqu.Database
}

func NewDoctorRepoSQLite(conn *sql.DB) DoctorRepository {
	return &doctorRepoSQLite{conn: conn, qb: goqu.New("sqlite3", conn)}
}

var doctorColumns = []interface{}{"id", "name", "specialization", "experience", "contact", "email", "created_at", "updated_at"}

func scanDoctorSQLite(row rowScanner) (*Doctor, error) {
	var d Doctor
	var created, updated string
	if err := row.Scan(&d.ID, &d.Name, &d.Specialization, &d.Experience, &d.Contact, &d.Email, &created, &updated); err != nil {
		return nil, err
	}
	var err error
	if d.CreatedAt, err = db.ParseTime(created); err != nil {
		return nil, err
	}
	if d.UpdatedAt, err = db.ParseTime(updated); err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *doctorRepoSQLite) Create(ctx context.Context, d *Doctor) error {
	d.ID = uuid.New()
	d.CreatedAt = time.Now().UTC()
	d.UpdatedAt = d.CreatedAt
	query, args, err := r.qb.Insert("doctor").Prepared(true).Rows(goqu.Record{
		"id":             d.ID.String(),
		"name":           d.Name,
		"specialization": d.Specialization,
		"experience":     d.Experience,
		"contact":        d.Contact,
		"email":          d.Email,
		"created_at":     db.FormatTime(d.CreatedAt),
		"updated_at":     db.FormatTime(d.UpdatedAt),
	}).ToSQL()
	if err != nil {
		return apperrors.Storage("build insert doctor", err)
	}
	if _, err := r.conn.ExecContext(ctx, query, args...); err != nil {
		return apperrors.Storage("create doctor", err)
	}
	return nil
}

func (r *doctorRepoSQLite) GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	query, args, err := r.qb.From("doctor").Prepared(true).
		Select(doctorColumns...).
		Where(goqu.Ex{"id": id.String()}).
		ToSQL()
	if err != nil {
		return nil, apperrors.Storage("build get doctor", err)
	}
	d, err := scanDoctorSQLite(r.conn.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("doctor", id)
	}
	if err != nil {
		return nil, apperrors.Storage("get doctor", err)
	}
	return d, nil
}

func (r *doctorRepoSQLite) Update(ctx context.Context, d *Doctor) error {
	d.UpdatedAt = time.Now().UTC()
	query, args, err := r.qb.Update("doctor").Prepared(true).Set(goqu.Record{
		"name":           d.Name,
		"specialization": d.Specialization,
		"experience":     d.Experience,
		"contact":        d.Contact,
		"email":          d.Email,
		"updated_at":     db.FormatTime(d.UpdatedAt),
	}).Where(goqu.Ex{"id": d.ID.String()}).ToSQL()
	if err != nil {
		return apperrors.Storage("build update doctor", err)
	}
	return execOne(ctx, r.conn, query, args, "update doctor", "doctor", d.ID)
}

func (r *doctorRepoSQLite) Delete(ctx context.Context, id uuid.UUID) error {
	query, args, err := r.qb.Delete("doctor").Prepared(true).Where(goqu.Ex{"id": id.String()}).ToSQL()
	if err != nil {
		return apperrors.Storage("build delete doctor", err)
	}
	return execOne(ctx, r.conn, query, args, "delete doctor", "doctor", id)
}

func (r *doctorRepoSQLite) List(ctx context.Context) ([]*Doctor, error) {
	query, args, err := r.qb.From("doctor").Prepared(true).
		Select(doctorColumns...).
		Order(goqu.C("created_at").Desc()).
		ToSQL()
	if err != nil {
		return nil, apperrors.Storage("build list doctors", err)
	}
	rows, err := r.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Storage("list doctors", err)
	}
	defer rows.Close()
	items := []*Doctor{}
	for rows.Next() {
		d, err := scanDoctorSQLite(rows)
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

func (r *doctorRepoSQLite) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	return exists(ctx, r.qb, "doctor", id)
}

// execOne runs a single-row write and maps zero affected rows to NotFound.
func execOne(ctx context.Context, conn *sql.DB, query string, args []interface{}, op, entity string, id uuid.UUID) error {
	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return apperrors.Storage(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return apperrors.Storage(op, err)
	}
	if n == 0 {
		return apperrors.NotFound(entity, id)
	}
	return nil
}

func exists(ctx context.Context, qb *goqu.Database, table string, id uuid.UUID) (bool, error) {
	n, err := qb.From(table).Prepared(true).Where(goqu.Ex{"id": id.String()}).CountContext(ctx)
	if err != nil {
		return false, apperrors.Storage("check "+table, err)
	}
	return n > 0, nil
}
