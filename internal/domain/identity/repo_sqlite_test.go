package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/clinic/clinic/internal/platform/db"
	"github.com/clinic/clinic/pkg/apperrors"
)

func newSQLiteRepos(t *testing.T) (PatientRepository, DoctorRepository) {
	t.Helper()
	conn, err := db.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return NewPatientRepoSQLite(conn), NewDoctorRepoSQLite(conn)
}

func TestPatientRepoSQLite_CRUD(t *testing.T) {
	ctx := context.Background()
	patients, _ := newSQLiteRepos(t)

	p, _ := NewPatient(validPatientInput())
	if err := patients.Create(ctx, p); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := patients.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Name != p.Name || got.Gender != p.Gender || !got.CreatedAt.Equal(p.CreatedAt) {
		t.Errorf("round trip mismatch: want %+v, got %+v", p, got)
	}

	got.Age = 40
	if err := patients.Update(ctx, got); err != nil {
		t.Fatalf("Update: %v", err)
	}
	again, _ := patients.GetByID(ctx, p.ID)
	if again.Age != 40 {
		t.Errorf("expected age 40, got %d", again.Age)
	}

	ok, err := patients.Exists(ctx, p.ID)
	if err != nil || !ok {
		t.Errorf("expected patient to exist, ok=%v err=%v", ok, err)
	}

	if err := patients.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := patients.GetByID(ctx, p.ID); !apperrors.IsNotFound(err) {
		t.Errorf("expected not found after delete, got %v", err)
	}
	if err := patients.Delete(ctx, p.ID); !apperrors.IsNotFound(err) {
		t.Errorf("expected not found on second delete, got %v", err)
	}
}

func TestPatientRepoSQLite_UpdateMissing(t *testing.T) {
	patients, _ := newSQLiteRepos(t)
	p, _ := NewPatient(validPatientInput())
	p.ID = uuid.New()
	if err := patients.Update(context.Background(), p); !apperrors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestPatientRepoSQLite_ListNewestFirst(t *testing.T) {
	ctx := context.Background()
	patients, _ := newSQLiteRepos(t)

	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		p, _ := NewPatient(validPatientInput())
		if err := patients.Create(ctx, p); err != nil {
			t.Fatalf("Create: %v", err)
		}
		ids = append(ids, p.ID)
	}

	list, err := patients.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 patients, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].CreatedAt.After(list[i-1].CreatedAt) {
			t.Errorf("list not ordered newest first at %d", i)
		}
	}
}

func TestDoctorRepoSQLite_CRUD(t *testing.T) {
	ctx := context.Background()
	_, doctors := newSQLiteRepos(t)

	d, _ := NewDoctor(validDoctorInput())
	if err := doctors.Create(ctx, d); err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := doctors.GetByID(ctx, d.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Email != d.Email || got.Experience != d.Experience {
		t.Errorf("round trip mismatch: want %+v, got %+v", d, got)
	}

	list, err := doctors.List(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected one doctor, got %d (%v)", len(list), err)
	}

	if ok, _ := doctors.Exists(ctx, uuid.New()); ok {
		t.Error("unknown id must not exist")
	}
	if err := doctors.Delete(ctx, d.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := doctors.GetByID(ctx, d.ID); !apperrors.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
}
