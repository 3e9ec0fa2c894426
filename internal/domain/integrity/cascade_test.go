package integrity

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type fakePurger struct {
	byPatient map[uuid.UUID]int64
	byDoctor  map[uuid.UUID]int64
	err       error
}

func (f *fakePurger) DeleteByPatient(_ context.Context, id uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := f.byPatient[id]
	delete(f.byPatient, id)
	return n, nil
}

func (f *fakePurger) DeleteByDoctor(_ context.Context, id uuid.UUID) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := f.byDoctor[id]
	delete(f.byDoctor, id)
	return n, nil
}

type countingRecorder struct {
	calls map[string]int64
}

func (r *countingRecorder) CascadeDeleted(parent string, n int64) {
	if r.calls == nil {
		r.calls = make(map[string]int64)
	}
	r.calls[parent] += n
}

func TestManager_PatientDeleted(t *testing.T) {
	p := uuid.New()
	purger := &fakePurger{byPatient: map[uuid.UUID]int64{p: 3}}
	rec := &countingRecorder{}
	m := NewManager(purger, zerolog.Nop()).WithRecorder(rec)

	n, err := m.PatientDeleted(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != 3 {
		t.Errorf("expected 3 removed, got %d", n)
	}
	if rec.calls["patient"] != 3 {
		t.Errorf("expected recorder to see 3 patient deletions, got %v", rec.calls)
	}

	n, _ = m.PatientDeleted(context.Background(), p)
	if n != 0 {
		t.Errorf("second cascade should remove nothing, got %d", n)
	}
}

func TestManager_DoctorDeleted(t *testing.T) {
	d := uuid.New()
	purger := &fakePurger{byDoctor: map[uuid.UUID]int64{d: 2}}
	rec := &countingRecorder{}
	m := NewManager(purger, zerolog.Nop()).WithRecorder(rec)

	n, err := m.DoctorDeleted(context.Background(), d)
	if err != nil || n != 2 {
		t.Fatalf("expected 2 removed, got n=%d err=%v", n, err)
	}
	if rec.calls["doctor"] != 2 || rec.calls["patient"] != 0 {
		t.Errorf("unexpected recorder state %v", rec.calls)
	}
}

func TestManager_FailureIsLoggedAndReturned(t *testing.T) {
	var buf bytes.Buffer
	boom := errors.New("store unavailable")
	rec := &countingRecorder{}
	m := NewManager(&fakePurger{err: boom}, zerolog.New(&buf)).WithRecorder(rec)

	_, err := m.DoctorDeleted(context.Background(), uuid.New())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped store error, got %v", err)
	}
	if !strings.Contains(buf.String(), "appointment cascade failed") {
		t.Errorf("expected failure to be logged, got %q", buf.String())
	}
	if len(rec.calls) != 0 {
		t.Errorf("failed cascade must not be recorded, got %v", rec.calls)
	}
}

func TestManager_NoRecorder(t *testing.T) {
	m := NewManager(&fakePurger{}, zerolog.Nop())
	if _, err := m.PatientDeleted(context.Background(), uuid.New()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
