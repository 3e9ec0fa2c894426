package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Cascade is notified after a patient or doctor row has been removed and
// reports how many dependent records it deleted in turn.
type Cascade interface {
	PatientDeleted(ctx context.Context, id uuid.UUID) (int64, error)
	DoctorDeleted(ctx context.Context, id uuid.UUID) (int64, error)
}

type Service struct {
	patients PatientRepository
	doctors  DoctorRepository
	cascade  Cascade
}

func NewService(patients PatientRepository, doctors DoctorRepository, cascade Cascade) *Service {
	return &Service{patients: patients, doctors: doctors, cascade: cascade}
}

// -- Patient --

func (s *Service) CreatePatient(ctx context.Context, in PatientInput) (*Patient, error) {
	p, err := NewPatient(in)
	if err != nil {
		return nil, err
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context) ([]*Patient, error) {
	return s.patients.List(ctx)
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, in PatientInput) (*Patient, error) {
	current, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := current.Merge(in)
	if err != nil {
		return nil, err
	}
	if err := s.patients.Update(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// DeletePatient removes the patient and then every appointment referencing
// it. The two steps are not atomic: when the second fails the patient stays
// deleted and the error is returned.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := s.patients.Delete(ctx, id); err != nil {
		return 0, err
	}
	if s.cascade == nil {
		return 0, nil
	}
	n, err := s.cascade.PatientDeleted(ctx, id)
	if err != nil {
		return n, fmt.Errorf("patient %s deleted, appointment cleanup failed: %w", id, err)
	}
	return n, nil
}

func (s *Service) PatientExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.patients.Exists(ctx, id)
}

// -- Doctor --

func (s *Service) CreateDoctor(ctx context.Context, in DoctorInput) (*Doctor, error) {
	d, err := NewDoctor(in)
	if err != nil {
		return nil, err
	}
	if err := s.doctors.Create(ctx, d); err != nil {
		return nil, err
	}
	return d, nil
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.doctors.GetByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context) ([]*Doctor, error) {
	return s.doctors.List(ctx)
}

func (s *Service) UpdateDoctor(ctx context.Context, id uuid.UUID, in DoctorInput) (*Doctor, error) {
	current, err := s.doctors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := current.Merge(in)
	if err != nil {
		return nil, err
	}
	if err := s.doctors.Update(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// DeleteDoctor mirrors DeletePatient.
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) (int64, error) {
	if err := s.doctors.Delete(ctx, id); err != nil {
		return 0, err
	}
	if s.cascade == nil {
		return 0, nil
	}
	n, err := s.cascade.DoctorDeleted(ctx, id)
	if err != nil {
		return n, fmt.Errorf("doctor %s deleted, appointment cleanup failed: %w", id, err)
	}
	return n, nil
}

func (s *Service) DoctorExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return s.doctors.Exists(ctx, id)
}
