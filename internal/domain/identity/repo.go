package identity

import (
	"context"

	"github.com/google/uuid"
)

// PatientRepository persists patients. GetByID, Update and Delete return an
// apperrors NotFound error when the id does not resolve; driver failures are
// returned as apperrors Storage errors.
type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Patient, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}

// DoctorRepository persists doctors with the same contract as PatientRepository.
type DoctorRepository interface {
	Create(ctx context.Context, d *Doctor) error
	GetByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	Update(ctx context.Context, d *Doctor) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Doctor, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
