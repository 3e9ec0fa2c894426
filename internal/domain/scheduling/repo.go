package scheduling

import (
	"context"

	"github.com/google/uuid"

	"github.com/clinic/clinic/pkg/calendar"
)

// AppointmentRepository persists appointments. List and ListByDateRange
// return appointments ordered by date, time and creation. GetByID, Update,
// UpdateStatus and Delete return an apperrors NotFound error when the id does
// not resolve.
type AppointmentRepository interface {
	Create(ctx context.Context, a *Appointment) error
	GetByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	Update(ctx context.Context, a *Appointment) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context) ([]*Appointment, error)
	// ListByDateRange returns appointments whose date lies in [from, to).
	ListByDateRange(ctx context.Context, from, to calendar.Day) ([]*Appointment, error)
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
	DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error)
}
