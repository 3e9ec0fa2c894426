package scheduling

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/pkg/apperrors"
	"github.com/clinic/clinic/pkg/calendar"
)

// Participants resolves the patient and doctor an appointment refers to.
type Participants interface {
	PatientExists(ctx context.Context, id uuid.UUID) (bool, error)
	DoctorExists(ctx context.Context, id uuid.UUID) (bool, error)
}

// StatusObserver is told about every status written through UpdateStatus.
type StatusObserver func(from, to Status)

type Service struct {
	appointments AppointmentRepository
	participants Participants
	now          func() time.Time
	observe      StatusObserver
}

type Option func(*Service)

// WithClock replaces time.Now for the relative filters.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func WithStatusObserver(fn StatusObserver) Option {
	return func(s *Service) { s.observe = fn }
}

func NewService(appointments AppointmentRepository, participants Participants, opts ...Option) *Service {
	s := &Service{appointments: appointments, participants: participants, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) CreateAppointment(ctx context.Context, in AppointmentInput) (*Appointment, error) {
	a, err := NewAppointment(in)
	if err != nil {
		return nil, err
	}
	if err := s.resolve(ctx, a.PatientID, a.DoctorID); err != nil {
		return nil, err
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// resolve checks that both references point at existing records.
func (s *Service) resolve(ctx context.Context, patientID, doctorID uuid.UUID) error {
	var v apperrors.Violations
	ok, err := s.participants.PatientExists(ctx, patientID)
	if err != nil {
		return err
	}
	if !ok {
		v.Add("patient %s does not exist", patientID)
	}
	ok, err = s.participants.DoctorExists(ctx, doctorID)
	if err != nil {
		return err
	}
	if !ok {
		v.Add("doctor %s does not exist", doctorID)
	}
	return v.Err("appointment")
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

// ListAppointments returns the appointments passing f, ordered by date, time
// and creation.
func (s *Service) ListAppointments(ctx context.Context, f Filter) ([]*Appointment, error) {
	all, err := s.appointments.List(ctx)
	if err != nil {
		return nil, err
	}
	if f == FilterAll || f == "" {
		return all, nil
	}
	return Apply(all, f, s.now()), nil
}

// ListByDay returns the appointments dated on day.
func (s *Service) ListByDay(ctx context.Context, day calendar.Day) ([]*Appointment, error) {
	return s.appointments.ListByDateRange(ctx, day, day.Next())
}

func (s *Service) UpdateAppointment(ctx context.Context, id uuid.UUID, in AppointmentInput) (*Appointment, error) {
	current, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := current.Merge(in)
	if err != nil {
		return nil, err
	}
	if next.PatientID != current.PatientID || next.DoctorID != current.DoctorID {
		if err := s.resolve(ctx, next.PatientID, next.DoctorID); err != nil {
			return nil, err
		}
	}
	if err := s.appointments.Update(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// UpdateStatus writes only the status of an appointment. Any status may
// follow any other.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, target string) (*Appointment, error) {
	to, err := ParseStatus(target)
	if err != nil {
		return nil, err
	}
	current, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !CanTransition(current.Status, to) {
		return nil, apperrors.Validation("cannot move appointment from %s to %s", current.Status, to)
	}
	if err := s.appointments.UpdateStatus(ctx, id, to); err != nil {
		return nil, err
	}
	if s.observe != nil {
		s.observe(current.Status, to)
	}
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) DeleteAppointment(ctx context.Context, id uuid.UUID) error {
	return s.appointments.Delete(ctx, id)
}

// DeleteByPatient and DeleteByDoctor bulk-remove the appointments referencing
// a deleted patient or doctor.
func (s *Service) DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int64, error) {
	return s.appointments.DeleteByPatient(ctx, patientID)
}

func (s *Service) DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error) {
	return s.appointments.DeleteByDoctor(ctx, doctorID)
}
