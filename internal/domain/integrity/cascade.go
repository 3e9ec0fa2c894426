// Package integrity keeps appointments consistent with the patients and
// doctors they reference. The store has no foreign keys, so removing a
// participant is followed by an explicit purge of its appointments.
package integrity

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// AppointmentPurger removes every appointment referencing a participant.
type AppointmentPurger interface {
	DeleteByPatient(ctx context.Context, patientID uuid.UUID) (int64, error)
	DeleteByDoctor(ctx context.Context, doctorID uuid.UUID) (int64, error)
}

// Recorder receives the number of appointments removed per cascade.
type Recorder interface {
	CascadeDeleted(parent string, n int64)
}

const (
	parentPatient = "patient"
	parentDoctor  = "doctor"
)

// Manager runs the cascade step after a participant deletion.
type Manager struct {
	appointments AppointmentPurger
	logger       zerolog.Logger
	recorder     Recorder
}

func NewManager(appointments AppointmentPurger, logger zerolog.Logger) *Manager {
	return &Manager{appointments: appointments, logger: logger}
}

// WithRecorder attaches a recorder and returns the manager.
func (m *Manager) WithRecorder(r Recorder) *Manager {
	m.recorder = r
	return m
}

func (m *Manager) PatientDeleted(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.purge(ctx, parentPatient, id, m.appointments.DeleteByPatient)
}

func (m *Manager) DoctorDeleted(ctx context.Context, id uuid.UUID) (int64, error) {
	return m.purge(ctx, parentDoctor, id, m.appointments.DeleteByDoctor)
}

func (m *Manager) purge(ctx context.Context, parent string, id uuid.UUID,
	del func(context.Context, uuid.UUID) (int64, error)) (int64, error) {
	n, err := del(ctx, id)
	if err != nil {
		m.logger.Error().Err(err).
			Str("parent", parent).
			Str("parent_id", id.String()).
			Msg("appointment cascade failed; parent already removed")
		return 0, err
	}
	m.logger.Info().
		Str("parent", parent).
		Str("parent_id", id.String()).
		Int64("appointments_deleted", n).
		Msg("cascade delete")
	if m.recorder != nil {
		m.recorder.CascadeDeleted(parent, n)
	}
	return n, nil
}
