package scheduling

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/pkg/apperrors"
	"github.com/clinic/clinic/pkg/calendar"
)

// Appointment maps to the appointment table. PatientID and DoctorID are
// plain references: they resolve when the appointment is created and are
// cleared only by deleting the appointment.
type Appointment struct {
	ID        uuid.UUID    `db:"id" json:"id"`
	PatientID uuid.UUID    `db:"patient_id" json:"patientId"`
	DoctorID  uuid.UUID    `db:"doctor_id" json:"doctorId"`
	Date      calendar.Day `db:"appt_date" json:"date"`
	Time      string       `db:"appt_time" json:"time"`
	Reason    string       `db:"reason" json:"reason"`
	Status    Status       `db:"status" json:"status"`
	CreatedAt time.Time    `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time    `db:"updated_at" json:"updatedAt"`
}

// AppointmentInput carries client-supplied appointment fields. Dates are
// accepted as YYYY-MM-DD or RFC 3339; the written date becomes a local
// calendar day.
type AppointmentInput struct {
	PatientID *string `json:"patientId"`
	DoctorID  *string `json:"doctorId"`
	Date      *string `json:"date"`
	Time      *string `json:"time"`
	Reason    *string `json:"reason"`
	Status    *string `json:"status"`
}

// NewAppointment builds an appointment from a complete input. Status
// defaults to scheduled.
func NewAppointment(in AppointmentInput) (*Appointment, error) {
	a, v := in.applyTo(Appointment{Status: StatusScheduled})
	if in.PatientID == nil {
		v.Add("patientId is required")
	}
	if in.DoctorID == nil {
		v.Add("doctorId is required")
	}
	if in.Date == nil {
		v.Add("date is required")
	}
	v = append(v, a.violations()...)
	if err := v.Err("appointment"); err != nil {
		return nil, err
	}
	return &a, nil
}

// Merge returns a copy of a with the supplied fields of in applied.
func (a *Appointment) Merge(in AppointmentInput) (*Appointment, error) {
	next, v := in.applyTo(*a)
	v = append(v, next.violations()...)
	if err := v.Err("appointment"); err != nil {
		return nil, err
	}
	return &next, nil
}

func (in AppointmentInput) applyTo(a Appointment) (Appointment, apperrors.Violations) {
	var v apperrors.Violations
	if in.PatientID != nil {
		id, err := uuid.Parse(*in.PatientID)
		if err != nil {
			v.Add("patientId %q is not a valid id", *in.PatientID)
		}
		a.PatientID = id
	}
	if in.DoctorID != nil {
		id, err := uuid.Parse(*in.DoctorID)
		if err != nil {
			v.Add("doctorId %q is not a valid id", *in.DoctorID)
		}
		a.DoctorID = id
	}
	if in.Date != nil {
		d, err := calendar.Parse(*in.Date, time.Local)
		if err != nil {
			v.Add("date %q is not a calendar day", *in.Date)
		}
		a.Date = d
	}
	if in.Time != nil {
		a.Time = strings.TrimSpace(*in.Time)
	}
	if in.Reason != nil {
		a.Reason = *in.Reason
	}
	if in.Status != nil {
		a.Status = Status(*in.Status)
	}
	return a, v
}

func (a Appointment) violations() apperrors.Violations {
	var v apperrors.Violations
	if a.Time == "" {
		v.Add("time is required")
	}
	if strings.TrimSpace(a.Reason) == "" {
		v.Add("reason is required")
	}
	if !a.Status.Valid() {
		v.Add("status must be one of scheduled, completed, cancelled, no_show")
	}
	return v
}
