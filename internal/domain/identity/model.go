package identity

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/clinic/clinic/pkg/apperrors"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// Patient maps to the patient table.
type Patient struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Age       int       `db:"age" json:"age"`
	Gender    Gender    `db:"gender" json:"gender"`
	Contact   string    `db:"contact" json:"contact"`
	Address   string    `db:"address" json:"address"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// PatientInput carries client-supplied patient fields. A nil field was not
// supplied: it is missing on create and left unchanged on update.
type PatientInput struct {
	Name    *string `json:"name"`
	Age     *int    `json:"age"`
	Gender  *string `json:"gender"`
	Contact *string `json:"contact"`
	Address *string `json:"address"`
}

// NewPatient builds a patient from a complete input. It is the only way a
// Patient enters the store.
func NewPatient(in PatientInput) (*Patient, error) {
	p := in.applyTo(Patient{})
	if err := p.validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Merge returns a copy of p with the supplied fields of in applied. The
// result must still satisfy the constructor rules.
func (p *Patient) Merge(in PatientInput) (*Patient, error) {
	next := in.applyTo(*p)
	if err := next.validate(); err != nil {
		return nil, err
	}
	return &next, nil
}

func (in PatientInput) applyTo(p Patient) Patient {
	if in.Name != nil {
		p.Name = *in.Name
	}
	if in.Age != nil {
		p.Age = *in.Age
	}
	if in.Gender != nil {
		p.Gender = Gender(*in.Gender)
	}
	if in.Contact != nil {
		p.Contact = *in.Contact
	}
	if in.Address != nil {
		p.Address = *in.Address
	}
	return p
}

func (p Patient) validate() error {
	var v apperrors.Violations
	if blank(p.Name) {
		v.Add("name is required")
	}
	if p.Age <= 0 {
		v.Add("age must be a positive integer")
	}
	if !p.Gender.Valid() {
		v.Add("gender must be one of male, female, other")
	}
	if blank(p.Contact) {
		v.Add("contact is required")
	}
	if blank(p.Address) {
		v.Add("address is required")
	}
	return v.Err("patient")
}

// Doctor maps to the doctor table.
type Doctor struct {
	ID             uuid.UUID `db:"id" json:"id"`
	Name           string    `db:"name" json:"name"`
	Specialization string    `db:"specialization" json:"specialization"`
	Experience     int       `db:"experience" json:"experience"`
	Contact        string    `db:"contact" json:"contact"`
	Email          string    `db:"email" json:"email"`
	CreatedAt      time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time `db:"updated_at" json:"updatedAt"`
}

// DoctorInput carries client-supplied doctor fields; see PatientInput.
type DoctorInput struct {
	Name           *string `json:"name"`
	Specialization *string `json:"specialization"`
	Experience     *int    `json:"experience"`
	Contact        *string `json:"contact"`
	Email          *string `json:"email"`
}

// NewDoctor builds a doctor from a complete input.
func NewDoctor(in DoctorInput) (*Doctor, error) {
	d := in.applyTo(Doctor{})
	v := d.violations()
	// zero years is a valid experience, so absence is checked on the input
	if in.Experience == nil {
		v.Add("experience is required")
	}
	if err := v.Err("doctor"); err != nil {
		return nil, err
	}
	return &d, nil
}

// Merge returns a copy of d with the supplied fields of in applied.
func (d *Doctor) Merge(in DoctorInput) (*Doctor, error) {
	next := in.applyTo(*d)
	if err := next.violations().Err("doctor"); err != nil {
		return nil, err
	}
	return &next, nil
}

func (in DoctorInput) applyTo(d Doctor) Doctor {
	if in.Name != nil {
		d.Name = *in.Name
	}
	if in.Specialization != nil {
		d.Specialization = *in.Specialization
	}
	if in.Experience != nil {
		d.Experience = *in.Experience
	}
	if in.Contact != nil {
		d.Contact = *in.Contact
	}
	if in.Email != nil {
		d.Email = *in.Email
	}
	return d
}

func (d Doctor) violations() apperrors.Violations {
	var v apperrors.Violations
	if blank(d.Name) {
		v.Add("name is required")
	}
	if blank(d.Specialization) {
		v.Add("specialization is required")
	}
	if d.Experience < 0 {
		v.Add("experience must be a non-negative integer")
	}
	if blank(d.Contact) {
		v.Add("contact is required")
	}
	if blank(d.Email) {
		v.Add("email is required")
	} else if _, err := mail.ParseAddress(d.Email); err != nil {
		v.Add("email %q is not a valid address", d.Email)
	}
	return v
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
