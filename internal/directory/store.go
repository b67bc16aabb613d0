package directory

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrPatientNotFound is returned when a patient id does not exist
	ErrPatientNotFound = errors.New("patient not found")

	// ErrDentistNotFound is returned when a dentist id does not exist
	ErrDentistNotFound = errors.New("dentist not found")
)

// Store is the read/create surface the assistant needs from the clinic directory.
// Search matches case-insensitively on substrings; results keep store order.
type Store interface {
	SearchPatients(ctx context.Context, term string) ([]Patient, error)
	ListPatients(ctx context.Context) ([]Patient, error)
	CountPatients(ctx context.Context) (int, error)
	SearchDentists(ctx context.Context, term string) ([]Dentist, error)
	ListDentists(ctx context.Context) ([]Dentist, error)
	CountDentists(ctx context.Context) (int, error)
	ListAppointments(ctx context.Context) ([]Appointment, error)
	CreateAppointment(ctx context.Context, patientID, dentistID int64, at time.Time) (*Appointment, error)
}
