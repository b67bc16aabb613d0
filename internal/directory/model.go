package directory

import "time"

// Address is a postal address attached to a patient, dentist, or surgery.
type Address struct {
	ID      int64
	Street  string
	City    string
	ZipCode string
}

// Patient is a registered clinic patient.
type Patient struct {
	ID            int64
	PatientNumber string
	Name          string
	Address       *Address
}

// Dentist is a practitioner who can be booked.
type Dentist struct {
	ID      int64
	Name    string
	Address *Address
}

// Surgery is a clinic location where appointments take place.
type Surgery struct {
	ID            int64
	SurgeryNumber string
	Address       *Address
}

// Appointment links a patient and dentist at a point in time.
type Appointment struct {
	ID          int64
	ScheduledAt time.Time
	Patient     *Patient
	Dentist     *Dentist
	Surgery     *Surgery
}
