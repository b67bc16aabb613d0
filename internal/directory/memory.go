package directory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// InMemoryStore is a Store held in process memory, used for local development and tests.
type InMemoryStore struct {
	mu           sync.RWMutex
	nextID       int64
	patients     []*Patient
	dentists     []*Dentist
	surgeries    []*Surgery
	appointments []*Appointment
}

// NewInMemoryStore creates an empty in-memory directory.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{}
}

var _ Store = (*InMemoryStore)(nil)

// AddPatient registers a patient and returns the stored copy with its id.
func (s *InMemoryStore) AddPatient(p Patient) Patient {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.newID()
	p.Address = s.withAddressID(p.Address)
	s.patients = append(s.patients, &p)
	return copyPatient(&p)
}

// AddDentist registers a dentist and returns the stored copy with its id.
func (s *InMemoryStore) AddDentist(d Dentist) Dentist {
	s.mu.Lock()
	defer s.mu.Unlock()
	d.ID = s.newID()
	d.Address = s.withAddressID(d.Address)
	s.dentists = append(s.dentists, &d)
	return copyDentist(&d)
}

// AddSurgery registers a surgery location and returns the stored copy with its id.
func (s *InMemoryStore) AddSurgery(sg Surgery) Surgery {
	s.mu.Lock()
	defer s.mu.Unlock()
	sg.ID = s.newID()
	sg.Address = s.withAddressID(sg.Address)
	s.surgeries = append(s.surgeries, &sg)
	out := sg
	out.Address = copyAddress(sg.Address)
	return out
}

// AddAppointment stores an appointment held at a surgery. A zero surgeryID books without one.
func (s *InMemoryStore) AddAppointment(patientID, dentistID, surgeryID int64, at time.Time) (*Appointment, error) {
	appt, err := s.CreateAppointment(context.Background(), patientID, dentistID, at)
	if err != nil || surgeryID == 0 {
		return appt, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, sg := range s.surgeries {
		if sg.ID != surgeryID {
			continue
		}
		for _, stored := range s.appointments {
			if stored.ID == appt.ID {
				stored.Surgery = sg
				created := copyAppointment(stored)
				return &created, nil
			}
		}
	}
	return appt, nil
}

// SearchPatients matches name, patient number, and address fields.
func (s *InMemoryStore) SearchPatients(ctx context.Context, term string) ([]Patient, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Patient{}
	for _, p := range s.patients {
		if patientMatches(p, needle) {
			out = append(out, copyPatient(p))
		}
	}
	return out, nil
}

// ListPatients returns every patient in insertion order.
func (s *InMemoryStore) ListPatients(ctx context.Context) ([]Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Patient, 0, len(s.patients))
	for _, p := range s.patients {
		out = append(out, copyPatient(p))
	}
	return out, nil
}

// CountPatients returns the number of registered patients.
func (s *InMemoryStore) CountPatients(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.patients), nil
}

// SearchDentists matches on dentist name.
func (s *InMemoryStore) SearchDentists(ctx context.Context, term string) ([]Dentist, error) {
	needle := strings.ToLower(strings.TrimSpace(term))
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Dentist{}
	for _, d := range s.dentists {
		if strings.Contains(strings.ToLower(d.Name), needle) {
			out = append(out, copyDentist(d))
		}
	}
	return out, nil
}

// ListDentists returns every dentist in insertion order.
func (s *InMemoryStore) ListDentists(ctx context.Context) ([]Dentist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Dentist, 0, len(s.dentists))
	for _, d := range s.dentists {
		out = append(out, copyDentist(d))
	}
	return out, nil
}

// CountDentists returns the number of registered dentists.
func (s *InMemoryStore) CountDentists(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.dentists), nil
}

// ListAppointments returns appointments ordered by scheduled time.
func (s *InMemoryStore) ListAppointments(ctx context.Context) ([]Appointment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Appointment, 0, len(s.appointments))
	for _, a := range s.appointments {
		out = append(out, copyAppointment(a))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].ScheduledAt.Before(out[j].ScheduledAt)
	})
	return out, nil
}

// CreateAppointment books a patient with a dentist.
func (s *InMemoryStore) CreateAppointment(ctx context.Context, patientID, dentistID int64, at time.Time) (*Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	patient := s.findPatient(patientID)
	if patient == nil {
		return nil, ErrPatientNotFound
	}
	dentist := s.findDentist(dentistID)
	if dentist == nil {
		return nil, ErrDentistNotFound
	}

	appt := &Appointment{
		ID:          s.newID(),
		ScheduledAt: at,
		Patient:     patient,
		Dentist:     dentist,
	}
	s.appointments = append(s.appointments, appt)
	created := copyAppointment(appt)
	return &created, nil
}

func (s *InMemoryStore) findPatient(id int64) *Patient {
	for _, p := range s.patients {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (s *InMemoryStore) findDentist(id int64) *Dentist {
	for _, d := range s.dentists {
		if d.ID == id {
			return d
		}
	}
	return nil
}

// newID must be called with mu held.
func (s *InMemoryStore) newID() int64 {
	s.nextID++
	return s.nextID
}

func (s *InMemoryStore) withAddressID(addr *Address) *Address {
	if addr == nil {
		return nil
	}
	cp := *addr
	if cp.ID == 0 {
		cp.ID = s.newID()
	}
	return &cp
}

func patientMatches(p *Patient, needle string) bool {
	fields := []string{p.Name, p.PatientNumber}
	if p.Address != nil {
		fields = append(fields, p.Address.Street, p.Address.City, p.Address.ZipCode)
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), needle) {
			return true
		}
	}
	return false
}

func copyAddress(a *Address) *Address {
	if a == nil {
		return nil
	}
	cp := *a
	return &cp
}

func copyPatient(p *Patient) Patient {
	cp := *p
	cp.Address = copyAddress(p.Address)
	return cp
}

func copyDentist(d *Dentist) Dentist {
	cp := *d
	cp.Address = copyAddress(d.Address)
	return cp
}

func copyAppointment(a *Appointment) Appointment {
	cp := *a
	if a.Patient != nil {
		p := copyPatient(a.Patient)
		cp.Patient = &p
	}
	if a.Dentist != nil {
		d := copyDentist(a.Dentist)
		cp.Dentist = &d
	}
	if a.Surgery != nil {
		sg := *a.Surgery
		sg.Address = copyAddress(a.Surgery.Address)
		cp.Surgery = &sg
	}
	return cp
}
