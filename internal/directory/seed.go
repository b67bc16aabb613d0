package directory

import "time"

// SeedDemo loads the sample clinic used by local development.
func SeedDemo(s *InMemoryStore, loc *time.Location) error {
	if loc == nil {
		loc = time.Local
	}
	newYork := &Address{Street: "123 Main St", City: "New York", ZipCode: "10001"}
	losAngeles := &Address{Street: "456 Oak St", City: "Los Angeles", ZipCode: "90001"}

	gillian := s.AddPatient(Patient{PatientNumber: "P100", Name: "Gillian White", Address: newYork})
	jill := s.AddPatient(Patient{PatientNumber: "P105", Name: "Jill Bell", Address: losAngeles})

	tony := s.AddDentist(Dentist{Name: "Tony Smith", Address: newYork})
	s.AddDentist(Dentist{Name: "Helen Pearson", Address: losAngeles})

	s15 := s.AddSurgery(Surgery{SurgeryNumber: "S15", Address: newYork})
	s.AddSurgery(Surgery{SurgeryNumber: "S10", Address: losAngeles})

	if _, err := s.AddAppointment(gillian.ID, tony.ID, s15.ID, time.Date(2025, 9, 12, 10, 0, 0, 0, loc)); err != nil {
		return err
	}
	if _, err := s.AddAppointment(jill.ID, tony.ID, s15.ID, time.Date(2025, 9, 12, 12, 0, 0, 0, loc)); err != nil {
		return err
	}
	return nil
}
