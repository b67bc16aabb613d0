package directory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededStore(t *testing.T) *InMemoryStore {
	t.Helper()
	s := NewInMemoryStore()
	require.NoError(t, SeedDemo(s, time.UTC))
	return s
}

func TestInMemorySearchPatients(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		term  string
		names []string
	}{
		{"by name case-insensitive", "gillian", []string{"Gillian White"}},
		{"by patient number", "p105", []string{"Jill Bell"}},
		{"by city", "los angeles", []string{"Jill Bell"}},
		{"by zip", "10001", []string{"Gillian White"}},
		{"shared substring keeps order", "ill", []string{"Gillian White", "Jill Bell"}},
		{"no match", "zzz", nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchPatients(ctx, tt.term)
			require.NoError(t, err)
			require.NotNil(t, got)
			var names []string
			for _, p := range got {
				names = append(names, p.Name)
			}
			assert.Equal(t, tt.names, names)
		})
	}
}

func TestInMemorySearchDentistsByNameOnly(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	got, err := s.SearchDentists(ctx, "SMITH")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Tony Smith", got[0].Name)

	got, err = s.SearchDentists(ctx, "New York")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestInMemoryCounts(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	patients, err := s.CountPatients(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, patients)

	dentists, err := s.CountDentists(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, dentists)
}

func TestInMemoryAppointments(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	appts, err := s.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 2)
	assert.Equal(t, "Gillian White", appts[0].Patient.Name)
	require.NotNil(t, appts[0].Surgery)
	assert.Equal(t, "S15", appts[0].Surgery.SurgeryNumber)

	patients, _ := s.SearchPatients(ctx, "Jill")
	dentists, _ := s.SearchDentists(ctx, "Helen")
	at := time.Date(2025, 8, 1, 9, 30, 0, 0, time.UTC)
	created, err := s.CreateAppointment(ctx, patients[0].ID, dentists[0].ID, at)
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Helen Pearson", created.Dentist.Name)
	assert.Nil(t, created.Surgery)

	appts, err = s.ListAppointments(ctx)
	require.NoError(t, err)
	require.Len(t, appts, 3)
	assert.Equal(t, created.ID, appts[0].ID, "appointments are ordered by time")
}

func TestInMemoryCreateAppointmentUnknownIDs(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	_, err := s.CreateAppointment(ctx, 9999, 1, time.Now())
	assert.ErrorIs(t, err, ErrPatientNotFound)

	patients, _ := s.ListPatients(ctx)
	_, err = s.CreateAppointment(ctx, patients[0].ID, 9999, time.Now())
	assert.ErrorIs(t, err, ErrDentistNotFound)
}

func TestInMemoryReturnsCopies(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	patients, err := s.ListPatients(ctx)
	require.NoError(t, err)
	patients[0].Name = "Changed"
	patients[0].Address.City = "Changed"

	again, err := s.ListPatients(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Gillian White", again[0].Name)
	assert.Equal(t, "New York", again[0].Address.City)
}
