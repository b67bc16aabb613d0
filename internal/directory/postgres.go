package directory

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

type rowQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore reads the clinic directory from the relational database.
type PostgresStore struct {
	pool rowQuerier
	loc  *time.Location
}

// NewPostgresStore initializes a store backed by pgxpool. scheduled_at is a
// wall-clock column; loc is the clinic zone those wall clocks are read in.
func NewPostgresStore(pool *pgxpool.Pool, loc *time.Location) *PostgresStore {
	if pool == nil {
		panic("directory: pgx pool required")
	}
	return newPostgresStoreWithQuerier(pool, loc)
}

func newPostgresStoreWithQuerier(q rowQuerier, loc *time.Location) *PostgresStore {
	if q == nil {
		panic("directory: querier required")
	}
	if loc == nil {
		loc = time.Local
	}
	return &PostgresStore{pool: q, loc: loc}
}

var _ Store = (*PostgresStore)(nil)

const patientColumns = `
	SELECT p.id, p.patient_number, p.name, a.id, a.street, a.city, a.zip_code
	FROM patients p
	LEFT JOIN addresses a ON a.id = p.address_id
`

const dentistColumns = `
	SELECT d.id, d.name, a.id, a.street, a.city, a.zip_code
	FROM dentists d
	LEFT JOIN addresses a ON a.id = d.address_id
`

// SearchPatients matches name, patient number, and address fields with ILIKE.
func (s *PostgresStore) SearchPatients(ctx context.Context, term string) ([]Patient, error) {
	query := patientColumns + `
	WHERE p.name ILIKE $1 OR p.patient_number ILIKE $1
		OR a.street ILIKE $1 OR a.city ILIKE $1 OR a.zip_code ILIKE $1
	ORDER BY p.id
	`
	return s.queryPatients(ctx, query, likePattern(term))
}

// ListPatients returns every patient ordered by id.
func (s *PostgresStore) ListPatients(ctx context.Context) ([]Patient, error) {
	return s.queryPatients(ctx, patientColumns+` ORDER BY p.id`)
}

// CountPatients returns the number of registered patients.
func (s *PostgresStore) CountPatients(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM patients`)
}

// SearchDentists matches dentist name with ILIKE.
func (s *PostgresStore) SearchDentists(ctx context.Context, term string) ([]Dentist, error) {
	query := dentistColumns + `
	WHERE d.name ILIKE $1
	ORDER BY d.id
	`
	return s.queryDentists(ctx, query, likePattern(term))
}

// ListDentists returns every dentist ordered by id.
func (s *PostgresStore) ListDentists(ctx context.Context) ([]Dentist, error) {
	return s.queryDentists(ctx, dentistColumns+` ORDER BY d.id`)
}

// CountDentists returns the number of registered dentists.
func (s *PostgresStore) CountDentists(ctx context.Context) (int, error) {
	return s.count(ctx, `SELECT COUNT(*) FROM dentists`)
}

// ListAppointments returns appointments with their patient, dentist, and surgery.
func (s *PostgresStore) ListAppointments(ctx context.Context) ([]Appointment, error) {
	query := `
		SELECT ap.id, ap.scheduled_at,
			p.id, p.patient_number, p.name,
			d.id, d.name,
			s.id, s.surgery_number, sa.id, sa.street, sa.city, sa.zip_code
		FROM appointments ap
		JOIN patients p ON p.id = ap.patient_id
		JOIN dentists d ON d.id = ap.dentist_id
		LEFT JOIN surgeries s ON s.id = ap.surgery_id
		LEFT JOIN addresses sa ON sa.id = s.address_id
		ORDER BY ap.scheduled_at, ap.id
	`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("directory: list appointments: %w", err)
	}
	defer rows.Close()

	out := []Appointment{}
	for rows.Next() {
		var (
			appt                                 Appointment
			patient                              Patient
			dentist                              Dentist
			surgeryID, addrID                    pgtype.Int8
			surgeryNumber, street, city, zipCode pgtype.Text
		)
		if err := rows.Scan(
			&appt.ID, &appt.ScheduledAt,
			&patient.ID, &patient.PatientNumber, &patient.Name,
			&dentist.ID, &dentist.Name,
			&surgeryID, &surgeryNumber, &addrID, &street, &city, &zipCode,
		); err != nil {
			return nil, fmt.Errorf("directory: scan appointment: %w", err)
		}
		appt.ScheduledAt = s.wallClock(appt.ScheduledAt)
		appt.Patient = &patient
		appt.Dentist = &dentist
		if surgeryID.Valid {
			appt.Surgery = &Surgery{
				ID:            surgeryID.Int64,
				SurgeryNumber: surgeryNumber.String,
				Address:       toAddress(addrID, street, city, zipCode),
			}
		}
		out = append(out, appt)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: iterate appointments: %w", err)
	}
	return out, nil
}

// CreateAppointment inserts an appointment and returns it with patient and dentist loaded.
func (s *PostgresStore) CreateAppointment(ctx context.Context, patientID, dentistID int64, at time.Time) (*Appointment, error) {
	query := `
		WITH inserted AS (
			INSERT INTO appointments (scheduled_at, patient_id, dentist_id)
			VALUES ($1, $2, $3)
			RETURNING id, scheduled_at, patient_id, dentist_id
		)
		SELECT i.id, i.scheduled_at, p.id, p.patient_number, p.name, d.id, d.name
		FROM inserted i
		JOIN patients p ON p.id = i.patient_id
		JOIN dentists d ON d.id = i.dentist_id
	`
	var (
		appt    Appointment
		patient Patient
		dentist Dentist
	)
	if err := s.pool.QueryRow(ctx, query, at, patientID, dentistID).Scan(
		&appt.ID, &appt.ScheduledAt,
		&patient.ID, &patient.PatientNumber, &patient.Name,
		&dentist.ID, &dentist.Name,
	); err != nil {
		return nil, fmt.Errorf("directory: insert appointment: %w", err)
	}
	appt.ScheduledAt = s.wallClock(appt.ScheduledAt)
	appt.Patient = &patient
	appt.Dentist = &dentist
	return &appt, nil
}

func (s *PostgresStore) queryPatients(ctx context.Context, query string, args ...any) ([]Patient, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("directory: query patients: %w", err)
	}
	defer rows.Close()

	out := []Patient{}
	for rows.Next() {
		var (
			p                     Patient
			addrID                pgtype.Int8
			street, city, zipCode pgtype.Text
		)
		if err := rows.Scan(&p.ID, &p.PatientNumber, &p.Name, &addrID, &street, &city, &zipCode); err != nil {
			return nil, fmt.Errorf("directory: scan patient: %w", err)
		}
		p.Address = toAddress(addrID, street, city, zipCode)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: iterate patients: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) queryDentists(ctx context.Context, query string, args ...any) ([]Dentist, error) {
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("directory: query dentists: %w", err)
	}
	defer rows.Close()

	out := []Dentist{}
	for rows.Next() {
		var (
			d                     Dentist
			addrID                pgtype.Int8
			street, city, zipCode pgtype.Text
		)
		if err := rows.Scan(&d.ID, &d.Name, &addrID, &street, &city, &zipCode); err != nil {
			return nil, fmt.Errorf("directory: scan dentist: %w", err)
		}
		d.Address = toAddress(addrID, street, city, zipCode)
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("directory: iterate dentists: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) count(ctx context.Context, query string) (int, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("directory: count: %w", err)
	}
	return int(n), nil
}

// wallClock relabels a TIMESTAMP value, which pgx returns as UTC, with the
// clinic location without shifting the clock reading.
func (s *PostgresStore) wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), s.loc)
}

func toAddress(id pgtype.Int8, street, city, zipCode pgtype.Text) *Address {
	if !id.Valid {
		return nil
	}
	return &Address{
		ID:      id.Int64,
		Street:  street.String,
		City:    city.String,
		ZipCode: zipCode.String,
	}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// likePattern wraps term for a substring ILIKE match with wildcards escaped.
func likePattern(term string) string {
	return "%" + likeEscaper.Replace(strings.TrimSpace(term)) + "%"
}
