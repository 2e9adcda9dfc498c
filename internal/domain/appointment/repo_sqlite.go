package appointment

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/alexiosg111/pflegedms/internal/platform/db"
)

type appointmentRepoSQLite struct{ gw *db.Gateway }

func NewAppointmentRepoSQLite(gw *db.Gateway) AppointmentRepository {
	return &appointmentRepoSQLite{gw: gw}
}

const appointmentCols = `id, title, appointment_date, appointment_time, patient_id, staff_id,
	notes, status, created_at, updated_at, created_by, updated_by`

func (r *appointmentRepoSQLite) scanAppointment(row db.Row) (*Appointment, error) {
	var a Appointment
	err := row.Scan(&a.ID, &a.Title, &a.AppointmentDate, &a.AppointmentTime, &a.PatientID, &a.StaffID,
		&a.Notes, &a.Status, &a.CreatedAt, &a.UpdatedAt, &a.CreatedBy, &a.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &a, err
}

func (r *appointmentRepoSQLite) Create(ctx context.Context, a *Appointment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	_, err := r.gw.Execute(ctx, `
		INSERT INTO appointments (id, title, appointment_date, appointment_time,
			patient_id, staff_id, notes, status, created_by, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Title, a.AppointmentDate, a.AppointmentTime,
		a.PatientID, a.StaffID, a.Notes, a.Status, a.CreatedBy, a.UpdatedBy)
	return err
}

func (r *appointmentRepoSQLite) GetByID(ctx context.Context, id string) (*Appointment, error) {
	return r.scanAppointment(r.gw.QueryRow(ctx, `SELECT `+appointmentCols+` FROM appointments WHERE id = ?`, id))
}

func (r *appointmentRepoSQLite) Update(ctx context.Context, a *Appointment) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE appointments SET title=?, appointment_date=?, appointment_time=?,
			patient_id=?, staff_id=?, notes=?, status=?, updated_by=?, updated_at=CURRENT_TIMESTAMP
		WHERE id = ?`,
		a.Title, a.AppointmentDate, a.AppointmentTime,
		a.PatientID, a.StaffID, a.Notes, a.Status, a.UpdatedBy, a.ID)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoSQLite) Delete(ctx context.Context, id string) error {
	res, err := r.gw.Execute(ctx, `DELETE FROM appointments WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *appointmentRepoSQLite) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE patient_id = ?`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.gw.Query(ctx, `SELECT `+appointmentCols+` FROM appointments
		WHERE patient_id = ? ORDER BY appointment_date DESC, appointment_time DESC LIMIT ? OFFSET ?`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *appointmentRepoSQLite) ListByDateRange(ctx context.Context, from, to string, limit, offset int) ([]*Appointment, int, error) {
	var total int
	if err := r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM appointments WHERE appointment_date BETWEEN ? AND ?`, from, to).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.gw.Query(ctx, `SELECT `+appointmentCols+` FROM appointments
		WHERE appointment_date BETWEEN ? AND ? ORDER BY appointment_date, appointment_time LIMIT ? OFFSET ?`,
		from, to, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()
	return r.collect(rows, total)
}

func (r *appointmentRepoSQLite) collect(rows *sql.Rows, total int) ([]*Appointment, int, error) {
	var items []*Appointment
	for rows.Next() {
		a, err := r.scanAppointment(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}
