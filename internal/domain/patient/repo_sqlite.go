package patient

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/alexiosg111/pflegedms/internal/platform/db"
)

type patientRepoSQLite struct{ gw *db.Gateway }

func NewPatientRepoSQLite(gw *db.Gateway) PatientRepository {
	return &patientRepoSQLite{gw: gw}
}

const patientCols = `id, first_name, last_name, birth_date, address, postal_code,
	phone, email, insurance, diagnosis, notes, status,
	created_at, updated_at, created_by, updated_by`

func (r *patientRepoSQLite) scanPatient(row db.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.FirstName, &p.LastName, &p.BirthDate, &p.Address, &p.PostalCode,
		&p.Phone, &p.Email, &p.Insurance, &p.Diagnosis, &p.Notes, &p.Status,
		&p.CreatedAt, &p.UpdatedAt, &p.CreatedBy, &p.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &p, err
}

func (r *patientRepoSQLite) Create(ctx context.Context, p *Patient) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	_, err := r.gw.Execute(ctx, `
		INSERT INTO patients (id, first_name, last_name, birth_date, address, postal_code,
			phone, email, insurance, diagnosis, notes, status, created_by, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.FirstName, p.LastName, p.BirthDate, p.Address, p.PostalCode,
		p.Phone, p.Email, p.Insurance, p.Diagnosis, p.Notes, p.Status, p.CreatedBy, p.UpdatedBy)
	return err
}

func (r *patientRepoSQLite) GetByID(ctx context.Context, id string) (*Patient, error) {
	return r.scanPatient(r.gw.QueryRow(ctx, `SELECT `+patientCols+` FROM patients WHERE id = ?`, id))
}

func (r *patientRepoSQLite) Update(ctx context.Context, p *Patient) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE patients SET first_name=?, last_name=?, birth_date=?, address=?, postal_code=?,
			phone=?, email=?, insurance=?, diagnosis=?, notes=?, status=?,
			updated_by=?, updated_at=CURRENT_TIMESTAMP
		WHERE id = ?`,
		p.FirstName, p.LastName, p.BirthDate, p.Address, p.PostalCode,
		p.Phone, p.Email, p.Insurance, p.Diagnosis, p.Notes, p.Status,
		p.UpdatedBy, p.ID)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepoSQLite) SetStatus(ctx context.Context, id, status string, updatedBy *string) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE patients SET status=?, updated_by=?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`,
		status, updatedBy, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepoSQLite) List(ctx context.Context, status, search string, limit, offset int) ([]*Patient, int, error) {
	where := ` WHERE status != 'deleted'`
	args := []any{}
	if status != "" {
		where = ` WHERE status = ?`
		args = append(args, status)
	}
	if search != "" {
		where += ` AND (first_name LIKE '%' || ? || '%' OR last_name LIKE '%' || ? || '%')`
		args = append(args, search, search)
	}

	var total int
	if err := r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM patients`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.gw.Query(ctx, `SELECT `+patientCols+` FROM patients`+where+
		` ORDER BY last_name, first_name LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := r.scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}
