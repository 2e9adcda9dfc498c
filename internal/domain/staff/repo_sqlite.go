package staff

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/alexiosg111/pflegedms/internal/platform/db"
)

type staffRepoSQLite struct{ gw *db.Gateway }

func NewStaffRepoSQLite(gw *db.Gateway) StaffRepository {
	return &staffRepoSQLite{gw: gw}
}

const staffCols = `id, first_name, last_name, position, phone, email,
	qualifications, notes, is_active, created_at, updated_at, created_by, updated_by`

func (r *staffRepoSQLite) scanStaff(row db.Row) (*Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.Position, &s.Phone, &s.Email,
		&s.Qualifications, &s.Notes, &s.IsActive, &s.CreatedAt, &s.UpdatedAt, &s.CreatedBy, &s.UpdatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &s, err
}

func (r *staffRepoSQLite) Create(ctx context.Context, s *Staff) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	_, err := r.gw.Execute(ctx, `
		INSERT INTO staff (id, first_name, last_name, position, phone, email,
			qualifications, notes, is_active, created_by, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.ID, s.FirstName, s.LastName, s.Position, s.Phone, s.Email,
		s.Qualifications, s.Notes, s.IsActive, s.CreatedBy, s.UpdatedBy)
	return err
}

func (r *staffRepoSQLite) GetByID(ctx context.Context, id string) (*Staff, error) {
	return r.scanStaff(r.gw.QueryRow(ctx, `SELECT `+staffCols+` FROM staff WHERE id = ?`, id))
}

func (r *staffRepoSQLite) Update(ctx context.Context, s *Staff) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE staff SET first_name=?, last_name=?, position=?, phone=?, email=?,
			qualifications=?, notes=?, is_active=?, updated_by=?, updated_at=CURRENT_TIMESTAMP
		WHERE id = ?`,
		s.FirstName, s.LastName, s.Position, s.Phone, s.Email,
		s.Qualifications, s.Notes, s.IsActive, s.UpdatedBy, s.ID)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *staffRepoSQLite) SetActive(ctx context.Context, id string, active bool, updatedBy *string) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE staff SET is_active=?, updated_by=?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`,
		active, updatedBy, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *staffRepoSQLite) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Staff, int, error) {
	where := ""
	if activeOnly {
		where = ` WHERE is_active = 1`
	}

	var total int
	if err := r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM staff`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.gw.Query(ctx, `SELECT `+staffCols+` FROM staff`+where+
		` ORDER BY last_name, first_name LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Staff
	for rows.Next() {
		s, err := r.scanStaff(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, s)
	}
	return items, total, rows.Err()
}
