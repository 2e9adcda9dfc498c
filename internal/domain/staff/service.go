package staff

import (
	"context"
	"fmt"

	"github.com/alexiosg111/pflegedms/internal/platform/audit"
)

type AuditLog interface {
	Log(ctx context.Context, userID *string, action string, tableName, recordID *string, oldValues, newValues any)
}

type Service struct {
	staff    StaffRepository
	auditLog AuditLog
}

func NewService(staff StaffRepository, auditLog AuditLog) *Service {
	return &Service{staff: staff, auditLog: auditLog}
}

func tableRef(id string) (*string, *string) {
	table := "staff"
	return &table, &id
}

func (s *Service) CreateStaff(ctx context.Context, m *Staff) error {
	if m.FirstName == "" || m.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	m.IsActive = true
	if err := s.staff.Create(ctx, m); err != nil {
		return err
	}
	table, record := tableRef(m.ID)
	s.auditLog.Log(ctx, m.CreatedBy, audit.ActionCreate, table, record, nil, m)
	return nil
}

func (s *Service) GetStaff(ctx context.Context, id string) (*Staff, error) {
	return s.staff.GetByID(ctx, id)
}

func (s *Service) UpdateStaff(ctx context.Context, m *Staff) error {
	if m.FirstName == "" || m.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	old, err := s.staff.GetByID(ctx, m.ID)
	if err != nil {
		return err
	}
	if err := s.staff.Update(ctx, m); err != nil {
		return err
	}
	table, record := tableRef(m.ID)
	s.auditLog.Log(ctx, m.UpdatedBy, audit.ActionEdit, table, record, old, m)
	return nil
}

// DeactivateStaff keeps the record; historical appointments still resolve.
func (s *Service) DeactivateStaff(ctx context.Context, id string, actor *string) error {
	old, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.staff.SetActive(ctx, id, false, actor); err != nil {
		return err
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, audit.ActionEdit, table, record, old, map[string]bool{"is_active": false})
	return nil
}

func (s *Service) ActivateStaff(ctx context.Context, id string, actor *string) error {
	old, err := s.staff.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.staff.SetActive(ctx, id, true, actor); err != nil {
		return err
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, audit.ActionEdit, table, record, old, map[string]bool{"is_active": true})
	return nil
}

func (s *Service) ListStaff(ctx context.Context, activeOnly bool, limit, offset int) ([]*Staff, int, error) {
	return s.staff.List(ctx, activeOnly, limit, offset)
}
