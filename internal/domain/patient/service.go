package patient

import (
	"context"
	"fmt"

	"github.com/alexiosg111/pflegedms/internal/platform/audit"
)

// AuditLog is the slice of the audit recorder the service uses.
type AuditLog interface {
	Log(ctx context.Context, userID *string, action string, tableName, recordID *string, oldValues, newValues any)
}

type Service struct {
	patients PatientRepository
	auditLog AuditLog
}

func NewService(patients PatientRepository, auditLog AuditLog) *Service {
	return &Service{patients: patients, auditLog: auditLog}
}

var validStatuses = map[string]bool{
	StatusActive:   true,
	StatusArchived: true,
	StatusDeleted:  true,
}

func tableRef(id string) (*string, *string) {
	table := "patients"
	return &table, &id
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if p.Status == "" {
		p.Status = StatusActive
	}
	if !validStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	if err := s.patients.Create(ctx, p); err != nil {
		return err
	}
	table, record := tableRef(p.ID)
	s.auditLog.Log(ctx, p.CreatedBy, audit.ActionCreate, table, record, nil, p)
	return nil
}

func (s *Service) GetPatient(ctx context.Context, id string) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.FirstName == "" || p.LastName == "" {
		return fmt.Errorf("first_name and last_name are required")
	}
	if p.Status != "" && !validStatuses[p.Status] {
		return fmt.Errorf("invalid status: %s", p.Status)
	}
	old, err := s.patients.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	if p.Status == "" {
		p.Status = old.Status
	}
	if err := s.patients.Update(ctx, p); err != nil {
		return err
	}
	table, record := tableRef(p.ID)
	s.auditLog.Log(ctx, p.UpdatedBy, audit.ActionEdit, table, record, old, p)
	return nil
}

func (s *Service) ArchivePatient(ctx context.Context, id string, actor *string) error {
	old, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.patients.SetStatus(ctx, id, StatusArchived, actor); err != nil {
		return err
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, audit.ActionEdit, table, record, old, map[string]string{"status": StatusArchived})
	return nil
}

// DeletePatient is a soft delete. The row stays for referential integrity
// with documents and appointments.
func (s *Service) DeletePatient(ctx context.Context, id string, actor *string) error {
	old, err := s.patients.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.patients.SetStatus(ctx, id, StatusDeleted, actor); err != nil {
		return err
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, audit.ActionDelete, table, record, old, nil)
	return nil
}

func (s *Service) ListPatients(ctx context.Context, status, search string, limit, offset int) ([]*Patient, int, error) {
	if status != "" && !validStatuses[status] {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}
	return s.patients.List(ctx, status, search, limit, offset)
}
