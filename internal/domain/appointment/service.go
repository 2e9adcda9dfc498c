package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/alexiosg111/pflegedms/internal/platform/audit"
)

type AuditLog interface {
	Log(ctx context.Context, userID *string, action string, tableName, recordID *string, oldValues, newValues any)
}

type Service struct {
	appointments AppointmentRepository
	auditLog     AuditLog
}

func NewService(appointments AppointmentRepository, auditLog AuditLog) *Service {
	return &Service{appointments: appointments, auditLog: auditLog}
}

var validStatuses = map[string]bool{
	StatusScheduled: true,
	StatusCompleted: true,
	StatusCancelled: true,
}

func tableRef(id string) (*string, *string) {
	table := "appointments"
	return &table, &id
}

func (s *Service) validate(a *Appointment) error {
	if a.Title == "" {
		return fmt.Errorf("title is required")
	}
	if a.AppointmentDate == "" {
		return fmt.Errorf("appointment_date is required")
	}
	if _, err := time.Parse("2006-01-02", a.AppointmentDate); err != nil {
		return fmt.Errorf("appointment_date must be YYYY-MM-DD: %w", err)
	}
	if a.AppointmentTime != nil {
		if _, err := time.Parse("15:04", *a.AppointmentTime); err != nil {
			return fmt.Errorf("appointment_time must be HH:MM: %w", err)
		}
	}
	if a.Status != "" && !validStatuses[a.Status] {
		return fmt.Errorf("invalid status: %s", a.Status)
	}
	return nil
}

func (s *Service) CreateAppointment(ctx context.Context, a *Appointment) error {
	if err := s.validate(a); err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = StatusScheduled
	}
	if err := s.appointments.Create(ctx, a); err != nil {
		return err
	}
	table, record := tableRef(a.ID)
	s.auditLog.Log(ctx, a.CreatedBy, audit.ActionCreate, table, record, nil, a)
	return nil
}

func (s *Service) GetAppointment(ctx context.Context, id string) (*Appointment, error) {
	return s.appointments.GetByID(ctx, id)
}

func (s *Service) UpdateAppointment(ctx context.Context, a *Appointment) error {
	if err := s.validate(a); err != nil {
		return err
	}
	old, err := s.appointments.GetByID(ctx, a.ID)
	if err != nil {
		return err
	}
	if a.Status == "" {
		a.Status = old.Status
	}
	if err := s.appointments.Update(ctx, a); err != nil {
		return err
	}
	table, record := tableRef(a.ID)
	s.auditLog.Log(ctx, a.UpdatedBy, audit.ActionEdit, table, record, old, a)
	return nil
}

func (s *Service) CancelAppointment(ctx context.Context, id string, actor *string) error {
	a, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	old := *a
	a.Status = StatusCancelled
	a.UpdatedBy = actor
	if err := s.appointments.Update(ctx, a); err != nil {
		return err
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, audit.ActionEdit, table, record, old, a)
	return nil
}

func (s *Service) DeleteAppointment(ctx context.Context, id string, actor *string) error {
	old, err := s.appointments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.appointments.Delete(ctx, id); err != nil {
		return err
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, audit.ActionDelete, table, record, old, nil)
	return nil
}

func (s *Service) ListByPatient(ctx context.Context, patientID string, limit, offset int) ([]*Appointment, int, error) {
	return s.appointments.ListByPatient(ctx, patientID, limit, offset)
}

func (s *Service) ListByDateRange(ctx context.Context, from, to string, limit, offset int) ([]*Appointment, int, error) {
	for _, d := range []string{from, to} {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return nil, 0, fmt.Errorf("date range bounds must be YYYY-MM-DD: %w", err)
		}
	}
	return s.appointments.ListByDateRange(ctx, from, to, limit, offset)
}
