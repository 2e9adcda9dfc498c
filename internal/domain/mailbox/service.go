package mailbox

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
	items    ItemRepository
	auditLog AuditLog
	now      func() time.Time
}

func NewService(items ItemRepository, auditLog AuditLog) *Service {
	return &Service{items: items, auditLog: auditLog, now: time.Now}
}

func tableRef(id string) (*string, *string) {
	table := "mailbox_items"
	return &table, &id
}

func validStatus(status string) bool {
	switch status {
	case StatusNew, StatusInProgress, StatusCompleted, StatusRejected:
		return true
	}
	return false
}

func validPriority(priority string) bool {
	switch priority {
	case PriorityLow, PriorityNormal, PriorityHigh:
		return true
	}
	return false
}

// CreateFromDocument files a new mailbox item for an ingested document.
func (s *Service) CreateFromDocument(ctx context.Context, item *Item, actor *string) error {
	if item.DocumentID == "" {
		return fmt.Errorf("document_id is required")
	}
	if item.Status == "" {
		item.Status = StatusNew
	}
	if item.Status != StatusNew {
		return fmt.Errorf("new mailbox items start in status %q", StatusNew)
	}
	if item.Priority == "" {
		item.Priority = PriorityNormal
	}
	if !validPriority(item.Priority) {
		return fmt.Errorf("invalid priority %q", item.Priority)
	}
	if item.ItemType == "" {
		item.ItemType = "document"
	}
	if err := s.items.Create(ctx, item); err != nil {
		return err
	}
	table, record := tableRef(item.ID)
	s.auditLog.Log(ctx, actor, audit.ActionCreate, table, record, nil, item)
	return nil
}

func (s *Service) GetItem(ctx context.Context, id string) (*Item, error) {
	return s.items.GetByID(ctx, id)
}

func (s *Service) ListItems(ctx context.Context, status string, limit, offset int) ([]*Item, error) {
	if status != "" && !validStatus(status) {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	return s.items.List(ctx, status, limit, offset)
}

// UpdateStatus moves an item through its lifecycle. Completed and
// rejected items never change state again.
func (s *Service) UpdateStatus(ctx context.Context, id, status string, actor *string) (*Item, error) {
	if !validStatus(status) {
		return nil, fmt.Errorf("invalid status %q", status)
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Terminal() {
		return nil, fmt.Errorf("mailbox item is %s and cannot change state", item.Status)
	}

	var completedAt *time.Time
	if status == StatusCompleted {
		t := s.now()
		completedAt = &t
	}
	if err := s.items.SetStatus(ctx, id, status, completedAt); err != nil {
		return nil, err
	}

	old := *item
	item.Status = status
	item.CompletedAt = completedAt
	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, audit.ActionEdit, table, record, &old, item)
	return item, nil
}

// Complete marks the item done and stamps completed_at.
func (s *Service) Complete(ctx context.Context, id string, actor *string) (*Item, error) {
	return s.UpdateStatus(ctx, id, StatusCompleted, actor)
}

// Reject discards the item without acting on its document.
func (s *Service) Reject(ctx context.Context, id string, actor *string) (*Item, error) {
	return s.UpdateStatus(ctx, id, StatusRejected, actor)
}

func (s *Service) AssignToPatient(ctx context.Context, id, patientID string, actor *string) error {
	if patientID == "" {
		return fmt.Errorf("patient_id is required")
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item.Terminal() {
		return fmt.Errorf("mailbox item is %s and cannot change state", item.Status)
	}
	if err := s.items.AssignToPatient(ctx, id, patientID); err != nil {
		return err
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, audit.ActionEdit, table, record, item, map[string]string{"assigned_to_patient_id": patientID})
	return nil
}

func (s *Service) AssignToModule(ctx context.Context, id, module string, actor *string) error {
	if module == "" {
		return fmt.Errorf("module is required")
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if item.Terminal() {
		return fmt.Errorf("mailbox item is %s and cannot change state", item.Status)
	}
	if err := s.items.AssignToModule(ctx, id, module); err != nil {
		return err
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, audit.ActionEdit, table, record, item, map[string]string{"assigned_to_module": module})
	return nil
}

func (s *Service) GetStats(ctx context.Context) (*Stats, error) {
	total, err := s.items.Count(ctx, "")
	if err != nil {
		return nil, err
	}
	newCount, err := s.items.Count(ctx, StatusNew)
	if err != nil {
		return nil, err
	}
	inProgress, err := s.items.Count(ctx, StatusInProgress)
	if err != nil {
		return nil, err
	}
	byPriority, err := s.items.CountByPriority(ctx)
	if err != nil {
		return nil, err
	}
	return &Stats{Total: total, New: newCount, InProgress: inProgress, ByPriority: byPriority}, nil
}
