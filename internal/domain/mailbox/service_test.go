package mailbox

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

type mockItemRepo struct {
	items map[string]*Item
}

func newMockItemRepo() *mockItemRepo {
	return &mockItemRepo{items: make(map[string]*Item)}
}

func (m *mockItemRepo) Create(_ context.Context, item *Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}
	cp := *item
	m.items[item.ID] = &cp
	return nil
}

func (m *mockItemRepo) GetByID(_ context.Context, id string) (*Item, error) {
	item, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (m *mockItemRepo) List(_ context.Context, status string, _, _ int) ([]*Item, error) {
	var out []*Item
	for _, item := range m.items {
		if status == "" || item.Status == status {
			cp := *item
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (m *mockItemRepo) SetStatus(_ context.Context, id, status string, completedAt *time.Time) error {
	item, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	item.Status = status
	item.CompletedAt = completedAt
	return nil
}

func (m *mockItemRepo) AssignToPatient(_ context.Context, id, patientID string) error {
	item, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	item.AssignedToPatientID = &patientID
	return nil
}

func (m *mockItemRepo) AssignToModule(_ context.Context, id, module string) error {
	item, ok := m.items[id]
	if !ok {
		return ErrNotFound
	}
	item.AssignedToModule = &module
	return nil
}

func (m *mockItemRepo) Count(_ context.Context, status string) (int, error) {
	count := 0
	for _, item := range m.items {
		if status == "" || item.Status == status {
			count++
		}
	}
	return count, nil
}

func (m *mockItemRepo) CountByPriority(_ context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, item := range m.items {
		if item.Status == StatusNew || item.Status == StatusInProgress {
			counts[item.Priority]++
		}
	}
	return counts, nil
}

type nopAudit struct{}

func (nopAudit) Log(_ context.Context, _ *string, _ string, _, _ *string, _, _ any) {}

func newTestService() (*Service, *mockItemRepo) {
	repo := newMockItemRepo()
	svc := NewService(repo, nopAudit{})
	return svc, repo
}

func TestCreateFromDocument_Defaults(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item := &Item{DocumentID: "doc-1"}
	if err := svc.CreateFromDocument(ctx, item, nil); err != nil {
		t.Fatalf("CreateFromDocument: %v", err)
	}
	if item.Status != StatusNew {
		t.Errorf("expected status new, got %q", item.Status)
	}
	if item.Priority != PriorityNormal {
		t.Errorf("expected priority normal, got %q", item.Priority)
	}
	if item.ItemType != "document" {
		t.Errorf("expected item type document, got %q", item.ItemType)
	}

	if err := svc.CreateFromDocument(ctx, &Item{}, nil); err == nil {
		t.Error("expected error without document_id")
	}
	if err := svc.CreateFromDocument(ctx, &Item{DocumentID: "doc-2", Status: StatusCompleted}, nil); err == nil {
		t.Error("expected error for non-new initial status")
	}
	if err := svc.CreateFromDocument(ctx, &Item{DocumentID: "doc-3", Priority: "urgent"}, nil); err == nil {
		t.Error("expected error for unknown priority")
	}
}

func TestUpdateStatus_Lifecycle(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	item := &Item{DocumentID: "doc-1"}
	if err := svc.CreateFromDocument(ctx, item, nil); err != nil {
		t.Fatalf("CreateFromDocument: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, item.ID, StatusInProgress, nil)
	if err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if updated.Status != StatusInProgress {
		t.Errorf("expected in_progress, got %q", updated.Status)
	}
	if updated.CompletedAt != nil {
		t.Error("in_progress should not stamp completed_at")
	}

	done, err := svc.Complete(ctx, item.ID, nil)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if done.Status != StatusCompleted {
		t.Errorf("expected completed, got %q", done.Status)
	}
	if done.CompletedAt == nil {
		t.Error("completing should stamp completed_at")
	}

	stored, _ := repo.GetByID(ctx, item.ID)
	if stored.CompletedAt == nil {
		t.Error("completed_at should be persisted")
	}
}

func TestTerminalItemsAreFinal(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	completed := &Item{DocumentID: "doc-1"}
	rejected := &Item{DocumentID: "doc-2"}
	for _, item := range []*Item{completed, rejected} {
		if err := svc.CreateFromDocument(ctx, item, nil); err != nil {
			t.Fatalf("CreateFromDocument: %v", err)
		}
	}
	if _, err := svc.Complete(ctx, completed.ID, nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, err := svc.Reject(ctx, rejected.ID, nil); err != nil {
		t.Fatalf("Reject: %v", err)
	}

	for _, item := range []*Item{completed, rejected} {
		if _, err := svc.UpdateStatus(ctx, item.ID, StatusInProgress, nil); err == nil {
			t.Errorf("expected terminal item %s to refuse status change", item.ID)
		}
		if err := svc.AssignToPatient(ctx, item.ID, "patient-1", nil); err == nil {
			t.Errorf("expected terminal item %s to refuse patient assignment", item.ID)
		}
		if err := svc.AssignToModule(ctx, item.ID, "invoices", nil); err == nil {
			t.Errorf("expected terminal item %s to refuse module assignment", item.ID)
		}
	}
}

func TestAssignments(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	item := &Item{DocumentID: "doc-1"}
	if err := svc.CreateFromDocument(ctx, item, nil); err != nil {
		t.Fatalf("CreateFromDocument: %v", err)
	}

	if err := svc.AssignToPatient(ctx, item.ID, "patient-9", nil); err != nil {
		t.Fatalf("AssignToPatient: %v", err)
	}
	if err := svc.AssignToModule(ctx, item.ID, "contracts", nil); err != nil {
		t.Fatalf("AssignToModule: %v", err)
	}

	stored, _ := repo.GetByID(ctx, item.ID)
	if stored.AssignedToPatientID == nil || *stored.AssignedToPatientID != "patient-9" {
		t.Error("patient assignment not persisted")
	}
	if stored.AssignedToModule == nil || *stored.AssignedToModule != "contracts" {
		t.Error("module assignment not persisted")
	}

	if err := svc.AssignToPatient(ctx, item.ID, "", nil); err == nil {
		t.Error("expected error for empty patient id")
	}
	if err := svc.AssignToPatient(ctx, "missing", "patient-1", nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestGetStats(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	high := &Item{DocumentID: "doc-1", Priority: PriorityHigh}
	normal := &Item{DocumentID: "doc-2"}
	done := &Item{DocumentID: "doc-3"}
	for _, item := range []*Item{high, normal, done} {
		if err := svc.CreateFromDocument(ctx, item, nil); err != nil {
			t.Fatalf("CreateFromDocument: %v", err)
		}
	}
	if _, err := svc.UpdateStatus(ctx, normal.ID, StatusInProgress, nil); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	if _, err := svc.Complete(ctx, done.ID, nil); err != nil {
		t.Fatalf("Complete: %v", err)
	}

	stats, err := svc.GetStats(ctx)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.Total != 3 {
		t.Errorf("expected total 3, got %d", stats.Total)
	}
	if stats.New != 1 {
		t.Errorf("expected 1 new, got %d", stats.New)
	}
	if stats.InProgress != 1 {
		t.Errorf("expected 1 in_progress, got %d", stats.InProgress)
	}
	if stats.ByPriority[PriorityHigh] != 1 || stats.ByPriority[PriorityNormal] != 1 {
		t.Errorf("unexpected priority counts %v", stats.ByPriority)
	}
}

func TestListItems_RejectsUnknownStatus(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.ListItems(context.Background(), "pending", 20, 0)
	if err == nil || !strings.Contains(err.Error(), "invalid status") {
		t.Fatalf("expected invalid status error, got %v", err)
	}
}
