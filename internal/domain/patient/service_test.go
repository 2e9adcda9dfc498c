package patient

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

type mockPatientRepo struct {
	patients map[string]*Patient
}

func newMockPatientRepo() *mockPatientRepo {
	return &mockPatientRepo{patients: make(map[string]*Patient)}
}

func (m *mockPatientRepo) Create(_ context.Context, p *Patient) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) GetByID(_ context.Context, id string) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *mockPatientRepo) Update(_ context.Context, p *Patient) error {
	if _, ok := m.patients[p.ID]; !ok {
		return ErrNotFound
	}
	cp := *p
	m.patients[p.ID] = &cp
	return nil
}

func (m *mockPatientRepo) SetStatus(_ context.Context, id, status string, _ *string) error {
	p, ok := m.patients[id]
	if !ok {
		return ErrNotFound
	}
	p.Status = status
	return nil
}

func (m *mockPatientRepo) List(_ context.Context, status, search string, _, _ int) ([]*Patient, int, error) {
	var items []*Patient
	for _, p := range m.patients {
		if status == "" && p.Status == StatusDeleted {
			continue
		}
		if status != "" && p.Status != status {
			continue
		}
		if search != "" && !strings.Contains(p.FirstName, search) && !strings.Contains(p.LastName, search) {
			continue
		}
		items = append(items, p)
	}
	return items, len(items), nil
}

type recordedAudit struct {
	actions []string
	tables  []string
}

func (r *recordedAudit) Log(_ context.Context, _ *string, action string, tableName, _ *string, _, _ any) {
	r.actions = append(r.actions, action)
	if tableName != nil {
		r.tables = append(r.tables, *tableName)
	}
}

func newTestService() (*Service, *mockPatientRepo, *recordedAudit) {
	repo := newMockPatientRepo()
	al := &recordedAudit{}
	return NewService(repo, al), repo, al
}

func TestCreatePatient(t *testing.T) {
	svc, repo, al := newTestService()

	p := &Patient{FirstName: "Anna", LastName: "Muster"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatalf("CreatePatient: %v", err)
	}
	if p.Status != StatusActive {
		t.Errorf("new patient status = %s, want active", p.Status)
	}
	if _, ok := repo.patients[p.ID]; !ok {
		t.Error("patient not persisted")
	}
	if len(al.actions) != 1 || al.actions[0] != "create" {
		t.Errorf("expected one create audit entry, got %v", al.actions)
	}
	if al.tables[0] != "patients" {
		t.Errorf("audit table = %s, want patients", al.tables[0])
	}
}

func TestCreatePatient_RequiresName(t *testing.T) {
	svc, _, al := newTestService()

	if err := svc.CreatePatient(context.Background(), &Patient{FirstName: "Anna"}); err == nil {
		t.Error("expected error for missing last name")
	}
	if len(al.actions) != 0 {
		t.Error("rejected create must not be audited")
	}
}

func TestUpdatePatient_AuditsOldAndNew(t *testing.T) {
	svc, _, al := newTestService()

	p := &Patient{FirstName: "Anna", LastName: "Muster"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatal(err)
	}

	p.LastName = "Beispiel"
	if err := svc.UpdatePatient(context.Background(), p); err != nil {
		t.Fatalf("UpdatePatient: %v", err)
	}
	if len(al.actions) != 2 || al.actions[1] != "edit" {
		t.Errorf("expected edit audit entry, got %v", al.actions)
	}
}

func TestUpdatePatient_NotFound(t *testing.T) {
	svc, _, _ := newTestService()

	err := svc.UpdatePatient(context.Background(), &Patient{ID: "missing", FirstName: "A", LastName: "B"})
	if err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestDeletePatient_IsSoft(t *testing.T) {
	svc, repo, al := newTestService()

	p := &Patient{FirstName: "Anna", LastName: "Muster"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeletePatient(context.Background(), p.ID, nil); err != nil {
		t.Fatalf("DeletePatient: %v", err)
	}

	// Row survives with deleted status.
	if repo.patients[p.ID].Status != StatusDeleted {
		t.Errorf("status = %s, want deleted", repo.patients[p.ID].Status)
	}
	if al.actions[len(al.actions)-1] != "delete" {
		t.Errorf("expected delete audit entry, got %v", al.actions)
	}

	items, _, err := svc.ListPatients(context.Background(), "", "", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	for _, it := range items {
		if it.ID == p.ID {
			t.Error("deleted patient still listed")
		}
	}
}

func TestArchivePatient(t *testing.T) {
	svc, repo, _ := newTestService()

	p := &Patient{FirstName: "Anna", LastName: "Muster"}
	if err := svc.CreatePatient(context.Background(), p); err != nil {
		t.Fatal(err)
	}
	if err := svc.ArchivePatient(context.Background(), p.ID, nil); err != nil {
		t.Fatalf("ArchivePatient: %v", err)
	}
	if repo.patients[p.ID].Status != StatusArchived {
		t.Errorf("status = %s, want archived", repo.patients[p.ID].Status)
	}
}

func TestListPatients_RejectsUnknownStatus(t *testing.T) {
	svc, _, _ := newTestService()

	if _, _, err := svc.ListPatients(context.Background(), "bogus", "", 20, 0); err == nil {
		t.Error("expected error for unknown status filter")
	}
}

func TestListPatients_NameSearch(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	for _, p := range []*Patient{
		{FirstName: "Annegret", LastName: "Schulze"},
		{FirstName: "Bernd", LastName: "Krause"},
	} {
		if err := svc.CreatePatient(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	items, total, err := svc.ListPatients(ctx, "", "Schulze", 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || len(items) != 1 || items[0].LastName != "Schulze" {
		t.Errorf("expected only Schulze, got %d items", len(items))
	}
}
