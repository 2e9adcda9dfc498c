package staff

import (
	"context"
	"testing"
)

type mockStaffRepo struct {
	members map[string]*Staff
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{members: make(map[string]*Staff)}
}

func (m *mockStaffRepo) Create(_ context.Context, s *Staff) error {
	if s.ID == "" {
		s.ID = "generated"
	}
	cp := *s
	m.members[s.ID] = &cp
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id string) (*Staff, error) {
	s, ok := m.members[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (m *mockStaffRepo) Update(_ context.Context, s *Staff) error {
	if _, ok := m.members[s.ID]; !ok {
		return ErrNotFound
	}
	cp := *s
	m.members[s.ID] = &cp
	return nil
}

func (m *mockStaffRepo) SetActive(_ context.Context, id string, active bool, _ *string) error {
	s, ok := m.members[id]
	if !ok {
		return ErrNotFound
	}
	s.IsActive = active
	return nil
}

func (m *mockStaffRepo) List(_ context.Context, activeOnly bool, _, _ int) ([]*Staff, int, error) {
	var items []*Staff
	for _, s := range m.members {
		if !activeOnly || s.IsActive {
			items = append(items, s)
		}
	}
	return items, len(items), nil
}

type nopAudit struct{ count int }

func (n *nopAudit) Log(context.Context, *string, string, *string, *string, any, any) { n.count++ }

func TestCreateStaff_ForcesActive(t *testing.T) {
	repo := newMockStaffRepo()
	al := &nopAudit{}
	svc := NewService(repo, al)

	m := &Staff{FirstName: "Erika", LastName: "Beispiel", IsActive: false}
	if err := svc.CreateStaff(context.Background(), m); err != nil {
		t.Fatalf("CreateStaff: %v", err)
	}
	if !m.IsActive {
		t.Error("new staff must start active")
	}
	if al.count != 1 {
		t.Errorf("expected one audit entry, got %d", al.count)
	}
}

func TestCreateStaff_RequiresName(t *testing.T) {
	svc := NewService(newMockStaffRepo(), &nopAudit{})
	if err := svc.CreateStaff(context.Background(), &Staff{LastName: "Beispiel"}); err == nil {
		t.Error("expected error for missing first name")
	}
}

func TestDeactivateThenActivate(t *testing.T) {
	repo := newMockStaffRepo()
	svc := NewService(repo, &nopAudit{})

	m := &Staff{FirstName: "Erika", LastName: "Beispiel"}
	if err := svc.CreateStaff(context.Background(), m); err != nil {
		t.Fatal(err)
	}

	if err := svc.DeactivateStaff(context.Background(), m.ID, nil); err != nil {
		t.Fatalf("DeactivateStaff: %v", err)
	}
	if repo.members[m.ID].IsActive {
		t.Error("staff still active after deactivation")
	}

	items, _, _ := svc.ListStaff(context.Background(), true, 20, 0)
	for _, it := range items {
		if it.ID == m.ID {
			t.Error("deactivated staff in active-only list")
		}
	}

	if err := svc.ActivateStaff(context.Background(), m.ID, nil); err != nil {
		t.Fatalf("ActivateStaff: %v", err)
	}
	if !repo.members[m.ID].IsActive {
		t.Error("staff not reactivated")
	}
}

func TestDeactivateStaff_NotFound(t *testing.T) {
	svc := NewService(newMockStaffRepo(), &nopAudit{})
	if err := svc.DeactivateStaff(context.Background(), "missing", nil); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}
