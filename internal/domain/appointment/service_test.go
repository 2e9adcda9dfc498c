package appointment

import (
	"context"
	"testing"
)

type mockAppointmentRepo struct {
	items map[string]*Appointment
}

func newMockAppointmentRepo() *mockAppointmentRepo {
	return &mockAppointmentRepo{items: make(map[string]*Appointment)}
}

func (m *mockAppointmentRepo) Create(_ context.Context, a *Appointment) error {
	if a.ID == "" {
		a.ID = "generated"
	}
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) GetByID(_ context.Context, id string) (*Appointment, error) {
	a, ok := m.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (m *mockAppointmentRepo) Update(_ context.Context, a *Appointment) error {
	if _, ok := m.items[a.ID]; !ok {
		return ErrNotFound
	}
	cp := *a
	m.items[a.ID] = &cp
	return nil
}

func (m *mockAppointmentRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.items[id]; !ok {
		return ErrNotFound
	}
	delete(m.items, id)
	return nil
}

func (m *mockAppointmentRepo) ListByPatient(_ context.Context, patientID string, _, _ int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.items {
		if a.PatientID != nil && *a.PatientID == patientID {
			items = append(items, a)
		}
	}
	return items, len(items), nil
}

func (m *mockAppointmentRepo) ListByDateRange(_ context.Context, from, to string, _, _ int) ([]*Appointment, int, error) {
	var items []*Appointment
	for _, a := range m.items {
		if a.AppointmentDate >= from && a.AppointmentDate <= to {
			items = append(items, a)
		}
	}
	return items, len(items), nil
}

type nopAudit struct{ count int }

func (n *nopAudit) Log(context.Context, *string, string, *string, *string, any, any) { n.count++ }

func TestCreateAppointment(t *testing.T) {
	repo := newMockAppointmentRepo()
	al := &nopAudit{}
	svc := NewService(repo, al)

	a := &Appointment{Title: "Hausbesuch", AppointmentDate: "2025-09-01"}
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatalf("CreateAppointment: %v", err)
	}
	if a.Status != StatusScheduled {
		t.Errorf("status = %s, want scheduled", a.Status)
	}
	if al.count != 1 {
		t.Errorf("expected one audit entry, got %d", al.count)
	}
}

func TestCreateAppointment_Validation(t *testing.T) {
	svc := NewService(newMockAppointmentRepo(), &nopAudit{})
	ctx := context.Background()

	badTime := "9 Uhr"
	cases := []*Appointment{
		{AppointmentDate: "2025-09-01"},                                            // missing title
		{Title: "Hausbesuch"},                                                      // missing date
		{Title: "Hausbesuch", AppointmentDate: "01.09.2025"},                       // wrong date format
		{Title: "Hausbesuch", AppointmentDate: "2025-09-01", AppointmentTime: &badTime},
		{Title: "Hausbesuch", AppointmentDate: "2025-09-01", Status: "pending"},
	}
	for i, a := range cases {
		if err := svc.CreateAppointment(ctx, a); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCancelAppointment(t *testing.T) {
	repo := newMockAppointmentRepo()
	svc := NewService(repo, &nopAudit{})

	a := &Appointment{Title: "Hausbesuch", AppointmentDate: "2025-09-01"}
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if err := svc.CancelAppointment(context.Background(), a.ID, nil); err != nil {
		t.Fatalf("CancelAppointment: %v", err)
	}
	if repo.items[a.ID].Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", repo.items[a.ID].Status)
	}
}

func TestListByDateRange_ValidatesBounds(t *testing.T) {
	svc := NewService(newMockAppointmentRepo(), &nopAudit{})

	if _, _, err := svc.ListByDateRange(context.Background(), "2025-09-01", "next week", 20, 0); err == nil {
		t.Error("expected error for malformed range bound")
	}
}

func TestDeleteAppointment(t *testing.T) {
	repo := newMockAppointmentRepo()
	al := &nopAudit{}
	svc := NewService(repo, al)

	a := &Appointment{Title: "Hausbesuch", AppointmentDate: "2025-09-01"}
	if err := svc.CreateAppointment(context.Background(), a); err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteAppointment(context.Background(), a.ID, nil); err != nil {
		t.Fatalf("DeleteAppointment: %v", err)
	}
	if _, ok := repo.items[a.ID]; ok {
		t.Error("appointment not removed")
	}
	if al.count != 2 {
		t.Errorf("expected create+delete audit entries, got %d", al.count)
	}
}
