package contract

import (
	"context"
	"sort"
	"testing"
	"time"
)

type mockContractRepo struct {
	contracts map[string]*Contract
}

func newMockContractRepo() *mockContractRepo {
	return &mockContractRepo{contracts: make(map[string]*Contract)}
}

func (m *mockContractRepo) Create(_ context.Context, c *Contract) error {
	if c.ID == "" {
		c.ID = "generated-" + c.ContractName
	}
	cp := *c
	m.contracts[c.ID] = &cp
	return nil
}

func (m *mockContractRepo) GetByID(_ context.Context, id string) (*Contract, error) {
	c, ok := m.contracts[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (m *mockContractRepo) Update(_ context.Context, c *Contract) error {
	if _, ok := m.contracts[c.ID]; !ok {
		return ErrNotFound
	}
	cp := *c
	m.contracts[c.ID] = &cp
	return nil
}

func (m *mockContractRepo) List(_ context.Context, f ListFilter, limit, offset int) ([]*Contract, int, error) {
	var items []*Contract
	for _, c := range m.contracts {
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		if f.EndsBefore != "" && (c.EndDate == nil || *c.EndDate >= f.EndsBefore) {
			continue
		}
		if f.RunningOn != "" && c.EndDate != nil && *c.EndDate < f.RunningOn {
			continue
		}
		cp := *c
		items = append(items, &cp)
	}
	sort.Slice(items, func(a, b int) bool { return items[a].ContractName < items[b].ContractName })
	total := len(items)
	if offset > len(items) {
		offset = len(items)
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items, total, nil
}

func (m *mockContractRepo) ListActiveEndingBetween(_ context.Context, from, to string) ([]*Contract, error) {
	var items []*Contract
	for _, c := range m.contracts {
		if c.Status == StatusActive && c.EndDate != nil && *c.EndDate >= from && *c.EndDate <= to {
			cp := *c
			items = append(items, &cp)
		}
	}
	return items, nil
}

func (m *mockContractRepo) MarkReminderSent(_ context.Context, id string) error {
	c, ok := m.contracts[id]
	if !ok {
		return ErrNotFound
	}
	c.ReminderSent = true
	return nil
}

type nopAudit struct{}

func (nopAudit) Log(context.Context, *string, string, *string, *string, any, any) {}

func newTestService(today string) (*Service, *mockContractRepo) {
	repo := newMockContractRepo()
	svc := NewService(repo, nopAudit{})
	fixed, _ := time.Parse("2006-01-02", today)
	svc.now = func() time.Time { return fixed }
	return svc, repo
}

func str(s string) *string { return &s }

func seed(t *testing.T, svc *Service, name string, end *string, reminderDays int) *Contract {
	t.Helper()
	c := &Contract{
		ContractName:             name,
		PartnerName:              "AOK",
		StartDate:                "2024-01-01",
		EndDate:                  end,
		ReminderDaysBeforeExpiry: reminderDays,
	}
	if err := svc.CreateContract(context.Background(), c); err != nil {
		t.Fatalf("seed %s: %v", name, err)
	}
	return c
}

func TestGetContract_DerivesExpiredOnRead(t *testing.T) {
	svc, repo := newTestService("2025-06-15")

	c := seed(t, svc, "Versorgungsvertrag", str("2025-06-01"), 30)

	got, err := svc.GetContract(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusExpired {
		t.Errorf("status = %s, want expired", got.Status)
	}
	if repo.contracts[c.ID].Status != StatusActive {
		t.Error("expired must never be written to the store")
	}
}

func TestGetContract_OpenEndedNeverExpires(t *testing.T) {
	svc, _ := newTestService("2025-06-15")

	c := seed(t, svc, "Rahmenvertrag", nil, 30)
	got, err := svc.GetContract(context.Background(), c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusActive {
		t.Errorf("open-ended contract = %s, want active", got.Status)
	}
}

func TestExtendingEndDateRevives(t *testing.T) {
	svc, _ := newTestService("2025-06-15")
	ctx := context.Background()

	c := seed(t, svc, "Versorgungsvertrag", str("2025-06-01"), 30)

	// Derived as expired now, but an end-date correction revives it with no
	// status repair step.
	c.EndDate = str("2026-06-01")
	if err := svc.UpdateContract(ctx, c); err != nil {
		t.Fatal(err)
	}
	got, err := svc.GetContract(ctx, c.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusActive {
		t.Errorf("status after extension = %s, want active", got.Status)
	}
}

func TestListContracts_SplitsActiveAndExpired(t *testing.T) {
	svc, _ := newTestService("2025-06-15")
	ctx := context.Background()

	seed(t, svc, "Alt", str("2025-01-01"), 30)  // expired
	seed(t, svc, "Neu", str("2026-01-01"), 30)  // active

	expired, total, err := svc.ListContracts(ctx, StatusExpired, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || expired[0].ContractName != "Alt" {
		t.Errorf("expired list wrong: %d %+v", total, expired)
	}

	active, total, err := svc.ListContracts(ctx, StatusActive, 20, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 1 || active[0].ContractName != "Neu" {
		t.Errorf("active list wrong: %d %+v", total, active)
	}
}

func TestListContracts_PaginatesDerivedStatus(t *testing.T) {
	svc, _ := newTestService("2025-06-15")
	ctx := context.Background()

	seed(t, svc, "Alt-1", str("2025-01-01"), 30)    // expired
	seed(t, svc, "Alt-2", str("2025-02-01"), 30)    // expired
	seed(t, svc, "Laufend", str("2026-01-01"), 30)  // active
	seed(t, svc, "Unbefristet", nil, 30)            // active, open-ended

	// A page window smaller than the expired count must still surface the
	// running contracts, open-ended ones included.
	active, total, err := svc.ListContracts(ctx, StatusActive, 2, 0)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(active) != 2 {
		t.Fatalf("active page: total=%d items=%d, want 2/2", total, len(active))
	}
	if active[0].ContractName != "Laufend" || active[1].ContractName != "Unbefristet" {
		t.Errorf("active page contents wrong: %+v", active)
	}

	expired, total, err := svc.ListContracts(ctx, StatusExpired, 1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(expired) != 1 || expired[0].ContractName != "Alt-2" {
		t.Errorf("expired page: total=%d items=%+v, want total 2 and Alt-2", total, expired)
	}
}

func TestExpiringSoon_HonorsPerContractWindow(t *testing.T) {
	svc, _ := newTestService("2025-06-15")

	seed(t, svc, "Knapp", str("2025-06-30"), 30)   // inside 30-day window
	seed(t, svc, "Weit", str("2025-08-30"), 30)    // outside 30-day window
	seed(t, svc, "Langfrist", str("2025-08-30"), 90) // inside its 90-day window

	items, err := svc.ExpiringSoon(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	names := map[string]bool{}
	for _, c := range items {
		names[c.ContractName] = true
	}
	if !names["Knapp"] || !names["Langfrist"] || names["Weit"] {
		t.Errorf("expiring set wrong: %v", names)
	}
}

func TestCreateContract_Validation(t *testing.T) {
	svc, _ := newTestService("2025-06-15")
	ctx := context.Background()

	cases := []*Contract{
		{PartnerName: "AOK", StartDate: "2024-01-01"},                             // missing name
		{ContractName: "V", PartnerName: "AOK", StartDate: "1.1.2024"},            // bad date
		{ContractName: "V", PartnerName: "AOK", StartDate: "2024-06-01", EndDate: str("2024-01-01")},
		{ContractName: "V", PartnerName: "AOK", StartDate: "2024-01-01", Status: StatusExpired},
	}
	for i, c := range cases {
		if err := svc.CreateContract(ctx, c); err == nil {
			t.Errorf("case %d: expected validation error", i)
		}
	}
}

func TestCancelContract(t *testing.T) {
	svc, repo := newTestService("2025-06-15")

	c := seed(t, svc, "Versorgungsvertrag", nil, 30)
	if err := svc.CancelContract(context.Background(), c.ID); err != nil {
		t.Fatal(err)
	}
	if repo.contracts[c.ID].Status != StatusCancelled {
		t.Errorf("status = %s, want cancelled", repo.contracts[c.ID].Status)
	}
}
