package contract

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
	contracts ContractRepository
	auditLog  AuditLog
	now       func() time.Time
}

func NewService(contracts ContractRepository, auditLog AuditLog) *Service {
	return &Service{contracts: contracts, auditLog: auditLog, now: time.Now}
}

var storedStatuses = map[string]bool{
	StatusActive:    true,
	StatusCancelled: true,
}

func tableRef(id string) (*string, *string) {
	table := "contracts"
	return &table, &id
}

func (s *Service) today() string {
	return s.now().Format("2006-01-02")
}

func (s *Service) validate(c *Contract) error {
	if c.ContractName == "" || c.PartnerName == "" {
		return fmt.Errorf("contract_name and partner_name are required")
	}
	if _, err := time.Parse("2006-01-02", c.StartDate); err != nil {
		return fmt.Errorf("start_date must be YYYY-MM-DD: %w", err)
	}
	if c.EndDate != nil {
		if _, err := time.Parse("2006-01-02", *c.EndDate); err != nil {
			return fmt.Errorf("end_date must be YYYY-MM-DD: %w", err)
		}
		if *c.EndDate < c.StartDate {
			return fmt.Errorf("end_date precedes start_date")
		}
	}
	// Expired is derived, never stored.
	if c.Status != "" && !storedStatuses[c.Status] {
		return fmt.Errorf("invalid stored status: %s", c.Status)
	}
	return nil
}

func (s *Service) CreateContract(ctx context.Context, c *Contract) error {
	if c.Status == "" {
		c.Status = StatusActive
	}
	if c.ReminderDaysBeforeExpiry == 0 {
		c.ReminderDaysBeforeExpiry = 30
	}
	if err := s.validate(c); err != nil {
		return err
	}
	if err := s.contracts.Create(ctx, c); err != nil {
		return err
	}
	table, record := tableRef(c.ID)
	s.auditLog.Log(ctx, nil, audit.ActionCreate, table, record, nil, c)
	return nil
}

func (s *Service) GetContract(ctx context.Context, id string) (*Contract, error) {
	c, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.Status = c.EffectiveStatus(s.today())
	return c, nil
}

func (s *Service) UpdateContract(ctx context.Context, c *Contract) error {
	if err := s.validate(c); err != nil {
		return err
	}
	old, err := s.contracts.GetByID(ctx, c.ID)
	if err != nil {
		return err
	}
	if c.Status == "" {
		c.Status = old.Status
	}
	if err := s.contracts.Update(ctx, c); err != nil {
		return err
	}
	table, record := tableRef(c.ID)
	s.auditLog.Log(ctx, nil, audit.ActionEdit, table, record, old, c)
	return nil
}

func (s *Service) CancelContract(ctx context.Context, id string) error {
	c, err := s.contracts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	old := *c
	c.Status = StatusCancelled
	if err := s.contracts.Update(ctx, c); err != nil {
		return err
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, nil, audit.ActionEdit, table, record, old, c)
	return nil
}

// ListContracts filters on the DERIVED status: expired selects active
// contracts past their end date, active excludes them.
func (s *Service) ListContracts(ctx context.Context, status string, limit, offset int) ([]*Contract, int, error) {
	if status != "" && !storedStatuses[status] && status != StatusExpired {
		return nil, 0, fmt.Errorf("invalid status: %s", status)
	}

	// The derived split happens in the store so LIMIT/OFFSET and the
	// total count apply to the effective set, not the stored one.
	today := s.today()
	f := ListFilter{Status: status}
	switch status {
	case StatusExpired:
		f = ListFilter{Status: StatusActive, EndsBefore: today}
	case StatusActive:
		f = ListFilter{Status: StatusActive, RunningOn: today}
	}
	items, total, err := s.contracts.List(ctx, f, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	for _, c := range items {
		c.Status = c.EffectiveStatus(today)
	}
	return items, total, nil
}

// ExpiringSoon lists active contracts whose end date falls within each
// contract's own reminder window.
func (s *Service) ExpiringSoon(ctx context.Context) ([]*Contract, error) {
	today := s.today()
	// Widest window; each contract is then checked against its own setting.
	horizon := s.now().AddDate(0, 0, 365).Format("2006-01-02")

	candidates, err := s.contracts.ListActiveEndingBetween(ctx, today, horizon)
	if err != nil {
		return nil, err
	}

	var result []*Contract
	for _, c := range candidates {
		cutoff := s.now().AddDate(0, 0, c.ReminderDaysBeforeExpiry).Format("2006-01-02")
		if *c.EndDate <= cutoff {
			result = append(result, c)
		}
	}
	return result, nil
}

func (s *Service) MarkReminderSent(ctx context.Context, id string) error {
	return s.contracts.MarkReminderSent(ctx, id)
}
