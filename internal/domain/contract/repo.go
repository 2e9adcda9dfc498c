package contract

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("contract not found")

// ListFilter narrows List; zero values mean no constraint. The end-date
// bounds split the stored active rows into running and expired so that the
// count and the page window see the same set. RunningOn also matches
// open-ended contracts.
type ListFilter struct {
	Status     string
	EndsBefore string
	RunningOn  string
}

type ContractRepository interface {
	Create(ctx context.Context, c *Contract) error
	GetByID(ctx context.Context, id string) (*Contract, error)
	Update(ctx context.Context, c *Contract) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Contract, int, error)
	ListActiveEndingBetween(ctx context.Context, from, to string) ([]*Contract, error)
	MarkReminderSent(ctx context.Context, id string) error
}
