package invoice

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("invoice not found")

// ListFilter narrows List; zero values mean no constraint. The due-date
// bounds carve the stored open rows into their derived halves so that the
// count and the page window see the same set.
type ListFilter struct {
	Status       string
	DueBefore    string
	DueOnOrAfter string
}

type InvoiceRepository interface {
	Create(ctx context.Context, i *Invoice) error
	GetByID(ctx context.Context, id string) (*Invoice, error)
	Update(ctx context.Context, i *Invoice) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Invoice, int, error)
	ListOpenDueBefore(ctx context.Context, date string) ([]*Invoice, error)
	MarkReminderSent(ctx context.Context, id string) error
}
