package mailbox

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("mailbox item not found")

type ItemRepository interface {
	Create(ctx context.Context, item *Item) error
	GetByID(ctx context.Context, id string) (*Item, error)
	List(ctx context.Context, status string, limit, offset int) ([]*Item, error)
	SetStatus(ctx context.Context, id, status string, completedAt *time.Time) error
	AssignToPatient(ctx context.Context, id, patientID string) error
	AssignToModule(ctx context.Context, id, module string) error
	Count(ctx context.Context, status string) (int, error)
	CountByPriority(ctx context.Context) (map[string]int, error)
}
