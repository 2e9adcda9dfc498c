package staff

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("staff member not found")

type StaffRepository interface {
	Create(ctx context.Context, s *Staff) error
	GetByID(ctx context.Context, id string) (*Staff, error)
	Update(ctx context.Context, s *Staff) error
	SetActive(ctx context.Context, id string, active bool, updatedBy *string) error
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Staff, int, error)
}
