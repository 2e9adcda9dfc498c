package patient

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("patient not found")

type PatientRepository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id string) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	SetStatus(ctx context.Context, id, status string, updatedBy *string) error
	List(ctx context.Context, status, search string, limit, offset int) ([]*Patient, int, error)
}
