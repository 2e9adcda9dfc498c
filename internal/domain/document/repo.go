package document

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("document not found")

// ListFilter narrows List; zero values mean no constraint. Deleted
// documents are always excluded.
type ListFilter struct {
	Status     string
	Category   string
	PatientID  string
	EntityType string
	EntityID   string
}

type DocumentRepository interface {
	Create(ctx context.Context, d *Document) error
	GetByID(ctx context.Context, id string) (*Document, error)
	Update(ctx context.Context, d *Document) error
	SetStatus(ctx context.Context, id, status string, archivedAt *time.Time) error
	SetApprovalStatus(ctx context.Context, id, status string) error
	SetOCRText(ctx context.Context, id, text string, confidence float64) error
	List(ctx context.Context, f ListFilter, limit, offset int) ([]*Document, int, error)

	InsertVersion(ctx context.Context, v *Version) error
	GetVersion(ctx context.Context, documentID string, versionNumber int) (*Version, error)
	ListVersions(ctx context.Context, documentID string) ([]*Version, error)

	InsertApproval(ctx context.Context, a *Approval) error
	ListApprovals(ctx context.Context, documentID string) ([]*Approval, error)
}
