package qm

import (
	"context"
	"errors"
)

var (
	ErrFolderNotFound   = errors.New("qm folder not found")
	ErrDocumentNotFound = errors.New("qm document not found")
)

type FolderRepository interface {
	Create(ctx context.Context, f *Folder) error
	GetByID(ctx context.Context, id string) (*Folder, error)
	Update(ctx context.Context, f *Folder) error
	ListChildren(ctx context.Context, parentID *string) ([]*Folder, error)
	ListAll(ctx context.Context) ([]*Folder, error)
}

type DocumentRepository interface {
	Insert(ctx context.Context, d *Document) error
	GetByRowID(ctx context.Context, rowID string) (*Document, error)
	GetCurrent(ctx context.Context, documentID string) (*Document, error)
	DemoteCurrent(ctx context.Context, documentID string) error
	SetApproval(ctx context.Context, rowID, approverID string) error
	SetStatus(ctx context.Context, rowID, status string) error
	ListCurrentByFolder(ctx context.Context, folderID string) ([]*Document, error)
	ListVersions(ctx context.Context, documentID string) ([]*Document, error)
	CountCurrent(ctx context.Context, documentID string) (int, error)
}
