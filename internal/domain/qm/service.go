package qm

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/alexiosg111/pflegedms/internal/platform/audit"
)

type AuditLog interface {
	Log(ctx context.Context, userID *string, action string, tableName, recordID *string, oldValues, newValues any)
}

type TxRunner interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns the QM handbook: the folder tree and major.minor versioned
// documents. The demote-then-insert step runs in one transaction so the
// single-current invariant holds even if the process dies mid-operation.
type Service struct {
	folders  FolderRepository
	docs     DocumentRepository
	tx       TxRunner
	auditLog AuditLog
}

func NewService(folders FolderRepository, docs DocumentRepository, tx TxRunner, auditLog AuditLog) *Service {
	return &Service{folders: folders, docs: docs, tx: tx, auditLog: auditLog}
}

func folderRef(id string) (*string, *string) {
	table := "qm_folders"
	return &table, &id
}

func docRef(id string) (*string, *string) {
	table := "qm_documents"
	return &table, &id
}

// -- Folders --

func (s *Service) CreateFolder(ctx context.Context, f *Folder) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if f.ParentFolderID != nil {
		if _, err := s.folders.GetByID(ctx, *f.ParentFolderID); err != nil {
			return fmt.Errorf("parent folder: %w", err)
		}
	}
	if f.Status == "" {
		f.Status = "active"
	}
	if err := s.folders.Create(ctx, f); err != nil {
		return err
	}
	table, record := folderRef(f.ID)
	s.auditLog.Log(ctx, nil, audit.ActionCreate, table, record, nil, f)
	return nil
}

func (s *Service) GetFolder(ctx context.Context, id string) (*Folder, error) {
	return s.folders.GetByID(ctx, id)
}

func (s *Service) UpdateFolder(ctx context.Context, f *Folder) error {
	if f.Name == "" {
		return fmt.Errorf("name is required")
	}
	if f.ParentFolderID != nil {
		if *f.ParentFolderID == f.ID {
			return fmt.Errorf("folder cannot be its own parent")
		}
		if _, err := s.folders.GetByID(ctx, *f.ParentFolderID); err != nil {
			return fmt.Errorf("parent folder: %w", err)
		}
	}
	old, err := s.folders.GetByID(ctx, f.ID)
	if err != nil {
		return err
	}
	if f.Status == "" {
		f.Status = old.Status
	}
	if err := s.folders.Update(ctx, f); err != nil {
		return err
	}
	table, record := folderRef(f.ID)
	s.auditLog.Log(ctx, nil, audit.ActionEdit, table, record, old, f)
	return nil
}

func (s *Service) ListFolderChildren(ctx context.Context, parentID *string) ([]*Folder, error) {
	return s.folders.ListChildren(ctx, parentID)
}

// FolderNode is a folder with its resolved children.
type FolderNode struct {
	Folder   *Folder       `json:"folder"`
	Children []*FolderNode `json:"children"`
}

// FolderTree assembles the whole handbook tree in memory; QM handbooks are
// small enough that a single read beats recursive queries.
func (s *Service) FolderTree(ctx context.Context) ([]*FolderNode, error) {
	all, err := s.folders.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	nodes := make(map[string]*FolderNode, len(all))
	for _, f := range all {
		nodes[f.ID] = &FolderNode{Folder: f}
	}
	var roots []*FolderNode
	for _, f := range all {
		node := nodes[f.ID]
		if f.ParentFolderID != nil {
			if parent, ok := nodes[*f.ParentFolderID]; ok {
				parent.Children = append(parent.Children, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots, nil
}

// -- Documents --

// CreateDocument files a new QM document at version 1.0.
func (s *Service) CreateDocument(ctx context.Context, d *Document) error {
	if d.Filename == "" {
		return fmt.Errorf("filename is required")
	}
	if _, err := s.folders.GetByID(ctx, d.FolderID); err != nil {
		return fmt.Errorf("folder: %w", err)
	}
	if d.Status == "" {
		d.Status = StatusDraft
	}
	if d.DocumentID == "" {
		d.DocumentID = uuid.NewString()
	}
	d.Major, d.Minor = 1, 0
	d.IsCurrent = true

	if err := s.docs.Insert(ctx, d); err != nil {
		return err
	}
	table, record := docRef(d.RowID)
	s.auditLog.Log(ctx, d.CreatedBy, audit.ActionCreate, table, record, nil, d)
	return nil
}

// CreateNewVersion demotes the current head and files the replacement at
// minor+1 in one transaction.
func (s *Service) CreateNewVersion(ctx context.Context, documentID string, next *Document) (*Document, error) {
	current, err := s.docs.GetCurrent(ctx, documentID)
	if err != nil {
		return nil, err
	}

	next.RowID = ""
	next.DocumentID = documentID
	if next.FolderID == "" {
		next.FolderID = current.FolderID
	}
	if next.Filename == "" {
		next.Filename = current.Filename
	}
	next.Major = current.Major
	next.Minor = current.Minor + 1
	next.IsCurrent = true
	next.Status = StatusDraft
	next.ApprovedBy = nil
	next.ApprovedAt = nil

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.docs.DemoteCurrent(ctx, documentID); err != nil {
			return err
		}
		return s.docs.Insert(ctx, next)
	})
	if err != nil {
		return nil, err
	}

	table, record := docRef(next.RowID)
	s.auditLog.Log(ctx, next.CreatedBy, audit.ActionEdit, table, record, current, next)
	return next, nil
}

// ApproveDocument approves the version row itself; older versions keep
// their historical approval state.
func (s *Service) ApproveDocument(ctx context.Context, rowID, approverID string) error {
	if approverID == "" {
		return fmt.Errorf("approver_id is required")
	}
	d, err := s.docs.GetByRowID(ctx, rowID)
	if err != nil {
		return err
	}
	if d.Status == StatusApproved {
		return fmt.Errorf("version %s is already approved", d.VersionLabel())
	}
	if err := s.docs.SetApproval(ctx, rowID, approverID); err != nil {
		return err
	}
	table, record := docRef(rowID)
	s.auditLog.Log(ctx, &approverID, audit.ActionApprove, table, record, d, map[string]string{"status": StatusApproved})
	return nil
}

func (s *Service) GetCurrentVersion(ctx context.Context, documentID string) (*Document, error) {
	return s.docs.GetCurrent(ctx, documentID)
}

func (s *Service) ListFolderDocuments(ctx context.Context, folderID string) ([]*Document, error) {
	if _, err := s.folders.GetByID(ctx, folderID); err != nil {
		return nil, err
	}
	return s.docs.ListCurrentByFolder(ctx, folderID)
}

func (s *Service) VersionHistory(ctx context.Context, documentID string) ([]*Document, error) {
	versions, err := s.docs.ListVersions(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if len(versions) == 0 {
		return nil, ErrDocumentNotFound
	}
	return versions, nil
}
