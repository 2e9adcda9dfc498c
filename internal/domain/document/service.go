package document

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alexiosg111/pflegedms/internal/platform/audit"
)

type AuditLog interface {
	Log(ctx context.Context, userID *string, action string, tableName, recordID *string, oldValues, newValues any)
}

// TxRunner runs fn atomically. The Statement Gateway satisfies it; tests
// substitute a pass-through.
type TxRunner interface {
	Transaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// Service owns the document version chain. Version numbers are assigned
// here, never by callers: they start at 1 and only ever increase, including
// on restore.
type Service struct {
	docs     DocumentRepository
	tx       TxRunner
	auditLog AuditLog
	now      func() time.Time
}

func NewService(docs DocumentRepository, tx TxRunner, auditLog AuditLog) *Service {
	return &Service{docs: docs, tx: tx, auditLog: auditLog, now: time.Now}
}

var validStatuses = map[string]bool{
	StatusDraft:    true,
	StatusActive:   true,
	StatusArchived: true,
	StatusDeleted:  true,
}

func tableRef(id string) (*string, *string) {
	table := "documents"
	return &table, &id
}

// CreateDocument stores the document and its version 1 snapshot in one
// transaction.
func (s *Service) CreateDocument(ctx context.Context, d *Document) error {
	if d.Title == "" {
		return fmt.Errorf("title is required")
	}
	if d.Status == "" {
		d.Status = StatusDraft
	}
	if !validStatuses[d.Status] || d.Terminal() {
		return fmt.Errorf("invalid initial status: %s", d.Status)
	}
	if d.Category == nil {
		cat := Classify(deref(d.Filename), deref(d.MimeType))
		d.Category = &cat
	}
	d.Version = 1

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.docs.Create(ctx, d); err != nil {
			return err
		}
		return s.docs.InsertVersion(ctx, s.snapshot(d, ChangeLogInitial, d.CreatedBy))
	})
	if err != nil {
		return err
	}

	table, record := tableRef(d.ID)
	s.auditLog.Log(ctx, d.CreatedBy, audit.ActionCreate, table, record, nil, d)
	return nil
}

func (s *Service) GetDocument(ctx context.Context, id string) (*Document, error) {
	return s.docs.GetByID(ctx, id)
}

func (s *Service) ListDocuments(ctx context.Context, f ListFilter, limit, offset int) ([]*Document, int, error) {
	if f.Status != "" && !validStatuses[f.Status] {
		return nil, 0, fmt.Errorf("invalid status: %s", f.Status)
	}
	return s.docs.List(ctx, f, limit, offset)
}

// UpdateDocument advances the version chain by one. changeLog defaults to
// the standard update line when empty. actor is recorded as the author of
// the new version.
func (s *Service) UpdateDocument(ctx context.Context, d *Document, changeLog string, actor *string) error {
	if d.Title == "" {
		return fmt.Errorf("title is required")
	}
	old, err := s.docs.GetByID(ctx, d.ID)
	if err != nil {
		return err
	}
	if old.Terminal() {
		return ErrDocumentTerminal
	}
	if changeLog == "" {
		changeLog = ChangeLogUpdated
	}

	d.Version = old.Version + 1
	d.Status = old.Status
	d.ApprovalStatus = old.ApprovalStatus

	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.docs.Update(ctx, d); err != nil {
			return err
		}
		return s.docs.InsertVersion(ctx, s.snapshot(d, changeLog, actor))
	})
	if err != nil {
		return err
	}

	table, record := tableRef(d.ID)
	s.auditLog.Log(ctx, actor, audit.ActionEdit, table, record, old, d)
	return nil
}

// RestoreVersion copies the content of an earlier snapshot into a NEW head
// version. The chain stays append-only: restoring never rewinds the version
// counter.
func (s *Service) RestoreVersion(ctx context.Context, id string, versionNumber int, actor *string) (*Document, error) {
	d, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Terminal() {
		return nil, ErrDocumentTerminal
	}

	snap, err := s.docs.GetVersion(ctx, id, versionNumber)
	if err != nil {
		return nil, err
	}

	old := *d
	if snap.Title != nil {
		d.Title = *snap.Title
	}
	d.Notes = snap.Notes
	d.Metadata = snap.Metadata
	d.Version = old.Version + 1

	changeLog := ChangeLogRestored(versionNumber)
	err = s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.docs.Update(ctx, d); err != nil {
			return err
		}
		return s.docs.InsertVersion(ctx, s.snapshot(d, changeLog, actor))
	})
	if err != nil {
		return nil, err
	}

	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, audit.ActionEdit, table, record, old, d)
	return d, nil
}

func (s *Service) ListVersions(ctx context.Context, id string) ([]*Version, error) {
	if _, err := s.docs.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return s.docs.ListVersions(ctx, id)
}

// ChangeStatus moves the document through its lifecycle. Archiving stamps
// archived_at; leaving the archived state clears it.
func (s *Service) ChangeStatus(ctx context.Context, id, status string, actor *string) error {
	if !validStatuses[status] {
		return fmt.Errorf("invalid status: %s", status)
	}
	old, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var archivedAt *time.Time
	if status == StatusArchived {
		now := s.now()
		archivedAt = &now
	}
	if err := s.docs.SetStatus(ctx, id, status, archivedAt); err != nil {
		return err
	}

	action := audit.ActionEdit
	if status == StatusDeleted {
		action = audit.ActionDelete
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, action, table, record, old, map[string]string{"status": status})
	return nil
}

// AddApproval appends an approval record and mirrors the outcome onto the
// document's approval_status.
func (s *Service) AddApproval(ctx context.Context, a *Approval, actor *string) error {
	if a.ApproverID == "" {
		return fmt.Errorf("approver_id is required")
	}
	if a.Status != "approved" && a.Status != "rejected" {
		return fmt.Errorf("approval status must be approved or rejected, got %s", a.Status)
	}
	if _, err := s.docs.GetByID(ctx, a.DocumentID); err != nil {
		return err
	}

	err := s.tx.Transaction(ctx, func(ctx context.Context) error {
		if err := s.docs.InsertApproval(ctx, a); err != nil {
			return err
		}
		return s.docs.SetApprovalStatus(ctx, a.DocumentID, a.Status)
	})
	if err != nil {
		return err
	}

	action := audit.ActionApprove
	if a.Status == "rejected" {
		action = audit.ActionReject
	}
	table, record := tableRef(a.DocumentID)
	s.auditLog.Log(ctx, actor, action, table, record, nil, a)
	return nil
}

func (s *Service) ListApprovals(ctx context.Context, documentID string) ([]*Approval, error) {
	return s.docs.ListApprovals(ctx, documentID)
}

// AttachOCRText stores extracted text with the extractor's 0-100 confidence
// score and marks the document processed. It does not advance the version
// chain: OCR output is derived data, not an edit.
func (s *Service) AttachOCRText(ctx context.Context, id, text string, confidence float64, actor *string) error {
	if confidence < 0 || confidence > 100 {
		return fmt.Errorf("confidence must be between 0 and 100, got %g", confidence)
	}
	d, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.docs.SetOCRText(ctx, id, text, confidence); err != nil {
		return err
	}
	// Labeled fields in the scan fill metadata only when none was captured
	// at upload; hand-entered metadata wins over OCR guesses.
	if d.Metadata == nil {
		if extracted := ExtractMetadata(text); len(extracted) > 0 {
			raw, err := json.Marshal(extracted)
			if err == nil {
				meta := string(raw)
				d.Metadata = &meta
				if err := s.docs.Update(ctx, d); err != nil {
					return err
				}
			}
		}
	}
	table, record := tableRef(id)
	s.auditLog.Log(ctx, actor, audit.ActionEdit, table, record, nil,
		map[string]any{"is_ocr_processed": true, "ocr_confidence": confidence})
	return nil
}

func (s *Service) snapshot(d *Document, changeLog string, actor *string) *Version {
	title := d.Title
	return &Version{
		DocumentID:    d.ID,
		VersionNumber: d.Version,
		Title:         &title,
		Notes:         d.Notes,
		Metadata:      d.Metadata,
		ChangedBy:     actor,
		ChangeLog:     &changeLog,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
