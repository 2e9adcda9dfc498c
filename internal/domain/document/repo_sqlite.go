package document

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/alexiosg111/pflegedms/internal/platform/db"
)

type documentRepoSQLite struct{ gw *db.Gateway }

func NewDocumentRepoSQLite(gw *db.Gateway) DocumentRepository {
	return &documentRepoSQLite{gw: gw}
}

const documentCols = `id, title, filename, file_path, mime_type, category, notes, metadata,
	version, status, approval_status, ocr_text, is_ocr_processed, ocr_confidence,
	entity_type, entity_id, patient_id, archived_at, created_at, updated_at, created_by`

func (r *documentRepoSQLite) scanDocument(row db.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.ID, &d.Title, &d.Filename, &d.FilePath, &d.MimeType, &d.Category, &d.Notes, &d.Metadata,
		&d.Version, &d.Status, &d.ApprovalStatus, &d.OCRText, &d.IsOCRProcessed, &d.OCRConfidence,
		&d.EntityType, &d.EntityID, &d.PatientID, &d.ArchivedAt, &d.CreatedAt, &d.UpdatedAt, &d.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return &d, err
}

func (r *documentRepoSQLite) Create(ctx context.Context, d *Document) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	_, err := r.gw.Execute(ctx, `
		INSERT INTO documents (id, title, filename, file_path, mime_type, category, notes, metadata,
			version, status, approval_status, ocr_text, is_ocr_processed,
			entity_type, entity_id, patient_id, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.Title, d.Filename, d.FilePath, d.MimeType, d.Category, d.Notes, d.Metadata,
		d.Version, d.Status, d.ApprovalStatus, d.OCRText, d.IsOCRProcessed,
		d.EntityType, d.EntityID, d.PatientID, d.CreatedBy)
	return err
}

func (r *documentRepoSQLite) GetByID(ctx context.Context, id string) (*Document, error) {
	return r.scanDocument(r.gw.QueryRow(ctx, `SELECT `+documentCols+` FROM documents WHERE id = ?`, id))
}

func (r *documentRepoSQLite) Update(ctx context.Context, d *Document) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE documents SET title=?, filename=?, file_path=?, mime_type=?, category=?,
			notes=?, metadata=?, version=?, status=?, approval_status=?,
			entity_type=?, entity_id=?, patient_id=?, updated_at=CURRENT_TIMESTAMP
		WHERE id = ?`,
		d.Title, d.Filename, d.FilePath, d.MimeType, d.Category,
		d.Notes, d.Metadata, d.Version, d.Status, d.ApprovalStatus,
		d.EntityType, d.EntityID, d.PatientID, d.ID)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *documentRepoSQLite) SetStatus(ctx context.Context, id, status string, archivedAt *time.Time) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE documents SET status=?, archived_at=?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`,
		status, archivedAt, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *documentRepoSQLite) SetApprovalStatus(ctx context.Context, id, status string) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE documents SET approval_status=?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`,
		status, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *documentRepoSQLite) SetOCRText(ctx context.Context, id, text string, confidence float64) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE documents SET ocr_text=?, is_ocr_processed=1, ocr_confidence=?, updated_at=CURRENT_TIMESTAMP WHERE id = ?`,
		text, confidence, id)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *documentRepoSQLite) List(ctx context.Context, f ListFilter, limit, offset int) ([]*Document, int, error) {
	where := ` WHERE status != 'deleted'`
	var args []any
	if f.Status != "" {
		where += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.Category != "" {
		where += ` AND category = ?`
		args = append(args, f.Category)
	}
	if f.PatientID != "" {
		where += ` AND patient_id = ?`
		args = append(args, f.PatientID)
	}
	if f.EntityType != "" {
		where += ` AND entity_type = ?`
		args = append(args, f.EntityType)
	}
	if f.EntityID != "" {
		where += ` AND entity_id = ?`
		args = append(args, f.EntityID)
	}

	var total int
	if err := r.gw.QueryRow(ctx, `SELECT COUNT(*) FROM documents`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	// LIMIT -1 means unbounded.
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.gw.Query(ctx, `SELECT `+documentCols+` FROM documents`+where+
		` ORDER BY updated_at DESC LIMIT ? OFFSET ?`, append(args, limit, offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Document
	for rows.Next() {
		d, err := r.scanDocument(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, d)
	}
	return items, total, rows.Err()
}

func (r *documentRepoSQLite) InsertVersion(ctx context.Context, v *Version) error {
	res, err := r.gw.Execute(ctx, `
		INSERT INTO document_versions (document_id, version_number, title, notes, metadata, changed_by, change_log)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.DocumentID, v.VersionNumber, v.Title, v.Notes, v.Metadata, v.ChangedBy, v.ChangeLog)
	if err != nil {
		return err
	}
	v.ID = res.LastInsertID
	return nil
}

func (r *documentRepoSQLite) scanVersion(row db.Row) (*Version, error) {
	var v Version
	err := row.Scan(&v.ID, &v.DocumentID, &v.VersionNumber, &v.Title, &v.Notes, &v.Metadata,
		&v.ChangedBy, &v.ChangedAt, &v.ChangeLog)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return &v, err
}

const versionCols = `id, document_id, version_number, title, notes, metadata, changed_by, changed_at, change_log`

func (r *documentRepoSQLite) GetVersion(ctx context.Context, documentID string, versionNumber int) (*Version, error) {
	v, err := r.scanVersion(r.gw.QueryRow(ctx,
		`SELECT `+versionCols+` FROM document_versions WHERE document_id = ? AND version_number = ?`,
		documentID, versionNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &VersionNotFoundError{DocumentID: documentID, Version: versionNumber}
	}
	return v, err
}

func (r *documentRepoSQLite) ListVersions(ctx context.Context, documentID string) ([]*Version, error) {
	rows, err := r.gw.Query(ctx,
		`SELECT `+versionCols+` FROM document_versions WHERE document_id = ? ORDER BY version_number`,
		documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var versions []*Version
	for rows.Next() {
		v, err := r.scanVersion(rows)
		if err != nil {
			return nil, err
		}
		versions = append(versions, v)
	}
	return versions, rows.Err()
}

func (r *documentRepoSQLite) InsertApproval(ctx context.Context, a *Approval) error {
	res, err := r.gw.Execute(ctx, `
		INSERT INTO document_approvals (document_id, approver_id, status, comment)
		VALUES (?, ?, ?, ?)`,
		a.DocumentID, a.ApproverID, a.Status, a.Comment)
	if err != nil {
		return err
	}
	a.ID = res.LastInsertID
	return nil
}

func (r *documentRepoSQLite) ListApprovals(ctx context.Context, documentID string) ([]*Approval, error) {
	rows, err := r.gw.Query(ctx, `
		SELECT id, document_id, approver_id, status, comment, created_at
		FROM document_approvals WHERE document_id = ? ORDER BY created_at DESC, id DESC`,
		documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var approvals []*Approval
	for rows.Next() {
		var a Approval
		if err := rows.Scan(&a.ID, &a.DocumentID, &a.ApproverID, &a.Status, &a.Comment, &a.CreatedAt); err != nil {
			return nil, err
		}
		approvals = append(approvals, &a)
	}
	return approvals, rows.Err()
}
