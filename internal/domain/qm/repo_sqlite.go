package qm

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/alexiosg111/pflegedms/internal/platform/db"
)

type folderRepoSQLite struct{ gw *db.Gateway }

func NewFolderRepoSQLite(gw *db.Gateway) FolderRepository {
	return &folderRepoSQLite{gw: gw}
}

const folderCols = `id, parent_folder_id, name, description, icon, sort_order, status, created_at, updated_at`

func (r *folderRepoSQLite) scanFolder(row db.Row) (*Folder, error) {
	var f Folder
	err := row.Scan(&f.ID, &f.ParentFolderID, &f.Name, &f.Description, &f.Icon,
		&f.SortOrder, &f.Status, &f.CreatedAt, &f.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrFolderNotFound
	}
	return &f, err
}

func (r *folderRepoSQLite) Create(ctx context.Context, f *Folder) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}
	_, err := r.gw.Execute(ctx, `
		INSERT INTO qm_folders (id, parent_folder_id, name, description, icon, sort_order, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.ParentFolderID, f.Name, f.Description, f.Icon, f.SortOrder, f.Status)
	return err
}

func (r *folderRepoSQLite) GetByID(ctx context.Context, id string) (*Folder, error) {
	return r.scanFolder(r.gw.QueryRow(ctx, `SELECT `+folderCols+` FROM qm_folders WHERE id = ?`, id))
}

func (r *folderRepoSQLite) Update(ctx context.Context, f *Folder) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE qm_folders SET parent_folder_id=?, name=?, description=?, icon=?,
			sort_order=?, status=?, updated_at=CURRENT_TIMESTAMP
		WHERE id = ?`,
		f.ParentFolderID, f.Name, f.Description, f.Icon, f.SortOrder, f.Status, f.ID)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrFolderNotFound
	}
	return nil
}

func (r *folderRepoSQLite) ListChildren(ctx context.Context, parentID *string) ([]*Folder, error) {
	query := `SELECT ` + folderCols + ` FROM qm_folders WHERE status = 'active' AND `
	var rows *sql.Rows
	var err error
	if parentID == nil {
		rows, err = r.gw.Query(ctx, query+`parent_folder_id IS NULL ORDER BY sort_order, name`)
	} else {
		rows, err = r.gw.Query(ctx, query+`parent_folder_id = ? ORDER BY sort_order, name`, *parentID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectFolders(rows)
}

func (r *folderRepoSQLite) ListAll(ctx context.Context) ([]*Folder, error) {
	rows, err := r.gw.Query(ctx, `SELECT `+folderCols+` FROM qm_folders
		WHERE status = 'active' ORDER BY sort_order, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collectFolders(rows)
}

func (r *folderRepoSQLite) collectFolders(rows *sql.Rows) ([]*Folder, error) {
	var items []*Folder
	for rows.Next() {
		f, err := r.scanFolder(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, f)
	}
	return items, rows.Err()
}

type documentRepoSQLite struct{ gw *db.Gateway }

func NewDocumentRepoSQLite(gw *db.Gateway) DocumentRepository {
	return &documentRepoSQLite{gw: gw}
}

const qmDocCols = `row_id, document_id, folder_id, filename, file_path, file_size, mime_type,
	version_major, version_minor, is_current_version, status,
	approved_by, approved_at, created_at, updated_at, created_by`

func (r *documentRepoSQLite) scanDoc(row db.Row) (*Document, error) {
	var d Document
	err := row.Scan(&d.RowID, &d.DocumentID, &d.FolderID, &d.Filename, &d.FilePath, &d.FileSize, &d.MimeType,
		&d.Major, &d.Minor, &d.IsCurrent, &d.Status,
		&d.ApprovedBy, &d.ApprovedAt, &d.CreatedAt, &d.UpdatedAt, &d.CreatedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDocumentNotFound
	}
	return &d, err
}

func (r *documentRepoSQLite) Insert(ctx context.Context, d *Document) error {
	if d.RowID == "" {
		d.RowID = uuid.NewString()
	}
	_, err := r.gw.Execute(ctx, `
		INSERT INTO qm_documents (row_id, document_id, folder_id, filename, file_path, file_size,
			mime_type, version_major, version_minor, is_current_version, status, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.RowID, d.DocumentID, d.FolderID, d.Filename, d.FilePath, d.FileSize,
		d.MimeType, d.Major, d.Minor, d.IsCurrent, d.Status, d.CreatedBy)
	return err
}

func (r *documentRepoSQLite) GetByRowID(ctx context.Context, rowID string) (*Document, error) {
	return r.scanDoc(r.gw.QueryRow(ctx, `SELECT `+qmDocCols+` FROM qm_documents WHERE row_id = ?`, rowID))
}

func (r *documentRepoSQLite) GetCurrent(ctx context.Context, documentID string) (*Document, error) {
	return r.scanDoc(r.gw.QueryRow(ctx,
		`SELECT `+qmDocCols+` FROM qm_documents WHERE document_id = ? AND is_current_version = 1`,
		documentID))
}

func (r *documentRepoSQLite) DemoteCurrent(ctx context.Context, documentID string) error {
	_, err := r.gw.Execute(ctx, `
		UPDATE qm_documents SET is_current_version = 0, updated_at = CURRENT_TIMESTAMP
		WHERE document_id = ? AND is_current_version = 1`, documentID)
	return err
}

func (r *documentRepoSQLite) SetApproval(ctx context.Context, rowID, approverID string) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE qm_documents SET status = 'approved', approved_by = ?, approved_at = CURRENT_TIMESTAMP,
			updated_at = CURRENT_TIMESTAMP
		WHERE row_id = ?`, approverID, rowID)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepoSQLite) SetStatus(ctx context.Context, rowID, status string) error {
	res, err := r.gw.Execute(ctx, `
		UPDATE qm_documents SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE row_id = ?`,
		status, rowID)
	if err != nil {
		return err
	}
	if res.Changes == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepoSQLite) ListCurrentByFolder(ctx context.Context, folderID string) ([]*Document, error) {
	rows, err := r.gw.Query(ctx, `SELECT `+qmDocCols+` FROM qm_documents
		WHERE folder_id = ? AND is_current_version = 1 ORDER BY filename`, folderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *documentRepoSQLite) ListVersions(ctx context.Context, documentID string) ([]*Document, error) {
	rows, err := r.gw.Query(ctx, `SELECT `+qmDocCols+` FROM qm_documents
		WHERE document_id = ? ORDER BY version_major, version_minor`, documentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return r.collect(rows)
}

func (r *documentRepoSQLite) CountCurrent(ctx context.Context, documentID string) (int, error) {
	var count int
	err := r.gw.QueryRow(ctx,
		`SELECT COUNT(*) FROM qm_documents WHERE document_id = ? AND is_current_version = 1`,
		documentID).Scan(&count)
	return count, err
}

func (r *documentRepoSQLite) collect(rows *sql.Rows) ([]*Document, error) {
	var items []*Document
	for rows.Next() {
		d, err := r.scanDoc(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	return items, rows.Err()
}
