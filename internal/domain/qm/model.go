package qm

import (
	"fmt"
	"time"
)

// QM document statuses.
const (
	StatusDraft    = "draft"
	StatusApproved = "approved"
	StatusArchived = "archived"
)

// Folder is one node of the QM handbook tree.
type Folder struct {
	ID             string    `db:"id" json:"id"`
	ParentFolderID *string   `db:"parent_folder_id" json:"parent_folder_id,omitempty"`
	Name           string    `db:"name" json:"name"`
	Description    *string   `db:"description" json:"description,omitempty"`
	Icon           *string   `db:"icon" json:"icon,omitempty"`
	SortOrder      int       `db:"sort_order" json:"sort_order"`
	Status         string    `db:"status" json:"status"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Document is ONE version row of a QM document. All rows of a document
// share DocumentID; exactly one row per DocumentID has IsCurrent set.
type Document struct {
	RowID      string     `db:"row_id" json:"row_id"`
	DocumentID string     `db:"document_id" json:"document_id"`
	FolderID   string     `db:"folder_id" json:"folder_id"`
	Filename   string     `db:"filename" json:"filename"`
	FilePath   *string    `db:"file_path" json:"file_path,omitempty"`
	FileSize   *int64     `db:"file_size" json:"file_size,omitempty"`
	MimeType   *string    `db:"mime_type" json:"mime_type,omitempty"`
	Major      int        `db:"version_major" json:"version_major"`
	Minor      int        `db:"version_minor" json:"version_minor"`
	IsCurrent  bool       `db:"is_current_version" json:"is_current_version"`
	Status     string     `db:"status" json:"status"`
	ApprovedBy *string    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt *time.Time `db:"approved_at" json:"approved_at,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
	CreatedBy  *string    `db:"created_by" json:"created_by,omitempty"`
}

// VersionLabel renders "2.1" style labels for lists.
func (d *Document) VersionLabel() string {
	return fmt.Sprintf("%d.%d", d.Major, d.Minor)
}
