package document

import (
	"fmt"
	"time"
)

// Document statuses. Archived and deleted are terminal for the version
// chain: no further edits or restores.
const (
	StatusDraft    = "draft"
	StatusActive   = "active"
	StatusArchived = "archived"
	StatusDeleted  = "deleted"
)

// Change log lines written into the version chain.
const (
	ChangeLogInitial = "Initiale Version"
	ChangeLogUpdated = "Dokument aktualisiert"
)

// ChangeLogRestored is the log line for a restore from an earlier version.
func ChangeLogRestored(version int) string {
	return fmt.Sprintf("Wiederhergestellt von Version %d", version)
}

// ErrDocumentTerminal rejects edits and restores on archived or deleted
// documents.
var ErrDocumentTerminal = fmt.Errorf("document is archived or deleted")

// VersionNotFoundError reports a restore target that never existed.
type VersionNotFoundError struct {
	DocumentID string
	Version    int
}

func (e *VersionNotFoundError) Error() string {
	return fmt.Sprintf("document %s has no version %d", e.DocumentID, e.Version)
}

// Document maps to the documents table.
type Document struct {
	ID             string     `db:"id" json:"id"`
	Title          string     `db:"title" json:"title"`
	Filename       *string    `db:"filename" json:"filename,omitempty"`
	FilePath       *string    `db:"file_path" json:"file_path,omitempty"`
	MimeType       *string    `db:"mime_type" json:"mime_type,omitempty"`
	Category       *string    `db:"category" json:"category,omitempty"`
	Notes          *string    `db:"notes" json:"notes,omitempty"`
	Metadata       *string    `db:"metadata" json:"metadata,omitempty"`
	Version        int        `db:"version" json:"version"`
	Status         string     `db:"status" json:"status"`
	ApprovalStatus *string    `db:"approval_status" json:"approval_status,omitempty"`
	OCRText        *string    `db:"ocr_text" json:"ocr_text,omitempty"`
	IsOCRProcessed bool       `db:"is_ocr_processed" json:"is_ocr_processed"`
	OCRConfidence  *float64   `db:"ocr_confidence" json:"ocr_confidence,omitempty"`
	EntityType     *string    `db:"entity_type" json:"entity_type,omitempty"`
	EntityID       *string    `db:"entity_id" json:"entity_id,omitempty"`
	PatientID      *string    `db:"patient_id" json:"patient_id,omitempty"`
	ArchivedAt     *time.Time `db:"archived_at" json:"archived_at,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time  `db:"updated_at" json:"updated_at"`
	CreatedBy      *string    `db:"created_by" json:"created_by,omitempty"`
}

// Terminal reports whether the version chain is closed.
func (d *Document) Terminal() bool {
	return d.Status == StatusArchived || d.Status == StatusDeleted
}

// Version is one immutable snapshot in a document's version chain.
type Version struct {
	ID            int64     `db:"id" json:"id"`
	DocumentID    string    `db:"document_id" json:"document_id"`
	VersionNumber int       `db:"version_number" json:"version_number"`
	Title         *string   `db:"title" json:"title,omitempty"`
	Notes         *string   `db:"notes" json:"notes,omitempty"`
	Metadata      *string   `db:"metadata" json:"metadata,omitempty"`
	ChangedBy     *string   `db:"changed_by" json:"changed_by,omitempty"`
	ChangedAt     time.Time `db:"changed_at" json:"changed_at"`
	ChangeLog     *string   `db:"change_log" json:"change_log,omitempty"`
}

// Approval is one entry in a document's approval history.
type Approval struct {
	ID         int64     `db:"id" json:"id"`
	DocumentID string    `db:"document_id" json:"document_id"`
	ApproverID string    `db:"approver_id" json:"approver_id"`
	Status     string    `db:"status" json:"status"`
	Comment    *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
