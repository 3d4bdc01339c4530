package models

import (
	"time"

	"gorm.io/datatypes"
)

// FormStatus tracks the publication lifecycle of a definition.
type FormStatus string

// Form lifecycle states.
const (
	// FormStatusDraft marks a definition still being authored.
	FormStatusDraft FormStatus = "Draft"
	// FormStatusPublished marks a definition available to respondents.
	FormStatusPublished FormStatus = "Published"
)

// FormDefinition stores one authored form. The full document lives in
// SchemaJSON; the metadata columns mirror it for querying and win over the
// embedded copy when they disagree.
type FormDefinition struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	FormID      string         `gorm:"type:varchar(64);uniqueIndex;not null"` // Stable external form ID.
	Title       string         `gorm:"type:varchar(255);not null"`            // Display title.
	Description string         `gorm:"type:text"`                             // Optional description.
	Status      FormStatus     `gorm:"type:varchar(32);not null;index"`       // Draft or Published.
	Version     int            `gorm:"not null"`                              // Bumped on every save.
	SchemaJSON  datatypes.JSON `gorm:"not null"`                              // Full schema document.
	Author      string         `gorm:"type:varchar(255)"`                     // Last author.

	SubmissionsList string `gorm:"type:varchar(255)"` // Sanitized per-form submissions list name.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Creation timestamp.
	UpdatedAt time.Time `gorm:"not null;autoUpdateTime"` // Last update timestamp.
}

// FormSubmission stores one immutable response record. Rows are only ever
// inserted; there is no update or delete path.
type FormSubmission struct {
	ID uint64 `gorm:"primaryKey;autoIncrement"` // Primary key.

	SubmissionID string         `gorm:"type:varchar(64);uniqueIndex;not null"` // External submission ID.
	FormID       string         `gorm:"type:varchar(64);index;not null"`       // Owning form ID.
	ListName     string         `gorm:"type:varchar(255);index"`               // Per-form list name.
	Title        string         `gorm:"type:varchar(255)"`                     // Display label for the row.
	Responses    datatypes.JSON `gorm:"not null"`                              // Answer snapshot.
	SubmittedBy  string         `gorm:"type:varchar(255)"`                     // Submitter identity.
	SubmittedAt  time.Time      `gorm:"not null;index"`                        // Submission timestamp.

	CreatedAt time.Time `gorm:"not null;autoCreateTime"` // Row creation timestamp.
}
