package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/formbridge/formbridge/internal/db"
	"github.com/formbridge/formbridge/internal/models"
	"github.com/formbridge/formbridge/internal/schema"
	"github.com/formbridge/formbridge/internal/util"
)

// Submissions is the append-only store for completed responses.
type Submissions struct {
	db *gorm.DB
}

// NewSubmissions constructs the submission store.
func NewSubmissions(conn *gorm.DB) *Submissions {
	return &Submissions{db: conn}
}

// Append inserts one immutable submission record and returns its ID. Write
// failures propagate so the caller can keep the answer set and retry.
func (s *Submissions) Append(ctx context.Context, formTitle string, sub *schema.Submission) (string, error) {
	if sub == nil {
		return "", fmt.Errorf("store: nil submission")
	}
	id := sub.ID
	if strings.TrimSpace(id) == "" {
		id = uuid.New().String()
	}

	responses, errEncode := json.Marshal(sub.Responses)
	if errEncode != nil {
		return "", fmt.Errorf("store: encode responses: %w", errEncode)
	}

	submittedAt := time.Now().UTC()
	if parsed, errParse := time.Parse(time.RFC3339, sub.SubmittedAt); errParse == nil {
		submittedAt = parsed.UTC()
	}

	record := models.FormSubmission{
		SubmissionID: id,
		FormID:       sub.FormID,
		ListName:     util.SubmissionsListName(formTitle),
		Title:        fmt.Sprintf("Response - %s - %s", sub.SubmittedBy, submittedAt.Format(time.RFC3339)),
		Responses:    responses,
		SubmittedBy:  sub.SubmittedBy,
		SubmittedAt:  submittedAt,
	}
	if errCreate := s.db.WithContext(ctx).Create(&record).Error; errCreate != nil {
		return "", fmt.Errorf("store: append submission: %w", errCreate)
	}
	return id, nil
}

// List returns a form's submissions, newest first. When questionID is set,
// only submissions whose stored answer for that question equals value are
// returned.
func (s *Submissions) List(ctx context.Context, formID, questionID, value string) ([]models.FormSubmission, error) {
	q := s.db.WithContext(ctx).
		Model(&models.FormSubmission{}).
		Where("form_id = ?", formID).
		Order("submitted_at DESC")
	if strings.TrimSpace(questionID) != "" {
		q = q.Where(db.JSONExtractTextExpr(s.db, "responses", questionID)+" = ?", value)
	}
	var records []models.FormSubmission
	if errFind := q.Find(&records).Error; errFind != nil {
		return nil, fmt.Errorf("store: list submissions: %w", errFind)
	}
	return records, nil
}
