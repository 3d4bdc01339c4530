// Package store persists form definitions and submissions through GORM and
// exposes them to the engine behind small, explicit interfaces.
package store

import (
	"context"
	"encoding/json"
	"errors"
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

// ErrNotFound is returned when a form ID resolves to no stored definition.
var ErrNotFound = errors.New("store: form not found")

// Definitions is the upsert-by-ID store for authored form documents.
type Definitions struct {
	db    *gorm.DB
	cache *Cache
}

// NewDefinitions constructs the definition store. cache may be nil.
func NewDefinitions(conn *gorm.DB, cache *Cache) *Definitions {
	return &Definitions{db: conn, cache: cache}
}

// GetByID loads one form document. The metadata columns win over the embedded
// copy so the document can never drift from what list views report.
func (s *Definitions) GetByID(ctx context.Context, formID string) (*schema.Form, error) {
	if payload, ok := s.cache.Get(ctx, formID); ok {
		var form schema.Form
		if errDecode := json.Unmarshal(payload, &form); errDecode == nil {
			return &form, nil
		}
		s.cache.Delete(ctx, formID)
	}

	var record models.FormDefinition
	errFind := s.db.WithContext(ctx).Where("form_id = ?", formID).First(&record).Error
	if errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: load form %s: %w", formID, errFind)
	}

	form, errDecode := decodeDefinition(&record)
	if errDecode != nil {
		return nil, errDecode
	}
	if payload, errEncode := json.Marshal(form); errEncode == nil {
		s.cache.Set(ctx, formID, payload)
	}
	return form, nil
}

// Save upserts a form document keyed by its form ID. The stored version is
// bumped server-side on every save (1 for a new form), and the whole document
// is replaced; there is no partial patch path.
func (s *Definitions) Save(ctx context.Context, form *schema.Form) (string, error) {
	if form == nil {
		return "", fmt.Errorf("store: nil form")
	}
	if strings.TrimSpace(form.ID) == "" {
		form.ID = uuid.New().String()
	}

	now := time.Now().UTC()
	errTx := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.FormDefinition
		errFind := tx.Where("form_id = ?", form.ID).First(&existing).Error
		switch {
		case errFind == nil:
			form.Version = existing.Version + 1
		case errors.Is(errFind, gorm.ErrRecordNotFound):
			form.Version = 1
		default:
			return fmt.Errorf("store: lookup form %s: %w", form.ID, errFind)
		}
		form.Modified = now.Format(time.RFC3339)
		if form.Created == "" {
			form.Created = form.Modified
		}

		payload, errEncode := json.Marshal(form)
		if errEncode != nil {
			return fmt.Errorf("store: encode form %s: %w", form.ID, errEncode)
		}

		record := models.FormDefinition{
			FormID:          form.ID,
			Title:           form.Title,
			Description:     form.Description,
			Status:          models.FormStatusDraft,
			Version:         form.Version,
			SchemaJSON:      payload,
			Author:          form.Author,
			SubmissionsList: util.SubmissionsListName(form.Title),
		}
		if errFind == nil {
			record.ID = existing.ID
			record.CreatedAt = existing.CreatedAt
			return tx.Model(&existing).Select(
				"title", "description", "status", "version", "schema_json", "author", "submissions_list",
			).Updates(&record).Error
		}
		return tx.Create(&record).Error
	})
	if errTx != nil {
		return "", errTx
	}

	s.cache.Delete(ctx, form.ID)
	return form.ID, nil
}

// List returns definition metadata, optionally filtered by a title search.
func (s *Definitions) List(ctx context.Context, titleSearch string) ([]models.FormDefinition, error) {
	q := s.db.WithContext(ctx).Model(&models.FormDefinition{}).Order("updated_at DESC")
	if trimmed := strings.TrimSpace(titleSearch); trimmed != "" {
		pattern := db.NormalizeLikePattern(s.db, "%"+trimmed+"%")
		q = q.Where(db.CaseInsensitiveLikeExpr(s.db, "title"), pattern)
	}
	var records []models.FormDefinition
	if errFind := q.Find(&records).Error; errFind != nil {
		return nil, fmt.Errorf("store: list forms: %w", errFind)
	}
	return records, nil
}

// Publish flips a definition to the Published state.
func (s *Definitions) Publish(ctx context.Context, formID string) error {
	result := s.db.WithContext(ctx).
		Model(&models.FormDefinition{}).
		Where("form_id = ?", formID).
		Update("status", models.FormStatusPublished)
	if result.Error != nil {
		return fmt.Errorf("store: publish form %s: %w", formID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.cache.Delete(ctx, formID)
	return nil
}

// Delete removes a definition. Submissions are kept; they are immutable
// records in their own right.
func (s *Definitions) Delete(ctx context.Context, formID string) error {
	result := s.db.WithContext(ctx).Where("form_id = ?", formID).Delete(&models.FormDefinition{})
	if result.Error != nil {
		return fmt.Errorf("store: delete form %s: %w", formID, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	s.cache.Delete(ctx, formID)
	return nil
}

// decodeDefinition turns a stored row back into a schema document, recovering
// with a metadata-only document when the JSON blob is unreadable.
func decodeDefinition(record *models.FormDefinition) (*schema.Form, error) {
	var form schema.Form
	if errDecode := json.Unmarshal(record.SchemaJSON, &form); errDecode != nil {
		form = schema.Form{}
	}
	form.ID = record.FormID
	form.Title = record.Title
	form.Version = record.Version
	if record.Author != "" {
		form.Author = record.Author
	}
	form.Modified = record.UpdatedAt.UTC().Format(time.RFC3339)
	return &form, nil
}
