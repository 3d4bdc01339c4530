// Package handlers implements the gin endpoints of the form service.
package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/formbridge/formbridge/internal/models"
	"github.com/formbridge/formbridge/internal/schema"
	"github.com/formbridge/formbridge/internal/store"
)

// FormHandler manages CRUD endpoints for form definitions.
type FormHandler struct {
	defs *store.Definitions // Definition store.
}

// NewFormHandler constructs a form definition handler.
func NewFormHandler(defs *store.Definitions) *FormHandler {
	return &FormHandler{defs: defs}
}

// formSummary is the list representation of a stored definition.
type formSummary struct {
	ID          string `json:"id"`          // External form ID.
	Title       string `json:"title"`       // Display title.
	Description string `json:"description"` // Optional description.
	Status      string `json:"status"`      // Draft or Published.
	Version     int    `json:"version"`     // Current version.
	Author      string `json:"author"`      // Last author.
	Modified    string `json:"modified"`    // Last update, RFC 3339.
}

// List returns definition summaries, optionally filtered by title search.
func (h *FormHandler) List(c *gin.Context) {
	records, errList := h.defs.List(c.Request.Context(), strings.TrimSpace(c.Query("search")))
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list forms failed"})
		return
	}
	out := make([]formSummary, 0, len(records))
	for i := range records {
		out = append(out, summarize(&records[i]))
	}
	c.JSON(http.StatusOK, gin.H{"forms": out})
}

// Get returns one full form document.
func (h *FormHandler) Get(c *gin.Context) {
	form, errGet := h.defs.GetByID(c.Request.Context(), c.Param("id"))
	if errGet != nil {
		if errors.Is(errGet, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load form failed"})
		return
	}
	c.JSON(http.StatusOK, form)
}

// Save validates and upserts a full form document. The stored version is
// bumped server-side; the response carries the ID and new version.
func (h *FormHandler) Save(c *gin.Context) {
	var form schema.Form
	if errBind := c.ShouldBindJSON(&form); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(form.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}
	if errSchema := checkSchema(&form); errSchema != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errSchema.Error()})
		return
	}

	id, errSave := h.defs.Save(c.Request.Context(), &form)
	if errSave != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save form failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "version": form.Version})
}

// Publish flips a definition to the Published state.
func (h *FormHandler) Publish(c *gin.Context) {
	if errPublish := h.defs.Publish(c.Request.Context(), c.Param("id")); errPublish != nil {
		if errors.Is(errPublish, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "publish form failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": string(models.FormStatusPublished)})
}

// Delete removes a definition. Existing submissions are kept.
func (h *FormHandler) Delete(c *gin.Context) {
	if errDelete := h.defs.Delete(c.Request.Context(), c.Param("id")); errDelete != nil {
		if errors.Is(errDelete, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete form failed"})
		return
	}
	c.Status(http.StatusNoContent)
}

// checkSchema enforces the authoring invariants: question IDs are unique
// across the whole form and every rule references existing questions.
func checkSchema(form *schema.Form) error {
	seen := make(map[string]struct{})
	var duplicate string
	form.EachQuestion(func(q *schema.Question) bool {
		if strings.TrimSpace(q.ID) == "" {
			duplicate = "question with empty id"
			return false
		}
		if _, ok := seen[q.ID]; ok {
			duplicate = fmt.Sprintf("duplicate question id %q", q.ID)
			return false
		}
		seen[q.ID] = struct{}{}
		return true
	})
	if duplicate != "" {
		return errors.New(duplicate)
	}

	for _, rule := range form.Rules {
		if _, ok := seen[rule.SourceQuestionID]; !ok {
			return fmt.Errorf("rule %q references unknown source question %q", rule.ID, rule.SourceQuestionID)
		}
		if _, ok := seen[rule.TargetQuestionID]; !ok {
			return fmt.Errorf("rule %q references unknown target question %q", rule.ID, rule.TargetQuestionID)
		}
	}
	return nil
}

func summarize(record *models.FormDefinition) formSummary {
	return formSummary{
		ID:          record.FormID,
		Title:       record.Title,
		Description: record.Description,
		Status:      string(record.Status),
		Version:     record.Version,
		Author:      record.Author,
		Modified:    record.UpdatedAt.UTC().Format(time.RFC3339),
	}
}
