package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/formbridge/formbridge/internal/engine"
	"github.com/formbridge/formbridge/internal/models"
	"github.com/formbridge/formbridge/internal/schema"
	"github.com/formbridge/formbridge/internal/store"
)

// SubmissionHandler accepts completed responses and lists stored ones.
type SubmissionHandler struct {
	defs *store.Definitions // Definition store.
	subs *store.Submissions // Submission store.
}

// NewSubmissionHandler constructs a submission handler.
func NewSubmissionHandler(defs *store.Definitions, subs *store.Submissions) *SubmissionHandler {
	return &SubmissionHandler{defs: defs, subs: subs}
}

// createSubmissionRequest carries the final answer set.
type createSubmissionRequest struct {
	Responses   schema.AnswerSet `json:"responses"`   // Question ID -> value.
	SubmittedBy string           `json:"submittedBy"` // Submitter identity.
}

// Create validates the posted answers against the form and appends an
// immutable submission. Answers for questions hidden under the posted answer
// set are dropped before the write. A missing required visible answer yields
// 422 naming the offending question; a store write failure yields 502 so the
// client keeps its answers and retries.
func (h *SubmissionHandler) Create(c *gin.Context) {
	form, errGet := h.defs.GetByID(c.Request.Context(), c.Param("id"))
	if errGet != nil {
		if errors.Is(errGet, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load form failed"})
		return
	}

	var body createSubmissionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Responses == nil {
		body.Responses = make(schema.AnswerSet)
	}

	if errValidate := engine.ValidateResponses(form, body.Responses); errValidate != nil {
		var validation *engine.ValidationError
		if errors.As(errValidate, &validation) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":      validation.Error(),
				"questionId": validation.QuestionID,
			})
			return
		}
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": errValidate.Error()})
		return
	}

	sub := &schema.Submission{
		ID:          uuid.New().String(),
		FormID:      form.ID,
		Responses:   engine.VisibleAnswers(form, body.Responses),
		SubmittedBy: strings.TrimSpace(body.SubmittedBy),
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}
	id, errAppend := h.subs.Append(c.Request.Context(), form.Title, sub)
	if errAppend != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "submission write failed"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"id": id})
}

// submissionSummary is the list representation of a stored submission.
type submissionSummary struct {
	ID          string           `json:"id"`          // Submission ID.
	FormID      string           `json:"formId"`      // Owning form.
	Responses   schema.AnswerSet `json:"responses"`   // Answer snapshot.
	SubmittedBy string           `json:"submittedBy"` // Submitter identity.
	SubmittedAt string           `json:"submittedAt"` // RFC 3339 timestamp.
}

// List returns a form's submissions, optionally filtered by a stored answer:
// ?question=<id>&value=<answer>.
func (h *SubmissionHandler) List(c *gin.Context) {
	questionID := strings.TrimSpace(c.Query("question"))
	if questionID != "" && !safeQuestionID(questionID) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid question id"})
		return
	}

	records, errList := h.subs.List(c.Request.Context(), c.Param("id"), questionID, c.Query("value"))
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list submissions failed"})
		return
	}

	out := make([]submissionSummary, 0, len(records))
	for i := range records {
		out = append(out, summarizeSubmission(&records[i]))
	}
	c.JSON(http.StatusOK, gin.H{"submissions": out})
}

// safeQuestionID limits answer filters to plain identifier characters since
// the question ID becomes part of a JSON path expression.
func safeQuestionID(id string) bool {
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		default:
			return false
		}
	}
	return true
}

func summarizeSubmission(record *models.FormSubmission) submissionSummary {
	responses := make(schema.AnswerSet)
	_ = json.Unmarshal(record.Responses, &responses)
	return submissionSummary{
		ID:          record.SubmissionID,
		FormID:      record.FormID,
		Responses:   responses,
		SubmittedBy: record.SubmittedBy,
		SubmittedAt: record.SubmittedAt.UTC().Format(time.RFC3339),
	}
}
