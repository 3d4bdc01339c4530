package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/formbridge/formbridge/internal/engine"
	"github.com/formbridge/formbridge/internal/schema"
	"github.com/formbridge/formbridge/internal/store"
)

// EvaluateHandler exposes the evaluation engine over HTTP: visibility
// derivation for a candidate answer set and on-demand auto-fill resolution.
type EvaluateHandler struct {
	defs   *store.Definitions   // Definition store.
	source engine.TabularSource // Workbook source for auto-fill.
}

// NewEvaluateHandler constructs an evaluation handler.
func NewEvaluateHandler(defs *store.Definitions, source engine.TabularSource) *EvaluateHandler {
	return &EvaluateHandler{defs: defs, source: source}
}

// visibilityRequest carries the candidate answer set.
type visibilityRequest struct {
	Answers schema.AnswerSet `json:"answers"` // Question ID -> value.
}

// Visibility derives the visible question set for the posted answers.
func (h *EvaluateHandler) Visibility(c *gin.Context) {
	form, ok := h.loadForm(c)
	if !ok {
		return
	}
	var body visibilityRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if body.Answers == nil {
		body.Answers = make(schema.AnswerSet)
	}
	visible := engine.VisibleQuestionIDs(form, body.Answers)
	if visible == nil {
		visible = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"visible": visible})
}

// autoFillRequest names the triggering question and its answer value,
// alongside the current answers so unchanged targets can be skipped.
type autoFillRequest struct {
	QuestionID string           `json:"questionId"` // Auto-fill-bearing question.
	Value      any              `json:"value"`      // Trigger value.
	Answers    schema.AnswerSet `json:"answers"`    // Current answer set.
}

// AutoFill resolves a trigger value against the question's workbook binding
// and returns the answers to merge. The result is empty, never an error,
// when the workbook cannot be read; auto-fill is best effort.
func (h *EvaluateHandler) AutoFill(c *gin.Context) {
	form, ok := h.loadForm(c)
	if !ok {
		return
	}
	var body autoFillRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	question := form.QuestionByID(body.QuestionID)
	if question == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "question not found"})
		return
	}
	if body.Answers == nil {
		body.Answers = make(schema.AnswerSet)
	}

	updates := engine.Resolve(c.Request.Context(), question.AutoFill, body.Value, body.Answers, h.source)
	if updates == nil {
		updates = map[string]any{}
	}
	c.JSON(http.StatusOK, gin.H{"updates": updates})
}

// loadForm fetches the form named by the :id route parameter, writing the
// error response itself when the form cannot be served.
func (h *EvaluateHandler) loadForm(c *gin.Context) (*schema.Form, bool) {
	form, errGet := h.defs.GetByID(c.Request.Context(), c.Param("id"))
	if errGet != nil {
		if errors.Is(errGet, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load form failed"})
		return nil, false
	}
	return form, true
}
