package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/formbridge/formbridge/internal/engine"
	"github.com/formbridge/formbridge/internal/store"
)

// SessionHandler hosts live answer sessions: one debounced engine.Session per
// respondent, addressed by a server-issued session ID. Sessions live in
// process memory; they are working state, not persisted data.
type SessionHandler struct {
	defs     *store.Definitions   // Definition store.
	subs     *store.Submissions   // Submission sink.
	source   engine.TabularSource // Workbook source for auto-fill.
	debounce time.Duration        // Auto-fill quiet period.

	mu       sync.Mutex
	sessions map[string]*engine.Session
}

// NewSessionHandler constructs a session handler. A non-positive debounce
// falls back to the engine default.
func NewSessionHandler(defs *store.Definitions, subs *store.Submissions, source engine.TabularSource, debounce time.Duration) *SessionHandler {
	return &SessionHandler{
		defs:     defs,
		subs:     subs,
		source:   source,
		debounce: debounce,
		sessions: make(map[string]*engine.Session),
	}
}

// Create starts a session for the form named by the :id route parameter.
func (h *SessionHandler) Create(c *gin.Context) {
	form, errGet := h.defs.GetByID(c.Request.Context(), c.Param("id"))
	if errGet != nil {
		if errors.Is(errGet, store.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "form not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load form failed"})
		return
	}

	// The session outlives this request; its auto-fill fetches are bounded
	// by the session's own context, cancelled on close.
	session := engine.NewSession(context.Background(), form, h.source, h.subs, h.debounce)
	id := uuid.New().String()

	h.mu.Lock()
	h.sessions[id] = session
	h.mu.Unlock()

	c.JSON(http.StatusCreated, gin.H{"sessionId": id})
}

// setAnswerRequest carries one respondent edit.
type setAnswerRequest struct {
	QuestionID string `json:"questionId"` // Edited question.
	Value      any    `json:"value"`      // New answer value.
}

// SetAnswer records an edit and returns the resulting visible question set.
// Auto-fill resolution is debounced and asynchronous; merged values show up
// in later Get responses.
func (h *SessionHandler) SetAnswer(c *gin.Context) {
	session, ok := h.lookup(c.Param("sid"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var body setAnswerRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(body.QuestionID) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "questionId is required"})
		return
	}

	session.SetAnswer(body.QuestionID, body.Value)
	c.JSON(http.StatusOK, gin.H{"visible": visibleOrEmpty(session)})
}

// Get returns the session's current answers and visible question set.
func (h *SessionHandler) Get(c *gin.Context) {
	session, ok := h.lookup(c.Param("sid"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"answers": session.Answers(),
		"visible": visibleOrEmpty(session),
	})
}

// sessionSubmitRequest names the submitter.
type sessionSubmitRequest struct {
	SubmittedBy string `json:"submittedBy"` // Submitter identity.
}

// Submit validates and persists the session's answers. On success the session
// is closed and removed; validation and store failures leave it open so the
// respondent can fix or retry.
func (h *SessionHandler) Submit(c *gin.Context) {
	id := c.Param("sid")
	session, ok := h.lookup(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	var body sessionSubmitRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	sub, errSubmit := session.Submit(c.Request.Context(), strings.TrimSpace(body.SubmittedBy))
	if errSubmit != nil {
		var validation *engine.ValidationError
		if errors.As(errSubmit, &validation) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error":      validation.Error(),
				"questionId": validation.QuestionID,
			})
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{"error": "submission write failed"})
		return
	}

	h.remove(id)
	c.JSON(http.StatusCreated, gin.H{"id": sub.ID})
}

// Close discards a session and everything in flight.
func (h *SessionHandler) Close(c *gin.Context) {
	if _, ok := h.lookup(c.Param("sid")); !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	h.remove(c.Param("sid"))
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) lookup(id string) (*engine.Session, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	session, ok := h.sessions[id]
	return session, ok
}

// remove drops a session from the registry and closes it.
func (h *SessionHandler) remove(id string) {
	h.mu.Lock()
	session, ok := h.sessions[id]
	delete(h.sessions, id)
	h.mu.Unlock()
	if ok {
		session.Close()
	}
}

func visibleOrEmpty(session *engine.Session) []string {
	visible := session.VisibleQuestions()
	if visible == nil {
		return []string{}
	}
	return visible
}
