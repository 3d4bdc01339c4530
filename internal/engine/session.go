package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/formbridge/formbridge/internal/schema"
)

// DefaultDebounce is the quiet period an auto-fill trigger waits out before
// resolving, so a burst of keystrokes collapses into one workbook fetch.
const DefaultDebounce = 500 * time.Millisecond

// SubmissionSink receives the immutable record of a completed answer set.
type SubmissionSink interface {
	Append(ctx context.Context, formTitle string, sub *schema.Submission) (string, error)
}

// Session owns the answer set of one respondent filling out one form. All
// mutation goes through the session; auto-fill resolutions run on their own
// goroutines and merge back under the session lock as per-key upserts.
type Session struct {
	form     *schema.Form
	source   TabularSource
	sink     SubmissionSink
	debounce time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	answers schema.AnswerSet
	timers  map[string]*time.Timer
	gens    map[string]uint64
	closed  bool
}

// NewSession creates a session for the given form. The context bounds every
// auto-fill fetch the session starts; cancelling it (or calling Close)
// discards in-flight resolutions without side effects. A non-positive
// debounce falls back to DefaultDebounce.
func NewSession(ctx context.Context, form *schema.Form, source TabularSource, sink SubmissionSink, debounce time.Duration) *Session {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	sessionCtx, cancel := context.WithCancel(ctx)
	return &Session{
		form:     form,
		source:   source,
		sink:     sink,
		debounce: debounce,
		ctx:      sessionCtx,
		cancel:   cancel,
		answers:  make(schema.AnswerSet),
		timers:   make(map[string]*time.Timer),
		gens:     make(map[string]uint64),
	}
}

// SetAnswer records a respondent edit. When the edited question carries an
// enabled auto-fill binding, a debounced resolution is (re)scheduled; earlier
// pending schedules for the same question are superseded.
func (s *Session) SetAnswer(questionID string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.answers[questionID] = value

	question := s.form.QuestionByID(questionID)
	if question == nil || question.AutoFill == nil || !question.AutoFill.Enabled {
		return
	}
	s.scheduleLocked(question)
}

// scheduleLocked arms the debounce timer for a question. The generation
// counter makes sure only the newest trigger survives: superseded timers are
// stopped, and a resolution that raced past its stop is discarded on merge.
func (s *Session) scheduleLocked(question *schema.Question) {
	s.gens[question.ID]++
	gen := s.gens[question.ID]

	if timer, ok := s.timers[question.ID]; ok {
		timer.Stop()
	}
	s.timers[question.ID] = time.AfterFunc(s.debounce, func() {
		s.resolve(question, gen)
	})
}

// resolve runs one auto-fill resolution and merges the result, unless the
// trigger was superseded or the session closed while the fetch was in flight.
func (s *Session) resolve(question *schema.Question, gen uint64) {
	s.mu.Lock()
	if s.closed || s.gens[question.ID] != gen {
		s.mu.Unlock()
		return
	}
	trigger := s.answers[question.ID]
	current := s.answers.Clone()
	s.mu.Unlock()

	updates := Resolve(s.ctx, question.AutoFill, trigger, current, s.source)
	if len(updates) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.gens[question.ID] != gen {
		// A newer edit won the race; applying would regress it.
		return
	}
	for id, value := range updates {
		s.answers[id] = value
	}
	log.WithFields(log.Fields{
		"form":     s.form.ID,
		"question": question.ID,
		"filled":   len(updates),
	}).Debug("autofill: merged updates")
}

// Answers returns a snapshot of the current answer set.
func (s *Session) Answers() schema.AnswerSet {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

// Visible reports whether a question is currently shown.
func (s *Session) Visible(questionID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Visible(s.form, s.answers, questionID)
}

// VisibleQuestions returns the currently visible question IDs in form order.
func (s *Session) VisibleQuestions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return VisibleQuestionIDs(s.form, s.answers)
}

// Submit validates the answers and appends an immutable submission record.
// Answers for questions hidden at submit time are dropped from the record; a
// validation failure or a store write failure leaves the live answer set
// intact so the respondent can fix or retry without re-entering anything.
func (s *Session) Submit(ctx context.Context, submittedBy string) (*schema.Submission, error) {
	s.mu.Lock()
	snapshot := s.answers.Clone()
	s.mu.Unlock()

	if err := ValidateResponses(s.form, snapshot); err != nil {
		return nil, err
	}

	sub := &schema.Submission{
		ID:          uuid.New().String(),
		FormID:      s.form.ID,
		Responses:   VisibleAnswers(s.form, snapshot),
		SubmittedBy: submittedBy,
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if _, err := s.sink.Append(ctx, s.form.Title, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

// Close discards the session: pending timers stop and in-flight resolutions
// are dropped on merge. Nothing was persisted, so there is no rollback.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.cancel()
	for _, timer := range s.timers {
		timer.Stop()
	}
}
