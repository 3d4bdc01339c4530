package engine

import (
	"fmt"
	"strings"

	"github.com/formbridge/formbridge/internal/schema"
)

// ValidationError names the first required, visible question that has no
// answer. Hidden questions are exempt regardless of their Required flag.
type ValidationError struct {
	QuestionID    string
	QuestionTitle string
}

func (e *ValidationError) Error() string {
	title := e.QuestionTitle
	if title == "" {
		title = e.QuestionID
	}
	return fmt.Sprintf("question %q requires an answer", title)
}

// ValidateResponses checks that every visible required question is answered.
// Questions are scanned in section order then question order, so the reported
// offender is deterministic. A nil return means the answer set may be
// submitted.
func ValidateResponses(form *schema.Form, answers schema.AnswerSet) error {
	var failure *ValidationError
	form.EachQuestion(func(q *schema.Question) bool {
		if !q.Required {
			return true
		}
		if !Visible(form, answers, q.ID) {
			return true
		}
		if answered(answers[q.ID]) {
			return true
		}
		failure = &ValidationError{QuestionID: q.ID, QuestionTitle: q.Title}
		return false
	})
	if failure != nil {
		return failure
	}
	return nil
}

// answered reports whether a value counts as a present answer. Zero numbers
// and false booleans are answers; missing values, blank strings, and empty
// lists are not.
func answered(v any) bool {
	switch value := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(value) != ""
	case []string:
		return len(value) > 0
	case []any:
		return len(value) > 0
	default:
		return true
	}
}
