// Package engine implements the form evaluation core: conditional visibility,
// spreadsheet-driven auto-fill resolution, response validation, and the
// per-respondent answer session that ties them together.
package engine

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/formbridge/formbridge/internal/schema"
)

// Visible reports whether a question should be shown under the current
// answers. It is pure and re-derives the result from scratch on every call;
// callers must not cache it across answer mutations.
//
// Precedence: a matching Hide rule always hides, regardless of any Show rule.
// Otherwise, if Show rules target the question, it is visible only when at
// least one of them matches. A question no rule targets is visible.
func Visible(form *schema.Form, answers schema.AnswerSet, questionID string) bool {
	rules := form.RulesTargeting(questionID)
	if len(rules) == 0 {
		return true
	}

	showExists := false
	showMatched := false
	for _, rule := range rules {
		match := ruleMatches(rule, answers)
		switch rule.Action {
		case schema.ActionHide:
			if match {
				return false
			}
		case schema.ActionShow:
			showExists = true
			if match {
				showMatched = true
			}
		}
	}

	if showExists {
		return showMatched
	}
	return true
}

// VisibleQuestionIDs returns the IDs of every visible question in section
// order then question order.
func VisibleQuestionIDs(form *schema.Form, answers schema.AnswerSet) []string {
	var out []string
	form.EachQuestion(func(q *schema.Question) bool {
		if Visible(form, answers, q.ID) {
			out = append(out, q.ID)
		}
		return true
	})
	return out
}

// VisibleAnswers returns a copy of the answer set without entries for
// questions that are currently hidden, so a stale answer entered before a rule
// hid its question never leaves the session. Keys matching no question are
// kept as given.
func VisibleAnswers(form *schema.Form, answers schema.AnswerSet) schema.AnswerSet {
	out := answers.Clone()
	form.EachQuestion(func(q *schema.Question) bool {
		if !Visible(form, answers, q.ID) {
			delete(out, q.ID)
		}
		return true
	})
	return out
}

// ruleMatches evaluates one rule against the answer set. A rule whose source
// question has no answer compares against the empty string; a rule whose
// source question does not exist therefore simply never matches for the
// equality operators and never parses for the numeric ones.
func ruleMatches(rule schema.Rule, answers schema.AnswerSet) bool {
	source := coerceString(answers[rule.SourceQuestionID])
	operand := coerceString(rule.Value)

	switch rule.Operator {
	case schema.OpEquals:
		return strings.ToLower(source) == strings.ToLower(operand)
	case schema.OpNotEquals:
		return strings.ToLower(source) != strings.ToLower(operand)
	case schema.OpContains:
		return strings.Contains(strings.ToLower(source), strings.ToLower(operand))
	case schema.OpGreaterThan:
		a, b, ok := parseFloats(source, operand)
		return ok && a > b
	case schema.OpLessThan:
		a, b, ok := parseFloats(source, operand)
		return ok && a < b
	}
	return false
}

// parseFloats parses both operands; ok is false when either fails, so NaN
// comparisons are never true.
func parseFloats(a, b string) (float64, float64, bool) {
	fa, errA := strconv.ParseFloat(strings.TrimSpace(a), 64)
	fb, errB := strconv.ParseFloat(strings.TrimSpace(b), 64)
	if errA != nil || errB != nil {
		return 0, 0, false
	}
	return fa, fb, true
}

// coerceString renders an answer or rule operand as a comparison string.
// Missing answers become the empty string.
func coerceString(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case []string:
		return strings.Join(value, ",")
	case []any:
		parts := make([]string, 0, len(value))
		for _, item := range value {
			parts = append(parts, coerceString(item))
		}
		return strings.Join(parts, ",")
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(value)
	default:
		return fmt.Sprintf("%v", value)
	}
}
