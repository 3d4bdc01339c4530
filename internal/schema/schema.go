// Package schema defines the authored form document: sections, questions,
// conditional-visibility rules, and auto-fill bindings. The types here carry
// no behavior beyond lookups; evaluation lives in internal/engine.
package schema

import "strings"

// QuestionType identifies the input kind of a question.
type QuestionType string

// Supported question types. The set is closed; renderers and the evaluator
// switch exhaustively over it.
const (
	QuestionText       QuestionType = "Text"
	QuestionNote       QuestionType = "Note"
	QuestionChoice     QuestionType = "Choice"
	QuestionDropdown   QuestionType = "Dropdown"
	QuestionDate       QuestionType = "Date"
	QuestionNumber     QuestionType = "Number"
	QuestionPeople     QuestionType = "People"
	QuestionYesNo      QuestionType = "YesNo"
	QuestionAttachment QuestionType = "Attachment"
	QuestionRating     QuestionType = "Rating"
)

// Operator compares a source answer against a rule value.
type Operator string

// Supported rule operators.
const (
	OpEquals      Operator = "equals"
	OpNotEquals   Operator = "notEquals"
	OpContains    Operator = "contains"
	OpGreaterThan Operator = "greaterThan"
	OpLessThan    Operator = "lessThan"
)

// RuleAction decides what a matching rule does to its target question.
type RuleAction string

// Supported rule actions. A matching Hide always wins over Show.
const (
	ActionShow RuleAction = "Show"
	ActionHide RuleAction = "Hide"
)

// DefaultKeyColumn is the lookup column used when an AutoFillConfig does not
// name one.
const DefaultKeyColumn = "Title"

// AutoFillConfig binds a question's answer to a row lookup in an external
// workbook. Mappings map source column names to target question IDs; a column
// maps to at most one question per config.
type AutoFillConfig struct {
	Enabled       bool              `json:"enabled"`
	ExcelFilePath string            `json:"excelFilePath,omitempty"`
	ExcelSiteURL  string            `json:"excelSiteUrl,omitempty"`
	SheetName     string            `json:"sheetName,omitempty"`
	KeyColumn     string            `json:"keyColumn,omitempty"`
	Mappings      map[string]string `json:"mappings"`
}

// LookupColumn returns the configured key column, defaulting to "Title".
func (c *AutoFillConfig) LookupColumn() string {
	if c == nil || strings.TrimSpace(c.KeyColumn) == "" {
		return DefaultKeyColumn
	}
	return c.KeyColumn
}

// Question is a single form field. IDs are unique across the whole form and
// referenced by rules, answers, and auto-fill mappings.
type Question struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Type        QuestionType    `json:"type"`
	Required    bool            `json:"required"`
	Description string          `json:"description,omitempty"`
	Choices     []string        `json:"choices,omitempty"`
	AutoFill    *AutoFillConfig `json:"autoFill,omitempty"`
}

// Section groups questions; order is meaningful for presentation and for the
// validator's scan order, not for rule evaluation.
type Section struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Questions   []Question `json:"questions"`
}

// Rule is a conditional-visibility directive: when the source question's
// answer matches Value under Operator, Action applies to the target question.
type Rule struct {
	ID               string     `json:"id"`
	SourceQuestionID string     `json:"sourceQuestionId"`
	Operator         Operator   `json:"operator"`
	Value            any        `json:"value"`
	TargetQuestionID string     `json:"targetQuestionId"`
	Action           RuleAction `json:"action"`
}

// Form is the versioned, authored definition of a questionnaire. It is
// replaced whole on every save; the server never patches it partially.
type Form struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Sections    []Section `json:"sections"`
	Rules       []Rule    `json:"rules"`
	Version     int       `json:"version"`
	Created     string    `json:"created,omitempty"`
	Modified    string    `json:"modified,omitempty"`
	Author      string    `json:"author,omitempty"`
}

// AnswerSet maps question IDs to in-progress answer values. It is owned by a
// single rendering session and persisted only inside a Submission.
type AnswerSet map[string]any

// Clone returns an independent copy of the answer set.
func (a AnswerSet) Clone() AnswerSet {
	out := make(AnswerSet, len(a))
	for k, v := range a {
		out[k] = v
	}
	return out
}

// Submission is the immutable record of a completed answer set.
type Submission struct {
	ID          string    `json:"id"`
	FormID      string    `json:"formId"`
	Responses   AnswerSet `json:"responses"`
	SubmittedBy string    `json:"submittedBy"`
	SubmittedAt string    `json:"submittedAt"`
}

// QuestionByID returns the question with the given ID, or nil.
func (f *Form) QuestionByID(id string) *Question {
	if f == nil {
		return nil
	}
	for si := range f.Sections {
		questions := f.Sections[si].Questions
		for qi := range questions {
			if questions[qi].ID == id {
				return &questions[qi]
			}
		}
	}
	return nil
}

// EachQuestion walks questions in section order then question order and stops
// early when fn returns false. This is the validator's scan order.
func (f *Form) EachQuestion(fn func(q *Question) bool) {
	if f == nil {
		return
	}
	for si := range f.Sections {
		questions := f.Sections[si].Questions
		for qi := range questions {
			if !fn(&questions[qi]) {
				return
			}
		}
	}
}

// RulesTargeting returns every rule whose target is the given question, in
// definition order.
func (f *Form) RulesTargeting(questionID string) []Rule {
	if f == nil {
		return nil
	}
	var out []Rule
	for _, rule := range f.Rules {
		if rule.TargetQuestionID == questionID {
			out = append(out, rule)
		}
	}
	return out
}
