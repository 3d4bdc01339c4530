package engine

import (
	"errors"
	"testing"

	"github.com/formbridge/formbridge/internal/schema"
)

func requiredForm() *schema.Form {
	return &schema.Form{
		ID:    "form-1",
		Title: "Onboarding",
		Sections: []schema.Section{
			{
				ID: "s1",
				Questions: []schema.Question{
					{ID: "q1", Title: "Remote?", Type: schema.QuestionYesNo, Required: true},
					{ID: "q2", Title: "Office", Type: schema.QuestionText, Required: true},
				},
			},
			{
				ID: "s2",
				Questions: []schema.Question{
					{ID: "q3", Title: "Notes", Type: schema.QuestionNote},
				},
			},
		},
		Rules: []schema.Rule{
			{ID: "r1", SourceQuestionID: "q1", Operator: schema.OpEquals, Value: "No", TargetQuestionID: "q2", Action: schema.ActionHide},
		},
	}
}

func TestValidatePassesWhenRequiredVisibleAnswered(t *testing.T) {
	form := requiredForm()
	answers := schema.AnswerSet{"q1": "Yes", "q2": "Berlin"}
	if err := ValidateResponses(form, answers); err != nil {
		t.Fatalf("expected pass, got %v", err)
	}
}

func TestValidateNamesFirstMissingRequiredQuestion(t *testing.T) {
	form := requiredForm()
	err := ValidateResponses(form, schema.AnswerSet{})
	if err == nil {
		t.Fatal("expected a validation failure")
	}
	var validation *ValidationError
	if !errors.As(err, &validation) {
		t.Fatalf("expected *ValidationError, got %T", err)
	}
	if validation.QuestionID != "q1" {
		t.Fatalf("expected q1 (scan order), got %s", validation.QuestionID)
	}
}

func TestValidateExemptsHiddenRequiredQuestion(t *testing.T) {
	// q2 is required but hidden by the rule when q1 = "No"; submitting with
	// q2 empty must succeed.
	form := requiredForm()
	if err := ValidateResponses(form, schema.AnswerSet{"q1": "No"}); err != nil {
		t.Fatalf("hidden required question must be exempt, got %v", err)
	}
}

func TestValidateIgnoresOptionalUnanswered(t *testing.T) {
	form := requiredForm()
	answers := schema.AnswerSet{"q1": "Yes", "q2": "Berlin"}
	if err := ValidateResponses(form, answers); err != nil {
		t.Fatalf("optional q3 must never be flagged, got %v", err)
	}
}

func TestValidateBlankAndEmptyValuesCountAsMissing(t *testing.T) {
	form := requiredForm()
	cases := []any{"", "   ", []string{}, []any{}, nil}
	for _, value := range cases {
		answers := schema.AnswerSet{"q1": "Yes", "q2": value}
		if err := ValidateResponses(form, answers); err == nil {
			t.Fatalf("value %#v must count as missing", value)
		}
	}
}

func TestValidateZeroAndFalseCountAsAnswers(t *testing.T) {
	form := requiredForm()
	for _, value := range []any{float64(0), false} {
		answers := schema.AnswerSet{"q1": "Yes", "q2": value}
		if err := ValidateResponses(form, answers); err != nil {
			t.Fatalf("value %#v must count as an answer, got %v", value, err)
		}
	}
}
