package engine

import (
	"testing"

	"github.com/formbridge/formbridge/internal/schema"
)

func twoQuestionForm(rules ...schema.Rule) *schema.Form {
	return &schema.Form{
		ID:    "form-1",
		Title: "Test Form",
		Sections: []schema.Section{
			{
				ID:    "s1",
				Title: "Section 1",
				Questions: []schema.Question{
					{ID: "q1", Title: "Trigger", Type: schema.QuestionChoice, Choices: []string{"Yes", "No"}},
					{ID: "q2", Title: "Detail", Type: schema.QuestionText},
					{ID: "q3", Title: "Extra", Type: schema.QuestionText},
				},
			},
		},
		Rules: rules,
	}
}

func TestVisibleDefaultsToTrueWithoutRules(t *testing.T) {
	form := twoQuestionForm()
	if !Visible(form, schema.AnswerSet{}, "q2") {
		t.Fatal("question without rules must be visible")
	}
}

func TestVisibleShowRuleRequiresMatch(t *testing.T) {
	form := twoQuestionForm(schema.Rule{
		ID: "r1", SourceQuestionID: "q1", Operator: schema.OpEquals, Value: "Yes",
		TargetQuestionID: "q3", Action: schema.ActionShow,
	})

	if Visible(form, schema.AnswerSet{}, "q3") {
		t.Fatal("show rule with no answer must hide the target")
	}
	if Visible(form, schema.AnswerSet{"q1": "No"}, "q3") {
		t.Fatal("unmatched show rule must hide the target")
	}
	if !Visible(form, schema.AnswerSet{"q1": "Yes"}, "q3") {
		t.Fatal("matched show rule must show the target")
	}
}

func TestVisibleShowRulesAreDisjunctive(t *testing.T) {
	form := twoQuestionForm(
		schema.Rule{ID: "r1", SourceQuestionID: "q1", Operator: schema.OpEquals, Value: "Yes", TargetQuestionID: "q3", Action: schema.ActionShow},
		schema.Rule{ID: "r2", SourceQuestionID: "q2", Operator: schema.OpEquals, Value: "other", TargetQuestionID: "q3", Action: schema.ActionShow},
	)

	if !Visible(form, schema.AnswerSet{"q1": "no", "q2": "other"}, "q3") {
		t.Fatal("any matching show rule must show the target")
	}
	if Visible(form, schema.AnswerSet{"q1": "no", "q2": "else"}, "q3") {
		t.Fatal("target must stay hidden when no show rule matches")
	}
}

func TestVisibleHideDominatesShow(t *testing.T) {
	// Both rules match simultaneously; Hide must win regardless of order.
	form := twoQuestionForm(
		schema.Rule{ID: "r1", SourceQuestionID: "q1", Operator: schema.OpEquals, Value: "Yes", TargetQuestionID: "q3", Action: schema.ActionShow},
		schema.Rule{ID: "r2", SourceQuestionID: "q2", Operator: schema.OpEquals, Value: "stop", TargetQuestionID: "q3", Action: schema.ActionHide},
	)
	answers := schema.AnswerSet{"q1": "Yes", "q2": "stop"}
	if Visible(form, answers, "q3") {
		t.Fatal("matching hide rule must override matching show rule")
	}

	reversed := twoQuestionForm(
		schema.Rule{ID: "r2", SourceQuestionID: "q2", Operator: schema.OpEquals, Value: "stop", TargetQuestionID: "q3", Action: schema.ActionHide},
		schema.Rule{ID: "r1", SourceQuestionID: "q1", Operator: schema.OpEquals, Value: "Yes", TargetQuestionID: "q3", Action: schema.ActionShow},
	)
	if Visible(reversed, answers, "q3") {
		t.Fatal("hide dominance must not depend on rule order")
	}
}

func TestVisibleComparisonIsCaseInsensitive(t *testing.T) {
	form := twoQuestionForm(schema.Rule{
		ID: "r1", SourceQuestionID: "q1", Operator: schema.OpEquals, Value: "YES",
		TargetQuestionID: "q3", Action: schema.ActionShow,
	})
	if !Visible(form, schema.AnswerSet{"q1": "yes"}, "q3") {
		t.Fatal("equals must compare case-insensitively")
	}
}

func TestVisibleContainsOperator(t *testing.T) {
	form := twoQuestionForm(schema.Rule{
		ID: "r1", SourceQuestionID: "q2", Operator: schema.OpContains, Value: "Engineer",
		TargetQuestionID: "q3", Action: schema.ActionShow,
	})
	if !Visible(form, schema.AnswerSet{"q2": "Senior engineering lead"}, "q3") {
		t.Fatal("contains must match a lower-cased substring")
	}
	if Visible(form, schema.AnswerSet{"q2": "Designer"}, "q3") {
		t.Fatal("contains must not match an absent substring")
	}
}

func TestVisibleNumericOperators(t *testing.T) {
	form := twoQuestionForm(schema.Rule{
		ID: "r1", SourceQuestionID: "q2", Operator: schema.OpGreaterThan, Value: "10",
		TargetQuestionID: "q3", Action: schema.ActionShow,
	})

	if !Visible(form, schema.AnswerSet{"q2": "11"}, "q3") {
		t.Fatal("11 > 10 must match")
	}
	if !Visible(form, schema.AnswerSet{"q2": float64(12)}, "q3") {
		t.Fatal("numeric answers must compare numerically")
	}
	if Visible(form, schema.AnswerSet{"q2": "9"}, "q3") {
		t.Fatal("9 > 10 must not match")
	}
	if Visible(form, schema.AnswerSet{"q2": "not a number"}, "q3") {
		t.Fatal("unparseable operands must never match")
	}
	if Visible(form, schema.AnswerSet{}, "q3") {
		t.Fatal("missing answer must never satisfy a numeric operator")
	}
}

func TestVisibleNotEqualsTreatsMissingAsEmpty(t *testing.T) {
	form := twoQuestionForm(schema.Rule{
		ID: "r1", SourceQuestionID: "q1", Operator: schema.OpNotEquals, Value: "Yes",
		TargetQuestionID: "q3", Action: schema.ActionShow,
	})
	// Missing answer coerces to "", which is not "yes".
	if !Visible(form, schema.AnswerSet{}, "q3") {
		t.Fatal("missing answer must satisfy notEquals against a non-empty value")
	}
}

func TestVisibleRuleAgainstUnknownSourceNeverMatches(t *testing.T) {
	form := twoQuestionForm(schema.Rule{
		ID: "r1", SourceQuestionID: "ghost", Operator: schema.OpEquals, Value: "Yes",
		TargetQuestionID: "q3", Action: schema.ActionHide,
	})
	if !Visible(form, schema.AnswerSet{"q1": "Yes"}, "q3") {
		t.Fatal("hide rule on an unknown source must not fire")
	}
}

func TestVisibleQuestionIDsFollowFormOrder(t *testing.T) {
	form := twoQuestionForm(schema.Rule{
		ID: "r1", SourceQuestionID: "q1", Operator: schema.OpEquals, Value: "Yes",
		TargetQuestionID: "q3", Action: schema.ActionShow,
	})
	got := VisibleQuestionIDs(form, schema.AnswerSet{"q1": "No"})
	want := []string{"q1", "q2"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestVisibleAnswersDropsHiddenEntries(t *testing.T) {
	form := twoQuestionForm(schema.Rule{
		ID: "r1", SourceQuestionID: "q1", Operator: schema.OpEquals, Value: "No",
		TargetQuestionID: "q2", Action: schema.ActionHide,
	})
	answers := schema.AnswerSet{"q1": "No", "q2": "typed before the hide", "q3": "kept"}

	cleaned := VisibleAnswers(form, answers)
	if _, ok := cleaned["q2"]; ok {
		t.Fatalf("hidden answer must be dropped, got %v", cleaned)
	}
	if cleaned["q1"] != "No" || cleaned["q3"] != "kept" {
		t.Fatalf("visible answers must survive, got %v", cleaned)
	}
	if answers["q2"] != "typed before the hide" {
		t.Fatal("the input answer set must not be mutated")
	}
}

func TestVisibleAnswersKeepsUnknownKeys(t *testing.T) {
	form := twoQuestionForm()
	answers := schema.AnswerSet{"q1": "Yes", "free-form": "x"}
	cleaned := VisibleAnswers(form, answers)
	if cleaned["free-form"] != "x" {
		t.Fatalf("keys matching no question must be kept, got %v", cleaned)
	}
}
