package schema

import (
	"encoding/json"
	"testing"
)

func testForm() *Form {
	return &Form{
		ID: "f1",
		Sections: []Section{
			{ID: "s1", Questions: []Question{{ID: "a"}, {ID: "b"}}},
			{ID: "s2", Questions: []Question{{ID: "c"}}},
		},
		Rules: []Rule{
			{ID: "r1", SourceQuestionID: "a", TargetQuestionID: "c", Action: ActionShow},
			{ID: "r2", SourceQuestionID: "b", TargetQuestionID: "c", Action: ActionHide},
			{ID: "r3", SourceQuestionID: "a", TargetQuestionID: "b", Action: ActionShow},
		},
	}
}

func TestQuestionByID(t *testing.T) {
	form := testForm()
	if q := form.QuestionByID("c"); q == nil || q.ID != "c" {
		t.Fatalf("expected question c, got %+v", q)
	}
	if q := form.QuestionByID("zz"); q != nil {
		t.Fatalf("expected nil for unknown id, got %+v", q)
	}
}

func TestEachQuestionWalksSectionOrderAndStopsEarly(t *testing.T) {
	form := testForm()

	var order []string
	form.EachQuestion(func(q *Question) bool {
		order = append(order, q.ID)
		return true
	})
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("unexpected walk order: %v", order)
	}

	var stopped []string
	form.EachQuestion(func(q *Question) bool {
		stopped = append(stopped, q.ID)
		return q.ID != "b"
	})
	if len(stopped) != 2 {
		t.Fatalf("walk must stop after b, got %v", stopped)
	}
}

func TestRulesTargetingPreservesDefinitionOrder(t *testing.T) {
	form := testForm()
	rules := form.RulesTargeting("c")
	if len(rules) != 2 || rules[0].ID != "r1" || rules[1].ID != "r2" {
		t.Fatalf("unexpected rules for c: %+v", rules)
	}
	if got := form.RulesTargeting("a"); got != nil {
		t.Fatalf("expected no rules for a, got %+v", got)
	}
}

func TestLookupColumnDefaultsToTitle(t *testing.T) {
	var nilConfig *AutoFillConfig
	if nilConfig.LookupColumn() != DefaultKeyColumn {
		t.Fatal("nil config must default to Title")
	}
	if (&AutoFillConfig{KeyColumn: "  "}).LookupColumn() != DefaultKeyColumn {
		t.Fatal("blank key column must default to Title")
	}
	if (&AutoFillConfig{KeyColumn: "EmployeeId"}).LookupColumn() != "EmployeeId" {
		t.Fatal("explicit key column must be honored")
	}
}

func TestAnswerSetCloneIsIndependent(t *testing.T) {
	original := AnswerSet{"q1": "42"}
	clone := original.Clone()
	clone["q1"] = "changed"
	clone["q2"] = "new"
	if original["q1"] != "42" {
		t.Fatalf("clone must not alias the original, got %v", original["q1"])
	}
	if _, ok := original["q2"]; ok {
		t.Fatal("clone must not write through to the original")
	}
}

func TestFormJSONRoundTrip(t *testing.T) {
	form := &Form{
		ID:    "f1",
		Title: "Intake",
		Sections: []Section{
			{ID: "s1", Questions: []Question{{
				ID: "q1", Title: "Employee ID", Type: QuestionText, Required: true,
				AutoFill: &AutoFillConfig{
					Enabled:       true,
					ExcelFilePath: "employees.xlsx",
					KeyColumn:     "EmployeeId",
					Mappings:      map[string]string{"Name": "q5"},
				},
			}}},
		},
		Rules:   []Rule{{ID: "r1", SourceQuestionID: "q1", Operator: OpEquals, Value: "42", TargetQuestionID: "q5", Action: ActionShow}},
		Version: 3,
	}

	data, errMarshal := json.Marshal(form)
	if errMarshal != nil {
		t.Fatalf("marshal: %v", errMarshal)
	}
	var decoded Form
	if errUnmarshal := json.Unmarshal(data, &decoded); errUnmarshal != nil {
		t.Fatalf("unmarshal: %v", errUnmarshal)
	}
	if decoded.Version != 3 {
		t.Fatalf("version lost, got %d", decoded.Version)
	}
	auto := decoded.Sections[0].Questions[0].AutoFill
	if auto == nil || !auto.Enabled || auto.Mappings["Name"] != "q5" {
		t.Fatalf("auto-fill config lost: %+v", auto)
	}
	if decoded.Rules[0].Value != "42" {
		t.Fatalf("rule value lost: %+v", decoded.Rules[0])
	}
}
