package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/formbridge/formbridge/internal/db"
	"github.com/formbridge/formbridge/internal/schema"
)

func openSubmissionStore(t *testing.T) *Submissions {
	t.Helper()
	conn, errOpen := db.Open(":memory:")
	if errOpen != nil {
		t.Fatalf("open db: %v", errOpen)
	}
	if errMigrate := db.Migrate(conn); errMigrate != nil {
		t.Fatalf("migrate db: %v", errMigrate)
	}
	return NewSubmissions(conn)
}

func TestAppendStoresImmutableRecord(t *testing.T) {
	subs := openSubmissionStore(t)
	ctx := context.Background()

	sub := &schema.Submission{
		ID:          "sub-1",
		FormID:      "intake-1",
		Responses:   schema.AnswerSet{"q1": "42", "q5": "Ada"},
		SubmittedBy: "ada@example.com",
		SubmittedAt: time.Now().UTC().Format(time.RFC3339),
	}
	id, errAppend := subs.Append(ctx, "Employee Intake!", sub)
	if errAppend != nil {
		t.Fatalf("append: %v", errAppend)
	}
	if id != "sub-1" {
		t.Fatalf("expected the given submission id, got %s", id)
	}

	records, errList := subs.List(ctx, "intake-1", "", "")
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ListName != "FormSubmissions_EmployeeIntake" {
		t.Fatalf("list name must be sanitized from the title, got %s", records[0].ListName)
	}
	if records[0].SubmittedBy != "ada@example.com" {
		t.Fatalf("unexpected submitter: %s", records[0].SubmittedBy)
	}

	var responses schema.AnswerSet
	if errDecode := json.Unmarshal(records[0].Responses, &responses); errDecode != nil {
		t.Fatalf("decode responses: %v", errDecode)
	}
	if responses["q5"] != "Ada" {
		t.Fatalf("responses must round-trip, got %v", responses)
	}
}

func TestAppendGeneratesIDWhenMissing(t *testing.T) {
	subs := openSubmissionStore(t)
	sub := &schema.Submission{FormID: "intake-1", Responses: schema.AnswerSet{}}

	id, errAppend := subs.Append(context.Background(), "Intake", sub)
	if errAppend != nil {
		t.Fatalf("append: %v", errAppend)
	}
	if id == "" {
		t.Fatal("append must assign a submission id")
	}
}

func TestListFiltersByStoredAnswer(t *testing.T) {
	subs := openSubmissionStore(t)
	ctx := context.Background()

	for i, dept := range []string{"Eng", "Ops", "Eng"} {
		sub := &schema.Submission{
			FormID:      "intake-1",
			Responses:   schema.AnswerSet{"q6": dept},
			SubmittedBy: "user",
			SubmittedAt: time.Now().UTC().Add(time.Duration(i) * time.Second).Format(time.RFC3339),
		}
		if _, err := subs.Append(ctx, "Intake", sub); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	records, errList := subs.List(ctx, "intake-1", "q6", "Eng")
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 Eng submissions, got %d", len(records))
	}
}

func TestListScopesToForm(t *testing.T) {
	subs := openSubmissionStore(t)
	ctx := context.Background()

	for _, formID := range []string{"intake-1", "other"} {
		sub := &schema.Submission{FormID: formID, Responses: schema.AnswerSet{}}
		if _, err := subs.Append(ctx, "Intake", sub); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	records, errList := subs.List(ctx, "intake-1", "", "")
	if errList != nil {
		t.Fatalf("list: %v", errList)
	}
	if len(records) != 1 {
		t.Fatalf("expected submissions scoped to the form, got %d", len(records))
	}
}
