package importer

import (
	"fmt"
	"testing"

	"neksa/internal/model"
)

func TestValidate_SingleRows(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		row        Row
		wantField  string
		wantReason string
	}{
		{
			name:       "missing full name",
			row:        Row{"full_name": "", "title": "CEO"},
			wantField:  "full_name",
			wantReason: ReasonMissingField,
		},
		{
			name:       "whitespace-only full name",
			row:        Row{"name": "   ", "title": "CEO"},
			wantField:  "full_name",
			wantReason: ReasonMissingField,
		},
		{
			name:       "missing title",
			row:        Row{"full_name": "Ada Lovelace"},
			wantField:  "title",
			wantReason: ReasonMissingField,
		},
		{
			name:       "invalid email",
			row:        Row{"full_name": "A", "title": "B", "email": "not-an-email"},
			wantField:  "email",
			wantReason: ReasonInvalidFormat,
		},
		{
			name:       "email without domain dot",
			row:        Row{"full_name": "A", "title": "B", "email": "a@b"},
			wantField:  "email",
			wantReason: ReasonInvalidFormat,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			drafts, rejects := Validate([]Row{tc.row}, 1)
			if len(drafts) != 0 {
				t.Fatalf("expected no drafts, got %d", len(drafts))
			}
			if len(rejects) != 1 {
				t.Fatalf("expected one rejection, got %d", len(rejects))
			}
			r := rejects[0]
			if r.Index != 1 {
				t.Errorf("expected index 1, got %d", r.Index)
			}
			if r.Field != tc.wantField || r.Reason != tc.wantReason {
				t.Errorf("expected %s/%s, got %s/%s", tc.wantField, tc.wantReason, r.Field, r.Reason)
			}
		})
	}
}

func TestValidate_AcceptsValidRow(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{"full_name": "Ada Lovelace", "title": "Engineer", "email": "ada@example.com", "phone": "+1 555", "dob": "1815-12-10", "gender": "Female"},
		{"full_name": "Alan Turing", "title": "Scientist", "email": ""},
	}

	drafts, rejects := Validate(rows, 42)
	if len(rejects) != 0 {
		t.Fatalf("expected no rejections, got %v", rejects)
	}
	if len(drafts) != 2 {
		t.Fatalf("expected 2 drafts, got %d", len(drafts))
	}

	first := drafts[0]
	if first.FullName != "Ada Lovelace" || first.Title != "Engineer" || first.Email != "ada@example.com" {
		t.Errorf("unexpected draft fields: %+v", first)
	}
	if first.Phone != "+1 555" || first.DOB != "1815-12-10" || first.Gender != "Female" {
		t.Errorf("optional fields not copied through: %+v", first)
	}
	for i, d := range drafts {
		if d.EventID != 42 {
			t.Errorf("draft %d: expected event id 42, got %d", i, d.EventID)
		}
		if d.Status != model.StatusPending {
			t.Errorf("draft %d: expected pending status, got %s", i, d.Status)
		}
	}

	// Absent email stays absent.
	if drafts[1].Email != "" {
		t.Errorf("expected empty email to stay empty, got %q", drafts[1].Email)
	}
}

func TestValidate_HeaderAliases(t *testing.T) {
	t.Parallel()

	rows := []Row{
		{"Name": "Ada", "Title": "Eng"},
		{"FULL NAME": "Alan", "job_title": "Sci"},
		{"FullName": "Grace", "TITLE": "Adm", "E-Mail": "grace@navy.mil"},
	}

	drafts, rejects := Validate(rows, 1)
	if len(rejects) != 0 {
		t.Fatalf("expected no rejections, got %v", rejects)
	}
	if len(drafts) != 3 {
		t.Fatalf("expected 3 drafts, got %d", len(drafts))
	}
	if drafts[0].FullName != "Ada" || drafts[1].FullName != "Alan" || drafts[2].FullName != "Grace" {
		t.Errorf("alias resolution failed: %+v", drafts)
	}
	if drafts[2].Email != "grace@navy.mil" {
		t.Errorf("expected e-mail alias to resolve, got %q", drafts[2].Email)
	}
}

func TestValidate_RowTakesNoEventID(t *testing.T) {
	t.Parallel()

	// A row claiming a different event must not override the target.
	rows := []Row{{"full_name": "Mallory", "title": "Intruder", "event_id": "999"}}
	drafts, _ := Validate(rows, 7)
	if len(drafts) != 1 || drafts[0].EventID != 7 {
		t.Fatalf("expected event id forced to 7, got %+v", drafts)
	}
}

func TestValidate_PartitionsBatch(t *testing.T) {
	t.Parallel()

	var rows []Row
	for i := 1; i <= 10; i++ {
		row := Row{"full_name": fmt.Sprintf("Person %d", i), "title": "Guest"}
		switch i {
		case 2:
			row["full_name"] = ""
		case 5:
			row["title"] = ""
		case 9:
			row["email"] = "broken"
		}
		rows = append(rows, row)
	}

	drafts, rejects := Validate(rows, 1)
	if len(drafts) != 7 {
		t.Fatalf("expected 7 drafts, got %d", len(drafts))
	}
	if len(rejects) != 3 {
		t.Fatalf("expected 3 rejections, got %d", len(rejects))
	}

	wantIndices := []int{2, 5, 9}
	for i, r := range rejects {
		if r.Index != wantIndices[i] {
			t.Errorf("rejection %d: expected original row index %d, got %d", i, wantIndices[i], r.Index)
		}
	}
}

func TestValidate_AllRejected(t *testing.T) {
	t.Parallel()

	rows := []Row{{"title": "A"}, {"title": "B"}}
	drafts, rejects := Validate(rows, 1)
	if len(drafts) != 0 {
		t.Fatalf("expected zero drafts, got %d", len(drafts))
	}
	if len(rejects) != 2 {
		t.Fatalf("expected full rejection list, got %d", len(rejects))
	}
}
