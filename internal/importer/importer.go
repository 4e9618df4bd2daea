package importer

import (
	"fmt"
	"regexp"
	"strings"

	"neksa/internal/model"
)

// Row is one raw import record: column name to cell value. Column names are
// matched case-insensitively against the accepted aliases.
type Row map[string]string

// RowError reports why a single row was rejected. Index is the 1-based
// position of the row in the uploaded file.
type RowError struct {
	Index  int    `json:"row"`
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s (%s)", e.Index, e.Reason, e.Field)
}

const (
	ReasonMissingField  = "missing required field"
	ReasonInvalidFormat = "invalid format"
)

var emailShape = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// Accepted header aliases per canonical field, tried in order. The first
// alias with a non-empty trimmed value wins.
var aliases = map[string][]string{
	"full_name": {"full_name", "name", "fullname", "full name"},
	"title":     {"title", "job_title"},
	"email":     {"email", "e-mail"},
	"phone":     {"phone", "phone_number"},
	"dob":       {"dob", "date_of_birth"},
	"gender":    {"gender"},
}

// Validate partitions raw rows into registration drafts ready for bulk
// insert and per-row rejections. It is a pure function: the caller inserts
// the drafts and reports the rejections. A rejected row never aborts the
// batch; every draft comes out with status pending and the target event id,
// regardless of what the row claims.
func Validate(rows []Row, eventID int64) ([]model.Registration, []RowError) {
	var drafts []model.Registration
	var rejects []RowError

	for i, row := range rows {
		idx := i + 1
		norm := normalize(row)

		fullName := resolve(norm, "full_name")
		if fullName == "" {
			rejects = append(rejects, RowError{Index: idx, Field: "full_name", Reason: ReasonMissingField})
			continue
		}
		title := resolve(norm, "title")
		if title == "" {
			rejects = append(rejects, RowError{Index: idx, Field: "title", Reason: ReasonMissingField})
			continue
		}
		email := resolve(norm, "email")
		if email != "" && !emailShape.MatchString(email) {
			rejects = append(rejects, RowError{Index: idx, Field: "email", Reason: ReasonInvalidFormat})
			continue
		}

		drafts = append(drafts, model.Registration{
			EventID:  eventID,
			FullName: fullName,
			Title:    title,
			Email:    email,
			Phone:    resolve(norm, "phone"),
			DOB:      resolve(norm, "dob"),
			Gender:   resolve(norm, "gender"),
			Status:   model.StatusPending,
		})
	}

	return drafts, rejects
}

func normalize(row Row) Row {
	norm := make(Row, len(row))
	for k, v := range row {
		norm[strings.ToLower(strings.TrimSpace(k))] = v
	}
	return norm
}

func resolve(norm Row, field string) string {
	for _, alias := range aliases[field] {
		if v := strings.TrimSpace(norm[alias]); v != "" {
			return v
		}
	}
	return ""
}
