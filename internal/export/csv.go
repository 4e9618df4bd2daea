package export

import (
	"strconv"
	"strings"
	"time"

	"neksa/internal/model"
)

// header is the fixed first line of every export. The field order written
// below must match it exactly.
var header = []string{"id", "full_name", "email", "title", "phone", "dob", "gender", "status", "created_at"}

// Registrations serializes the given registrations, in order, to CSV text.
// Every field is quote-wrapped unconditionally so an embedded comma can never
// break the format; embedded quotes are doubled per standard CSV rules.
// Timestamps render as RFC 3339 UTC, which reads the same in any locale.
func Registrations(regs []model.Registration) string {
	var b strings.Builder
	writeLine(&b, header)
	for _, r := range regs {
		writeLine(&b, []string{
			strconv.FormatInt(r.ID, 10),
			r.FullName,
			r.Email,
			r.Title,
			r.Phone,
			r.DOB,
			r.Gender,
			string(r.Status),
			r.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	return b.String()
}

func writeLine(b *strings.Builder, fields []string) {
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(strings.ReplaceAll(f, `"`, `""`))
		b.WriteByte('"')
	}
	b.WriteByte('\n')
}
