package query

import (
	"sort"
	"strings"

	"neksa/internal/model"
)

type Params struct {
	Search string // case-insensitive substring over name, email, title
	Sort   string // "created_at" (default) or "name"
	Order  string // "desc" (default) or "asc"
	Offset int
	Limit  int // <= 0 means no limit
}

type Page struct {
	Items []model.Registration `json:"items"`
	Total int                  `json:"total"`
}

// Shape filters, orders and slices an in-memory registration set. Ordering
// is stable across calls: ties break on id, so repeated requests paginate
// consistently even when many rows share a creation timestamp.
func Shape(regs []model.Registration, p Params) Page {
	matched := make([]model.Registration, 0, len(regs))
	q := strings.ToLower(strings.TrimSpace(p.Search))
	for _, r := range regs {
		if q == "" || matches(r, q) {
			matched = append(matched, r)
		}
	}

	asc := p.Order == "asc"
	sort.SliceStable(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !asc {
			a, b = b, a
		}
		switch p.Sort {
		case "name":
			if a.FullName != b.FullName {
				return a.FullName < b.FullName
			}
		default:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.Before(b.CreatedAt)
			}
		}
		return a.ID < b.ID
	})

	total := len(matched)
	start := p.Offset
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if p.Limit > 0 && start+p.Limit < end {
		end = start + p.Limit
	}

	return Page{Items: matched[start:end], Total: total}
}

func matches(r model.Registration, q string) bool {
	return strings.Contains(strings.ToLower(r.FullName), q) ||
		strings.Contains(strings.ToLower(r.Email), q) ||
		strings.Contains(strings.ToLower(r.Title), q)
}
