package query

import (
	"testing"
	"time"

	"neksa/internal/model"
)

func sampleRegs() []model.Registration {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	return []model.Registration{
		{ID: 1, FullName: "Ada Lovelace", Email: "ada@example.com", Title: "Engineer", CreatedAt: base},
		{ID: 2, FullName: "Alan Turing", Email: "alan@example.com", Title: "Scientist", CreatedAt: base.Add(time.Hour)},
		{ID: 3, FullName: "Grace Hopper", Email: "grace@navy.mil", Title: "Admiral", CreatedAt: base.Add(2 * time.Hour)},
		{ID: 4, FullName: "Adele Goldberg", Email: "adele@parc.example", Title: "Researcher", CreatedAt: base.Add(2 * time.Hour)},
	}
}

func TestShape_DefaultsToNewestFirst(t *testing.T) {
	t.Parallel()

	page := Shape(sampleRegs(), Params{})
	if page.Total != 4 {
		t.Fatalf("expected total 4, got %d", page.Total)
	}
	// Two rows share a timestamp; the higher id wins in descending order.
	wantOrder := []int64{4, 3, 2, 1}
	for i, want := range wantOrder {
		if page.Items[i].ID != want {
			t.Fatalf("position %d: expected id %d, got %d", i, want, page.Items[i].ID)
		}
	}
}

func TestShape_Search(t *testing.T) {
	t.Parallel()

	tests := []struct {
		search  string
		wantIDs []int64
	}{
		{"ada", []int64{1}},
		{"ADELE", []int64{4}},
		{"example.com", []int64{2, 1}},
		{"admiral", []int64{3}},
		{"nobody", nil},
	}
	for _, tc := range tests {
		page := Shape(sampleRegs(), Params{Search: tc.search})
		if len(page.Items) != len(tc.wantIDs) {
			t.Fatalf("search %q: expected %d items, got %d", tc.search, len(tc.wantIDs), len(page.Items))
		}
		for i, want := range tc.wantIDs {
			if page.Items[i].ID != want {
				t.Errorf("search %q: position %d expected id %d, got %d", tc.search, i, want, page.Items[i].ID)
			}
		}
	}
}

func TestShape_SortByNameAscending(t *testing.T) {
	t.Parallel()

	page := Shape(sampleRegs(), Params{Sort: "name", Order: "asc"})
	wantOrder := []int64{1, 4, 2, 3}
	for i, want := range wantOrder {
		if page.Items[i].ID != want {
			t.Fatalf("position %d: expected id %d, got %d", i, want, page.Items[i].ID)
		}
	}
}

func TestShape_Pagination(t *testing.T) {
	t.Parallel()

	page := Shape(sampleRegs(), Params{Order: "asc", Offset: 1, Limit: 2})
	if page.Total != 4 {
		t.Fatalf("expected total to count all matches, got %d", page.Total)
	}
	if len(page.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(page.Items))
	}
	if page.Items[0].ID != 2 || page.Items[1].ID != 3 {
		t.Fatalf("unexpected page window: %d, %d", page.Items[0].ID, page.Items[1].ID)
	}

	past := Shape(sampleRegs(), Params{Offset: 10, Limit: 5})
	if len(past.Items) != 0 || past.Total != 4 {
		t.Fatalf("offset past the end should yield an empty page, got %d items", len(past.Items))
	}
}
