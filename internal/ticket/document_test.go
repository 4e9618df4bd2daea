package ticket

import (
	"bytes"
	"testing"
	"time"

	"neksa/internal/model"
)

func sampleTicket() (*model.Registration, *model.Event) {
	reg := &model.Registration{
		ID:       42,
		EventID:  1,
		FullName: "Ada Lovelace",
		Title:    "Engineer",
		Email:    "ada@example.com",
		Status:   model.StatusPending,
	}
	event := &model.Event{
		ID:      1,
		Name:    "Analytical Engines Conference Twenty Six",
		Date:    time.Date(2026, 9, 12, 0, 0, 0, 0, time.UTC),
		Address: "1 Long Street Name That Needs Wrapping, Somewhere Far Away",
	}
	return reg, event
}

func TestRenderDocumentIsDeterministic(t *testing.T) {
	t.Parallel()

	reg, event := sampleTicket()

	first, err := RenderDocument(reg, event)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	second, err := RenderDocument(reg, event)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}

	if !bytes.Equal(first, second) {
		t.Fatalf("identical inputs must produce identical documents (%d vs %d bytes)", len(first), len(second))
	}
	if !bytes.HasPrefix(first, []byte("%PDF")) {
		t.Fatalf("expected a PDF document, got %q", first[:8])
	}
}

func TestRenderDocumentWithoutTitle(t *testing.T) {
	t.Parallel()

	reg, event := sampleTicket()
	reg.Title = ""

	doc, err := RenderDocument(reg, event)
	if err != nil {
		t.Fatalf("render without title: %v", err)
	}
	if len(doc) == 0 {
		t.Fatalf("expected non-empty document")
	}
}

func TestTruncateName(t *testing.T) {
	t.Parallel()

	short := "Launch Party"
	if got := truncateName(short); got != short {
		t.Errorf("short names must pass through, got %q", got)
	}

	long := "An Extraordinarily Long Event Name"
	got := truncateName(long)
	if got != long[:maxEventNameLen]+"..." {
		t.Errorf("expected truncation with ellipsis, got %q", got)
	}
}

func TestFilename(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		want string
	}{
		{"Ada Lovelace", "Ada_Lovelace_ticket.pdf"},
		{"  Ada   Lovelace ", "Ada_Lovelace_ticket.pdf"},
		{"Cher", "Cher_ticket.pdf"},
	}
	for _, tc := range tests {
		if got := Filename(tc.name); got != tc.want {
			t.Errorf("Filename(%q): expected %q, got %q", tc.name, tc.want, got)
		}
	}
}
