package api

import (
	"testing"
	"time"
)

func TestParseDueDateEmpty(t *testing.T) {
	got, err := ParseDueDate("   ")
	if err != nil {
		t.Fatalf("ParseDueDate() error: %v", err)
	}
	if got != nil {
		t.Fatalf("expected nil for a cleared field, got %v", got)
	}
}

func TestParseDueDateForms(t *testing.T) {
	cases := []string{
		"2026-03-15",
		"2026-03-15 09:30",
		"2026-03-15T09:30",
		"2026-03-15T09:30:00Z",
	}
	for _, raw := range cases {
		got, err := ParseDueDate(raw)
		if err != nil {
			t.Fatalf("ParseDueDate(%q) error: %v", raw, err)
		}
		if got == nil {
			t.Fatalf("ParseDueDate(%q) returned nil", raw)
		}
		if got.Location() != time.UTC {
			t.Fatalf("ParseDueDate(%q) not normalized to UTC: %v", raw, got)
		}
	}
}

func TestParseDueDateLocalInterpretation(t *testing.T) {
	got, err := ParseDueDate("2026-03-15 09:30")
	if err != nil {
		t.Fatalf("ParseDueDate() error: %v", err)
	}
	want := time.Date(2026, time.March, 15, 9, 30, 0, 0, time.Local).UTC()
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestParseDueDateRejectsGarbage(t *testing.T) {
	if _, err := ParseDueDate("next tuesday"); err == nil {
		t.Fatalf("expected an error for unparseable input")
	}
}

func TestDraftPayloadTrimsTitle(t *testing.T) {
	p, err := TaskDraft{Title: "  hello  "}.payload()
	if err != nil {
		t.Fatalf("payload() error: %v", err)
	}
	if p.Title != "hello" {
		t.Fatalf("expected trimmed title, got %q", p.Title)
	}
	if p.DueDate != nil {
		t.Fatalf("expected nil due date, got %v", p.DueDate)
	}
}

func TestDraftPayloadBadDueDate(t *testing.T) {
	_, err := TaskDraft{Title: "x", DueDate: "soonish"}.payload()
	if err == nil {
		t.Fatalf("expected a due_date validation error")
	}
}
