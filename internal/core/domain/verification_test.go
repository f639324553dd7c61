package domain

import "testing"

func TestCodeEntry_TypingSubmitsOnce(t *testing.T) {
	var e CodeEntry
	fired := 0
	for i, d := range "123456" {
		if e.Input(i, string(d)) {
			fired++
		}
	}
	if fired != 1 {
		t.Fatalf("expected exactly one submit, got %d", fired)
	}
	if e.Code() != "123456" {
		t.Fatalf("Code() = %q", e.Code())
	}

	// Editing the full code again must not resubmit until Fail re-arms it.
	e.Input(5, "7")
	if e.Input(5, "8") {
		t.Fatalf("unexpected second submit")
	}
}

func TestCodeEntry_RejectsNonDigits(t *testing.T) {
	var e CodeEntry
	if e.Input(0, "a") || e.Input(0, "12") {
		t.Fatalf("non-digit input must not submit")
	}
	if e.Digits()[0] != "" {
		t.Fatalf("non-digit input must leave the box empty")
	}
	if e.Focus() != 0 {
		t.Fatalf("focus must not move on rejected input")
	}
}

func TestCodeEntry_Paste(t *testing.T) {
	var e CodeEntry
	if e.Paste("12-34") {
		t.Fatalf("partial paste must be ignored")
	}
	if e.Code() != "" {
		t.Fatalf("partial paste must not fill boxes")
	}
	if !e.Paste("code: 98 76 54 32") {
		t.Fatalf("expected full paste to submit")
	}
	if e.Code() != "987654" {
		t.Fatalf("Code() = %q", e.Code())
	}
}

func TestCodeEntry_FailClearsAndRearms(t *testing.T) {
	var e CodeEntry
	e.Paste("111111")
	e.Fail()
	if e.Code() != "" || e.Focus() != 0 {
		t.Fatalf("Fail must clear boxes and focus the first, got %q focus=%d", e.Code(), e.Focus())
	}
	if !e.Paste("222222") {
		t.Fatalf("expected submit after Fail")
	}
}

func TestCodeEntry_Backspace(t *testing.T) {
	var e CodeEntry
	e.Input(0, "1")
	e.Input(1, "2")
	e.Input(2, "")
	e.Backspace(2)
	if e.Focus() != 1 {
		t.Fatalf("backspace on empty box should move focus back, got %d", e.Focus())
	}
}
