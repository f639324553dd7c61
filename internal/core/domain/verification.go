package domain

import "strings"

// CodeLength is the number of digits in an email verification code.
const CodeLength = 6

// CodeEntry models the six single-digit boxes of the verification form.
// Submission fires exactly once per fill; Fail re-arms it.
type CodeEntry struct {
	digits    [CodeLength]byte
	focus     int
	submitted bool
}

// Input handles a keystroke in box index. An empty value clears the box.
// Anything other than a single ASCII digit is rejected and leaves the entry
// untouched. It returns true when this keystroke completes the code and the
// caller must submit it.
func (e *CodeEntry) Input(index int, value string) bool {
	if index < 0 || index >= CodeLength {
		return false
	}
	if value == "" {
		e.digits[index] = 0
		return false
	}
	if len(value) != 1 || !isDigit(value[0]) {
		return false
	}
	e.digits[index] = value[0]
	if index < CodeLength-1 {
		e.focus = index + 1
	}
	return e.fire()
}

// Backspace on an empty box moves focus to the previous one.
func (e *CodeEntry) Backspace(index int) {
	if index > 0 && index < CodeLength && e.digits[index] == 0 {
		e.focus = index - 1
	}
}

// Paste fills every box from text once its digits form a full code. Partial
// pastes are ignored. It returns true when the caller must submit.
func (e *CodeEntry) Paste(text string) bool {
	digits := StripNonDigits(text)
	if len(digits) < CodeLength {
		return false
	}
	for i := 0; i < CodeLength; i++ {
		e.digits[i] = digits[i]
	}
	e.focus = CodeLength - 1
	return e.fire()
}

// Fail clears the boxes after a rejected code and returns focus to the first.
func (e *CodeEntry) Fail() {
	e.digits = [CodeLength]byte{}
	e.focus = 0
	e.submitted = false
}

// Complete reports whether every box holds a digit.
func (e *CodeEntry) Complete() bool {
	for _, d := range e.digits {
		if d == 0 {
			return false
		}
	}
	return true
}

// Code is the entered digits; it has CodeLength characters only when complete.
func (e *CodeEntry) Code() string {
	var b strings.Builder
	for _, d := range e.digits {
		if d != 0 {
			b.WriteByte(d)
		}
	}
	return b.String()
}

// Digits returns each box's content for rendering.
func (e *CodeEntry) Digits() []string {
	out := make([]string, CodeLength)
	for i, d := range e.digits {
		if d != 0 {
			out[i] = string(d)
		}
	}
	return out
}

// Focus is the box that should hold the cursor.
func (e *CodeEntry) Focus() int {
	return e.focus
}

func (e *CodeEntry) fire() bool {
	if e.submitted || !e.Complete() {
		return false
	}
	e.submitted = true
	return true
}

// StripNonDigits drops every character that is not an ASCII digit.
func StripNonDigits(s string) string {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if isDigit(s[i]) {
			b.WriteByte(s[i])
		}
	}
	return b.String()
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
