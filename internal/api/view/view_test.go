package view

import (
	"bytes"
	"strings"
	"testing"
)

func render(t *testing.T, name string, p *Page) string {
	t.Helper()
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	var buf bytes.Buffer
	if err := r.Render(&buf, name, p, nil); err != nil {
		t.Fatalf("Render(%s): %v", name, err)
	}
	return buf.String()
}

func TestRenderer_EveryPageRenders(t *testing.T) {
	for _, name := range pageNames {
		p := NewPage(name)
		p.Digits = make([]string, 6)
		if out := render(t, name, p); !strings.Contains(out, "<title>"+name) {
			t.Errorf("%s: missing title", name)
		}
	}
}

func TestRenderer_EscapesUserInput(t *testing.T) {
	p := NewPage("Sign In")
	p.Form["email"] = `"><script>alert(1)</script>`
	p.Error = "<b>bad</b>"
	out := render(t, PageSignIn, p)
	if strings.Contains(out, "<script>alert(1)</script>") || strings.Contains(out, "<b>bad</b>") {
		t.Fatalf("user input was not escaped")
	}
}

func TestRenderer_ResetPasswordWithoutToken(t *testing.T) {
	out := render(t, PageResetPassword, NewPage("Reset Password"))
	if !strings.Contains(out, "Invalid Link") {
		t.Fatalf("expected invalid link panel")
	}
}

func TestRenderer_VerifyFocus(t *testing.T) {
	p := NewPage("Verify")
	p.Digits = []string{"1", "2", "", "", "", ""}
	p.Focus = 2
	out := render(t, PageVerify, p)
	if strings.Count(out, "autofocus") != 1 || !strings.Contains(out, `name="d2"`) {
		t.Fatalf("expected exactly one focused digit box")
	}
}

func TestRenderer_UnknownPage(t *testing.T) {
	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if err := r.Render(&bytes.Buffer{}, "nope", NewPage("x"), nil); err == nil {
		t.Fatalf("expected error for unknown page")
	}
}
