package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
		{"y", true},
	}
	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			c := New(strings.NewReader(tt.input), &out, true)

			got, err := c.Confirm("Recreate?")
			if err != nil {
				t.Fatalf("Confirm() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Confirm() with %q = %v, want %v", tt.input, got, tt.want)
			}
			if out.String() != "Recreate? [y/N] " {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}
}

func TestConfirmSequence(t *testing.T) {
	c := New(strings.NewReader("y\nn\n"), &bytes.Buffer{}, true)

	first, _ := c.Confirm("one")
	second, _ := c.Confirm("two")
	if !first || second {
		t.Errorf("answers = %v, %v; want true, false", first, second)
	}
}

func TestConfirmNonInteractiveDeclines(t *testing.T) {
	var out bytes.Buffer
	c := New(strings.NewReader("y\n"), &out, false)

	if got, _ := c.Confirm("Overwrite?"); got {
		t.Error("non-interactive Confirm() should decline")
	}
	if !strings.Contains(out.String(), "not a terminal") {
		t.Errorf("output = %q", out.String())
	}
}

func TestConfirmAssumeYes(t *testing.T) {
	c := New(strings.NewReader(""), &bytes.Buffer{}, false, WithAssumeYes(true))
	if got, _ := c.Confirm("Reset?"); !got {
		t.Error("WithAssumeYes should confirm")
	}
}
