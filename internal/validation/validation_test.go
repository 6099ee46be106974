package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		ok    bool
	}{
		{"bob@dylan.com", true},
		{"a.b+c@sub.example.org", true},
		{"bob", false},
		{"bob@", false},
		{"Bob <bob@dylan.com>", false},
		{strings.Repeat("a", 250) + "@x.io", false},
	}
	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if (err == nil) != tt.ok {
			t.Errorf("ValidateEmail(%q) = %v, want ok=%v", tt.email, err, tt.ok)
		}
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("toto"); err != ErrPasswordTooShort {
		t.Errorf("short password: %v", err)
	}
	if err := ValidatePassword("toto1234!"); err != nil {
		t.Errorf("valid password: %v", err)
	}
	if err := ValidatePassword(strings.Repeat("x", 73)); err != ErrPasswordTooLong {
		t.Errorf("long password: %v", err)
	}
}

func TestValidateFileName(t *testing.T) {
	if err := ValidateFileName("images"); err != nil {
		t.Errorf("valid name: %v", err)
	}
	if err := ValidateFileName(strings.Repeat("n", 256)); err != ErrNameTooLong {
		t.Errorf("long name: %v", err)
	}
	if err := ValidateFileName("a\x00b"); err == nil {
		t.Error("expected error for NUL byte")
	}
}
