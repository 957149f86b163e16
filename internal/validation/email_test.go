package validation

import (
	"strings"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email   string
		wantErr bool
	}{
		{"ann@example.com", false},
		{"a.b+c@sub.example.org", false},
		{"", true},
		{"no-at-sign", true},
		{"Ann <ann@example.com>", true},
		{strings.Repeat("a", 250) + "@x.io", true},
	}
	for _, tt := range tests {
		err := ValidateEmail(tt.email)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
		}
	}
}
