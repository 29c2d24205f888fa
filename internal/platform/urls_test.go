package platform

import (
	"errors"
	"testing"
)

func TestIsAbsoluteURL(t *testing.T) {
	tests := []struct {
		ref      string
		expected bool
	}{
		{"https://x.test/a.pdf", true},
		{"http://x.test/a.pdf", true},
		{"file:///tmp/a.pdf", true},
		{"/a.pdf", false},
		{"a.pdf", false},
		{"uploads/thumb.png", false},
		{`C:\files\a.pdf`, false},
		{"", false},
	}

	for _, test := range tests {
		if got := IsAbsoluteURL(test.ref); got != test.expected {
			t.Errorf("IsAbsoluteURL(%q) = %v, expected %v", test.ref, got, test.expected)
		}
	}
}

func TestResolveAssetURL(t *testing.T) {
	tests := []struct {
		name     string
		base     string
		ref      string
		expected string
		err      error
	}{
		{"relative with leading slash", "https://x.test", "/a.pdf", "https://x.test/a.pdf", nil},
		{"relative without slash", "https://x.test", "a.pdf", "https://x.test/a.pdf", nil},
		{"base with trailing slash", "https://x.test/", "/a.pdf", "https://x.test/a.pdf", nil},
		{"base with path", "https://x.test/api", "/files/a.pdf", "https://x.test/api/files/a.pdf", nil},
		{"absolute passes through", "https://x.test", "https://cdn.test/t.png", "https://cdn.test/t.png", nil},
		{"absolute without base", "", "https://cdn.test/t.png", "https://cdn.test/t.png", nil},
		{"relative without base", "", "/a.pdf", "", ErrBaseURLRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveAssetURL(tt.base, tt.ref)
			if !errors.Is(err, tt.err) {
				t.Fatalf("expected error %v, got %v", tt.err, err)
			}
			if got != tt.expected {
				t.Errorf("ResolveAssetURL(%q, %q) = %q, expected %q", tt.base, tt.ref, got, tt.expected)
			}
		})
	}
}
