package middleware

import "testing"

func TestOriginAllowed(t *testing.T) {
	t.Run("exact match", func(t *testing.T) {
		allowlist := []string{"https://thangka.example.com"}
		if !originAllowed(allowlist, "https://thangka.example.com") {
			t.Error("expected exact origin allowed")
		}
		if originAllowed(allowlist, "https://evil.example.net") {
			t.Error("expected foreign origin rejected")
		}
	})

	t.Run("wildcard matches everything", func(t *testing.T) {
		if !originAllowed([]string{"*"}, "https://anywhere.example.org") {
			t.Error("expected wildcard to allow any origin")
		}
	})

	t.Run("subdomain wildcard", func(t *testing.T) {
		allowlist := []string{"*.example.com"}
		if !originAllowed(allowlist, "https://shop.example.com") {
			t.Error("expected subdomain allowed")
		}
		if originAllowed(allowlist, "https://example.org") {
			t.Error("expected unrelated domain rejected")
		}
	})

	t.Run("empty origin is never allowed", func(t *testing.T) {
		if originAllowed([]string{"*"}, "") {
			t.Error("expected empty origin rejected even with wildcard")
		}
	})
}
