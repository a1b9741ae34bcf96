package logger

import (
	"strings"
	"testing"
)

func TestRedactorRewritesSensitiveKeys(t *testing.T) {
	r := &redactor{salt: "pepper"}
	jwt := "eyJhbGciOiJIUzI1NiJ9.eyJzdWIiOiJzdGFmZiJ9.sig"
	out := r.apply([]interface{}{
		"staff_id", "7f1c",
		"Authorization", "Bearer abc",
		"session_id", "sess-1",
		"note", jwt,
		"details", map[string]interface{}{"api_token": "x", "title": "Rule A.1"},
		"dangling",
	})

	if out[1] != "7f1c" {
		t.Fatalf("staff_id should pass through, got %v", out[1])
	}
	if out[3] != redacted || out[7] != redacted {
		t.Fatalf("secrets leaked: %v %v", out[3], out[7])
	}
	if s, _ := out[5].(string); !strings.HasPrefix(s, "hash:") || s == "hash:" {
		t.Fatalf("session id not hashed: %v", out[5])
	}
	if r.hash("sess-1") != out[5] {
		t.Fatalf("hash must be stable")
	}
	details := out[9].(map[string]interface{})
	if details["api_token"] != redacted || details["title"] != "Rule A.1" {
		t.Fatalf("nested map not sanitized: %v", details)
	}
	if out[10] != "dangling" {
		t.Fatalf("odd trailing key dropped")
	}
}

func TestNilRedactorPassesThrough(t *testing.T) {
	var r *redactor
	in := []interface{}{"token", "abc"}
	if out := r.apply(in); out[1] != "abc" {
		t.Fatalf("nil redactor rewrote %v", out)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	t.Setenv("LOG_LEVEL", "loud")
	if _, err := New("test"); err == nil {
		t.Fatalf("expected invalid LOG_LEVEL to fail")
	}
}
