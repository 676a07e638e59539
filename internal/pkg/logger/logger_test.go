package logger

import "testing"

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{"username", "alice", "password", "hunter2", "account_id", "abc", "dangling"})
	if len(got) != 7 {
		t.Fatalf("expected 7 entries, got %d: %v", len(got), got)
	}
	if got[1] != "alice" {
		t.Fatalf("username should pass through, got %v", got[1])
	}
	if got[3] != "[REDACTED]" {
		t.Fatalf("password should be redacted, got %v", got[3])
	}
	hashed, ok := got[5].(string)
	if !ok || len(hashed) != len("hash:")+12 {
		t.Fatalf("account_id should be hashed, got %v", got[5])
	}
	if got[6] != "dangling" {
		t.Fatalf("trailing key should be kept, got %v", got[6])
	}
}
