package logger

import "testing"

func TestScrubMasksSecretKeys(t *testing.T) {
	in := []interface{}{"openai_api_key", "sk-123", "plan_id", "p1", "db_password", "hunter2"}
	out := scrub(in)
	if out[1] != "[REDACTED]" || out[5] != "[REDACTED]" {
		t.Fatalf("secrets not masked: %v", out)
	}
	if out[3] != "p1" {
		t.Fatalf("plain value changed: %v", out)
	}
	if in[1] != "sk-123" {
		t.Fatalf("input mutated: %v", in)
	}
}

func TestScrubOddLength(t *testing.T) {
	out := scrub([]interface{}{"token", "x", "dangling"})
	if len(out) != 3 || out[1] != "[REDACTED]" || out[2] != "dangling" {
		t.Fatalf("unexpected: %v", out)
	}
}
