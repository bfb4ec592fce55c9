package logger

import "testing"

func TestSanitizeKVsRedactsSecrets(t *testing.T) {
	out := sanitizeKVs([]interface{}{"contract_id", "c-1", "paystack_secret", "sk_live_x", "Authorization", "Bearer abc", "dangling"})
	if len(out) != 7 {
		t.Fatalf("len: want=7 got=%d", len(out))
	}
	if out[1] != "c-1" {
		t.Fatalf("contract_id: want=c-1 got=%v", out[1])
	}
	if out[3] != "[REDACTED]" {
		t.Fatalf("secret: want redacted got=%v", out[3])
	}
	if out[5] != "[REDACTED]" {
		t.Fatalf("authorization: want redacted got=%v", out[5])
	}
	if out[6] != "dangling" {
		t.Fatalf("dangling key: got=%v", out[6])
	}
}

func TestMask(t *testing.T) {
	if got := Mask("abc"); got != "****" {
		t.Fatalf("short: got=%q", got)
	}
	if got := Mask("sk_test_123456"); got != "sk****56" {
		t.Fatalf("long: got=%q", got)
	}
}
