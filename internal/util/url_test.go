package util

import "testing"

// ExtractURLPath backs streaming.Hub.PublishAPICall's dedup key: two calls
// to the same endpoint with different query strings must normalize to the
// same key.
func TestExtractURLPath_StripsQueryAndFragmentForDedup(t *testing.T) {
	t.Parallel()
	a := ExtractURLPath("https://x.test/api/users?page=1")
	b := ExtractURLPath("https://x.test/api/users?page=2#recent")
	if a != b {
		t.Fatalf("paths diverged on query/fragment alone: %q vs %q", a, b)
	}
	if a != "/api/users" {
		t.Fatalf("got %q, want /api/users", a)
	}
}

func TestExtractURLPath_RootWhenNoPathSegment(t *testing.T) {
	t.Parallel()
	if got := ExtractURLPath("https://x.test"); got != "/" {
		t.Fatalf("got %q, want /", got)
	}
}

func TestExtractURLPath_UnparseableURLPassesThroughUnchanged(t *testing.T) {
	t.Parallel()
	// A dedup key derived from an unparseable URL must still be something
	// (never empty), so the gate doesn't collapse every bad URL onto one key.
	input := string([]byte{0x7f})
	if got := ExtractURLPath(input); got != input {
		t.Fatalf("got %q, want original input echoed back", got)
	}
}
