package sequence

import "testing"

func TestNext(t *testing.T) {
	if got := Next("C", nil); got != "C001" {
		t.Fatalf("empty collection: got %s", got)
	}
	if got := Next("C", []string{"C001", "C003", "C002"}); got != "C004" {
		t.Fatalf("expected C004, got %s", got)
	}
	// Unprefixed numeric identifiers still count toward the max.
	if got := Next("P", []string{"P002", "7"}); got != "P008" {
		t.Fatalf("expected P008, got %s", got)
	}
	if got := Next("O", []string{"junk"}); got != "O001" {
		t.Fatalf("unparseable ids ignored: got %s", got)
	}
}
