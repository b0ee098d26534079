package ai

import "testing"

func TestTokensFor(t *testing.T) {
	if got := TokensFor(TaskClassify); got != 300 {
		t.Fatalf("expected 300 tokens for classify, got %d", got)
	}
	if got := TokensFor(TaskAttributes); got != 1500 {
		t.Fatalf("expected 1500 tokens for attributes, got %d", got)
	}
	if got := TokensFor(Task("unknown")); got != MaxOutputTokens[TaskScore] {
		t.Fatalf("expected score budget fallback, got %d", got)
	}
}
