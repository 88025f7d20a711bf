package models

import (
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"already normalized", "karate belt ranks", "karate belt ranks"},
		{"mixed case", "Karate Belt RANKS", "karate belt ranks"},
		{"leading and trailing space", "  karate belt ranks  ", "karate belt ranks"},
		{"internal whitespace collapsed", "karate \t belt\n\nranks", "karate belt ranks"},
		{"empty", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"unicode preserved", "Karaté Gürtel", "karaté gürtel"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Normalize(tt.raw); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{"  Karate   Belt RANKS ", "judo\tthrows", "a"}
	for _, raw := range inputs {
		once := Normalize(raw)
		if twice := Normalize(once); twice != once {
			t.Errorf("Normalize not idempotent for %q: %q != %q", raw, once, twice)
		}
	}
}

func TestCacheKey(t *testing.T) {
	key := CacheKey("karate belt ranks", 5, "all-minilm+llama3.2")

	if len(key) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(key))
	}

	t.Run("deterministic", func(t *testing.T) {
		again := CacheKey("karate belt ranks", 5, "all-minilm+llama3.2")
		if again != key {
			t.Errorf("same inputs produced different keys")
		}
	})

	t.Run("query changes key", func(t *testing.T) {
		if CacheKey("judo throws", 5, "all-minilm+llama3.2") == key {
			t.Errorf("different query produced same key")
		}
	})

	t.Run("topK changes key", func(t *testing.T) {
		if CacheKey("karate belt ranks", 10, "all-minilm+llama3.2") == key {
			t.Errorf("different topK produced same key")
		}
	})

	t.Run("model version changes key", func(t *testing.T) {
		if CacheKey("karate belt ranks", 5, "all-minilm+mistral") == key {
			t.Errorf("different model version produced same key")
		}
	})
}

func TestNewQuery(t *testing.T) {
	q := NewQuery("  Karate   Belt RANKS ", "u-1")

	if q.Raw != "  Karate   Belt RANKS " {
		t.Errorf("raw query mutated: %q", q.Raw)
	}
	if q.Normalized != "karate belt ranks" {
		t.Errorf("Normalized = %q", q.Normalized)
	}
	if q.UserID != "u-1" {
		t.Errorf("UserID = %q", q.UserID)
	}
	if q.ReceivedAt.IsZero() {
		t.Error("ReceivedAt not stamped")
	}
}

func TestSortDocuments(t *testing.T) {
	docs := []RetrievedDocument{
		{ID: "c", Score: 0.5},
		{ID: "a", Score: 0.9},
		{ID: "d", Score: 0.7},
		{ID: "b", Score: 0.9},
	}

	SortDocuments(docs)

	wantOrder := []string{"a", "b", "d", "c"}
	for i, want := range wantOrder {
		if docs[i].ID != want {
			t.Fatalf("position %d: got %s, want %s (full order %v)", i, docs[i].ID, want, docs)
		}
	}
}

func TestSortDocumentsTiesByID(t *testing.T) {
	docs := []RetrievedDocument{
		{ID: "z", Score: 0.8},
		{ID: "m", Score: 0.8},
		{ID: "a", Score: 0.8},
	}

	SortDocuments(docs)

	if docs[0].ID != "a" || docs[1].ID != "m" || docs[2].ID != "z" {
		t.Errorf("ties not broken by ID ascending: %v", docs)
	}
}
