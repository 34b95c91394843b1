// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package cache

import (
	"reflect"
	"testing"
)

func values(rs []TrieResult) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Value
	}
	return out
}

func newTitleTrie() *Trie {
	t := NewTrie()
	t.Insert("Heat (1995)", 80)
	t.Insert("Heathers (1989)", 20)
	t.Insert("Hamlet (1990) [#1411]", 5)
	t.Insert("Hamlet (1990) [#2307]", 5)
	t.Insert("Her (2013)", 40)
	return t
}

func TestTrie_Complete(t *testing.T) {
	trie := newTitleTrie()

	tests := []struct {
		name   string
		prefix string
		limit  int
		want   []string
	}{
		{"ranked by weight", "hea", 0, []string{"Heat (1995)", "Heathers (1989)"}},
		{"case insensitive", "HEAT", 0, []string{"Heat (1995)", "Heathers (1989)"}},
		{"ties alphabetical", "hamlet", 0, []string{"Hamlet (1990) [#1411]", "Hamlet (1990) [#2307]"}},
		{"limit", "h", 2, []string{"Heat (1995)", "Her (2013)"}},
		{"empty prefix lists all", "", 0, []string{"Heat (1995)", "Her (2013)", "Heathers (1989)", "Hamlet (1990) [#1411]", "Hamlet (1990) [#2307]"}},
		{"no match", "x", 0, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := trie.Complete(tt.prefix, tt.limit)
			if tt.want == nil {
				if got != nil {
					t.Errorf("Complete(%q) = %v, want nil", tt.prefix, values(got))
				}
				return
			}
			if !reflect.DeepEqual(values(got), tt.want) {
				t.Errorf("Complete(%q, %d) = %v, want %v", tt.prefix, tt.limit, values(got), tt.want)
			}
		})
	}
}

func TestTrie_InsertReplacesWeight(t *testing.T) {
	trie := newTitleTrie()
	trie.Insert("Heathers (1989)", 100)

	if trie.Len() != 5 {
		t.Errorf("Len() = %d, want 5", trie.Len())
	}
	got := values(trie.Complete("heat", 0))
	if want := []string{"Heathers (1989)", "Heat (1995)"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Complete = %v, want %v", got, want)
	}
}

func TestTrie_CaseVariantsKeptApart(t *testing.T) {
	trie := NewTrie()
	trie.Insert("Up (2009)", 1)
	trie.Insert("UP (2009)", 2)
	trie.Insert("", 9)

	if trie.Len() != 2 {
		t.Errorf("Len() = %d, want 2", trie.Len())
	}
	if !trie.Contains("up (2009)") {
		t.Error("Contains should ignore case")
	}
	if trie.Contains("up") {
		t.Error("Contains(prefix) = true, want false")
	}
}
