// Cinecorr - Correlation-based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinecorr

package cache

import (
	"sort"
	"strings"
)

type trieEdge struct {
	r    rune
	node *trieNode
}

type trieNode struct {
	children []trieEdge
	entries  []TrieResult // values whose lowercased key ends here
}

func (n *trieNode) child(r rune) *trieNode {
	for _, e := range n.children {
		if e.r == r {
			return e.node
		}
	}
	return nil
}

// TrieResult is one completion.
type TrieResult struct {
	Value  string
	Weight int
}

// Trie is a case-insensitive prefix tree for autocomplete. Completions are
// ranked by weight, then alphabetically.
//
// Inserts are not synchronized; build the trie before sharing it. Lookups
// on a fully built trie are safe for concurrent use.
//
// Children are kept in small slices rather than maps, which keeps a trie
// of tens of thousands of titles compact.
type Trie struct {
	root *trieNode
	size int
}

// NewTrie creates an empty Trie.
func NewTrie() *Trie {
	return &Trie{root: &trieNode{}}
}

// Insert adds value with a ranking weight. Inserting the same value again
// replaces its weight. Empty values are ignored.
func (t *Trie) Insert(value string, weight int) {
	if value == "" {
		return
	}

	node := t.root
	for _, r := range strings.ToLower(value) {
		next := node.child(r)
		if next == nil {
			next = &trieNode{}
			node.children = append(node.children, trieEdge{r: r, node: next})
		}
		node = next
	}

	for i := range node.entries {
		if node.entries[i].Value == value {
			node.entries[i].Weight = weight
			return
		}
	}
	node.entries = append(node.entries, TrieResult{Value: value, Weight: weight})
	t.size++
}

// Contains reports whether value was inserted, ignoring case.
func (t *Trie) Contains(value string) bool {
	node := t.find(value)
	return node != nil && len(node.entries) > 0
}

// Complete returns values starting with prefix, ignoring case, best first.
// limit <= 0 returns every match.
func (t *Trie) Complete(prefix string, limit int) []TrieResult {
	node := t.find(prefix)
	if node == nil {
		return nil
	}

	var results []TrieResult
	collect(node, &results)

	sort.Slice(results, func(i, j int) bool {
		if results[i].Weight != results[j].Weight {
			return results[i].Weight > results[j].Weight
		}
		return results[i].Value < results[j].Value
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

// Len returns the number of distinct values.
func (t *Trie) Len() int {
	return t.size
}

func (t *Trie) find(prefix string) *trieNode {
	node := t.root
	for _, r := range strings.ToLower(prefix) {
		if node = node.child(r); node == nil {
			return nil
		}
	}
	return node
}

func collect(node *trieNode, results *[]TrieResult) {
	*results = append(*results, node.entries...)
	for _, e := range node.children {
		collect(e.node, results)
	}
}
