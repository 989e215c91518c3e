package tokenizer

import (
	"fmt"
	"sort"
)

// Reserved tokens and their ids.
const (
	PadToken = "<pad>"
	UnkToken = "<unk>"

	PadID int32 = 0
	UnkID int32 = 1
)

// Vocab is a bidirectional token <-> id mapping. Ids are dense, starting at
// 0 with the reserved padding and unknown tokens.
type Vocab struct {
	ids    map[string]int32
	tokens []string
}

// NewVocab returns a vocabulary holding only the reserved tokens.
func NewVocab() *Vocab {
	v := &Vocab{ids: make(map[string]int32)}
	v.Add(PadToken)
	v.Add(UnkToken)
	return v
}

// Build creates a vocabulary from tokens, keeping those seen at least
// minCount times. More frequent tokens get smaller ids; ties are broken
// alphabetically so the result is deterministic.
func Build(tokens []string, minCount int) *Vocab {
	counts := make(map[string]int)
	for _, tok := range tokens {
		counts[tok]++
	}

	kept := make([]string, 0, len(counts))
	for tok, n := range counts {
		if n >= minCount {
			kept = append(kept, tok)
		}
	}
	sort.Slice(kept, func(i, j int) bool {
		if counts[kept[i]] != counts[kept[j]] {
			return counts[kept[i]] > counts[kept[j]]
		}
		return kept[i] < kept[j]
	})

	v := NewVocab()
	for _, tok := range kept {
		v.Add(tok)
	}
	return v
}

// Add inserts token if missing and returns its id.
func (v *Vocab) Add(token string) int32 {
	if id, ok := v.ids[token]; ok {
		return id
	}
	id := int32(len(v.tokens)) //nolint:gosec // G115: vocabularies stay far below 2^31 entries
	v.ids[token] = id
	v.tokens = append(v.tokens, token)
	return id
}

// ID returns the id of token, or UnkID when it is not in the vocabulary.
func (v *Vocab) ID(token string) int32 {
	if id, ok := v.ids[token]; ok {
		return id
	}
	return UnkID
}

// IDs maps every token through ID.
func (v *Vocab) IDs(tokens []string) []int32 {
	out := make([]int32, len(tokens))
	for i, tok := range tokens {
		out[i] = v.ID(tok)
	}
	return out
}

// Token returns the token with the given id.
func (v *Vocab) Token(id int32) (string, error) {
	if id < 0 || int(id) >= len(v.tokens) {
		return "", fmt.Errorf("token id %d out of range [0, %d)", id, len(v.tokens))
	}
	return v.tokens[id], nil
}

// Contains reports whether token has its own id.
func (v *Vocab) Contains(token string) bool {
	_, ok := v.ids[token]
	return ok
}

// Len returns the number of ids, including the reserved ones.
func (v *Vocab) Len() int {
	return len(v.tokens)
}

// FromTokens rebuilds a vocabulary from its tokens in id order, as returned
// by Tokens. The reserved tokens must come first.
func FromTokens(tokens []string) (*Vocab, error) {
	if len(tokens) < 2 || tokens[PadID] != PadToken || tokens[UnkID] != UnkToken {
		return nil, fmt.Errorf("vocabulary must start with %s and %s", PadToken, UnkToken)
	}

	v := NewVocab()
	for i, tok := range tokens[2:] {
		if v.Add(tok) != int32(i+2) { //nolint:gosec // G115: vocabularies stay far below 2^31 entries
			return nil, fmt.Errorf("duplicate token %q", tok)
		}
	}
	return v, nil
}

// Tokens returns every token in id order.
func (v *Vocab) Tokens() []string {
	return append([]string(nil), v.tokens...)
}
