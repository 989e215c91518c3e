package tokenizer

import (
	"fmt"

	"github.com/pkoukk/tiktoken-go"
)

// DefaultEncoding is the BPE encoding used when none is given.
const DefaultEncoding = "cl100k_base"

// TikToken splits text into BPE subword pieces using the
// pkoukk/tiktoken-go encodings (cl100k_base, p50k_base, r50k_base).
//
// Each piece is the decoded text of one BPE id, so leading spaces are kept
// as part of the piece. Pieces can be mapped through a Vocab like words.
type TikToken struct {
	encoding *tiktoken.Tiktoken
	name     string
}

// NewTikToken loads the named encoding. The first call for an encoding may
// download its BPE ranks.
func NewTikToken(encodingName string) (*TikToken, error) {
	if encodingName == "" {
		encodingName = DefaultEncoding
	}
	encoding, err := tiktoken.GetEncoding(encodingName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tiktoken encoding %q: %w", encodingName, err)
	}

	return &TikToken{
		encoding: encoding,
		name:     encodingName,
	}, nil
}

// Encode converts text to BPE ids.
func (t *TikToken) Encode(text string) []int32 {
	tokens := t.encoding.Encode(text, nil, nil)

	result := make([]int32, len(tokens))
	for i, tok := range tokens {
		result[i] = int32(tok) //nolint:gosec // G115: Token ID fits in int32 - vocab size < 2^31.
	}
	return result
}

// Decode converts BPE ids back to text.
func (t *TikToken) Decode(tokens []int32) string {
	intTokens := make([]int, len(tokens))
	for i, tok := range tokens {
		intTokens[i] = int(tok)
	}
	return t.encoding.Decode(intTokens)
}

// Tokenize implements Tokenizer.
func (t *TikToken) Tokenize(text string) ([]string, error) {
	ids := t.encoding.Encode(text, nil, nil)
	pieces := make([]string, len(ids))
	for i, id := range ids {
		pieces[i] = t.encoding.Decode([]int{id})
	}
	return pieces, nil
}

// Name returns the encoding name.
func (t *TikToken) Name() string {
	return t.name
}

// New returns the tokenizer registered under name: "whitespace",
// "whitespace-lower", or a tiktoken encoding name.
func New(name string) (Tokenizer, error) {
	switch name {
	case "", "whitespace":
		return Whitespace{SplitPunct: true}, nil
	case "whitespace-lower":
		return Whitespace{Lower: true, SplitPunct: true}, nil
	default:
		return NewTikToken(name)
	}
}
