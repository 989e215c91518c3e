package tokenizer

import (
	"strings"
	"unicode"
)

// Tokenizer splits text into tokens.
type Tokenizer interface {
	// Tokenize returns the tokens of text, in order.
	Tokenize(text string) ([]string, error)

	// Name returns the tokenizer name.
	Name() string
}

// Whitespace splits on Unicode white space. With Lower set tokens are
// lower-cased; with SplitPunct every punctuation rune becomes its own token.
type Whitespace struct {
	Lower      bool
	SplitPunct bool
}

// Tokenize implements Tokenizer.
func (w Whitespace) Tokenize(text string) ([]string, error) {
	if w.Lower {
		text = strings.ToLower(text)
	}
	fields := strings.Fields(text)
	if !w.SplitPunct {
		return fields, nil
	}

	tokens := make([]string, 0, len(fields))
	for _, field := range fields {
		start := 0
		for i, r := range field {
			if !unicode.IsPunct(r) {
				continue
			}
			if i > start {
				tokens = append(tokens, field[start:i])
			}
			end := i + len(string(r))
			tokens = append(tokens, field[i:end])
			start = end
		}
		if start < len(field) {
			tokens = append(tokens, field[start:])
		}
	}
	return tokens, nil
}

// Name returns "whitespace".
func (w Whitespace) Name() string {
	return "whitespace"
}

// Chars splits a token into its runes, one string per rune.
func Chars(token string) []string {
	out := make([]string, 0, len(token))
	for _, r := range token {
		out = append(out, string(r))
	}
	return out
}
