// Package tokenizer turns raw text into the token-id channels consumed by
// the sequence encoders.
//
// Text is split into word tokens by a Tokenizer (Whitespace, or TikToken
// for BPE subwords) and mapped to ids through a Vocab. Id 0 is reserved for
// padding and id 1 for unknown tokens, matching the default padding index
// of the embedding layers.
//
// Example usage:
//
//	tok := tokenizer.Whitespace{}
//	words, _ := tok.Tokenize("the cat sat")
//	vocab := tokenizer.Build(words, 1)
//	ids := vocab.IDs(words)
package tokenizer
