// Package batch assembles tokenized sentences into right-padded id tensors.
package batch

import (
	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/born-ml/seqnn/internal/tokenizer"
)

// MaxLen returns the number of tokens of the longest sentence.
func MaxLen(sentences [][]string) int {
	longest := 0
	for _, s := range sentences {
		longest = max(longest, len(s))
	}
	return longest
}

// Words maps every token through vocab and returns a [batch, maxLen] tensor
// right-padded with pad.
func Words[B tensor.Backend](sentences [][]string, vocab *tokenizer.Vocab, pad int32, backend B) *tensor.Tensor[int32, B] {
	seq := MaxLen(sentences)
	data := filled(len(sentences)*seq, pad)
	for i, sentence := range sentences {
		copy(data[i*seq:], vocab.IDs(sentence))
	}
	return tensor.MustFromSlice(data, tensor.Shape{len(sentences), seq}, backend)
}

// Chars maps the runes of every token through charVocab and returns a
// [batch, maxLen, maxWordLen] tensor padded with pad on both inner axes.
// Longer words are truncated. A maxWordLen <= 0 uses the longest word.
func Chars[B tensor.Backend](sentences [][]string, charVocab *tokenizer.Vocab, maxWordLen int, pad int32, backend B) *tensor.Tensor[int32, B] {
	if maxWordLen <= 0 {
		for _, sentence := range sentences {
			for _, word := range sentence {
				maxWordLen = max(maxWordLen, len([]rune(word)))
			}
		}
	}

	seq := MaxLen(sentences)
	data := filled(len(sentences)*seq*maxWordLen, pad)
	for i, sentence := range sentences {
		for j, word := range sentence {
			ids := charVocab.IDs(tokenizer.Chars(word))
			if len(ids) > maxWordLen {
				ids = ids[:maxWordLen]
			}
			copy(data[(i*seq+j)*maxWordLen:], ids)
		}
	}
	return tensor.MustFromSlice(data, tensor.Shape{len(sentences), seq, maxWordLen}, backend)
}

// CharTokens flattens the runes of every token of every sentence, for
// building a character vocabulary.
func CharTokens(sentences [][]string) []string {
	var out []string
	for _, sentence := range sentences {
		for _, word := range sentence {
			out = append(out, tokenizer.Chars(word)...)
		}
	}
	return out
}

func filled(n int, value int32) []int32 {
	data := make([]int32, n)
	if value != 0 {
		for i := range data {
			data[i] = value
		}
	}
	return data
}
