package batch_test

import (
	"testing"

	"github.com/born-ml/seqnn/internal/backend/cpu"
	"github.com/born-ml/seqnn/internal/batch"
	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/born-ml/seqnn/internal/tokenizer"
	"github.com/stretchr/testify/assert"
)

var sentences = [][]string{
	{"the", "cat", "sat"},
	{"a", "dog"},
	{},
}

func TestWords(t *testing.T) {
	b := cpu.New()
	vocab := tokenizer.NewVocab()
	for _, w := range []string{"the", "cat", "sat", "a"} {
		vocab.Add(w)
	}

	ids := batch.Words(sentences, vocab, tokenizer.PadID, b)

	assert.Equal(t, tensor.Shape{3, 3}, ids.Shape())
	assert.Equal(t, []int32{
		2, 3, 4,
		5, tokenizer.UnkID, 0,
		0, 0, 0,
	}, ids.Data())
}

func TestWords_CustomPad(t *testing.T) {
	b := cpu.New()
	ids := batch.Words(sentences[:2], tokenizer.NewVocab(), -1, b)
	assert.Equal(t, []int32{1, 1, 1, 1, 1, -1}, ids.Data())
}

func TestChars(t *testing.T) {
	b := cpu.New()
	chars := tokenizer.Build(batch.CharTokens(sentences), 1)

	ids := batch.Chars(sentences, chars, 2, tokenizer.PadID, b)
	assert.Equal(t, tensor.Shape{3, 3, 2}, ids.Shape())

	// "the" is truncated to "th".
	assert.Equal(t, []int32{chars.ID("t"), chars.ID("h")}, ids.Narrow(0, 0, 1).Narrow(1, 0, 1).Data())
	// "a" is padded, and the missing third word of sentence 1 is all padding.
	assert.Equal(t, []int32{chars.ID("a"), 0}, ids.Narrow(0, 1, 1).Narrow(1, 0, 1).Data())
	assert.Equal(t, []int32{0, 0}, ids.Narrow(0, 1, 1).Narrow(1, 2, 1).Data())
	assert.Equal(t, make([]int32, 6), ids.Narrow(0, 2, 1).Data())

	auto := batch.Chars(sentences, chars, 0, tokenizer.PadID, b)
	assert.Equal(t, tensor.Shape{3, 3, 3}, auto.Shape())
}

func TestMaxLen(t *testing.T) {
	assert.Equal(t, 3, batch.MaxLen(sentences))
	assert.Equal(t, 0, batch.MaxLen(nil))
}
