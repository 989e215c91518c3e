package nn

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/tensor"
)

// PackedSequence holds a batch of variable-length sequences with the padding
// removed.
//
// Rows of Data are time-major: first the step-0 vectors of every sequence
// that has a step 0, then the step-1 vectors, and so on. BatchSizes[s] is
// the number of sequences still running at step s. Sequences are ordered
// by non-increasing length, so the sequences active at step s are always
// the first BatchSizes[s] of the batch.
type PackedSequence[B tensor.Backend] struct {
	Data       *tensor.Tensor[float32, B] // [sum(Lengths), features]
	BatchSizes []int
	Lengths    []int // per-sequence lengths, non-increasing
}

// MaxLength returns the length of the longest sequence.
func (p PackedSequence[B]) MaxLength() int {
	return len(p.BatchSizes)
}

// offsets returns the first Data row of every time step.
func (p PackedSequence[B]) offsets() []int {
	out := make([]int, len(p.BatchSizes))
	total := 0
	for s, n := range p.BatchSizes {
		out[s] = total
		total += n
	}
	return out
}

// PackPadded packs a padded batch [batch, seq, features] whose sequences are
// already sorted by non-increasing length.
//
// Zero-length sequences are allowed; they contribute no rows.
// Panics if lengths are unsorted, longer than seq, or do not match batch.
func PackPadded[B tensor.Backend](padded *tensor.Tensor[float32, B], lengths []int) PackedSequence[B] {
	if padded.Dim() != 3 {
		panic(fmt.Sprintf("pack_padded: expected 3D input [batch, seq, features], got shape %v", padded.Shape()))
	}
	batch, seq, features := padded.Size(0), padded.Size(1), padded.Size(2)
	if len(lengths) != batch {
		panic(fmt.Sprintf("pack_padded: got %d lengths for batch of %d", len(lengths), batch))
	}
	for i, l := range lengths {
		if l < 0 || l > seq {
			panic(fmt.Sprintf("pack_padded: length %d of sequence %d out of range [0, %d]", l, i, seq))
		}
		if i > 0 && l > lengths[i-1] {
			panic(fmt.Sprintf("pack_padded: lengths must be sorted in decreasing order, got %v", lengths))
		}
	}

	maxLen := 0
	if batch > 0 {
		maxLen = lengths[0]
	}
	batchSizes := make([]int, maxLen)
	rows := make([]int64, 0, batch*maxLen)
	for s := 0; s < maxLen; s++ {
		for i := 0; i < batch && lengths[i] > s; i++ {
			rows = append(rows, int64(i*seq+s))
			batchSizes[s]++
		}
	}

	index := tensor.MustFromSlice(rows, tensor.Shape{len(rows)}, padded.Backend())
	data := padded.Reshape(batch*seq, features).IndexSelect(0, index)

	return PackedSequence[B]{
		Data:       data,
		BatchSizes: batchSizes,
		Lengths:    append([]int(nil), lengths...),
	}
}

// PadPacked is the inverse of PackPadded: it returns [batch, totalLength,
// features] with zeros after the end of every sequence.
//
// Panics if totalLength is shorter than the longest sequence.
func PadPacked[B tensor.Backend](p PackedSequence[B], totalLength int) *tensor.Tensor[float32, B] {
	if totalLength < p.MaxLength() {
		panic(fmt.Sprintf("pad_packed: total length %d shorter than longest sequence %d", totalLength, p.MaxLength()))
	}

	batch := len(p.Lengths)
	features := p.Data.Size(1)
	numRows := p.Data.Size(0)
	offsets := p.offsets()

	// Padded positions point at an extra all-zero row appended to Data.
	zero := tensor.Zeros[float32](tensor.Shape{1, features}, p.Data.Backend())
	source := tensor.Cat([]*tensor.Tensor[float32, B]{p.Data, zero}, 0)

	rows := make([]int64, batch*totalLength)
	for i := 0; i < batch; i++ {
		for s := 0; s < totalLength; s++ {
			row := int64(numRows)
			if s < p.Lengths[i] {
				row = int64(offsets[s] + i)
			}
			rows[i*totalLength+s] = row
		}
	}

	index := tensor.MustFromSlice(rows, tensor.Shape{len(rows)}, p.Data.Backend())
	return source.IndexSelect(0, index).Reshape(batch, totalLength, features)
}
