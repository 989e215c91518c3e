package serialization_test

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/born-ml/seqnn/internal/backend/cpu"
	"github.com/born-ml/seqnn/internal/nn"
	"github.com/born-ml/seqnn/internal/serialization"
	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rawFloat(t *testing.T, shape tensor.Shape, values []float32) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), values)
	return raw
}

func TestSafeTensors_RoundTripFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.safetensors")

	ids, err := tensor.NewRaw(tensor.Shape{3}, tensor.Int64, tensor.CPU)
	require.NoError(t, err)
	copy(ids.AsInt64(), []int64{-1, 0, 1 << 40})

	dict := map[string]*tensor.RawTensor{
		"weight": rawFloat(t, tensor.Shape{2, 3}, []float32{1, 2, 3, 4, 5, 6.5}),
		"bias":   rawFloat(t, tensor.Shape{3}, []float32{0.1, 0.2, 0.3}),
		"ids":    ids,
	}
	meta := map[string]string{"format": "pt"}

	require.NoError(t, serialization.WriteSafeTensors(path, dict, meta))

	loaded, loadedMeta, err := serialization.ReadSafeTensors(path)
	require.NoError(t, err)
	assert.Equal(t, meta, loadedMeta)
	require.Len(t, loaded, 3)

	for name, want := range dict {
		got := loaded[name]
		require.NotNil(t, got, name)
		assert.Equal(t, want.Shape(), got.Shape(), name)
		assert.Equal(t, want.DType(), got.DType(), name)
		assert.Equal(t, want.Data(), got.Data(), name)
	}
}

func TestSafeTensors_HalfPrecision(t *testing.T) {
	var buf bytes.Buffer
	values := []float32{0.5, -2, 1024, 0.1}
	dict := map[string]*tensor.RawTensor{"w": rawFloat(t, tensor.Shape{2, 2}, values)}

	w := serialization.NewWriter(&buf, serialization.WithHalfPrecision())
	require.NoError(t, w.WriteStateDict(dict, nil))
	require.NoError(t, w.Close())

	infos, _, err := serialization.ReadHeader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, infos, 1)
	assert.Equal(t, serialization.DTypeF16, infos[0].DType)
	assert.Equal(t, int64(8), infos[0].Size())

	loaded, meta, err := serialization.Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Nil(t, meta)

	got := loaded["w"]
	assert.Equal(t, tensor.Float32, got.DType())
	assert.InDeltaSlice(t, values, got.AsFloat32(), 1e-3)
}

func TestSafeTensors_HeaderIsSorted(t *testing.T) {
	var buf bytes.Buffer
	dict := map[string]*tensor.RawTensor{
		"c": rawFloat(t, tensor.Shape{1}, []float32{3}),
		"a": rawFloat(t, tensor.Shape{2}, []float32{1, 1}),
		"b": rawFloat(t, tensor.Shape{0}, nil),
	}
	require.NoError(t, serialization.NewWriter(&buf).WriteStateDict(dict, nil))

	infos, _, err := serialization.ReadHeader(&buf)
	require.NoError(t, err)

	names := make([]string, len(infos))
	for i, info := range infos {
		names[i] = info.Name
	}
	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Errorf("tensor order mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, [2]int64{8, 8}, infos[1].DataOffsets)
	assert.Equal(t, [2]int64{8, 12}, infos[2].DataOffsets)
}

func TestSafeTensors_StateDictRoundTrip(t *testing.T) {
	b := cpu.New()
	nn.Seed(1)
	src := nn.NewCharCNN(12, 4, b, nn.WithNumFilters(6))
	nn.Seed(2)
	dst := nn.NewCharCNN(12, 4, b, nn.WithNumFilters(6))

	path := filepath.Join(t.TempDir(), "chars.safetensors")
	require.NoError(t, serialization.WriteSafeTensors(path, nn.StateDict[*cpu.CPUBackend](src), nil))

	loaded, _, err := serialization.ReadSafeTensors(path)
	require.NoError(t, err)
	require.NoError(t, nn.LoadStateDict[*cpu.CPUBackend](dst, loaded))

	ids := tensor.MustFromSlice([]int32{1, 2, 3, 0, 5, 0, 0, 0}, tensor.Shape{2, 4}, b)
	assert.Equal(t, src.Forward(ids).Data(), dst.Forward(ids).Data())
}

func header(t *testing.T, json string, data ...byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.LittleEndian, uint64(len(json))))
	buf.WriteString(json)
	buf.Write(data)
	return buf.Bytes()
}

func TestSafeTensors_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input []byte
		want  error
	}{
		{"truncated size", []byte{1, 2}, serialization.ErrInvalidHeader},
		{"zero size", header(t, ""), serialization.ErrInvalidHeader},
		{"bad json", header(t, "{not json"), serialization.ErrInvalidHeader},
		{"unknown dtype", header(t, `{"x":{"dtype":"Q4","shape":[1],"data_offsets":[0,1]}}`, 0), serialization.ErrUnsupportedDType},
		{"size mismatch", header(t, `{"x":{"dtype":"F32","shape":[2],"data_offsets":[0,4]}}`, 0, 0, 0, 0), serialization.ErrInvalidHeader},
		{"element count overflow", header(t, `{"x":{"dtype":"F32","shape":[4611686018427387904,4],"data_offsets":[0,0]}}`), serialization.ErrInvalidHeader},
		{"byte size overflow", header(t, `{"x":{"dtype":"I64","shape":[2305843009213693952],"data_offsets":[0,0]}}`), serialization.ErrInvalidHeader},
		{"negative dim", header(t, `{"x":{"dtype":"F32","shape":[-1],"data_offsets":[0,0]}}`), serialization.ErrInvalidHeader},
		{"out of bounds", header(t, `{"x":{"dtype":"F32","shape":[2],"data_offsets":[0,8]}}`, 0, 0, 0, 0), serialization.ErrOutOfBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := serialization.Decode(bytes.NewReader(tt.input))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSafeTensorsWriter_Closed(t *testing.T) {
	w, err := serialization.NewSafeTensorsWriter(filepath.Join(t.TempDir(), "x.safetensors"))
	require.NoError(t, err)
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	err = w.WriteStateDict(map[string]*tensor.RawTensor{}, nil)
	assert.ErrorIs(t, err, serialization.ErrWriterClosed)
}
