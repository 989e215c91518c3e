package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"sort"

	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/x448/float16"
)

// ReadSafeTensors loads every tensor of a SafeTensors file. F16 tensors are
// widened to float32.
func ReadSafeTensors(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	tensors, metadata, err := Decode(bufio.NewReader(file))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return tensors, metadata, nil
}

// InspectSafeTensors reads only the header of a SafeTensors file.
func InspectSafeTensors(path string) ([]TensorInfo, map[string]string, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model loading
	file, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	infos, metadata, err := ReadHeader(bufio.NewReader(file))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", path, err)
	}
	return infos, metadata, nil
}

// ReadHeader parses the size prefix and JSON header from r, leaving r
// positioned at the start of the data section. Entries are sorted by
// data offset.
func ReadHeader(r io.Reader) ([]TensorInfo, map[string]string, error) {
	var size uint64
	if err := binary.Read(r, binary.LittleEndian, &size); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read header size: %w", ErrInvalidHeader, err)
	}
	if size == 0 || size > MaxHeaderSize {
		return nil, nil, fmt.Errorf("%w: header size %d", ErrInvalidHeader, size)
	}

	headerJSON := make([]byte, size)
	if _, err := io.ReadFull(r, headerJSON); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to read header: %w", ErrInvalidHeader, err)
	}

	var entries map[string]json.RawMessage
	if err := json.Unmarshal(headerJSON, &entries); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidHeader, err)
	}

	var metadata map[string]string
	infos := make([]TensorInfo, 0, len(entries))
	for name, entry := range entries {
		if name == metadataKey {
			if err := json.Unmarshal(entry, &metadata); err != nil {
				return nil, nil, fmt.Errorf("%w: metadata: %w", ErrInvalidHeader, err)
			}
			continue
		}

		var info TensorInfo
		if err := json.Unmarshal(entry, &info); err != nil {
			return nil, nil, fmt.Errorf("%w: tensor %q: %w", ErrInvalidHeader, name, err)
		}
		info.Name = name
		if err := validateInfo(info); err != nil {
			return nil, nil, err
		}
		infos = append(infos, info)
	}

	sort.Slice(infos, func(i, j int) bool {
		if infos[i].DataOffsets[0] != infos[j].DataOffsets[0] {
			return infos[i].DataOffsets[0] < infos[j].DataOffsets[0]
		}
		return infos[i].Name < infos[j].Name
	})
	return infos, metadata, nil
}

func validateInfo(info TensorInfo) error {
	_, width, err := parseDType(info.DType)
	if err != nil {
		return fmt.Errorf("tensor %q: %w", info.Name, err)
	}

	elements := int64(1)
	for _, dim := range info.Shape {
		if dim < 0 {
			return fmt.Errorf("%w: tensor %q has negative dimension in shape %v", ErrInvalidHeader, info.Name, info.Shape)
		}
		if dim != 0 && elements > math.MaxInt64/int64(width)/dim {
			return fmt.Errorf("%w: tensor %q shape %v overflows", ErrInvalidHeader, info.Name, info.Shape)
		}
		elements *= dim
	}

	begin, end := info.DataOffsets[0], info.DataOffsets[1]
	if begin < 0 || end < begin {
		return fmt.Errorf("%w: tensor %q has offsets [%d, %d)", ErrInvalidHeader, info.Name, begin, end)
	}
	if want := elements * int64(width); info.Size() != want {
		return fmt.Errorf("%w: tensor %q occupies %d bytes, shape %v needs %d",
			ErrInvalidHeader, info.Name, info.Size(), info.Shape, want)
	}
	return nil
}

// Decode reads a complete SafeTensors stream.
func Decode(r io.Reader) (map[string]*tensor.RawTensor, map[string]string, error) {
	infos, metadata, err := ReadHeader(r)
	if err != nil {
		return nil, nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read data section: %w", err)
	}

	tensors := make(map[string]*tensor.RawTensor, len(infos))
	for _, info := range infos {
		if info.DataOffsets[1] > int64(len(data)) {
			return nil, nil, fmt.Errorf("%w: tensor %q ends at %d, data section is %d bytes",
				ErrOutOfBounds, info.Name, info.DataOffsets[1], len(data))
		}

		raw, err := decodeTensor(info, data[info.DataOffsets[0]:info.DataOffsets[1]])
		if err != nil {
			return nil, nil, fmt.Errorf("tensor %q: %w", info.Name, err)
		}
		tensors[info.Name] = raw
	}
	return tensors, metadata, nil
}

func decodeTensor(info TensorInfo, src []byte) (*tensor.RawTensor, error) {
	dtype, _, err := parseDType(info.DType)
	if err != nil {
		return nil, err
	}

	shape := make(tensor.Shape, len(info.Shape))
	for i, dim := range info.Shape {
		shape[i] = int(dim)
	}
	raw, err := tensor.NewRaw(shape, dtype, tensor.CPU)
	if err != nil {
		return nil, err
	}

	switch info.DType {
	case DTypeF32:
		dst := raw.AsFloat32()
		for i := range dst {
			dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(src[4*i:]))
		}
	case DTypeF16:
		dst := raw.AsFloat32()
		for i := range dst {
			dst[i] = float16.Frombits(binary.LittleEndian.Uint16(src[2*i:])).Float32()
		}
	case DTypeI32:
		dst := raw.AsInt32()
		for i := range dst {
			dst[i] = int32(binary.LittleEndian.Uint32(src[4*i:])) //nolint:gosec // reinterpreting stored bits
		}
	case DTypeI64:
		dst := raw.AsInt64()
		for i := range dst {
			dst[i] = int64(binary.LittleEndian.Uint64(src[8*i:])) //nolint:gosec // reinterpreting stored bits
		}
	case DTypeBool:
		dst := raw.AsBool()
		for i := range dst {
			dst[i] = src[i] != 0
		}
	}
	return raw, nil
}
