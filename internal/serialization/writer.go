package serialization

import (
	"bufio"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/born-ml/seqnn/internal/tensor"
	"github.com/x448/float16"
)

// WriterOption configures a SafeTensorsWriter.
type WriterOption func(*SafeTensorsWriter)

// WithHalfPrecision stores float32 tensors as F16.
func WithHalfPrecision() WriterOption {
	return func(w *SafeTensorsWriter) {
		w.half = true
	}
}

// SafeTensorsWriter writes a state dict in SafeTensors format.
type SafeTensorsWriter struct {
	out    io.Writer
	closer io.Closer
	half   bool
	closed bool
}

// NewSafeTensorsWriter creates a file and returns a writer for it.
func NewSafeTensorsWriter(path string, opts ...WriterOption) (*SafeTensorsWriter, error) {
	//nolint:gosec // G304: File path comes from user input, which is expected for model saving
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}

	w := NewWriter(file, opts...)
	w.closer = file
	return w, nil
}

// NewWriter returns a writer that emits to out. Close does not close out.
func NewWriter(out io.Writer, opts ...WriterOption) *SafeTensorsWriter {
	w := &SafeTensorsWriter{out: out}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// WriteSafeTensors writes tensors to a SafeTensors file at path.
func WriteSafeTensors(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string, opts ...WriterOption) error {
	writer, err := NewSafeTensorsWriter(path, opts...)
	if err != nil {
		return err
	}
	if err := writer.WriteStateDict(tensors, metadata); err != nil {
		_ = writer.Close() // Best effort close
		return err
	}
	return writer.Close()
}

// WriteStateDict writes the header and the data of every tensor.
//
// Tensors are written in alphabetical order by name.
func (w *SafeTensorsWriter) WriteStateDict(stateDict map[string]*tensor.RawTensor, metadata map[string]string) error {
	if w.closed {
		return ErrWriterClosed
	}

	names := make([]string, 0, len(stateDict))
	for name := range stateDict {
		if name == metadataKey {
			return fmt.Errorf("%w: reserved tensor name %q", ErrInvalidHeader, name)
		}
		names = append(names, name)
	}
	sort.Strings(names)

	header := make(map[string]any, len(names)+1)
	if len(metadata) > 0 {
		header[metadataKey] = metadata
	}

	var offset int64
	for _, name := range names {
		raw := stateDict[name]
		dtype, err := dtypeName(raw.DType(), w.half)
		if err != nil {
			return fmt.Errorf("tensor %s: %w", name, err)
		}

		_, width, _ := parseDType(dtype)
		size := int64(raw.NumElements() * width)

		shape := make([]int64, len(raw.Shape()))
		for i, dim := range raw.Shape() {
			shape[i] = int64(dim)
		}

		header[name] = TensorInfo{
			DType:       dtype,
			Shape:       shape,
			DataOffsets: [2]int64{offset, offset + size},
		}
		offset += size
	}

	headerJSON, err := json.Marshal(header)
	if err != nil {
		return fmt.Errorf("failed to marshal header: %w", err)
	}

	buf := bufio.NewWriter(w.out)
	if err := binary.Write(buf, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("failed to write header size: %w", err)
	}
	if _, err := buf.Write(headerJSON); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, name := range names {
		if err := w.writeData(buf, stateDict[name]); err != nil {
			return fmt.Errorf("failed to write tensor %s: %w", name, err)
		}
	}
	return buf.Flush()
}

func (w *SafeTensorsWriter) writeData(out io.Writer, raw *tensor.RawTensor) error {
	if raw.DType() != tensor.Float32 || !w.half {
		_, err := out.Write(raw.Data())
		return err
	}

	values := raw.AsFloat32()
	data := make([]byte, 2*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint16(data[2*i:], float16.Fromfloat32(v).Bits())
	}
	_, err := out.Write(data)
	return err
}

// Close closes the underlying file, if the writer owns one.
func (w *SafeTensorsWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
