package nn

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/born-ml/seqnn/internal/tensor"
)

var (
	rngMu sync.Mutex
	rng   = rand.New(rand.NewSource(time.Now().UnixNano())) //nolint:gosec // weight init is not security-critical
)

// Seed makes subsequent weight initialization deterministic.
func Seed(seed int64) {
	rngMu.Lock()
	defer rngMu.Unlock()
	rng = rand.New(rand.NewSource(seed)) //nolint:gosec // weight init is not security-critical
}

// Xavier (Glorot) initialization for weights.
//
// Values are drawn from U(-sqrt(6/(fan_in + fan_out)), sqrt(6/(fan_in + fan_out))).
func Xavier[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	bound := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return UniformInit(bound, shape, backend)
}

// UniformInit draws values from U(-bound, bound).
func UniformInit[B tensor.Backend](bound float64, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	rngMu.Lock()
	defer rngMu.Unlock()
	return tensor.Uniform(shape, -bound, bound, rng, backend)
}

// Randn creates a tensor with values drawn from N(0, 1).
func Randn[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	rngMu.Lock()
	defer rngMu.Unlock()
	return tensor.Randn(shape, rng, backend)
}

// Zeros creates a zero-filled tensor, used for bias initialization.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// fanInBound is the default bound used for layers initialised like
// PyTorch's Linear/Conv/LSTM: 1/sqrt(fan_in).
func fanInBound(fanIn int) float64 {
	return 1.0 / math.Sqrt(float64(fanIn))
}
