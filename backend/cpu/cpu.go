// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go CPU backend.
//
// Matrix products and convolutions run on gonum's BLAS; other kernels are
// plain loops, split across goroutines for large inputs.
package cpu

import (
	internalcpu "github.com/born-ml/seqnn/internal/backend/cpu"
	"github.com/born-ml/seqnn/internal/parallel"
	"github.com/born-ml/seqnn/tensor"
)

// Backend is the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a CPU backend using one worker per CPU.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func New() *Backend {
	return internalcpu.New()
}

// NewWithWorkers creates a CPU backend with at most n worker goroutines.
// n <= 0 means one per CPU.
func NewWithWorkers(n int) *Backend {
	if n <= 0 {
		return internalcpu.New()
	}
	return internalcpu.NewWithConfig(parallel.WithWorkers(n))
}
