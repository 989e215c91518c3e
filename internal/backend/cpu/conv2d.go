package cpu

import (
	"fmt"

	"github.com/born-ml/seqnn/internal/parallel"
	"github.com/born-ml/seqnn/internal/tensor"
	"gonum.org/v1/gonum/blas"
)

// Conv2D performs 2D convolution using the im2col algorithm.
//
// Input shape:  [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// padH zero rows are added above and below the input, padW zero columns to
// its left and right:
//
//	out_h = (height + 2*padH - kernel_h) / stride + 1
//	out_w = (width + 2*padW - kernel_w) / stride + 1
//
// Algorithm:
//  1. Im2col: [N, C, H, W] -> [N * H_out * W_out, C * K_h * K_w]
//  2. SGEMM: kernel [C_out, C*K_h*K_w] @ col^T -> [C_out, N*H_out*W_out]
//  3. Scatter into [N, C_out, H_out, W_out]
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padH, padW int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if input.DType() != tensor.Float32 || kernel.DType() != tensor.Float32 {
		panic(fmt.Sprintf("conv2d: unsupported dtypes %s, %s", input.DType(), kernel.DType()))
	}
	if stride <= 0 || padH < 0 || padW < 0 {
		panic(fmt.Sprintf("conv2d: invalid stride=%d padding=(%d, %d)", stride, padH, padW))
	}

	N, CIn, H, W := inputShape[0], inputShape[1], inputShape[2], inputShape[3]
	COut, CInK, KH, KW := kernelShape[0], kernelShape[1], kernelShape[2], kernelShape[3]

	if CIn != CInK {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", CIn, CInK))
	}

	HOut := (H+2*padH-KH)/stride + 1
	WOut := (W+2*padW-KW)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", HOut, WOut))
	}

	output := cpu.alloc("conv2d", tensor.Shape{N, COut, HOut, WOut}, tensor.Float32)
	if N == 0 {
		return output
	}

	g := convGeom{
		cIn: CIn, h: H, w: W,
		kh: KH, kw: KW,
		hOut: HOut, wOut: WOut,
		stride: stride, padH: padH, padW: padW,
	}

	colWidth := CIn * KH * KW
	colHeight := N * HOut * WOut
	col := make([]float32, colHeight*colWidth)
	inputData := input.AsFloat32()

	parallel.For(colHeight, func(row int) {
		g.im2colRow(col[row*colWidth:(row+1)*colWidth], inputData, row)
	}, cpu.par)

	// result: [C_out, N*H_out*W_out]
	result := make([]float32, COut*colHeight)
	sgemm(blas.Trans, kernel.AsFloat32(), COut, colWidth, col, colHeight, result)

	out := output.AsFloat32()
	spatial := HOut * WOut
	for co := 0; co < COut; co++ {
		for n := 0; n < N; n++ {
			src := result[co*colHeight+n*spatial : co*colHeight+(n+1)*spatial]
			dst := out[(n*COut+co)*spatial : (n*COut+co+1)*spatial]
			copy(dst, src)
		}
	}
	return output
}

type convGeom struct {
	cIn, h, w          int
	kh, kw             int
	hOut, wOut         int
	stride, padH, padW int
}

// im2colRow fills one column-matrix row: the receptive field of output
// position row = (n, oh, ow), zero outside the input.
func (g convGeom) im2colRow(dst, input []float32, row int) {
	n := row / (g.hOut * g.wOut)
	rem := row % (g.hOut * g.wOut)
	oh, ow := rem/g.wOut, rem%g.wOut

	idx := 0
	for c := 0; c < g.cIn; c++ {
		base := (n*g.cIn + c) * g.h * g.w
		for ki := 0; ki < g.kh; ki++ {
			ih := oh*g.stride + ki - g.padH
			for kj := 0; kj < g.kw; kj++ {
				iw := ow*g.stride + kj - g.padW
				if ih >= 0 && ih < g.h && iw >= 0 && iw < g.w {
					dst[idx] = input[base+ih*g.w+iw]
				}
				idx++
			}
		}
	}
}
