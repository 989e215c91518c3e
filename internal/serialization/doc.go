// Package serialization reads and writes model weights in the SafeTensors
// format used by HuggingFace and PyTorch.
//
//	File layout:
//	  [8 bytes: header size N (uint64 LE)]
//	  [N bytes: JSON header]
//	  [tensor data: raw little-endian bytes]
//
// The JSON header maps every tensor name to its dtype, shape and
// [begin, end) byte range inside the data section. The optional
// "__metadata__" entry holds free-form string pairs.
//
// Float32 tensors can be stored as F16 to halve the file size; they are
// widened back to float32 on load.
//
// Example usage:
//
//	dict := nn.StateDict[B](model)
//	if err := serialization.WriteSafeTensors("model.safetensors", dict, nil); err != nil {
//	    log.Fatal(err)
//	}
//
//	loaded, _, err := serialization.ReadSafeTensors("model.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = nn.LoadStateDict[B](model, loaded)
package serialization
