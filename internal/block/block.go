// Package block implements the KOI chunked block pipeline: the predictive
// pixel-opcode encoder and its symmetric replay decoder, framed chunk by
// chunk around the LZ4 compressor adapter.
//
// The stream layout per chunk is an 8-byte frame — compressed_len (u32 LE)
// then pixel_count (u32 LE) — followed by compressed_len bytes of payload.
// A zero compressed_len terminates the stream early; otherwise it ends with
// the input. The single "previous pixel" prediction register carries across
// chunk boundaries in both directions, so a flat region spanning two chunks
// still encodes as runs of Same.
package block

import (
	"errors"
	"fmt"
)

// ChunkSize is the number of raw pixel bytes encoded per chunk. It is
// divisible by every supported channel count (1, 2, 3, 4) so the per-pixel
// loop never sees a partial pixel at a chunk boundary.
const ChunkSize = 245760

// ScratchSize bounds the opcode bytes one chunk can expand to. The worst
// per-channel-count ratios are 2x for gray (2-byte Gray records from 1-byte
// pixels), 1.5x for gray+alpha, 4/3x for RGB and 5/4x for RGBA, so twice
// ChunkSize covers them all. It is also the hard cap a declared
// compressed_len is validated against before any payload is trusted.
const ScratchSize = 2 * ChunkSize

// Errors returned by the block pipeline.
var (
	// ErrInvalidLength reports an output buffer too small for the encoded
	// stream, or input whose length is not a whole number of pixels.
	ErrInvalidLength = errors.New("koi: invalid length")

	// ErrCorrupt reports a malformed stream: an opcode in the reserved
	// range, a chunk frame that overruns its limits, or a pixel count that
	// does not match the opcode payload.
	ErrCorrupt = errors.New("koi: corrupt stream")

	// ErrDecompress wraps a failure from the LZ4 layer while inflating a
	// chunk payload.
	ErrDecompress = errors.New("koi: decompress")
)

func corruptf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorrupt, fmt.Sprintf(format, args...))
}
