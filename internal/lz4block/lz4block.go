// Package lz4block is the KOI compressor adapter: a uniform
// compress/decompress call over {None, Lz4, Lz4Hc}, wrapping the LZ4 block
// API of github.com/pierrec/lz4/v4. Chunks are compressed as raw LZ4 blocks
// with no frame headers of their own; the surrounding chunk frame carries
// the lengths.
package lz4block

import (
	"errors"
	"fmt"

	"github.com/pierrec/lz4/v4"
)

// Mode selects the compression algorithm, matching the header's compression
// field (0 = None, 1 = Lz4). High-compression LZ4 is an encoder-only
// refinement of mode 1; decode does not distinguish it, since both produce
// the same LZ4 block format.
type Mode int

const (
	None Mode = iota
	Lz4
)

// ErrCorrupt is returned when a compressed block fails to decompress.
var ErrCorrupt = errors.New("koi: corrupt compressed block")

// Compress writes the compressed form of src into dst and returns the
// number of bytes written. level is only consulted in Lz4 mode: 0 selects
// the fast encoder, 1..=12 select the high-compression encoder at that
// level.
func Compress(mode Mode, level int, src, dst []byte) (int, error) {
	switch mode {
	case None:
		if len(dst) < len(src) {
			return 0, fmt.Errorf("koi: compress: %w", ErrShortDst)
		}
		return copy(dst, src), nil
	case Lz4:
		var n int
		var err error
		if level <= 0 {
			var c lz4.Compressor
			n, err = c.CompressBlock(src, dst)
		} else {
			c := lz4.CompressorHC{Level: hcLevel(level)}
			n, err = c.CompressBlock(src, dst)
		}
		if err != nil {
			return 0, fmt.Errorf("koi: lz4 compress: %w", err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("koi: compress: unknown mode %d", mode)
	}
}

// ErrShortDst is returned when dst is too small to hold the compressed or
// literal output.
var ErrShortDst = errors.New("koi: destination buffer too small")

// hcLevel maps a 1..=12 effort level onto the lz4 library's CompressionLevel
// constants (which are not small integers). Levels past the library's
// maximum clamp to it.
func hcLevel(level int) lz4.CompressionLevel {
	levels := [...]lz4.CompressionLevel{
		lz4.Level1, lz4.Level2, lz4.Level3, lz4.Level4, lz4.Level5,
		lz4.Level6, lz4.Level7, lz4.Level8, lz4.Level9,
	}
	if level > len(levels) {
		level = len(levels)
	}
	return levels[level-1]
}

// Decompress decompresses src (produced by Compress in the given mode) into
// dst and returns the number of bytes written.
func Decompress(mode Mode, src, dst []byte) (int, error) {
	switch mode {
	case None:
		if len(dst) < len(src) {
			return 0, fmt.Errorf("koi: decompress: %w", ErrShortDst)
		}
		return copy(dst, src), nil
	case Lz4:
		n, err := lz4.UncompressBlock(src, dst)
		if err != nil {
			return 0, fmt.Errorf("koi: lz4 decompress: %w: %w", ErrCorrupt, err)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("koi: decompress: unknown mode %d", mode)
	}
}

// Bound returns a conservative worst-case compressed size for a block of n
// uncompressed bytes, for sizing scratch/output buffers.
func Bound(mode Mode, n int) int {
	if mode == None {
		return n
	}
	return lz4.CompressBlockBound(n)
}
