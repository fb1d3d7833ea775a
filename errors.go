package koi

import (
	"github.com/explodingcamera/koi/internal/block"
	"github.com/explodingcamera/koi/internal/header"
)

// Error classes reported by the codec. Failures carry extra context via
// wrapping, so match with errors.Is rather than equality.
var (
	// ErrInvalidFileHeader reports a file that does not start with the KOI
	// magic, or whose header document is truncated, missing a required
	// field, or carries out-of-range values.
	ErrInvalidFileHeader = header.ErrInvalidHeader

	// ErrUnsupportedVersion reports a file written with a format version
	// this package does not implement. Only version 1 exists.
	ErrUnsupportedVersion = header.ErrUnsupportedVersion

	// ErrInvalidLength reports an output buffer too small for the encoded
	// or decoded stream, or encode input whose size does not match the
	// header's geometry.
	ErrInvalidLength = block.ErrInvalidLength

	// ErrCorrupt reports a malformed chunk stream: a reserved opcode, a
	// declared chunk length over the format limit, a short read, or a
	// pixel count that disagrees with the opcode payload.
	ErrCorrupt = block.ErrCorrupt

	// ErrDecompress reports an LZ4 payload that failed to inflate.
	ErrDecompress = block.ErrDecompress

	// ErrHeaderSerialization reports a header that failed to serialize on
	// the encode path.
	ErrHeaderSerialization = header.ErrSerialization
)
