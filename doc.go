// Package koi implements the KOI lossless raster image codec.
//
// KOI layers a byte-oriented predictive pixel encoder underneath a
// general-purpose LZ4 block compressor. A file stores a fixed magic, a
// self-describing header document (geometry, channel count, compression
// mode, optional metadata), and a sequence of independently-compressed
// chunks; each chunk inflates to a stream of variable-length pixel opcodes
// that the decoder replays against a single previous-pixel register.
//
// The core API works on byte slices and is allocation-free in its inner
// loops: Encode and Decode take caller-supplied buffers, EncodeToBytes and
// DecodeToBytes allocate for callers who don't have one. The package also
// registers the "koi" format with the standard library's image package, so
// image.Decode reads KOI files transparently.
package koi
