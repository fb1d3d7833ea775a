package koi

import (
	"fmt"

	"github.com/explodingcamera/koi/internal/block"
	"github.com/explodingcamera/koi/internal/bufpool"
	"github.com/explodingcamera/koi/internal/header"
)

// Header describes a KOI image: format version, geometry, channel count,
// chunk compression mode, and the optional color-space identifier, block
// size hint, and exif blob. Width and Height are int64 and Channels and
// Compression int32 to match the BSON field types on the wire.
type Header = header.Header

// Compression identifies the chunk payload compression mode.
type Compression = header.Compression

// Supported compression modes.
const (
	CompressionNone = header.CompressionNone
	CompressionLz4  = header.CompressionLz4
)

// Version is the only KOI file format version this package reads or writes.
const Version = header.Version

// EncoderOptions controls KOI encoding parameters.
type EncoderOptions struct {
	// Level selects the LZ4 compression effort: 0 (default) uses the fast
	// block encoder, 1-12 use the high-compression encoder at increasing
	// effort; levels 10-12 use the same effort as 9. Ignored when the
	// header's compression mode is CompressionNone.
	Level int
}

// NewHeader returns a version-1 header for a width x height image with the
// given channel count, compressed with LZ4.
func NewHeader(width, height int64, channels int32) Header {
	return Header{
		Version:     Version,
		Width:       width,
		Height:      height,
		Channels:    channels,
		Compression: CompressionLz4,
	}
}

// Encode writes the KOI stream for src into dst and returns the number of
// bytes written. src must hold exactly h.Width*h.Height*h.Channels raster
// bytes in row-major order; dst must be at least MaxEncodedSize(h, len(src))
// bytes. A nil o selects the defaults.
func Encode(h Header, src, dst []byte, o *EncoderOptions) (int, error) {
	if want := h.MinOutputSize(); int64(len(src)) != want {
		return 0, fmt.Errorf("koi: encode: %w: source is %d bytes, header wants %d", ErrInvalidLength, len(src), want)
	}
	level := 0
	if o != nil {
		level = o.Level
	}
	n, err := block.Encode(h, src, dst, level)
	if err != nil {
		return 0, fmt.Errorf("koi: encode: %w", err)
	}
	return n, nil
}

// Decode parses the KOI stream in src, writes the reconstructed raster into
// dst, and returns the number of raster bytes written plus the parsed
// header. dst must be at least header.MinOutputSize() bytes; use
// DecodeHeader to discover that size first, or DecodeToBytes to have a
// buffer sized for you.
func Decode(src, dst []byte) (int, Header, error) {
	h, off, err := header.ReadFrom(src)
	if err != nil {
		return 0, Header{}, fmt.Errorf("koi: decode: %w", err)
	}
	if int64(len(dst)) < h.MinOutputSize() {
		return 0, h, fmt.Errorf("koi: decode: %w: output is %d bytes, raster needs %d", ErrInvalidLength, len(dst), h.MinOutputSize())
	}
	n, err := block.Decode(h, src[off:], dst)
	if err != nil {
		return 0, h, fmt.Errorf("koi: decode: %w", err)
	}
	return n, h, nil
}

// DecodeHeader parses and validates only the file header from src, without
// touching the chunk stream.
func DecodeHeader(src []byte) (Header, error) {
	h, _, err := header.ReadFrom(src)
	if err != nil {
		return Header{}, fmt.Errorf("koi: decode: %w", err)
	}
	return h, nil
}

// MaxEncodedSize returns a conservative upper bound on the encoded size of
// an image with this header and srcLen raster bytes. Encode into a buffer
// of this size never fails with ErrInvalidLength.
func MaxEncodedSize(h Header, srcLen int) (int, error) {
	hdr, err := h.MarshalKOI()
	if err != nil {
		return 0, err
	}
	return len(hdr) + block.MaxEncodedSize(h.Compression, srcLen), nil
}

// EncodeToBytes encodes src into a freshly allocated, exactly-sized buffer.
// The worst-case working buffer is drawn from an internal pool, so repeated
// calls don't pay its allocation.
func EncodeToBytes(h Header, src []byte, o *EncoderOptions) ([]byte, error) {
	bound, err := MaxEncodedSize(h, len(src))
	if err != nil {
		return nil, err
	}
	buf := bufpool.Get(bound)
	defer bufpool.Put(buf)

	n, err := Encode(h, src, buf, o)
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, buf[:n])
	return out, nil
}

// DecodeToBytes decodes src into a freshly allocated raster sized from the
// file header.
func DecodeToBytes(src []byte) ([]byte, Header, error) {
	h, err := DecodeHeader(src)
	if err != nil {
		return nil, Header{}, err
	}
	out := make([]byte, h.MinOutputSize())
	n, h, err := Decode(src, out)
	if err != nil {
		return nil, h, err
	}
	return out[:n], h, nil
}
