// Package header implements the KOI file header: the 4-byte magic followed
// by a self-describing BSON document carrying geometry, channel count,
// compression mode, and optional metadata.
//
// BSON documents are length-prefixed and typed per field, so readers of
// older versions skip fields they don't recognize and future writers can
// extend the header without breaking them. The magic is checked before
// anything else in the stream is trusted.
package header

import (
	"encoding/binary"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Magic is the literal 4-byte signature every KOI file starts with.
var Magic = [4]byte{'K', 'O', 'I', ' '}

// Version is the only file format version this package knows how to read
// or write.
const Version = 1

// Compression identifies the chunk payload compression mode.
type Compression int32

const (
	CompressionNone Compression = 0
	CompressionLz4  Compression = 1
)

// Errors returned while reading a header. All invalid-header failure modes
// wrap ErrInvalidHeader so callers can class-check with a single errors.Is.
var (
	ErrInvalidHeader      = errors.New("koi: invalid file header")
	ErrInvalidMagic       = fmt.Errorf("%w: bad magic", ErrInvalidHeader)
	ErrTruncated          = fmt.Errorf("%w: truncated", ErrInvalidHeader)
	ErrMissingField       = fmt.Errorf("%w: missing required field", ErrInvalidHeader)
	ErrInvalidChannels    = fmt.Errorf("%w: channels out of range", ErrInvalidHeader)
	ErrInvalidCompression = fmt.Errorf("%w: unknown compression mode", ErrInvalidHeader)
	ErrUnsupportedVersion = errors.New("koi: unsupported file version")

	// ErrSerialization is returned when a header fails to serialize on the
	// encode path.
	ErrSerialization = errors.New("koi: header serialization failed")
)

// Header is the KOI file header. Width/Height use int64 and
// Channels/Compression use int32 to match the BSON field types written on
// the wire.
type Header struct {
	Version     int32
	Width       int64
	Height      int64
	Channels    int32
	Compression Compression
	ColorSpace  *int32 // s, optional
	BlockSize   *int32 // b, optional
	Exif        []byte // e, optional
}

// MinOutputSize returns the minimum raster buffer size (in bytes) a decode
// of this header must be able to write into: width * height * channels.
func (h Header) MinOutputSize() int64 {
	return h.Width * h.Height * int64(h.Channels)
}

// bsonDoc is the wire shape of the header document, using the abbreviated
// keys v/w/h/c/x/s/b/e.
type bsonDoc struct {
	V int32            `bson:"v"`
	W int64            `bson:"w"`
	H int64            `bson:"h"`
	C int32            `bson:"c"`
	X int32            `bson:"x"`
	S *int32            `bson:"s,omitempty"`
	B *int32            `bson:"b,omitempty"`
	E *primitive.Binary `bson:"e,omitempty"`
}

func (h Header) doc() bsonDoc {
	d := bsonDoc{
		V: h.Version,
		W: h.Width,
		H: h.Height,
		C: h.Channels,
		X: int32(h.Compression),
		S: h.ColorSpace,
		B: h.BlockSize,
	}
	if h.Exif != nil {
		d.E = &primitive.Binary{Subtype: 0x00, Data: h.Exif}
	}
	return d
}

// WriteTo appends this header's on-wire bytes (magic + BSON document) to
// dst and returns the extended slice.
func (h Header) WriteTo(dst []byte) ([]byte, error) {
	dst = append(dst, Magic[:]...)
	body, err := bson.Marshal(h.doc())
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerialization, err)
	}
	return append(dst, body...), nil
}

// MarshalKOI is an allocating convenience wrapper around WriteTo.
func (h Header) MarshalKOI() ([]byte, error) {
	return h.WriteTo(nil)
}

// ReadFrom parses a header from the start of data, validates it, and
// returns the header plus the number of bytes consumed (magic + document).
func ReadFrom(data []byte) (Header, int, error) {
	if len(data) < len(Magic) {
		return Header{}, 0, ErrTruncated
	}
	if data[0] != Magic[0] || data[1] != Magic[1] || data[2] != Magic[2] || data[3] != Magic[3] {
		return Header{}, 0, ErrInvalidMagic
	}
	body := data[len(Magic):]

	// BSON documents are self-length-prefixing: the first 4 bytes (LE i32)
	// give the total document length, so we can find where it ends before
	// handing the rest to bson.Unmarshal.
	if len(body) < 4 {
		return Header{}, 0, ErrTruncated
	}
	docLen := int(int32(binary.LittleEndian.Uint32(body[:4])))
	if docLen < 4 || docLen > len(body) {
		return Header{}, 0, ErrTruncated
	}

	raw := bson.Raw(body[:docLen])
	for _, key := range [...]string{"v", "w", "h", "c", "x"} {
		if _, err := raw.LookupErr(key); err != nil {
			return Header{}, 0, fmt.Errorf("%w: %q", ErrMissingField, key)
		}
	}

	var d bsonDoc
	if err := bson.Unmarshal(raw, &d); err != nil {
		return Header{}, 0, fmt.Errorf("%w: decoding document: %w", ErrInvalidHeader, err)
	}

	if d.V != Version {
		return Header{}, 0, fmt.Errorf("%w: %d", ErrUnsupportedVersion, d.V)
	}
	if d.W < 0 || d.H < 0 {
		return Header{}, 0, fmt.Errorf("%w: negative dimensions", ErrInvalidHeader)
	}
	if d.C < 1 || d.C > 4 {
		return Header{}, 0, ErrInvalidChannels
	}
	if d.X != int32(CompressionNone) && d.X != int32(CompressionLz4) {
		return Header{}, 0, ErrInvalidCompression
	}

	h := Header{
		Version:     d.V,
		Width:       d.W,
		Height:      d.H,
		Channels:    d.C,
		Compression: Compression(d.X),
		ColorSpace:  d.S,
		BlockSize:   d.B,
	}
	if d.E != nil && len(d.E.Data) > 0 {
		h.Exif = d.E.Data
	}
	return h, len(Magic) + docLen, nil
}

// ParseHeader is an alias for ReadFrom, for callers that prefer the verb
// "parse".
func ParseHeader(data []byte) (Header, int, error) {
	return ReadFrom(data)
}
