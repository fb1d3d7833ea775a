package block

import (
	"fmt"

	"github.com/explodingcamera/koi/internal/buffer"
	"github.com/explodingcamera/koi/internal/header"
	"github.com/explodingcamera/koi/internal/lz4block"
	"github.com/explodingcamera/koi/internal/opcode"
	"github.com/explodingcamera/koi/internal/pixel"
)

// Encode writes the full KOI stream for src — header, then framed chunks —
// into dst and returns the number of bytes written. src must hold exactly
// width*height*channels raw pixel bytes in raster order; level selects the
// LZ4 effort (0 fast, 1..12 high compression) and is ignored when the
// header's compression mode is None.
func Encode(h header.Header, src, dst []byte, level int) (int, error) {
	if h.Version != header.Version {
		return 0, fmt.Errorf("%w: %d", header.ErrUnsupportedVersion, h.Version)
	}
	c := int(h.Channels)
	if c < 1 || c > 4 {
		return 0, header.ErrInvalidChannels
	}
	mode, err := compressionMode(h.Compression)
	if err != nil {
		return 0, err
	}
	if len(src)%c != 0 {
		return 0, fmt.Errorf("%w: source length %d is not a multiple of %d channels", ErrInvalidLength, len(src), c)
	}

	w := buffer.NewWriter(dst)
	hdr, err := h.WriteTo(nil)
	if err != nil {
		return 0, err
	}
	if err := w.WriteMany(hdr); err != nil {
		return 0, fmt.Errorf("%w: writing header", ErrInvalidLength)
	}

	scratch := make([]byte, ScratchSize)
	prev := pixel.Default

	for off := 0; off < len(src); off += ChunkSize {
		end := off + ChunkSize
		if end > len(src) {
			end = len(src)
		}
		chunk := src[off:end]

		var n int
		switch c {
		case 1:
			n, prev = encodeChunk1(chunk, scratch, prev)
		case 2:
			n, prev = encodeChunk2(chunk, scratch, prev)
		case 3:
			n, prev = encodeChunk3(chunk, scratch, prev)
		default:
			n, prev = encodeChunk4(chunk, scratch, prev)
		}

		// The 8-byte frame is written after compression, once the true
		// compressed length is known; the compressor writes past the
		// reserved gap. The region must cover the worst-case compressed
		// size up front so the LZ4 layer never reports a too-small
		// destination as "incompressible".
		if w.Remaining() < frameSize+lz4block.Bound(mode, n) {
			return 0, fmt.Errorf("%w: output buffer too small for chunk at offset %d", ErrInvalidLength, off)
		}
		region := w.Bytes()[w.Pos()+frameSize:]
		cn, err := lz4block.Compress(mode, level, scratch[:n], region)
		if err != nil || cn == 0 {
			return 0, fmt.Errorf("%w: compressing chunk at offset %d", ErrInvalidLength, off)
		}

		w.WriteUint32(uint32(cn))
		w.WriteUint32(uint32(len(chunk) / c))
		w.Advance(cn)
	}

	return w.Pos(), nil
}

// frameSize is the fixed chunk frame prefix: u32 compressed_len plus
// u32 pixel_count, both little-endian.
const frameSize = 8

// MaxEncodedSize bounds the chunk-stream bytes (the file header excluded)
// Encode can write for srcLen raster bytes under the given compression
// mode. Encode is guaranteed to succeed into a buffer of at least
// header-size + this many bytes.
func MaxEncodedSize(x header.Compression, srcLen int) int {
	mode, err := compressionMode(x)
	if err != nil {
		mode = lz4block.Lz4
	}
	chunks := (srcLen + ChunkSize - 1) / ChunkSize
	return chunks * (frameSize + lz4block.Bound(mode, ScratchSize))
}

func compressionMode(x header.Compression) (lz4block.Mode, error) {
	switch x {
	case header.CompressionNone:
		return lz4block.None, nil
	case header.CompressionLz4:
		return lz4block.Lz4, nil
	default:
		return 0, header.ErrInvalidCompression
	}
}

// encodeChunk1 handles grayscale without alpha. Every sample is emitted as a
// Gray record: Same's 0x80 opcode would collide with a legal 0x80 gray
// payload only by position, but more to the point the prediction cascade
// reaches the gray branch before any delta form for a gray pixel, so the
// stream is uniform and the LZ4 layer removes the redundancy.
func encodeChunk1(chunk, scratch []byte, prev pixel.Pixel) (int, pixel.Pixel) {
	n := 0
	for _, v := range chunk {
		scratch[n] = opcode.GrayByte
		scratch[n+1] = v
		n += 2
	}
	if len(chunk) > 0 {
		prev = pixel.FromGrayscale(chunk[len(chunk)-1])
	}
	return n, prev
}

// encodeChunk2 handles grayscale with alpha.
func encodeChunk2(chunk, scratch []byte, prev pixel.Pixel) (int, pixel.Pixel) {
	n := 0
	for i := 0; i < len(chunk); i += 2 {
		v, a := chunk[i], chunk[i+1]
		curr := pixel.Pixel{R: v, G: v, B: v, A: a}

		if curr == prev {
			scratch[n] = opcode.SameByte
			n++
			continue
		}
		if v == prev.R && v == prev.G && v == prev.B {
			if d, ok := pixel.AlphaDiff(prev, curr); ok {
				scratch[n] = opcode.DiffAlphaStart | d
				n++
				prev = curr
				continue
			}
		}
		if a != 0xFF {
			scratch[n] = opcode.GrayAlphaByte
			scratch[n+1] = v
			scratch[n+2] = a
			n += 3
		} else {
			scratch[n] = opcode.GrayByte
			scratch[n+1] = v
			n += 2
		}
		prev = curr
	}
	return n, prev
}

// encodeChunk3 handles RGB. Alpha is constant 0xFF for every pixel, so the
// alpha branches of the cascade never apply and Diff/Luma always preserve it.
func encodeChunk3(chunk, scratch []byte, prev pixel.Pixel) (int, pixel.Pixel) {
	n := 0
	for i := 0; i < len(chunk); i += 3 {
		r, g, b := chunk[i], chunk[i+1], chunk[i+2]
		curr := pixel.Pixel{R: r, G: g, B: b, A: 0xFF}

		if curr == prev {
			scratch[n] = opcode.SameByte
			n++
			continue
		}
		if r == g && g == b {
			scratch[n] = opcode.GrayByte
			scratch[n+1] = r
			n += 2
			prev = curr
			continue
		}
		if p, ok := pixel.ColorDiff(curr, prev); ok {
			scratch[n] = opcode.DiffStart | p
			n++
		} else if b1, b2, ok := pixel.LumaDiff(curr, prev); ok {
			scratch[n] = opcode.LumaStart | b1
			scratch[n+1] = b2
			n += 2
		} else {
			scratch[n] = opcode.RgbByte
			scratch[n+1] = r
			scratch[n+2] = g
			scratch[n+3] = b
			n += 4
		}
		prev = curr
	}
	return n, prev
}

// encodeChunk4 handles RGBA, the full prediction cascade: Same, then the
// alpha-stable deltas, then the gray short forms, then the color deltas,
// then the raw fallbacks. RGBA is only emitted when alpha genuinely carries
// information the cheaper records would lose, so opaque images never pay
// the 5-byte record.
func encodeChunk4(chunk, scratch []byte, prev pixel.Pixel) (int, pixel.Pixel) {
	n := 0
	for i := 0; i < len(chunk); i += 4 {
		r, g, b, a := chunk[i], chunk[i+1], chunk[i+2], chunk[i+3]
		curr := pixel.Pixel{R: r, G: g, B: b, A: a}

		if curr == prev {
			scratch[n] = opcode.SameByte
			n++
			continue
		}

		isGray := r == g && g == b

		// Only alpha changed: the 1-byte alpha delta when it fits, the raw
		// record when the jump is too wide (the gray case falls through to
		// the cheaper gray forms below).
		if r == prev.R && g == prev.G && b == prev.B {
			if d, ok := pixel.AlphaDiff(prev, curr); ok {
				scratch[n] = opcode.DiffAlphaStart | d
				n++
				prev = curr
				continue
			}
			if !isGray {
				scratch[n] = opcode.RgbaByte
				scratch[n+1] = r
				scratch[n+2] = g
				scratch[n+3] = b
				scratch[n+4] = a
				n += 5
				prev = curr
				continue
			}
		}

		if a != prev.A && a != 0xFF && !isGray {
			scratch[n] = opcode.RgbaByte
			scratch[n+1] = r
			scratch[n+2] = g
			scratch[n+3] = b
			scratch[n+4] = a
			n += 5
			prev = curr
			continue
		}

		if isGray {
			if a != 0xFF {
				scratch[n] = opcode.GrayAlphaByte
				scratch[n+1] = r
				scratch[n+2] = a
				n += 3
			} else {
				scratch[n] = opcode.GrayByte
				scratch[n+1] = r
				n += 2
			}
			prev = curr
			continue
		}

		// Diff and Luma replay against the previous pixel's alpha, so they
		// are only legal while alpha is unchanged.
		if a == prev.A {
			if p, ok := pixel.ColorDiff(curr, prev); ok {
				scratch[n] = opcode.DiffStart | p
				n++
				prev = curr
				continue
			}
			if b1, b2, ok := pixel.LumaDiff(curr, prev); ok {
				scratch[n] = opcode.LumaStart | b1
				scratch[n+1] = b2
				n += 2
				prev = curr
				continue
			}
		}

		// Raw fallback. Rgb replays with alpha 0xFF, so any pixel still
		// carrying translucency must take the full record.
		if a != 0xFF {
			scratch[n] = opcode.RgbaByte
			scratch[n+1] = r
			scratch[n+2] = g
			scratch[n+3] = b
			scratch[n+4] = a
			n += 5
		} else {
			scratch[n] = opcode.RgbByte
			scratch[n+1] = r
			scratch[n+2] = g
			scratch[n+3] = b
			n += 4
		}
		prev = curr
	}
	return n, prev
}
