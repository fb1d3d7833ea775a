package block

import (
	"fmt"

	"github.com/explodingcamera/koi/internal/buffer"
	"github.com/explodingcamera/koi/internal/header"
	"github.com/explodingcamera/koi/internal/lz4block"
	"github.com/explodingcamera/koi/internal/opcode"
	"github.com/explodingcamera/koi/internal/pixel"
)

// Decode replays the framed chunk stream in src (the bytes following the
// file header) into dst and returns the number of raster bytes written. The
// caller has already parsed and validated h and sized dst to at least
// h.MinOutputSize().
func Decode(h header.Header, src, dst []byte) (int, error) {
	c := int(h.Channels)
	mode, err := compressionMode(h.Compression)
	if err != nil {
		return 0, err
	}

	raster := h.MinOutputSize()
	scratch := make([]byte, ScratchSize)
	prev := pixel.Default
	r := buffer.NewReader(src)
	written := 0

	for r.Remaining() > 0 {
		if r.Remaining() < frameSize {
			return 0, corruptf("truncated chunk frame at offset %d", r.Pos())
		}
		clen, _ := r.ReadUint32()
		pcount, _ := r.ReadUint32()
		if clen == 0 {
			break
		}
		if clen > ScratchSize {
			return 0, corruptf("chunk of %d bytes exceeds the %d-byte limit", clen, ScratchSize)
		}
		payload, err := r.ReadBytes(int(clen))
		if err != nil {
			return 0, corruptf("chunk payload short by %d bytes", int(clen)-r.Remaining())
		}

		d, err := lz4block.Decompress(mode, payload, scratch)
		if err != nil {
			return 0, fmt.Errorf("%w: %w", ErrDecompress, err)
		}

		need := int64(pcount) * int64(c)
		if need > raster-int64(written) {
			return 0, corruptf("pixel count %d overruns the %d-byte raster", pcount, raster)
		}
		out := dst[written : written+int(need)]

		switch c {
		case 1:
			prev, err = decodeChunk1(scratch[:d], int(pcount), prev, out)
		case 2:
			prev, err = decodeChunk2(scratch[:d], int(pcount), prev, out)
		case 3:
			prev, err = decodeChunk3(scratch[:d], int(pcount), prev, out)
		default:
			prev, err = decodeChunk4(scratch[:d], int(pcount), prev, out)
		}
		if err != nil {
			return 0, err
		}
		written += int(need)
	}

	return written, nil
}

// step consumes one opcode record from ops at pos and returns the
// reconstructed pixel plus the new position. A reserved opcode or a record
// running past the end of ops fails as corrupt.
func step(ops []byte, pos int, prev pixel.Pixel) (pixel.Pixel, int, error) {
	b := ops[pos]
	op := opcode.Classify(b)
	if op == opcode.Invalid {
		return prev, 0, corruptf("reserved opcode 0x%02X", b)
	}
	end := pos + opcode.TotalBytes[op]
	if end > len(ops) {
		return prev, 0, corruptf("opcode 0x%02X record truncated", b)
	}

	switch op {
	case opcode.Same:
		return prev, end, nil
	case opcode.Diff:
		return prev.ApplyDiff(b), end, nil
	case opcode.Luma:
		return prev.ApplyLuma(b, ops[pos+1]), end, nil
	case opcode.DiffAlpha:
		return prev.ApplyAlphaDiff(b & 0x3F), end, nil
	case opcode.Gray:
		return pixel.FromGrayscale(ops[pos+1]), end, nil
	case opcode.GrayAlpha:
		v, a := ops[pos+1], ops[pos+2]
		return pixel.Pixel{R: v, G: v, B: v, A: a}, end, nil
	case opcode.Rgb:
		return pixel.Pixel{R: ops[pos+1], G: ops[pos+2], B: ops[pos+3], A: 0xFF}, end, nil
	default: // opcode.Rgba
		return pixel.Pixel{R: ops[pos+1], G: ops[pos+2], B: ops[pos+3], A: ops[pos+4]}, end, nil
	}
}

// Each channel count gets its own replay loop so the per-pixel raster write
// never branches on C. All four accept the full opcode alphabet — which
// records the encoder actually emits for a given C is an encoder concern,
// not a format restriction — and all four demand that the chunk's opcode
// bytes are consumed exactly by its declared pixel count.

func decodeChunk1(ops []byte, count int, prev pixel.Pixel, out []byte) (pixel.Pixel, error) {
	pos, w := 0, 0
	for i := 0; i < count; i++ {
		if pos >= len(ops) {
			return prev, corruptf("chunk underran its opcode bytes at pixel %d of %d", i, count)
		}
		px, next, err := step(ops, pos, prev)
		if err != nil {
			return prev, err
		}
		out[w] = px.R
		w++
		pos = next
		prev = px
	}
	if pos != len(ops) {
		return prev, corruptf("%d opcode bytes left over after %d pixels", len(ops)-pos, count)
	}
	return prev, nil
}

func decodeChunk2(ops []byte, count int, prev pixel.Pixel, out []byte) (pixel.Pixel, error) {
	pos, w := 0, 0
	for i := 0; i < count; i++ {
		if pos >= len(ops) {
			return prev, corruptf("chunk underran its opcode bytes at pixel %d of %d", i, count)
		}
		px, next, err := step(ops, pos, prev)
		if err != nil {
			return prev, err
		}
		out[w] = px.R
		out[w+1] = px.A
		w += 2
		pos = next
		prev = px
	}
	if pos != len(ops) {
		return prev, corruptf("%d opcode bytes left over after %d pixels", len(ops)-pos, count)
	}
	return prev, nil
}

func decodeChunk3(ops []byte, count int, prev pixel.Pixel, out []byte) (pixel.Pixel, error) {
	pos, w := 0, 0
	for i := 0; i < count; i++ {
		if pos >= len(ops) {
			return prev, corruptf("chunk underran its opcode bytes at pixel %d of %d", i, count)
		}
		px, next, err := step(ops, pos, prev)
		if err != nil {
			return prev, err
		}
		out[w] = px.R
		out[w+1] = px.G
		out[w+2] = px.B
		w += 3
		pos = next
		prev = px
	}
	if pos != len(ops) {
		return prev, corruptf("%d opcode bytes left over after %d pixels", len(ops)-pos, count)
	}
	return prev, nil
}

func decodeChunk4(ops []byte, count int, prev pixel.Pixel, out []byte) (pixel.Pixel, error) {
	pos, w := 0, 0
	for i := 0; i < count; i++ {
		if pos >= len(ops) {
			return prev, corruptf("chunk underran its opcode bytes at pixel %d of %d", i, count)
		}
		px, next, err := step(ops, pos, prev)
		if err != nil {
			return prev, err
		}
		out[w] = px.R
		out[w+1] = px.G
		out[w+2] = px.B
		out[w+3] = px.A
		w += 4
		pos = next
		prev = px
	}
	if pos != len(ops) {
		return prev, corruptf("%d opcode bytes left over after %d pixels", len(ops)-pos, count)
	}
	return prev, nil
}
