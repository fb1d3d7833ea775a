// Package pixel implements the KOI pixel model: a 4-channel RGBA value type
// plus the diff/luma/alpha-diff predictive encodings the block codec is
// built on.
//
// A Pixel always carries all four logical channels (r, g, b, a). The channel
// count C of the surrounding image only controls how many raw bytes a Pixel
// is read from and written to (see FromBytes / AppendBytes) and which
// predictive branches the block encoder is allowed to take — the value type
// itself is channel-count agnostic, which keeps the arithmetic below free of
// per-pixel branching on C.
package pixel

// Pixel is a single fully-expanded RGBA pixel value.
type Pixel struct {
	R, G, B, A byte
}

// Default is the initial "previous pixel" register value: opaque white.
var Default = Pixel{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}

// FromBytes reconstructs a Pixel from the C raw channel bytes of a pixel:
//
//	C=1 (Gray):      r=g=b=data[0], a=255
//	C=2 (GrayAlpha):  r=g=b=data[0], a=data[1]
//	C=3 (RGB):        r,g,b=data[0..3], a=255
//	C=4 (RGBA):       r,g,b,a=data[0..4]
func FromBytes(c int, data []byte) Pixel {
	switch c {
	case 1:
		v := data[0]
		return Pixel{R: v, G: v, B: v, A: 0xFF}
	case 2:
		v := data[0]
		return Pixel{R: v, G: v, B: v, A: data[1]}
	case 3:
		return Pixel{R: data[0], G: data[1], B: data[2], A: 0xFF}
	default:
		return Pixel{R: data[0], G: data[1], B: data[2], A: data[3]}
	}
}

// AppendBytes appends the C raw channel bytes for p to dst, inverse of
// FromBytes.
func AppendBytes(c int, p Pixel, dst []byte) []byte {
	switch c {
	case 1:
		return append(dst, p.R)
	case 2:
		return append(dst, p.R, p.A)
	case 3:
		return append(dst, p.R, p.G, p.B)
	default:
		return append(dst, p.R, p.G, p.B, p.A)
	}
}

// FromGrayscale builds a pixel from a single gray sample, opaque.
func FromGrayscale(v byte) Pixel {
	return Pixel{R: v, G: v, B: v, A: 0xFF}
}

// IsGray reports whether p's r, g and b channels are all equal. Always true
// for C in {1,2} since those channel counts only ever carry a gray sample.
func (p Pixel) IsGray() bool {
	return p.R == p.G && p.G == p.B
}

// RGB returns p's color channels, ignoring alpha.
func (p Pixel) RGB() [3]byte {
	return [3]byte{p.R, p.G, p.B}
}

// Diff computes the wrapping per-channel delta self-other for r, g, b.
func Diff(self, other Pixel) (dr, dg, db byte) {
	return self.R - other.R, self.G - other.G, self.B - other.B
}

// ColorDiff classifies the color delta from prev to curr as a small-delta
// opcode payload. It returns the low 6 bits of the Diff opcode byte and
// ok=true iff every channel's true delta lies in -2..=+1. Deltas are
// compared without modular wraparound: a 255 -> 0 step is -255, not +1, and
// falls through to the wider encodings.
func ColorDiff(curr, prev Pixel) (payload byte, ok bool) {
	dr := int(curr.R) - int(prev.R)
	dg := int(curr.G) - int(prev.G)
	db := int(curr.B) - int(prev.B)
	if dr < -2 || dr > 1 || dg < -2 || dg > 1 || db < -2 || db > 1 {
		return 0, false
	}
	return byte(dr+2)<<4 | byte(dg+2)<<2 | byte(db+2), true
}

// LumaDiff classifies the color delta from prev to curr as a luma-relative
// payload. Returns the two payload bytes (vg, vr<<4|vb) and ok=true iff
// vg=dg+32 fits 0..=63 and both vr=dr-dg+8, vb=db-dg+8 fit 0..=15, with the
// same non-wrapping delta rule as ColorDiff.
func LumaDiff(curr, prev Pixel) (b1, b2 byte, ok bool) {
	dr := int(curr.R) - int(prev.R)
	dg := int(curr.G) - int(prev.G)
	db := int(curr.B) - int(prev.B)
	vg := dg + 32
	vr := dr - dg + 8
	vb := db - dg + 8
	if vg < 0 || vg > 63 || vr < 0 || vr > 15 || vb < 0 || vb > 15 {
		return 0, 0, false
	}
	return byte(vg), byte(vr)<<4 | byte(vb), true
}

// AlphaDiff classifies the alpha delta between self and other as a
// DiffAlpha payload. d = (other.a - self.a) + 0x1E, wrapping; ok iff
// d fits in 0..=0x3B.
func AlphaDiff(self, other Pixel) (d byte, ok bool) {
	d = (other.A - self.A) + 0x1E
	if d > 0x3B {
		return 0, false
	}
	return d, true
}

// ApplyDiff reconstructs (r,g,b) from a Diff payload byte, keeping self's
// current alpha.
func (p Pixel) ApplyDiff(b1 byte) Pixel {
	return Pixel{
		R: p.R + ((b1>>4)&3 - 2),
		G: p.G + ((b1>>2)&3 - 2),
		B: p.B + (b1&3 - 2),
		A: p.A,
	}
}

// ApplyLuma reconstructs (r,g,b) from a Luma payload pair, keeping self's
// current alpha.
func (p Pixel) ApplyLuma(b1, b2 byte) Pixel {
	vg := (b1 & 0x3F) - 32
	vr := ((b2 >> 4) & 0x0F) - 8 + vg
	vb := (b2 & 0x0F) - 8 + vg
	return Pixel{
		R: p.R + vr,
		G: p.G + vg,
		B: p.B + vb,
		A: p.A,
	}
}

// ApplyAlphaDiff reconstructs alpha from a DiffAlpha payload byte, keeping
// self's current r, g, b.
func (p Pixel) ApplyAlphaDiff(b1 byte) Pixel {
	return Pixel{R: p.R, G: p.G, B: p.B, A: p.A + (b1 - 0x1E)}
}

// Equal reports whether two pixels are byte-identical across all four
// expanded channels.
func (p Pixel) Equal(other Pixel) bool {
	return p == other
}
