package koi

import (
	"fmt"
	"testing"
)

// benchRaster builds a photographic-ish gradient with a varying alpha band,
// sized w*h*c bytes.
func benchRaster(w, h, c int) []byte {
	data := make([]byte, w*h*c)
	i := 0
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			switch c {
			case 1:
				data[i] = byte(x + y)
			case 2:
				data[i] = byte(x + y)
				data[i+1] = byte(255 - y)
			case 3:
				data[i] = byte(x)
				data[i+1] = byte(y)
				data[i+2] = byte(x ^ y)
			default:
				data[i] = byte(x)
				data[i+1] = byte(y)
				data[i+2] = byte(x ^ y)
				data[i+3] = byte(200 + y%32)
			}
			i += c
		}
	}
	return data
}

func BenchmarkEncode(b *testing.B) {
	for _, c := range []int32{1, 3, 4} {
		b.Run(fmt.Sprintf("c%d", c), func(b *testing.B) {
			h := NewHeader(512, 512, c)
			src := benchRaster(512, 512, int(c))
			bound, err := MaxEncodedSize(h, len(src))
			if err != nil {
				b.Fatal(err)
			}
			dst := make([]byte, bound)
			b.SetBytes(int64(len(src)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := Encode(h, src, dst, nil); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkDecode(b *testing.B) {
	for _, c := range []int32{1, 3, 4} {
		b.Run(fmt.Sprintf("c%d", c), func(b *testing.B) {
			h := NewHeader(512, 512, c)
			src := benchRaster(512, 512, int(c))
			encoded, err := EncodeToBytes(h, src, nil)
			if err != nil {
				b.Fatal(err)
			}
			out := make([]byte, len(src))
			b.SetBytes(int64(len(src)))
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, _, err := Decode(encoded, out); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkEncodeHighCompression(b *testing.B) {
	h := NewHeader(512, 512, 3)
	src := benchRaster(512, 512, 3)
	bound, err := MaxEncodedSize(h, len(src))
	if err != nil {
		b.Fatal(err)
	}
	dst := make([]byte, bound)
	o := &EncoderOptions{Level: 9}
	b.SetBytes(int64(len(src)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Encode(h, src, dst, o); err != nil {
			b.Fatal(err)
		}
	}
}
