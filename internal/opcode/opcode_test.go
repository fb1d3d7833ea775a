package opcode

import "testing"

func TestClassify_FullByteRange(t *testing.T) {
	for b := 0; b < 256; b++ {
		got := Classify(byte(b))
		var want Op
		switch {
		case b <= 0x3F:
			want = Diff
		case b <= 0x7F:
			want = Luma
		case b == 0x80:
			want = Same
		case b <= 0xBF:
			want = Invalid
		case b <= 0xFB:
			want = DiffAlpha
		case b == 0xFC:
			want = Gray
		case b == 0xFD:
			want = GrayAlpha
		case b == 0xFE:
			want = Rgb
		default:
			want = Rgba
		}
		if got != want {
			t.Errorf("Classify(0x%02X) = %v, want %v", b, got, want)
		}
	}
}

func TestTotalBytes(t *testing.T) {
	tests := []struct {
		op   Op
		want int
	}{
		{Same, 1},
		{Diff, 1},
		{DiffAlpha, 1},
		{Luma, 2},
		{Gray, 2},
		{GrayAlpha, 3},
		{Rgb, 4},
		{Rgba, 5},
	}
	for _, tt := range tests {
		if got := TotalBytes[tt.op]; got != tt.want {
			t.Errorf("TotalBytes[%v] = %d, want %d", tt.op, got, tt.want)
		}
	}
}
