package header

import (
	"bytes"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson"
)

func i32(v int32) *int32 { return &v }

func TestRoundTrip_RequiredFields(t *testing.T) {
	h := Header{Version: 1, Width: 640, Height: 480, Channels: 3, Compression: CompressionLz4}
	data, err := h.MarshalKOI()
	if err != nil {
		t.Fatal(err)
	}
	got, n, err := ReadFrom(data)
	if err != nil {
		t.Fatal(err)
	}
	if n != len(data) {
		t.Errorf("consumed %d bytes, want %d", n, len(data))
	}
	if got.Version != 1 || got.Width != 640 || got.Height != 480 || got.Channels != 3 || got.Compression != CompressionLz4 {
		t.Errorf("round-trip = %+v", got)
	}
	if got.ColorSpace != nil || got.BlockSize != nil || got.Exif != nil {
		t.Errorf("optional fields should be absent: %+v", got)
	}
}

func TestRoundTrip_OptionalFields(t *testing.T) {
	exif := []byte{0xDE, 0xAD, 0xBE, 0xEF}
	h := Header{
		Version:     1,
		Width:       1,
		Height:      2,
		Channels:    4,
		Compression: CompressionNone,
		ColorSpace:  i32(7),
		BlockSize:   i32(245760),
		Exif:        exif,
	}
	data, err := h.MarshalKOI()
	if err != nil {
		t.Fatal(err)
	}
	got, _, err := ReadFrom(data)
	if err != nil {
		t.Fatal(err)
	}
	if got.ColorSpace == nil || *got.ColorSpace != 7 {
		t.Errorf("ColorSpace = %v", got.ColorSpace)
	}
	if got.BlockSize == nil || *got.BlockSize != 245760 {
		t.Errorf("BlockSize = %v", got.BlockSize)
	}
	if !bytes.Equal(got.Exif, exif) {
		t.Errorf("Exif = %v, want %v", got.Exif, exif)
	}
}

func TestReadFrom_TrailingBytesIgnored(t *testing.T) {
	h := Header{Version: 1, Width: 1, Height: 1, Channels: 1, Compression: CompressionNone}
	data, err := h.MarshalKOI()
	if err != nil {
		t.Fatal(err)
	}
	hdrLen := len(data)
	data = append(data, 0x01, 0x02, 0x03)
	_, n, err := ReadFrom(data)
	if err != nil {
		t.Fatal(err)
	}
	if n != hdrLen {
		t.Errorf("consumed %d bytes, want %d", n, hdrLen)
	}
}

func TestReadFrom_BadMagic(t *testing.T) {
	h := Header{Version: 1, Width: 1, Height: 1, Channels: 1, Compression: CompressionNone}
	data, _ := h.MarshalKOI()
	data[3] = 'X'
	if _, _, err := ReadFrom(data); !errors.Is(err, ErrInvalidMagic) {
		t.Errorf("err = %v, want ErrInvalidMagic", err)
	}
	if _, _, err := ReadFrom([]byte("KO")); !errors.Is(err, ErrTruncated) {
		t.Errorf("short input: err = %v, want ErrTruncated", err)
	}
}

func TestReadFrom_TruncatedDocument(t *testing.T) {
	h := Header{Version: 1, Width: 1, Height: 1, Channels: 1, Compression: CompressionNone}
	data, _ := h.MarshalKOI()
	for cut := len(Magic); cut < len(data); cut += 7 {
		if _, _, err := ReadFrom(data[:cut]); !errors.Is(err, ErrTruncated) {
			t.Errorf("cut at %d: err = %v, want ErrTruncated", cut, err)
		}
	}
}

func TestReadFrom_MissingRequiredField(t *testing.T) {
	// A document missing "c" (but otherwise valid) must be rejected.
	doc, err := bson.Marshal(bson.M{"v": int32(1), "w": int64(1), "h": int64(1), "x": int32(0)})
	if err != nil {
		t.Fatal(err)
	}
	data := append(append([]byte{}, Magic[:]...), doc...)
	if _, _, err := ReadFrom(data); !errors.Is(err, ErrMissingField) {
		t.Errorf("err = %v, want ErrMissingField", err)
	}
}

func TestReadFrom_UnknownFieldsSkipped(t *testing.T) {
	// Future writers may add fields; readers of version 1 must skip them.
	doc, err := bson.Marshal(bson.M{
		"v": int32(1), "w": int64(3), "h": int64(4), "c": int32(2), "x": int32(1),
		"zz": "future extension",
	})
	if err != nil {
		t.Fatal(err)
	}
	data := append(append([]byte{}, Magic[:]...), doc...)
	h, _, err := ReadFrom(data)
	if err != nil {
		t.Fatalf("unknown field should be skipped: %v", err)
	}
	if h.Width != 3 || h.Height != 4 || h.Channels != 2 {
		t.Errorf("header = %+v", h)
	}
}

func TestReadFrom_UnsupportedVersion(t *testing.T) {
	doc, _ := bson.Marshal(bson.M{"v": int32(2), "w": int64(1), "h": int64(1), "c": int32(1), "x": int32(0)})
	data := append(append([]byte{}, Magic[:]...), doc...)
	if _, _, err := ReadFrom(data); !errors.Is(err, ErrUnsupportedVersion) {
		t.Errorf("err = %v, want ErrUnsupportedVersion", err)
	}
}

func TestReadFrom_InvalidChannelsAndCompression(t *testing.T) {
	for _, c := range []int32{0, 5} {
		doc, _ := bson.Marshal(bson.M{"v": int32(1), "w": int64(1), "h": int64(1), "c": c, "x": int32(0)})
		data := append(append([]byte{}, Magic[:]...), doc...)
		if _, _, err := ReadFrom(data); !errors.Is(err, ErrInvalidChannels) {
			t.Errorf("c=%d: err = %v, want ErrInvalidChannels", c, err)
		}
	}
	doc, _ := bson.Marshal(bson.M{"v": int32(1), "w": int64(1), "h": int64(1), "c": int32(3), "x": int32(2)})
	data := append(append([]byte{}, Magic[:]...), doc...)
	if _, _, err := ReadFrom(data); !errors.Is(err, ErrInvalidCompression) {
		t.Errorf("err = %v, want ErrInvalidCompression", err)
	}
}

func TestReadFrom_NegativeDimensions(t *testing.T) {
	doc, _ := bson.Marshal(bson.M{"v": int32(1), "w": int64(-1), "h": int64(1), "c": int32(3), "x": int32(0)})
	data := append(append([]byte{}, Magic[:]...), doc...)
	if _, _, err := ReadFrom(data); !errors.Is(err, ErrInvalidHeader) {
		t.Errorf("err = %v, want ErrInvalidHeader", err)
	}
}

func TestErrorClasses_WrapInvalidHeader(t *testing.T) {
	for _, e := range []error{ErrInvalidMagic, ErrTruncated, ErrMissingField, ErrInvalidChannels, ErrInvalidCompression} {
		if !errors.Is(e, ErrInvalidHeader) {
			t.Errorf("%v does not wrap ErrInvalidHeader", e)
		}
	}
	if errors.Is(ErrUnsupportedVersion, ErrInvalidHeader) {
		t.Error("ErrUnsupportedVersion must be its own class")
	}
}

func TestMinOutputSize(t *testing.T) {
	h := Header{Width: 10, Height: 20, Channels: 3}
	if got := h.MinOutputSize(); got != 600 {
		t.Errorf("MinOutputSize = %d, want 600", got)
	}
}
