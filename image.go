package koi

import (
	"fmt"
	"image"
	"image/color"
	"io"
)

func init() {
	image.RegisterFormat("koi", "KOI ", DecodeImage, DecodeImageConfig)
}

// readAll reads all data from r. If r implements Len() int (e.g.
// *bytes.Reader), a single exact-sized allocation is used instead of the
// repeated doublings that io.ReadAll performs.
func readAll(r io.Reader) ([]byte, error) {
	if lr, ok := r.(interface{ Len() int }); ok {
		n := lr.Len()
		if n > 0 {
			data := make([]byte, n)
			_, err := io.ReadFull(r, data)
			return data, err
		}
	}
	return io.ReadAll(r)
}

// DecodeImage reads a KOI image from r and returns it as an image.Image.
// Single-channel images decode to *image.Gray; everything else decodes to
// *image.NRGBA.
func DecodeImage(r io.Reader) (image.Image, error) {
	data, err := readAll(r)
	if err != nil {
		return nil, fmt.Errorf("koi: reading data: %w", err)
	}
	raster, h, err := DecodeToBytes(data)
	if err != nil {
		return nil, err
	}

	w, ht := int(h.Width), int(h.Height)
	rect := image.Rect(0, 0, w, ht)
	switch h.Channels {
	case 1:
		return &image.Gray{Pix: raster, Stride: w, Rect: rect}, nil
	case 2:
		img := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(raster); i, j = i+2, j+4 {
			v, a := raster[i], raster[i+1]
			img.Pix[j] = v
			img.Pix[j+1] = v
			img.Pix[j+2] = v
			img.Pix[j+3] = a
		}
		return img, nil
	case 3:
		img := image.NewNRGBA(rect)
		for i, j := 0, 0; i < len(raster); i, j = i+3, j+4 {
			img.Pix[j] = raster[i]
			img.Pix[j+1] = raster[i+1]
			img.Pix[j+2] = raster[i+2]
			img.Pix[j+3] = 0xFF
		}
		return img, nil
	default:
		return &image.NRGBA{Pix: raster, Stride: w * 4, Rect: rect}, nil
	}
}

// DecodeImageConfig returns the color model and dimensions of a KOI image
// without decoding any pixel data.
func DecodeImageConfig(r io.Reader) (image.Config, error) {
	data, err := readAll(r)
	if err != nil {
		return image.Config{}, fmt.Errorf("koi: reading data: %w", err)
	}
	h, err := DecodeHeader(data)
	if err != nil {
		return image.Config{}, err
	}
	cm := color.Model(color.NRGBAModel)
	if h.Channels == 1 {
		cm = color.GrayModel
	}
	return image.Config{
		ColorModel: cm,
		Width:      int(h.Width),
		Height:     int(h.Height),
	}, nil
}

// EncodeImage writes img to w in the KOI format. *image.Gray encodes as
// single-channel, everything else as 4-channel RGBA; a nil o selects the
// defaults.
func EncodeImage(w io.Writer, img image.Image, o *EncoderOptions) error {
	b := img.Bounds()
	width, height := b.Dx(), b.Dy()

	var h Header
	var raster []byte
	switch m := img.(type) {
	case *image.Gray:
		h = NewHeader(int64(width), int64(height), 1)
		raster = make([]byte, width*height)
		for y := 0; y < height; y++ {
			off := m.PixOffset(b.Min.X, b.Min.Y+y)
			copy(raster[y*width:], m.Pix[off:off+width])
		}
	case *image.NRGBA:
		h = NewHeader(int64(width), int64(height), 4)
		raster = make([]byte, width*height*4)
		for y := 0; y < height; y++ {
			off := m.PixOffset(b.Min.X, b.Min.Y+y)
			copy(raster[y*width*4:], m.Pix[off:off+width*4])
		}
	default:
		h = NewHeader(int64(width), int64(height), 4)
		raster = make([]byte, 0, width*height*4)
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				raster = append(raster, c.R, c.G, c.B, c.A)
			}
		}
	}

	data, err := EncodeToBytes(h, raster, o)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("koi: writing data: %w", err)
	}
	return nil
}
