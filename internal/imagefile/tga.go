package imagefile

import (
	"fmt"
	"image"
)

// TGA image types.
const (
	tgaTypeTrueColor    = 2
	tgaTypeGray         = 3
	tgaTypeTrueColorRLE = 10
	tgaTypeGrayRLE      = 11
)

// DecodeTGA decodes uncompressed and RLE compressed TGA images.
// 8-bit grayscale files decode to *image.Gray so their samples reach the
// height source unchanged; 24/32-bit true-color files decode to *image.NRGBA.
func DecodeTGA(data []byte) (image.Image, error) {
	if len(data) < 18 {
		return nil, fmt.Errorf("TGA data too short")
	}

	idLength := int(data[0])
	colorMapType := data[1]
	imageType := data[2]
	width := int(data[12]) | int(data[13])<<8
	height := int(data[14]) | int(data[15])<<8
	bpp := int(data[16])
	descriptor := data[17]

	if colorMapType != 0 {
		return nil, fmt.Errorf("color-mapped TGA not supported")
	}
	if width == 0 || height == 0 {
		return nil, fmt.Errorf("TGA has empty dimensions %dx%d", width, height)
	}

	gray := imageType == tgaTypeGray || imageType == tgaTypeGrayRLE
	rle := imageType == tgaTypeTrueColorRLE || imageType == tgaTypeGrayRLE
	switch {
	case imageType != tgaTypeTrueColor && imageType != tgaTypeTrueColorRLE && !gray:
		return nil, fmt.Errorf("unsupported TGA type %d", imageType)
	case gray && bpp != 8:
		return nil, fmt.Errorf("unsupported grayscale TGA bit depth %d (only 8 supported)", bpp)
	case !gray && bpp != 24 && bpp != 32:
		return nil, fmt.Errorf("unsupported TGA bit depth %d (only 24/32 supported)", bpp)
	}

	offset := 18 + idLength
	if offset > len(data) {
		return nil, fmt.Errorf("TGA data truncated")
	}

	src := data[offset:]
	count := width * height
	if !rle && len(src) < count*(bpp/8) {
		return nil, fmt.Errorf("TGA pixel data truncated")
	}
	// An RLE packet is at least 1+bpp/8 bytes and covers at most 128 pixels.
	if rle && count > len(src)/(1+bpp/8)*128 {
		return nil, fmt.Errorf("TGA RLE data too short for %dx%d", width, height)
	}

	d := &tgaDecoder{
		src:           src,
		width:         width,
		height:        height,
		bytesPerPixel: bpp / 8,
		topToBottom:   descriptor&0x20 != 0,
	}
	if gray {
		img := image.NewGray(image.Rect(0, 0, width, height))
		d.dst, d.dstBytes = img.Pix, 1
		d.store = func(dst, px []byte) { dst[0] = px[0] }
		return img, d.run(rle)
	}

	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	d.dst, d.dstBytes = img.Pix, 4
	d.store = func(dst, px []byte) {
		// TGA stores BGR(A).
		dst[0], dst[1], dst[2], dst[3] = px[2], px[1], px[0], 255
		if len(px) == 4 {
			dst[3] = px[3]
		}
	}
	return img, d.run(rle)
}

type tgaDecoder struct {
	src           []byte
	dst           []byte
	width         int
	height        int
	bytesPerPixel int
	dstBytes      int
	topToBottom   bool
	store         func(dst, px []byte)
}

func (d *tgaDecoder) run(rle bool) error {
	if rle {
		return d.decodeRLE()
	}
	return d.decodeRaw()
}

// put writes source pixel px as the i-th pixel in file order.
func (d *tgaDecoder) put(i int, px []byte) {
	x := i % d.width
	y := i / d.width
	if !d.topToBottom {
		y = d.height - 1 - y
	}
	o := (y*d.width + x) * d.dstBytes
	d.store(d.dst[o:o+d.dstBytes], px)
}

// decodeRaw expects src to hold every pixel.
func (d *tgaDecoder) decodeRaw() error {
	count := d.width * d.height
	for i := range count {
		o := i * d.bytesPerPixel
		d.put(i, d.src[o:o+d.bytesPerPixel])
	}
	return nil
}

func (d *tgaDecoder) decodeRLE() error {
	count := d.width * d.height
	pixel := 0
	pos := 0

	for pixel < count {
		if pos >= len(d.src) {
			return fmt.Errorf("TGA RLE data truncated at pixel %d", pixel)
		}
		packet := d.src[pos]
		pos++
		run := int(packet&0x7F) + 1

		if packet&0x80 != 0 {
			if pos+d.bytesPerPixel > len(d.src) {
				return fmt.Errorf("TGA RLE data truncated at pixel %d", pixel)
			}
			px := d.src[pos : pos+d.bytesPerPixel]
			pos += d.bytesPerPixel
			for i := 0; i < run && pixel < count; i++ {
				d.put(pixel, px)
				pixel++
			}
			continue
		}

		for i := 0; i < run && pixel < count; i++ {
			if pos+d.bytesPerPixel > len(d.src) {
				return fmt.Errorf("TGA RLE data truncated at pixel %d", pixel)
			}
			d.put(pixel, d.src[pos:pos+d.bytesPerPixel])
			pos += d.bytesPerPixel
			pixel++
		}
	}

	return nil
}
