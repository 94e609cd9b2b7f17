package geom3d

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ftrvxmtrx/tga"
	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

// Texture holds RGBA pixels, zlib compressed.
type Texture struct {
	Name     string    `json:"name"`
	Size     [2]uint64 `json:"size"`
	Data     []byte    `json:"-"`
	Repeated bool      `json:"repeated"`
}

func CompressImage(buf []byte) ([]byte, error) {
	var bf bytes.Buffer
	w := zlib.NewWriter(&bf)
	if _, err := w.Write(buf); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return bf.Bytes(), nil
}

func DecompressImage(src []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(src))
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

// LoadTexture expands the texture back into an image, optionally flipped vertically.
func LoadTexture(tex *Texture, flipY bool) (image.Image, error) {
	w := int(tex.Size[0])
	h := int(tex.Size[1])
	data, err := DecompressImage(tex.Data)
	if err != nil {
		return nil, err
	}
	if len(data) < w*h*4 {
		return nil, fmt.Errorf("texture %s: %d bytes for %dx%d", tex.Name, len(data), w, h)
	}
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			p := (i*w + j) * 4
			y := i
			if flipY {
				y = h - i - 1
			}
			img.SetNRGBA(j, y, color.NRGBA{R: data[p], G: data[p+1], B: data[p+2], A: data[p+3]})
		}
	}
	return img, nil
}

// imageMagic lists the signatures of the formats CreateTexture decodes. tga has none.
var imageMagic = []struct {
	format string
	magic  string
}{
	{"png", "\x89PNG\r\n\x1a\n"},
	{"jpeg", "\xff\xd8"},
	{"gif", "GIF8"},
	{"bmp", "BM"},
	{"tiff", "II*\x00"},
	{"tiff", "MM\x00*"},
}

// sniffImageFormat matches the leading bytes of an image against imageMagic.
func sniffImageFormat(head []byte) string {
	for _, m := range imageMagic {
		if strings.HasPrefix(string(head), m.magic) {
			return m.format
		}
	}
	return ""
}

// CreateTexture decodes a png, jpeg, gif, bmp, tiff or tga file. The format comes from
// the file signature; tga, which has none, is recognized by extension.
func CreateTexture(name string, repeated bool) (*Texture, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := bufio.NewReader(f)
	head, _ := reader.Peek(8)
	format := sniffImageFormat(head)
	if format == "" && strings.EqualFold(filepath.Ext(name), ".tga") {
		format = "tga"
	}

	var img image.Image
	switch format {
	case "jpeg":
		img, err = jpeg.Decode(reader)
	case "png":
		img, err = png.Decode(reader)
	case "gif":
		img, err = gif.Decode(reader)
	case "bmp":
		img, err = bmp.Decode(reader)
	case "tiff":
		img, err = tiff.Decode(reader)
	case "tga":
		img, err = tga.Decode(reader)
	default:
		return nil, errors.New("unknown image format: " + name)
	}
	if err != nil {
		return nil, err
	}
	return CreateTextureFromImage(img, name, repeated)
}

func CreateTextureFromImage(img image.Image, name string, repeated bool) (*Texture, error) {
	bd := img.Bounds()
	buf := make([]byte, 0, bd.Dx()*bd.Dy()*4)
	for y := bd.Min.Y; y < bd.Max.Y; y++ {
		for x := bd.Min.X; x < bd.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			buf = append(buf, c.R, c.G, c.B, c.A)
		}
	}
	data, err := CompressImage(buf)
	if err != nil {
		return nil, err
	}
	_, fn := filepath.Split(name)
	return &Texture{
		Name:     fn,
		Size:     [2]uint64{uint64(bd.Dx()), uint64(bd.Dy())},
		Data:     data,
		Repeated: repeated,
	}, nil
}
