package geom3d

import (
	"bytes"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"golang.org/x/image/bmp"
	"golang.org/x/image/tiff"
)

func testImage() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{R: 255, A: 255})
	img.SetNRGBA(1, 0, color.NRGBA{G: 255, A: 255})
	img.SetNRGBA(0, 1, color.NRGBA{B: 255, A: 255})
	img.SetNRGBA(1, 1, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
	return img
}

// tgaImage is an uncompressed 32 bit 2x2 TGA with identical rows of red then green.
func tgaImage() []byte {
	header := []byte{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 0, 0, 2, 0, 2, 0, 32, 0x28}
	row := []byte{0, 0, 255, 255, 0, 255, 0, 255}
	out := append(header, row...)
	return append(out, row...)
}

func TestCompressImage(t *testing.T) {
	src := bytes.Repeat([]byte{1, 2, 3, 4}, 64)
	c, err := CompressImage(src)
	if err != nil {
		t.Fatalf("CompressImage failed: %v", err)
	}
	out, err := DecompressImage(c)
	if err != nil {
		t.Fatalf("DecompressImage failed: %v", err)
	}
	if !bytes.Equal(out, src) {
		t.Error("decompressed data differs")
	}
	if _, err := DecompressImage([]byte("not zlib")); err == nil {
		t.Error("expected error for invalid data")
	}
}

func TestLoadTexture(t *testing.T) {
	src := testImage()
	tex, err := CreateTextureFromImage(src, "dir/test.png", true)
	if err != nil {
		t.Fatal(err)
	}
	if tex.Name != "test.png" || tex.Size != [2]uint64{2, 2} || !tex.Repeated {
		t.Errorf("texture = %+v", tex)
	}

	tests := []struct {
		name  string
		flipY bool
	}{
		{"plain", false},
		{"flipped", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img, err := LoadTexture(tex, tt.flipY)
			if err != nil {
				t.Fatal(err)
			}
			for y := 0; y < 2; y++ {
				for x := 0; x < 2; x++ {
					sy := y
					if tt.flipY {
						sy = 1 - y
					}
					got := color.NRGBAModel.Convert(img.At(x, y))
					if got != src.NRGBAAt(x, sy) {
						t.Errorf("pixel (%d,%d) = %v, want %v", x, y, got, src.NRGBAAt(x, sy))
					}
				}
			}
		})
	}

	short := *tex
	short.Size = [2]uint64{4, 4}
	if _, err := LoadTexture(&short, false); err == nil {
		t.Error("expected error for undersized data")
	}
}

func TestCreateTexture(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name     string
		encode   func(f *os.File) error
		lossless bool
	}{
		{"img.png", func(f *os.File) error { return png.Encode(f, testImage()) }, true},
		{"img.jpg", func(f *os.File) error { return jpeg.Encode(f, testImage(), nil) }, false},
		{"img.gif", func(f *os.File) error { return gif.Encode(f, testImage(), nil) }, false},
		{"img.bmp", func(f *os.File) error { return bmp.Encode(f, testImage()) }, true},
		{"img.tif", func(f *os.File) error { return tiff.Encode(f, testImage(), nil) }, true},
		{"img.tga", func(f *os.File) error {
			_, err := f.Write(tgaImage())
			return err
		}, true},
		// the signature wins over the extension
		{"png_named.tga", func(f *os.File) error { return png.Encode(f, testImage()) }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			f, err := os.Create(path)
			if err != nil {
				t.Fatal(err)
			}
			if err := tt.encode(f); err != nil {
				t.Fatal(err)
			}
			f.Close()

			tex, err := CreateTexture(path, false)
			if err != nil {
				t.Fatalf("CreateTexture failed: %v", err)
			}
			if tex.Size != [2]uint64{2, 2} || tex.Name != tt.name {
				t.Errorf("texture = %+v", tex)
			}
			if !tt.lossless {
				return
			}
			img, err := LoadTexture(tex, false)
			if err != nil {
				t.Fatal(err)
			}
			if got := color.NRGBAModel.Convert(img.At(1, 0)); got != (color.NRGBA{G: 255, A: 255}) {
				t.Errorf("pixel (1,0) = %v", got)
			}
		})
	}

	bad := filepath.Join(dir, "bad.png")
	os.WriteFile(bad, []byte("garbage"), 0644)
	if _, err := CreateTexture(bad, false); err == nil {
		t.Error("expected error for undecodable file")
	}
	noExt := filepath.Join(dir, "texture.dat")
	os.WriteFile(noExt, tgaImage(), 0644)
	if _, err := CreateTexture(noExt, false); err == nil {
		t.Error("expected error for tga data without a .tga extension")
	}
}

func TestSniffImageFormat(t *testing.T) {
	tests := []struct {
		head string
		want string
	}{
		{"\x89PNG\r\n\x1a\n", "png"},
		{"\xff\xd8\xff\xe0", "jpeg"},
		{"GIF89a", "gif"},
		{"BM\x00\x00", "bmp"},
		{"II*\x00\x08", "tiff"},
		{"MM\x00*\x00", "tiff"},
		{"\x00\x00\x02\x00", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := sniffImageFormat([]byte(tt.head)); got != tt.want {
			t.Errorf("sniffImageFormat(%q) = %q, want %q", tt.head, got, tt.want)
		}
	}
}
