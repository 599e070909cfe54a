package artwork

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/srsgit/EzGraver/pkg/bitmap"
)

func encodePNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.White)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}
	return buf.Bytes()
}

func memLoader(t *testing.T) (*Loader, afero.Fs) {
	t.Helper()
	fs := afero.NewMemMapFs()
	return NewLoader(zap.NewNop(), WithFs(fs)), fs
}

func TestLoaderLoadsFromFile(t *testing.T) {
	l, fs := memLoader(t)
	if err := afero.WriteFile(fs, "art/sample.png", encodePNG(t, 40, 30), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	img, err := l.Load("art/sample.png")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != 40 || b.Dy() != 30 {
		t.Errorf("Load() bounds = %v, want 40x30", b)
	}
}

func TestLoaderMissingFile(t *testing.T) {
	l, _ := memLoader(t)
	if _, err := l.Load("nowhere.png"); err == nil {
		t.Error("Load() on missing file error = nil")
	}
}

func TestLoaderRejectsGarbage(t *testing.T) {
	l, fs := memLoader(t)
	if err := afero.WriteFile(fs, "junk.png", []byte("not an image"), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := l.Load("junk.png"); err == nil {
		t.Error("Load() on garbage error = nil")
	}
}

func TestLoaderBitmapRoundTrip(t *testing.T) {
	l, _ := memLoader(t)

	m := bitmap.NewMono()
	m.Set(0, 0, true)
	m.Set(511, 511, true)
	m.Set(100, 200, true)

	if err := l.WriteBitmap("out/grid.bin", m); err != nil {
		t.Fatalf("WriteBitmap() error = %v", err)
	}

	got, err := l.ReadBitmap("out/grid.bin")
	if err != nil {
		t.Fatalf("ReadBitmap() error = %v", err)
	}
	if !bytes.Equal(got.Packed(), m.Packed()) {
		t.Error("bitmap changed across the disk round trip")
	}
}

func TestLoaderRejectsTruncatedBitmap(t *testing.T) {
	l, fs := memLoader(t)
	if err := afero.WriteFile(fs, "short.bin", make([]byte, 100), 0644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := l.ReadBitmap("short.bin"); !errors.Is(err, bitmap.ErrInvalidPayloadSize) {
		t.Errorf("ReadBitmap() error = %v, want ErrInvalidPayloadSize", err)
	}
}

func TestLoaderWritesPreview(t *testing.T) {
	l, fs := memLoader(t)

	m := bitmap.NewMono()
	m.Set(10, 10, true)

	if err := l.WritePreview("out/preview.png", m); err != nil {
		t.Fatalf("WritePreview() error = %v", err)
	}

	bs, err := afero.ReadFile(fs, "out/preview.png")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	img, err := png.Decode(bytes.NewReader(bs))
	if err != nil {
		t.Fatalf("png.Decode() error = %v", err)
	}
	if b := img.Bounds(); b.Dx() != bitmap.Width || b.Dy() != bitmap.Height {
		t.Errorf("preview bounds = %v", b)
	}
}
