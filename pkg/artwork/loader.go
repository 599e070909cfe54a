// Package artwork sources images for engraving (local files, URLs,
// Telegram) and moves packed bitmaps to and from disk.
package artwork

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/samber/lo"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/srsgit/EzGraver/pkg/bitmap"
)

func NewLoader(logger *zap.Logger, opts ...LoaderOption) *Loader {
	l := &Loader{
		fs:  afero.NewOsFs(),
		cli: resty.New().SetDoNotParseResponse(true),
		log: logger,
	}

	for _, opt := range opts {
		opt(l)
	}
	return l
}

type Loader struct {
	fs  afero.Fs
	cli *resty.Client
	log *zap.Logger
}

type LoaderOption func(*Loader)

// WithFs swaps the backing filesystem.
func WithFs(fs afero.Fs) LoaderOption {
	return func(l *Loader) {
		l.fs = fs
	}
}

// Load fetches and decodes an image from a local path or an http(s) URL.
func (l *Loader) Load(src string) (image.Image, error) {
	return lo.Ternary(isRemote(src), l.fromURL, l.fromFile)(src)
}

func isRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

func (l *Loader) fromFile(path string) (image.Image, error) {
	bs, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	return l.decode(bs, path)
}

func (l *Loader) fromURL(url string) (image.Image, error) {
	resp, err := l.cli.R().Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}

	defer func() {
		_ = resp.RawBody().Close()
	}()

	bar := progressbar.DefaultBytes(resp.RawResponse.ContentLength, "downloading")

	var buf bytes.Buffer
	if _, err := io.Copy(io.MultiWriter(&buf, bar), resp.RawBody()); err != nil {
		return nil, fmt.Errorf("fetch image: %w", err)
	}

	return l.decode(buf.Bytes(), url)
}

func (l *Loader) decode(bs []byte, src string) (image.Image, error) {
	img, format, err := image.Decode(bytes.NewReader(bs))
	if err != nil {
		return nil, fmt.Errorf("decode image: %w", err)
	}

	l.log.With(
		zap.String("src", src),
		zap.String("format", format),
		zap.Int("w", img.Bounds().Dx()),
		zap.Int("h", img.Bounds().Dy()),
	).Debug("image loaded")

	return img, nil
}

// ReadBitmap loads a packed payload saved earlier by WriteBitmap.
func (l *Loader) ReadBitmap(path string) (*bitmap.Mono, error) {
	bs, err := afero.ReadFile(l.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read bitmap: %w", err)
	}
	return bitmap.Unpack(bs)
}

// WriteBitmap stores a packed payload for later raw uploads.
func (l *Loader) WriteBitmap(path string, m *bitmap.Mono) error {
	if err := afero.WriteFile(l.fs, path, m.Packed(), 0644); err != nil {
		return fmt.Errorf("write bitmap: %w", err)
	}

	l.log.With(zap.String("path", path)).Debug("bitmap saved")
	return nil
}

// WritePreview renders what the engraver will burn into a PNG.
func (l *Loader) WritePreview(path string, m *bitmap.Mono) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.Image()); err != nil {
		return fmt.Errorf("encode preview: %w", err)
	}

	if err := afero.WriteFile(l.fs, path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write preview: %w", err)
	}

	l.log.With(zap.String("path", path)).Debug("preview saved")
	return nil
}
