package remote

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/srsgit/EzGraver/pkg/device/neje"
)

// fakeControl records calls; operations outside the overridden set are not
// expected and panic through the embedded nil interface.
type fakeControl struct {
	neje.Control
	calls []string
	state neje.State
}

func (f *fakeControl) record(call string) error {
	f.calls = append(f.calls, call)
	return nil
}

func (f *fakeControl) Home() error    { return f.record("home") }
func (f *fakeControl) Center() error  { return f.record("center") }
func (f *fakeControl) Preview() error { return f.record("preview") }
func (f *fakeControl) Up() error      { return f.record("up") }
func (f *fakeControl) Down() error    { return f.record("down") }
func (f *fakeControl) Left() error    { return f.record("left") }
func (f *fakeControl) Right() error   { return f.record("right") }
func (f *fakeControl) Pause() error   { return f.record("pause") }
func (f *fakeControl) Reset() error   { return f.record("reset") }
func (f *fakeControl) Erase() error   { return f.record("erase") }

func (f *fakeControl) Start(burnTime byte) error {
	return f.record(fmt.Sprintf("start(%d)", burnTime))
}

func (f *fakeControl) State() neje.State {
	return f.state
}

func (f *fakeControl) UploadImage(src image.Image) (int, error) {
	f.calls = append(f.calls, "upload-image")
	return src.Bounds().Dx() * src.Bounds().Dy(), nil
}

func (f *fakeControl) UploadBitmap(raw []byte) (int, error) {
	f.calls = append(f.calls, "upload-bitmap")
	return len(raw), nil
}

func TestServiceCommandDispatch(t *testing.T) {
	names := []string{"home", "center", "preview", "up", "down", "left", "right", "pause", "reset", "erase"}

	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			fc := &fakeControl{}
			svc := &Service{ctl: fc}

			if err := svc.Command(name, &EmptyResponse{}); err != nil {
				t.Fatalf("Command(%q) error = %v", name, err)
			}
			if len(fc.calls) != 1 || fc.calls[0] != name {
				t.Errorf("Command(%q) calls = %v", name, fc.calls)
			}
		})
	}
}

func TestServiceRejectsUnknownCommand(t *testing.T) {
	fc := &fakeControl{}
	svc := &Service{ctl: fc}

	if err := svc.Command("explode", &EmptyResponse{}); err == nil {
		t.Fatal("Command(explode) error = nil, want error")
	}
	if len(fc.calls) != 0 {
		t.Errorf("unknown command reached the session: %v", fc.calls)
	}
}

func TestServiceStart(t *testing.T) {
	fc := &fakeControl{}
	svc := &Service{ctl: fc}

	if err := svc.Start(60, &EmptyResponse{}); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if len(fc.calls) != 1 || fc.calls[0] != "start(60)" {
		t.Errorf("Start() calls = %v", fc.calls)
	}
}

func TestServiceState(t *testing.T) {
	svc := &Service{ctl: &fakeControl{state: neje.Ready}}

	var resp StateResponse
	if err := svc.State(EmptyRequest{}, &resp); err != nil {
		t.Fatalf("State() error = %v", err)
	}
	if resp.State != int(neje.Ready) || resp.Name != "ready" {
		t.Errorf("State() = %+v", resp)
	}
}

func TestServiceUploadImage(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 20, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 20; x++ {
			img.Set(x, y, color.White)
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png.Encode() error = %v", err)
	}

	fc := &fakeControl{}
	svc := &Service{ctl: fc}

	var resp UploadResponse
	if err := svc.UploadImage(&UploadImageRequest{Image: buf.Bytes()}, &resp); err != nil {
		t.Fatalf("UploadImage() error = %v", err)
	}
	if resp.Sent != 200 {
		t.Errorf("UploadImage() sent = %d, want 200", resp.Sent)
	}
	if len(fc.calls) != 1 || fc.calls[0] != "upload-image" {
		t.Errorf("UploadImage() calls = %v", fc.calls)
	}
}

func TestServiceUploadImageRejectsGarbage(t *testing.T) {
	fc := &fakeControl{}
	svc := &Service{ctl: fc}

	var resp UploadResponse
	if err := svc.UploadImage(&UploadImageRequest{Image: []byte("not a png")}, &resp); err == nil {
		t.Fatal("UploadImage(garbage) error = nil, want decode error")
	}
	if len(fc.calls) != 0 {
		t.Error("undecodable payload reached the session")
	}
}

func TestServiceUploadBitmap(t *testing.T) {
	fc := &fakeControl{}
	svc := &Service{ctl: fc}

	var resp UploadResponse
	if err := svc.UploadBitmap(&UploadBitmapRequest{Bitmap: make([]byte, 32768)}, &resp); err != nil {
		t.Fatalf("UploadBitmap() error = %v", err)
	}
	if resp.Sent != 32768 {
		t.Errorf("UploadBitmap() sent = %d, want 32768", resp.Sent)
	}
}
