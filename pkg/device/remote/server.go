// Package remote proxies an engraver session over net/rpc, so a frontend
// on one machine can drive a device plugged into another.
package remote

import (
	"bytes"
	"context"
	"image/png"
	"log"
	"net/http"
	"net/rpc"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/fx"

	"github.com/srsgit/EzGraver/pkg/device/neje"
)

// Proxy publishes every session operation on srv. Handlers run one at a
// time; the session itself is single-threaded.
func Proxy(ctl neje.Control, srv *http.Server, lifecycle fx.Lifecycle) error {
	svc := &Service{ctl: ctl}
	if err := rpc.Register(svc); err != nil {
		return err
	}

	rpc.HandleHTTP()

	lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.ListenAndServe(); err != http.ErrServerClosed {
					log.Fatal(err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			err := srv.Shutdown(ctx)
			if cerr := ctl.Close(); cerr != nil && err == nil {
				err = cerr
			}
			return err
		},
	})

	return nil
}

type Service struct {
	mu  sync.Mutex
	ctl neje.Control
}

func (s *Service) Command(name string, _ *EmptyResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch name {
	case "home":
		return s.ctl.Home()
	case "center":
		return s.ctl.Center()
	case "preview":
		return s.ctl.Preview()
	case "up":
		return s.ctl.Up()
	case "down":
		return s.ctl.Down()
	case "left":
		return s.ctl.Left()
	case "right":
		return s.ctl.Right()
	case "pause":
		return s.ctl.Pause()
	case "reset":
		return s.ctl.Reset()
	case "erase":
		return s.ctl.Erase()
	}

	return errors.Errorf("unknown command %q", name)
}

func (s *Service) Start(burnTime uint8, _ *EmptyResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctl.Start(burnTime)
}

func (s *Service) State(_ EmptyRequest, resp *StateResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.ctl.State()
	resp.State = int(st)
	resp.Name = st.String()
	return nil
}

func (s *Service) UploadImage(req *UploadImageRequest, resp *UploadResponse) error {
	img, err := png.Decode(bytes.NewBuffer(req.Image))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sent, err := s.ctl.UploadImage(img)
	resp.Sent = sent
	return err
}

func (s *Service) UploadBitmap(req *UploadBitmapRequest, resp *UploadResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sent, err := s.ctl.UploadBitmap(req.Bitmap)
	resp.Sent = sent
	return err
}
