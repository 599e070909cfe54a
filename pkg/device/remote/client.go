package remote

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/rpc"
	"time"

	"github.com/srsgit/EzGraver/pkg/device/neje"
)

// New dials an engraverd instance. The client implements neje.Control, so
// frontends don't care whether the device is local.
func New(addr string) (neje.Control, error) {
	client, err := rpc.DialHTTP("tcp", addr)
	if err != nil {
		return nil, err
	}

	return &Client{rpc: client}, nil
}

type Client struct {
	rpc      *rpc.Client
	erasedAt time.Time
}

func (c *Client) command(name string) error {
	return c.rpc.Call("Service.Command", name, nil)
}

func (c *Client) Home() error    { return c.command("home") }
func (c *Client) Center() error  { return c.command("center") }
func (c *Client) Preview() error { return c.command("preview") }
func (c *Client) Up() error      { return c.command("up") }
func (c *Client) Down() error    { return c.command("down") }
func (c *Client) Left() error    { return c.command("left") }
func (c *Client) Right() error   { return c.command("right") }
func (c *Client) Pause() error   { return c.command("pause") }
func (c *Client) Reset() error   { return c.command("reset") }

func (c *Client) Erase() error {
	if err := c.command("erase"); err != nil {
		return err
	}
	c.erasedAt = time.Now()
	return nil
}

// WaitErased waits out the erase on the client side. The daemon's own
// settle clock started before ours, so sleeping the remainder here always
// covers it.
func (c *Client) WaitErased(ctx context.Context) error {
	if c.erasedAt.IsZero() {
		return nil
	}

	remaining := neje.EraseTime - time.Since(c.erasedAt)
	if remaining <= 0 {
		return nil
	}

	select {
	case <-time.After(remaining):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Client) UploadImage(src image.Image) (int, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, src); err != nil {
		return 0, err
	}

	var resp UploadResponse
	err := c.rpc.Call("Service.UploadImage", &UploadImageRequest{Image: buf.Bytes()}, &resp)
	return resp.Sent, err
}

func (c *Client) UploadBitmap(raw []byte) (int, error) {
	var resp UploadResponse
	err := c.rpc.Call("Service.UploadBitmap", &UploadBitmapRequest{Bitmap: raw}, &resp)
	return resp.Sent, err
}

func (c *Client) Start(burnTime byte) error {
	return c.rpc.Call("Service.Start", burnTime, nil)
}

// State reports the remote session state; an unreachable daemon reads as
// Disconnected.
func (c *Client) State() neje.State {
	var resp StateResponse
	if err := c.rpc.Call("Service.State", EmptyRequest{}, &resp); err != nil {
		return neje.Disconnected
	}
	return neje.State(resp.State)
}

func (c *Client) Close() error {
	return c.rpc.Close()
}
