package neje

import (
	"context"
	"image"
)

// Control is the operation set a connected engraver accepts, whether the
// session is local or proxied over the network.
type Control interface {
	Home() error
	Center() error
	Preview() error
	Up() error
	Down() error
	Left() error
	Right() error

	Erase() error
	WaitErased(ctx context.Context) error
	UploadImage(src image.Image) (int, error)
	UploadBitmap(raw []byte) (int, error)

	Start(burnTime byte) error
	Pause() error
	Reset() error

	State() State
	Close() error
}
