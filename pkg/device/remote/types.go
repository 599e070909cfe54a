package remote

type EmptyRequest struct {
}

type EmptyResponse struct {
}

type StateResponse struct {
	State int
	Name  string
}

type UploadImageRequest struct {
	Image []byte // PNG-encoded
}

type UploadBitmapRequest struct {
	Bitmap []byte
}

type UploadResponse struct {
	Sent int
}
