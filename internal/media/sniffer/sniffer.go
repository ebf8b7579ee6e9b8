package sniffer

import (
	"bytes"
	"errors"
	"io"
)

// Avatars are raster only; anything else is rejected before it reaches
// object storage.

var ErrUnsupportedType = errors.New("unsupported image type")

type Result struct {
	MIME string
	Ext  string
}

// Detect reads up to 512 bytes from r and identifies the image format. It
// returns the consumed head so callers can stitch the stream back together.
func Detect(r io.Reader) (Result, []byte, error) {
	head := make([]byte, 512)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return Result{}, nil, err
	}
	head = head[:n]

	result, err := DetectHead(head)
	return result, head, err
}

func DetectHead(head []byte) (Result, error) {
	switch {
	case isJPEG(head):
		return Result{MIME: "image/jpeg", Ext: "jpg"}, nil
	case isPNG(head):
		return Result{MIME: "image/png", Ext: "png"}, nil
	case isWEBP(head):
		return Result{MIME: "image/webp", Ext: "webp"}, nil
	}
	return Result{}, ErrUnsupportedType
}

func isJPEG(head []byte) bool {
	return len(head) > 3 &&
		head[0] == 0xff &&
		head[1] == 0xd8 &&
		head[2] == 0xff
}

func isPNG(head []byte) bool {
	pngMagic := []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}
	return len(head) >= len(pngMagic) && bytes.Equal(head[:len(pngMagic)], pngMagic)
}

func isWEBP(head []byte) bool {
	return len(head) >= 12 &&
		bytes.Equal(head[:4], []byte("RIFF")) &&
		bytes.Equal(head[8:12], []byte("WEBP"))
}
