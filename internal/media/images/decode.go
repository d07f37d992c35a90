package images

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // Register GIF decoder
	_ "image/jpeg" // Register JPEG decoder
	_ "image/png"  // Register PNG decoder

	_ "golang.org/x/image/webp" // Register WebP decoder
)

// MaxPixels bounds width*height so a tiny file cannot expand into a huge
// bitmap on decode.
const MaxPixels = 40_000_000

// ErrNotImage is returned when the upload is not a decodable image in a
// supported format.
var ErrNotImage = errors.New("upload a valid image. The file you uploaded was either not an image or a corrupted image")

// extensions maps image.Decode format names to file extensions.
var extensions = map[string]string{
	"jpeg": "jpg",
	"png":  "png",
	"gif":  "gif",
	"webp": "webp",
}

// Image is a decoded upload.
type Image struct {
	Format string
	Width  int
	Height int
	img    image.Image
}

// Ext returns the file extension for the image format, without the dot.
func (i *Image) Ext() string {
	return extensions[i.Format]
}

// Decode fully decodes data, rejecting unsupported formats, oversize
// dimensions and truncated files.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrNotImage
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotImage
	}
	if _, ok := extensions[format]; !ok {
		return nil, ErrNotImage
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, ErrNotImage
	}
	if cfg.Width*cfg.Height > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds the pixel limit", ErrNotImage, cfg.Width, cfg.Height)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrNotImage
	}

	return &Image{Format: format, Width: cfg.Width, Height: cfg.Height, img: img}, nil
}
