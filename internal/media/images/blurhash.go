package images

import (
	"fmt"
	"image"

	"github.com/bbrks/go-blurhash"
)

// blurHashSize is the thumbnail edge used for hashing; a placeholder needs
// no more detail than this.
const blurHashSize = 64

// BlurHash returns a 4x3 component BlurHash for the image.
func (i *Image) BlurHash() (string, error) {
	hash, err := blurhash.Encode(4, 3, thumbnail(i.img))
	if err != nil {
		return "", fmt.Errorf("encode blurhash: %w", err)
	}
	return hash, nil
}

// thumbnail nearest-neighbor scales img so its longer edge is blurHashSize.
func thumbnail(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= blurHashSize && h <= blurHashSize {
		return img
	}

	dw, dh := blurHashSize, blurHashSize
	if w > h {
		dh = max(1, h*blurHashSize/w)
	} else {
		dw = max(1, w*blurHashSize/h)
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	for y := range dh {
		sy := b.Min.Y + y*h/dh
		for x := range dw {
			dst.Set(x, y, img.At(b.Min.X+x*w/dw, sy))
		}
	}
	return dst
}
