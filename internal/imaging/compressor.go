package imaging

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"github.com/local/answerpipe/internal/ai"
)

// Compressor downscales and re-encodes screenshots for inline transport. A failure
// for any one path is fatal for the request so ordering can never silently corrupt.
type Compressor interface {
	Compress(path string) (ai.InlineImage, error)
}

// JPEGCompressor caps the longest image edge and re-encodes as JPEG.
type JPEGCompressor struct {
	maxEdge int
	quality int
}

func NewJPEGCompressor(maxEdge, quality int) *JPEGCompressor {
	if maxEdge <= 0 {
		maxEdge = 1200
	}
	if quality <= 0 || quality > 100 {
		quality = 80
	}
	return &JPEGCompressor{maxEdge: maxEdge, quality: quality}
}

func (c *JPEGCompressor) Compress(path string) (ai.InlineImage, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return ai.InlineImage{}, fmt.Errorf("read screenshot: %w", err)
	}

	mt := mimetype.Detect(raw)
	switch mt.String() {
	case "image/png", "image/jpeg", "image/webp":
	default:
		return ai.InlineImage{}, fmt.Errorf("unsupported screenshot type %s for %s", mt.String(), path)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return ai.InlineImage{}, fmt.Errorf("decode screenshot: %w", err)
	}

	scaled := c.downscale(img)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, scaled, &jpeg.Options{Quality: c.quality}); err != nil {
		return ai.InlineImage{}, fmt.Errorf("encode jpeg: %w", err)
	}

	log.Debug().
		Str("path", path).
		Int("bytes_in", len(raw)).
		Int("bytes_out", buf.Len()).
		Msg("screenshot compressed")

	return ai.InlineImage{
		MIME:       "image/jpeg",
		DataBase64: base64.StdEncoding.EncodeToString(buf.Bytes()),
	}, nil
}

func (c *JPEGCompressor) downscale(img image.Image) image.Image {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w <= c.maxEdge && h <= c.maxEdge {
		return img
	}
	scale := float64(c.maxEdge) / float64(w)
	if h > w {
		scale = float64(c.maxEdge) / float64(h)
	}
	nw := int(float64(w) * scale)
	nh := int(float64(h) * scale)
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, draw.Over, nil)
	return dst
}
