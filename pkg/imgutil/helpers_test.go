package imgutil

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, img image.Image) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	require.NoError(t, png.Encode(buf, img))
	return buf.Bytes()
}

func decodePNG(t *testing.T, data []byte) image.Image {
	t.Helper()
	img, format, err := image.Decode(bytes.NewReader(data))
	require.NoError(t, err)
	require.Equal(t, "png", format)
	return img
}

func solidImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 120, G: 160, B: 200, A: 255})
		}
	}
	return img
}

// gradientImage は座標から色が一意に決まる画像です。切り出し位置の検証に使います。
func gradientImage(w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, gradientAt(x, y))
		}
	}
	return img
}

func gradientAt(x, y int) color.NRGBA {
	return color.NRGBA{R: uint8(x % 256), G: uint8(y % 256), B: uint8((x / 256) + (y/256)*16), A: 255}
}

func nrgbaAt(img image.Image, x, y int) color.NRGBA {
	return color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
}

// changedPixels は a と b で色が異なる画素の外接矩形と数を返します。
func changedPixels(a, b image.Image) (image.Rectangle, int) {
	var box image.Rectangle
	n := 0
	bounds := a.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if nrgbaAt(a, x, y) != nrgbaAt(b, x, y) {
				px := image.Rect(x, y, x+1, y+1)
				if n == 0 {
					box = px
				} else {
					box = box.Union(px)
				}
				n++
			}
		}
	}
	return box, n
}
