package imgutil

import (
	"bytes"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
)

// CompressToJPEG は商品画像をJPEG形式に再圧縮して送信サイズを抑えます。
// image.Decode がサポートするフォーマット (PNG, GIF, JPEG, WebP) に対応しています。
// 透過情報は失われるので、切り抜き済みの PNG では使わないでください。
func CompressToJPEG(data []byte, quality int) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.New(apperr.KindImageDecode, err)
	}

	if quality < 1 || quality > 100 {
		quality = jpeg.DefaultQuality
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
