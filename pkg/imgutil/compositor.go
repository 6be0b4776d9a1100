package imgutil

import (
	"bytes"
	"fmt"
	"image"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/domain"
)

// OutputMimeType は Compose が出力する画像形式です。
const OutputMimeType = "image/png"

// Compositor は透かしのフォントを保持する合成器です。
// 生成後は不変なので、複数のゴルーチンから同時に使えます。
type Compositor struct {
	font *opentype.Font
}

// NewCompositor は TTF/OTF のフォントデータから Compositor を作ります。
// fontData が空なら Go Bold を使います。Go Bold はラテン文字だけなので、
// ハングルなどの透かしには対応するフォントを指定してください。
func NewCompositor(fontData []byte) (*Compositor, error) {
	if len(fontData) == 0 {
		fontData = gobold.TTF
	}
	f, err := opentype.Parse(fontData)
	if err != nil {
		return nil, fmt.Errorf("透かしフォントの読み込みに失敗しました: %w", err)
	}
	return &Compositor{font: f}, nil
}

var defaultCompositor = mustCompositor(NewCompositor(nil))

func mustCompositor(c *Compositor, err error) *Compositor {
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultCompositor は Go Bold を使う Compositor を返します。
func DefaultCompositor() *Compositor {
	return defaultCompositor
}

// Compose は DefaultCompositor で合成します。
func Compose(data []byte, aspectTag string, wm *domain.Watermark) ([]byte, error) {
	return defaultCompositor.Compose(data, aspectTag, wm)
}

// Compose は生成画像を公開先のアスペクト比に中央トリミングし、透かしを焼き込みます。
//
// 入力だけで結果が決まる純粋な関数なので、設定が変わるたびにプレビュー用に
// 何度呼び出しても安全です。wm が nil なら透かしは描画しません。
// 出力は常に PNG で再エンコードされます。
func (c *Compositor) Compose(data []byte, aspectTag string, wm *domain.Watermark) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, apperr.New(apperr.KindImageDecode, err)
	}

	rect := src.Bounds()
	if ratio, ok := domain.ResolveAspect(aspectTag); ok {
		rect = CropRect(rect, ratio.Value())
	}
	if rect.Empty() {
		return nil, apperr.Newf(apperr.KindRenderSurfaceUnavailable, "empty canvas: %v", rect)
	}

	canvas := imaging.Crop(src, rect)
	if canvas.Rect.Empty() {
		return nil, apperr.Newf(apperr.KindRenderSurfaceUnavailable, "crop produced no pixels: %v", rect)
	}

	if wm != nil && wm.Text != "" {
		if err := drawWatermark(canvas, c.font, *wm); err != nil {
			return nil, err
		}
	}

	buf := new(bytes.Buffer)
	if err := png.Encode(buf, canvas); err != nil {
		return nil, apperr.New(apperr.KindRenderSurfaceUnavailable, err)
	}
	return buf.Bytes(), nil
}

// CropRect は bounds を ratio (幅/高さ) に合わせて中央で切り出す矩形を返します。
// 長い方の辺だけを削り、パディングや拡大は行いません。
// 整数ピクセルに丸めた時点で比率が合っていれば bounds をそのまま返すので、
// 切り出し済みの画像を再度切り出しても寸法は変わりません。
func CropRect(bounds image.Rectangle, ratio float64) image.Rectangle {
	w, h := float64(bounds.Dx()), float64(bounds.Dy())
	if ratio <= 0 || w == 0 || h == 0 {
		return bounds
	}
	if int(math.Round(h*ratio)) == bounds.Dx() || int(math.Round(w/ratio)) == bounds.Dy() {
		return bounds
	}

	sx, sy, sw, sh := 0.0, 0.0, w, h
	if w/h > ratio {
		sw = h * ratio
		sx = (w - sw) / 2
	} else {
		sh = w / ratio
		sy = (h - sh) / 2
	}

	x0 := bounds.Min.X + int(math.Round(sx))
	y0 := bounds.Min.Y + int(math.Round(sy))
	r := image.Rect(x0, y0, x0+int(math.Round(sw)), y0+int(math.Round(sh)))
	return r.Intersect(bounds)
}
