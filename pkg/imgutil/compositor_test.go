package imgutil

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/domain"
)

func TestCropRect(t *testing.T) {
	tests := []struct {
		name   string
		bounds image.Rectangle
		ratio  float64
		want   image.Rectangle
	}{
		{"横長を正方形に", image.Rect(0, 0, 1600, 900), 1, image.Rect(350, 0, 1250, 900)},
		{"縦長を2:3に", image.Rect(0, 0, 900, 1600), 2.0 / 3.0, image.Rect(0, 125, 900, 1475)},
		{"正方形を9:16に", image.Rect(0, 0, 900, 900), 9.0 / 16.0, image.Rect(197, 0, 703, 900)},
		{"比率が一致するなら全体", image.Rect(0, 0, 400, 400), 1, image.Rect(0, 0, 400, 400)},
		{"原点がずれた矩形", image.Rect(10, 20, 210, 120), 1, image.Rect(60, 20, 160, 120)},
		{"丸めた寸法が比率に合えば全体", image.Rect(0, 0, 511, 909), 9.0 / 16.0, image.Rect(0, 0, 511, 909)},
		{"比率が不正なら全体", image.Rect(0, 0, 30, 20), 0, image.Rect(0, 0, 30, 20)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CropRect(tt.bounds, tt.ratio))
		})
	}
}

func TestCompose_Crop(t *testing.T) {
	t.Run("originalで透かしなしなら画素はそのまま", func(t *testing.T) {
		src := gradientImage(64, 48)
		got, err := Compose(encodePNG(t, src), domain.AspectOriginal, nil)
		require.NoError(t, err)

		out := decodePNG(t, got)
		assert.Equal(t, src.Bounds(), out.Bounds())
		_, n := changedPixels(src, out)
		assert.Zero(t, n)
	})

	t.Run("1600x900を1:1にすると中央の900x900になる", func(t *testing.T) {
		got, err := Compose(encodePNG(t, gradientImage(1600, 900)), "1:1", nil)
		require.NoError(t, err)

		out := decodePNG(t, got)
		assert.Equal(t, 900, out.Bounds().Dx())
		assert.Equal(t, 900, out.Bounds().Dy())
		assert.Equal(t, gradientAt(350, 0), nrgbaAt(out, 0, 0))
		assert.Equal(t, gradientAt(350+899, 899), nrgbaAt(out, 899, 899))
	})

	t.Run("900x1600を2:3にすると上下125pxずつ削られる", func(t *testing.T) {
		got, err := Compose(encodePNG(t, gradientImage(900, 1600)), "2:3", nil)
		require.NoError(t, err)

		out := decodePNG(t, got)
		assert.Equal(t, 900, out.Bounds().Dx())
		assert.Equal(t, 1350, out.Bounds().Dy())
		assert.Equal(t, gradientAt(0, 125), nrgbaAt(out, 0, 0))
		assert.Equal(t, gradientAt(899, 125+1349), nrgbaAt(out, 899, 1349))
	})

	t.Run("同じ比率で2回切り出しても変わらない", func(t *testing.T) {
		// 909*9/16 = 511.31 で、丸め方によっては2回目に高さが1px削られる寸法
		once, err := Compose(encodePNG(t, gradientImage(1000, 909)), "9:16", nil)
		require.NoError(t, err)
		twice, err := Compose(once, "9:16", nil)
		require.NoError(t, err)

		a, b := decodePNG(t, once), decodePNG(t, twice)
		assert.Equal(t, image.Pt(511, 909), a.Bounds().Size())
		assert.Equal(t, a.Bounds().Size(), b.Bounds().Size())
		_, n := changedPixels(a, b)
		assert.Zero(t, n)
	})

	t.Run("名前付きプラットフォームのタグも解決される", func(t *testing.T) {
		got, err := Compose(encodePNG(t, gradientImage(200, 100)), "instagram-post", nil)
		require.NoError(t, err)
		out := decodePNG(t, got)
		assert.Equal(t, out.Bounds().Dx(), out.Bounds().Dy())
	})

	t.Run("未知のタグはoriginal扱い", func(t *testing.T) {
		got, err := Compose(encodePNG(t, gradientImage(30, 20)), "3:1", nil)
		require.NoError(t, err)
		assert.Equal(t, image.Rect(0, 0, 30, 20), decodePNG(t, got).Bounds())
	})
}

func TestCompose_Watermark(t *testing.T) {
	const w, h = 400, 300
	src := solidImage(w, h)
	data := encodePNG(t, src)

	type half int
	const (
		low half = iota
		mid
		high
	)
	tests := []struct {
		position domain.WatermarkPosition
		x, y     half
	}{
		{domain.WatermarkTopLeft, low, low},
		{domain.WatermarkTopCenter, mid, low},
		{domain.WatermarkTopRight, high, low},
		{domain.WatermarkBottomLeft, low, high},
		{domain.WatermarkBottomCenter, mid, high},
		{domain.WatermarkBottomRight, high, high},
	}
	for _, tt := range tests {
		t.Run(string(tt.position)+"の位置に描かれ寸法は変わらない", func(t *testing.T) {
			got, err := Compose(data, domain.AspectOriginal, &domain.Watermark{Text: "ACME", Position: tt.position})
			require.NoError(t, err)

			out := decodePNG(t, got)
			assert.Equal(t, src.Bounds(), out.Bounds())

			box, n := changedPixels(src, out)
			require.Positive(t, n)
			switch tt.x {
			case low:
				assert.Less(t, box.Max.X, w/2, "左半分")
			case mid:
				assert.Less(t, box.Min.X, w/2, "中央")
				assert.Greater(t, box.Max.X, w/2, "中央")
			case high:
				assert.Greater(t, box.Min.X, w/2, "右半分")
			}
			if tt.y == low {
				assert.Less(t, box.Max.Y, h/2, "上半分")
			} else {
				assert.Greater(t, box.Min.Y, h/2, "下半分")
			}
		})
	}

	t.Run("空文字の透かしは描画しない", func(t *testing.T) {
		got, err := Compose(data, domain.AspectOriginal, &domain.Watermark{Position: domain.WatermarkTopLeft})
		require.NoError(t, err)
		_, n := changedPixels(src, decodePNG(t, got))
		assert.Zero(t, n)
	})

	t.Run("フォントにない文字はRenderSurfaceUnavailable", func(t *testing.T) {
		_, err := Compose(data, domain.AspectOriginal, &domain.Watermark{Text: "브랜드", Position: domain.WatermarkBottomRight})
		assert.ErrorIs(t, err, apperr.ErrRenderSurfaceUnavailable)
	})

	t.Run("空白は文字の有無を問わない", func(t *testing.T) {
		_, err := Compose(data, domain.AspectOriginal, &domain.Watermark{Text: "ACME STORE", Position: domain.WatermarkBottomRight})
		assert.NoError(t, err)
	})
}

func TestNewCompositor(t *testing.T) {
	src := solidImage(400, 300)
	data := encodePNG(t, src)
	wm := &domain.Watermark{Text: "ACME", Position: domain.WatermarkBottomRight}

	t.Run("指定したフォントで描画される", func(t *testing.T) {
		regular, err := NewCompositor(goregular.TTF)
		require.NoError(t, err)

		withRegular, err := regular.Compose(data, domain.AspectOriginal, wm)
		require.NoError(t, err)
		withBold, err := DefaultCompositor().Compose(data, domain.AspectOriginal, wm)
		require.NoError(t, err)

		_, n := changedPixels(decodePNG(t, withRegular), decodePNG(t, withBold))
		assert.Positive(t, n, "フォントが違えば画素も違う")
	})

	t.Run("空のフォントデータはGo Boldになる", func(t *testing.T) {
		c, err := NewCompositor(nil)
		require.NoError(t, err)

		got, err := c.Compose(data, domain.AspectOriginal, wm)
		require.NoError(t, err)
		want, err := Compose(data, domain.AspectOriginal, wm)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("フォントでないデータはエラー", func(t *testing.T) {
		_, err := NewCompositor([]byte("not a font"))
		assert.Error(t, err)
	})
}

func TestCompose_Errors(t *testing.T) {
	_, err := Compose([]byte("not an image"), "1:1", nil)
	assert.ErrorIs(t, err, apperr.ErrImageDecode)
}
