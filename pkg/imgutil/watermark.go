package imgutil

import (
	"image"
	"image/color"
	"math"
	"unicode"

	"github.com/disintegration/imaging"
	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/domain"
)

var (
	shadowColor  = color.NRGBA{R: 0, G: 0, B: 0, A: 179}       // rgba(0,0,0,0.7)
	outlineColor = color.NRGBA{R: 0, G: 0, B: 0, A: 204}       // rgba(0,0,0,0.8)
	fillColor    = color.NRGBA{R: 255, G: 255, B: 255, A: 242} // rgba(255,255,255,0.95)
)

// watermarkLayout は透かしの描画位置です。座標はすべてキャンバス上のピクセルです。
type watermarkLayout struct {
	fontSize     float64
	originX      float64 // 文字列の左端
	baseline     float64
	textWidth    float64
	ascent       float64
	descent      float64
	shadowOffset float64
	strokeWidth  float64
}

// drawWatermark は影、縁取り、塗りの順に透かし文字を描画します。
// 縁取りと影があるので、背景の明暗に関係なく読めます。
// フォントにない文字が含まれる場合は描画せずに RenderSurfaceUnavailable を返します。
func drawWatermark(canvas *image.NRGBA, f *opentype.Font, wm domain.Watermark) error {
	if err := checkCoverage(f, wm.Text); err != nil {
		return err
	}

	w, h := float64(canvas.Rect.Dx()), float64(canvas.Rect.Dy())
	fontSize := math.Max(12, math.Min(w, h)*0.04)

	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    fontSize,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return apperr.New(apperr.KindRenderSurfaceUnavailable, err)
	}
	defer face.Close()

	l := layoutWatermark(face, wm, w, h, fontSize)

	drawShadow(canvas, face, wm.Text, l)

	// 縁取り: 線幅の半分だけずらした位置に暗色で描いてから塗りを重ねる
	r := l.strokeWidth / 2
	for i := 0; i < 8; i++ {
		theta := float64(i) * math.Pi / 4
		drawText(canvas, face, outlineColor, wm.Text, l.originX+r*math.Cos(theta), l.baseline+r*math.Sin(theta))
	}
	drawText(canvas, face, fillColor, wm.Text, l.originX, l.baseline)
	return nil
}

// checkCoverage は text のすべての文字がフォントに含まれるかを確かめます。
// グリフのない文字は豆腐 (.notdef) で描かれてしまうためです。
func checkCoverage(f *opentype.Font, text string) error {
	var buf sfnt.Buffer
	for _, r := range text {
		if unicode.IsSpace(r) {
			continue
		}
		idx, err := f.GlyphIndex(&buf, r)
		if err != nil {
			return apperr.New(apperr.KindRenderSurfaceUnavailable, err)
		}
		if idx == 0 {
			return apperr.Newf(apperr.KindRenderSurfaceUnavailable, "watermark font has no glyph for %q", r)
		}
	}
	return nil
}

func layoutWatermark(face font.Face, wm domain.Watermark, w, h, fontSize float64) watermarkLayout {
	padding := math.Max(10, w*0.02)
	metrics := face.Metrics()
	l := watermarkLayout{
		fontSize:     fontSize,
		textWidth:    fromFixed(font.MeasureString(face, wm.Text)),
		ascent:       fromFixed(metrics.Ascent),
		descent:      fromFixed(metrics.Descent),
		shadowOffset: math.Max(1, fontSize*0.08),
		strokeWidth:  math.Max(1, fontSize*0.04),
	}

	var anchorX, anchorY float64
	var top bool
	switch wm.Position {
	case domain.WatermarkTopLeft:
		anchorX, anchorY, top = padding, padding, true
		l.originX = anchorX
	case domain.WatermarkTopCenter:
		anchorX, anchorY, top = w/2, padding, true
		l.originX = anchorX - l.textWidth/2
	case domain.WatermarkTopRight:
		anchorX, anchorY, top = w-padding, padding, true
		l.originX = anchorX - l.textWidth
	case domain.WatermarkBottomLeft:
		anchorX, anchorY = padding, h-padding
		l.originX = anchorX
	case domain.WatermarkBottomCenter:
		anchorX, anchorY = w/2, h-padding
		l.originX = anchorX - l.textWidth/2
	default:
		anchorX, anchorY = w-padding, h-padding
		l.originX = anchorX - l.textWidth
	}

	if top {
		l.baseline = anchorY + l.ascent
	} else {
		l.baseline = anchorY - l.descent
	}
	return l
}

// drawShadow は右下にずらした暗い文字を別レイヤーに描き、少しぼかしてから合成します。
func drawShadow(canvas *image.NRGBA, face font.Face, text string, l watermarkLayout) {
	margin := int(math.Ceil(l.shadowOffset+l.strokeWidth)) + 2
	box := image.Rect(
		int(math.Floor(l.originX))-margin,
		int(math.Floor(l.baseline-l.ascent))-margin,
		int(math.Ceil(l.originX+l.textWidth+l.shadowOffset))+margin,
		int(math.Ceil(l.baseline+l.descent+l.shadowOffset))+margin,
	)

	layer := image.NewNRGBA(box)
	drawText(layer, face, shadowColor, text, l.originX+l.shadowOffset, l.baseline+l.shadowOffset)

	soft := imaging.Blur(layer, l.shadowOffset/2)
	xdraw.Draw(canvas, box, soft, image.Point{}, xdraw.Over)
}

func drawText(dst xdraw.Image, face font.Face, c color.Color, text string, x, y float64) {
	d := &font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(c),
		Face: face,
		Dot:  fixed.Point26_6{X: toFixed(x), Y: toFixed(y)},
	}
	d.DrawString(text)
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func fromFixed(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
