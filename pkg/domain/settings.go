package domain

import (
	"fmt"
	"strings"
)

// InteractionMode はモデル画像の人物と商品の関わり方です。
type InteractionMode string

const (
	InteractionWearing InteractionMode = "wearing"
	InteractionHolding InteractionMode = "holding"
	InteractionPosing  InteractionMode = "posing"
)

// WatermarkPosition は透かし文字の配置です。
type WatermarkPosition string

const (
	WatermarkTopLeft      WatermarkPosition = "top-left"
	WatermarkTopCenter    WatermarkPosition = "top-center"
	WatermarkTopRight     WatermarkPosition = "top-right"
	WatermarkBottomLeft   WatermarkPosition = "bottom-left"
	WatermarkBottomCenter WatermarkPosition = "bottom-center"
	WatermarkBottomRight  WatermarkPosition = "bottom-right"
)

// Watermark は合成時に焼き込む透かしの指定です。
type Watermark struct {
	Text     string
	Position WatermarkPosition
}

// GenerationSettings はユーザーが画面で指定する生成設定です。
// Interaction は UseModel が true のときだけ、WatermarkPosition は Watermark が
// 空でないときだけ意味を持ちます。
type GenerationSettings struct {
	Background        string
	UseModel          bool
	Interaction       InteractionMode
	Lighting          string
	Angle             string
	Watermark         string
	WatermarkPosition WatermarkPosition
	AspectTag         string
}

// DefaultSettings は初期表示の設定を返します。
func DefaultSettings() GenerationSettings {
	return GenerationSettings{
		Background:        BackgroundPresets["studio-white"],
		Interaction:       InteractionWearing,
		Lighting:          LightingPresets["natural"],
		Angle:             AnglePresets["front"],
		WatermarkPosition: WatermarkBottomRight,
		AspectTag:         AspectOriginal,
	}
}

// WatermarkSpec は透かし文字が空なら nil を返します。
func (s GenerationSettings) WatermarkSpec() *Watermark {
	text := strings.TrimSpace(s.Watermark)
	if text == "" {
		return nil
	}
	return &Watermark{Text: text, Position: s.WatermarkPosition}
}

// ParseInteractionMode は文字列を InteractionMode に変換します。
func ParseInteractionMode(s string) (InteractionMode, error) {
	switch m := InteractionMode(strings.ToLower(strings.TrimSpace(s))); m {
	case InteractionWearing, InteractionHolding, InteractionPosing:
		return m, nil
	default:
		return "", fmt.Errorf("unknown interaction mode: %q", s)
	}
}

// ParseWatermarkPosition は文字列を WatermarkPosition に変換します。
func ParseWatermarkPosition(s string) (WatermarkPosition, error) {
	switch p := WatermarkPosition(strings.ToLower(strings.TrimSpace(s))); p {
	case WatermarkTopLeft, WatermarkTopCenter, WatermarkTopRight,
		WatermarkBottomLeft, WatermarkBottomCenter, WatermarkBottomRight:
		return p, nil
	default:
		return "", fmt.Errorf("unknown watermark position: %q", s)
	}
}
