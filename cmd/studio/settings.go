package main

import (
	"github.com/spf13/pflag"

	"github.com/shouni/gemini-product-studio/pkg/domain"
)

// settingsFlags は GenerationSettings に対応するフラグです。
type settingsFlags struct {
	background        string
	lighting          string
	angle             string
	useModel          bool
	interaction       string
	watermark         string
	watermarkPosition string
	aspect            string
}

func (f *settingsFlags) register(fs *pflag.FlagSet) {
	d := domain.DefaultSettings()
	fs.StringVar(&f.background, "background", "studio-white", "background preset or free-form description")
	fs.StringVar(&f.lighting, "lighting", "natural", "lighting preset or free-form description")
	fs.StringVar(&f.angle, "angle", "front", "camera angle preset or free-form description")
	fs.BoolVar(&f.useModel, "use-model", false, "show the product with a person")
	fs.StringVar(&f.interaction, "interaction", string(d.Interaction), "wearing, holding or posing (with --model-image)")
	fs.StringVar(&f.watermark, "watermark", "", "watermark text burned into the output")
	fs.StringVar(&f.watermarkPosition, "watermark-position", string(d.WatermarkPosition), "top-left, top-center, top-right, bottom-left, bottom-center or bottom-right")
	fs.StringVar(&f.aspect, "aspect", d.AspectTag, "original, 1:1, 9:16, 2:3, instagram-post, instagram-story, naver-shopping, pinterest-pin")
}

// settings はフラグを検証して GenerationSettings に変換します。
func (f *settingsFlags) settings() (domain.GenerationSettings, error) {
	mode, err := domain.ParseInteractionMode(f.interaction)
	if err != nil {
		return domain.GenerationSettings{}, err
	}
	pos, err := domain.ParseWatermarkPosition(f.watermarkPosition)
	if err != nil {
		return domain.GenerationSettings{}, err
	}
	return domain.GenerationSettings{
		Background:        domain.ResolveBackground(f.background),
		Lighting:          domain.ResolveLighting(f.lighting),
		Angle:             domain.ResolveAngle(f.angle),
		UseModel:          f.useModel,
		Interaction:       mode,
		Watermark:         f.watermark,
		WatermarkPosition: pos,
		AspectTag:         f.aspect,
	}, nil
}
