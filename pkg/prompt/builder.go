// Package prompt は生成設定から画像サービス向けの指示文を組み立てます。
// すべての関数は純粋で、失敗しません。
package prompt

import (
	"fmt"
	"strings"

	"github.com/shouni/gemini-product-studio/pkg/domain"
)

// リクエスト中で画像の役割を示すラベルです。
const (
	LabelModelImage   = "Model Image:"
	LabelProductImage = "Product Image:"
)

// TwoArmsMandate は holding モードで必ずサービスに伝える不変条件です。
const TwoArmsMandate = "**CRITICAL MANDATE: The final image must depict a person with EXACTLY TWO ARMS. There are no exceptions. An image with three arms is a critical failure.**"

const compositeRole = "You are a world-class photoretoucher specializing in hyper-realistic composite imagery. Your task is to seamlessly edit the 'Model Image' so the person is presented together with the 'Product' from the 'Product Image'."

const compositeRules = `
- The final image must be a high-resolution, professional photograph.
- The lighting on the product must be adjusted to perfectly match the lighting in the 'Model Image'.
- The person's identity (face, hair, body type) must be preserved exactly as in the 'Model Image'.
- Completely ignore the original background of the 'Product Image'.`

const wearingBody = "The person from the 'Model Image' is now wearing the product (e.g., clothing, accessory) from the 'Product Image'. Retain the background, general pose, and lighting from the 'Model Image'."

const posingBody = "The person from the 'Model Image' is standing or posing next to the product from the 'Product Image'. This is for larger items where the person provides scale and context. Retain the background, the person's full pose, and lighting from the 'Model Image'."

var holdingBody = strings.Join([]string{
	"",
	"You are a professional photo editor performing a complex composite edit.",
	"Your task is to create a single, photorealistic image where the person from the 'Model Image' is holding the 'Product' from the 'Product Image'.",
	"",
	TwoArmsMandate,
	"",
	"**Scene Description for the Final Image:**",
	"- The person is the same as in the 'Model Image' (same face, hair, clothing, body).",
	"- The background and lighting are the same as in the 'Model Image'.",
	"- The person is holding the 'Product' in one of their hands. This is achieved by **replacing one of the original arms** with a new arm in a holding pose.",
	"- The other original arm remains in a natural pose.",
	"- The product and the new arm are perfectly blended into the scene, matching the lighting, shadows, and color grade.",
	"",
	"**DO NOT:**",
	"- Do NOT add a third arm.",
	"- Do NOT leave remnants of the original arm that was replaced.",
	"",
	"Before outputting the final image, verify that the person has exactly two arms. If not, the task has failed and you must start over.",
}, "\n")

const productTemplate = `Analyze the provided image and identify the main product. Create a photorealistic, high-resolution professional product photograph of this product.
- IMPORTANT: Completely remove the original background and any distractions.
- Place the product in a new, clean scene with a '%s' style background.
- The lighting should be '%s'.
- The product should be viewed from the '%s'.
- The final image should be centered, well-lit, and of commercial quality.
`

const synthesizedModelClause = "- If the product is an item of clothing, accessory, or jewelry, display it on a suitable, photorealistic human model to showcase how it's worn. The model should be posed naturally and fit the style of the product and background. Do not show the model's face."

const editTemplate = `Based on the user's request, please edit the provided image. The request is: "%s".
- Apply the edit subtly and maintain the photorealism of the original image.
- Do not drastically change the composition unless specifically asked.
- Return only the edited image.`

// Build は設定とモデル画像の有無から生成指示文を返します。
func Build(settings domain.GenerationSettings, hasModelImage bool) string {
	if settings.UseModel && hasModelImage {
		return buildComposite(settings.Interaction)
	}

	defaults := domain.DefaultSettings()
	p := fmt.Sprintf(productTemplate,
		orDefault(settings.Background, defaults.Background),
		orDefault(settings.Lighting, defaults.Lighting),
		orDefault(settings.Angle, defaults.Angle),
	)
	if settings.UseModel {
		// モデル画像がないので、サービス側で顔を隠したモデルを用意させる
		p += synthesizedModelClause
	}
	return p
}

func buildComposite(mode domain.InteractionMode) string {
	var body string
	switch mode {
	case domain.InteractionHolding:
		body = holdingBody
	case domain.InteractionPosing:
		body = posingBody
	default:
		body = wearingBody
	}
	return compositeRole + " " + body + " " + compositeRules
}

// BuildEdit は生成済み画像を微修正させる指示文を返します。
func BuildEdit(instruction string) string {
	return fmt.Sprintf(editTemplate, strings.TrimSpace(instruction))
}

func orDefault(v, def string) string {
	if s := strings.TrimSpace(v); s != "" {
		return s
	}
	return def
}
