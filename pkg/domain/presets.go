package domain

import "strings"

// BackgroundPresets は背景プリセット名から生成プロンプト用の説明文への対応表です。
var BackgroundPresets = map[string]string{
	"studio-white": "clean, seamless, bright white studio",
	"gray":         "minimalist, textured gray concrete",
	"lifestyle":    "warm, cozy, modern living room",
	"forest":       "serene forest floor with soft sunlight",
	"beach":        "pristine sandy beach with gentle waves and clear sky",
	"marble":       "elegant white marble surface",
	"wood":         "rustic wooden table surface with a soft, warm light",
	"gradient":     "soft, colorful abstract gradient",
}

// LightingPresets は照明プリセットです。
var LightingPresets = map[string]string{
	"soft":     "soft, diffused, even lighting with minimal shadows",
	"dramatic": "dramatic, high-contrast lighting with a single key light",
	"natural":  "bright, warm, natural afternoon sunlight",
	"backlit":  "backlit with a soft glow around the edges",
}

// AnglePresets はアングルプリセットです。
var AnglePresets = map[string]string{
	"front":      "straight-on front view",
	"45":         "three-quarter view from a 45-degree angle",
	"upper-body": "upper body shot, focusing on the torso and head",
	"full-body":  "full body shot, showing the entire figure from head to toe",
	"top-down":   "flat lay, top-down perspective",
	"low":        "dramatic low angle shot looking up",
}

// ResolveBackground はプリセット名なら説明文を、それ以外は入力をそのまま返します。
func ResolveBackground(v string) string { return resolvePreset(BackgroundPresets, v) }

// ResolveLighting は照明のプリセットを解決します。
func ResolveLighting(v string) string { return resolvePreset(LightingPresets, v) }

// ResolveAngle はアングルのプリセットを解決します。
func ResolveAngle(v string) string { return resolvePreset(AnglePresets, v) }

func resolvePreset(presets map[string]string, v string) string {
	if desc, ok := presets[strings.ToLower(strings.TrimSpace(v))]; ok {
		return desc
	}
	return strings.TrimSpace(v)
}
