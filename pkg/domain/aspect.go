package domain

import "strings"

// AspectOriginal はトリミングしないことを表すタグです。
const AspectOriginal = "original"

// AspectRatio は幅:高さの比です。
type AspectRatio struct {
	Width  int
	Height int
}

// Value は幅/高さの値を返します。
func (r AspectRatio) Value() float64 {
	return float64(r.Width) / float64(r.Height)
}

// aspectTags は公開先ごとの比率です。同じ比率を複数の公開先が共有します。
var aspectTags = map[string]AspectRatio{
	"1:1":             {1, 1},
	"9:16":            {9, 16},
	"2:3":             {2, 3},
	"instagram-post":  {1, 1},
	"instagram-story": {9, 16},
	"naver-shopping":  {1, 1},
	"pinterest-pin":   {2, 3},
}

// ResolveAspect はタグを比率に変換します。
// "original" や未知のタグは ok=false（トリミングなし）になります。
func ResolveAspect(tag string) (AspectRatio, bool) {
	r, ok := aspectTags[strings.ToLower(strings.TrimSpace(tag))]
	return r, ok
}
