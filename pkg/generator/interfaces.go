package generator

import (
	"context"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// Model は画像生成サービスへの最小限の窓口です。
// go-gemini-client の gemini.GenerativeModel もこのメソッドを持つので、そのまま差し込めます。
type Model interface {
	GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error)
}
