package generator

import (
	"context"
	"fmt"
	"sync"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"
)

// GenAIModel は google.golang.org/genai を直接使う Model の実装です。
// クライアントは最初の呼び出しで生成されます。
type GenAIModel struct {
	apiKey string

	once    sync.Once
	client  *genai.Client
	initErr error
}

// NewGenAIModel は GenAIModel を返します。
func NewGenAIModel(apiKey string) *GenAIModel {
	return &GenAIModel{apiKey: apiKey}
}

func (m *GenAIModel) init(ctx context.Context) (*genai.Client, error) {
	m.once.Do(func() {
		m.client, m.initErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  m.apiKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return m.client, m.initErr
}

// GenerateWithParts はパーツ列を 1 つのユーザーターンとして送信します。
// 応答は画像とテキストの両方を許可するので、テキストだけの応答は呼び出し側で判定します。
func (m *GenAIModel) GenerateWithParts(ctx context.Context, model string, parts []*genai.Part, opts gemini.GenerateOptions) (*gemini.Response, error) {
	client, err := m.init(ctx)
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの初期化に失敗しました: %w", err)
	}

	config := &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityImage), string(genai.ModalityText)},
	}
	if opts.SystemPrompt != "" {
		config.SystemInstruction = genai.NewContentFromText(opts.SystemPrompt, genai.RoleUser)
	}
	if opts.Seed != nil {
		seed := int32(*opts.Seed)
		config.Seed = &seed
	}

	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	resp, err := client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, err
	}
	return &gemini.Response{RawResponse: resp}, nil
}
