package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/domain"
	"github.com/shouni/gemini-product-studio/pkg/prompt"
)

// Client は商品画像の生成と編集を担当するジェネレーターなのだ。
// 1 回の呼び出しで 1 枚の画像を返し、再試行はしない。再試行は呼び出し側の責務なのだ。
type Client struct {
	model Model
	opts  Options
}

// NewClient は Client を初期化するのだ。
func NewClient(model Model, opts Options) (*Client, error) {
	if model == nil {
		return nil, fmt.Errorf("model (generator.Model) is required")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.CompressionQuality == 0 {
		opts.CompressionQuality = DefaultCompressionQuality
	}
	return &Client{model: model, opts: opts}, nil
}

// Generate は商品画像から公開用の写真を 1 枚生成するのだ。
//
// settings.UseModel が false のときはモデル画像を渡されても使わない。
// API キーが未設定なら通信せずに MissingCredential を返すのだ。
func (c *Client) Generate(ctx context.Context, src domain.SourceImage, settings domain.GenerationSettings, model *domain.SourceImage) (*domain.GeneratedArtifact, error) {
	if c.opts.APIKey == "" {
		return nil, apperr.ErrMissingCredential
	}

	aux := model
	if !settings.UseModel {
		aux = nil
	}

	parts, err := c.buildParts(src, aux, prompt.Build(settings, aux != nil))
	if err != nil {
		return nil, err
	}

	slog.Info("Gemini画像生成リクエスト準備中",
		"model", c.opts.Model,
		"source", src.ID,
		"with_model_image", aux != nil,
		"parts", len(parts),
	)

	out, err := c.execute(ctx, parts)
	if err != nil {
		return nil, fmt.Errorf("Gemini商品画像生成エラー (%s): %w", src.ID, err)
	}

	return &domain.GeneratedArtifact{
		ID:       processedIDPrefix + uuid.NewString(),
		SourceID: src.ID,
		Data:     out.Data,
		MimeType: out.MimeType,
	}, nil
}

// Refine は生成済みの画像に自然言語の編集指示を適用するのだ。
// 結果の SourceID は元の成果物と同じなので、呼び出し側はそのまま置き換えられる。
func (c *Client) Refine(ctx context.Context, prior domain.GeneratedArtifact, instruction string) (*domain.GeneratedArtifact, error) {
	if strings.TrimSpace(instruction) == "" {
		return nil, apperr.Newf(apperr.KindInvalidRequest, "edit instruction is empty")
	}
	if c.opts.APIKey == "" {
		return nil, apperr.ErrMissingCredential
	}

	mimeType := prior.MimeType
	if mimeType == "" {
		mimeType = defaultOutputMimeType
	}
	// 生成済みの画像は再圧縮しない
	parts := []*genai.Part{
		{InlineData: &genai.Blob{MIMEType: mimeType, Data: prior.Data}},
		genai.NewPartFromText(prompt.BuildEdit(instruction)),
	}

	slog.Info("Gemini画像編集リクエスト準備中", "model", c.opts.Model, "artifact", prior.ID)

	out, err := c.execute(ctx, parts)
	if err != nil {
		return nil, fmt.Errorf("Gemini画像編集エラー (%s): %w", prior.ID, err)
	}

	return &domain.GeneratedArtifact{
		ID:       editedIDPrefix + uuid.NewString(),
		SourceID: prior.SourceID,
		Data:     out.Data,
		MimeType: out.MimeType,
	}, nil
}

// execute は通信と応答解析を一括で行うヘルパーなのだ。
func (c *Client) execute(ctx context.Context, parts []*genai.Part) (*imageOutput, error) {
	resp, err := c.model.GenerateWithParts(ctx, c.opts.Model, parts, gemini.GenerateOptions{})
	if err != nil {
		return nil, apperr.Classify(err)
	}
	return c.parseToResponse(resp)
}
