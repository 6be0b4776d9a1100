package generator

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/domain"
	"github.com/shouni/gemini-product-studio/pkg/imgutil"
	"github.com/shouni/gemini-product-studio/pkg/prompt"
)

// buildParts は送信するパーツ列を組み立てます。
// 補助画像がある場合は、プロンプトが参照するラベルを各画像の直前に置きます。
func (c *Client) buildParts(src domain.SourceImage, aux *domain.SourceImage, instruction string) ([]*genai.Part, error) {
	srcPart, err := c.toPart(src.Data, src.MimeType)
	if err != nil {
		return nil, fmt.Errorf("商品画像 %q の準備に失敗しました: %w", src.Name, err)
	}

	if aux == nil {
		return []*genai.Part{srcPart, genai.NewPartFromText(instruction)}, nil
	}

	auxPart, err := c.toPart(aux.Data, aux.MimeType)
	if err != nil {
		return nil, fmt.Errorf("モデル画像 %q の準備に失敗しました: %w", aux.Name, err)
	}
	return []*genai.Part{
		genai.NewPartFromText(prompt.LabelModelImage),
		auxPart,
		genai.NewPartFromText(prompt.LabelProductImage),
		srcPart,
		genai.NewPartFromText(instruction),
	}, nil
}

// toPart は画像データをインラインパーツに変換します。
// MIME タイプが指定されていなければ内容から判定し、画像でなければ InvalidRequest を返します。
func (c *Client) toPart(data []byte, mimeType string) (*genai.Part, error) {
	if len(data) == 0 {
		return nil, apperr.Newf(apperr.KindInvalidRequest, "image data is empty")
	}
	if mimeType == "" {
		mimeType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, apperr.Newf(apperr.KindInvalidRequest, "unsupported content type %q", mimeType)
	}

	if c.opts.CompressInput {
		compressed, err := imgutil.CompressToJPEG(data, c.opts.CompressionQuality)
		if err != nil {
			// 圧縮できなくても元のデータで送れるので続行する
			slog.Warn("入力画像の圧縮に失敗したため元データを送信します", "error", err)
		} else {
			data, mimeType = compressed, "image/jpeg"
		}
	}

	return &genai.Part{InlineData: &genai.Blob{MIMEType: mimeType, Data: data}}, nil
}

// parseToResponse は応答から最初の画像パーツを取り出します。
// 画像がなくテキストだけが返った場合は、そのテキストを TextInsteadOfImage に載せて返します。
func (c *Client) parseToResponse(resp *gemini.Response) (*imageOutput, error) {
	if resp == nil || resp.RawResponse == nil {
		return nil, apperr.Newf(apperr.KindEmptyResponse, "no response")
	}
	raw := resp.RawResponse
	if len(raw.Candidates) == 0 {
		if fb := raw.PromptFeedback; fb != nil && fb.BlockReason != "" {
			return nil, apperr.Newf(apperr.KindEmptyResponse, "prompt blocked: %s", fb.BlockReason)
		}
		return nil, apperr.Newf(apperr.KindEmptyResponse, "no candidates")
	}

	candidate := raw.Candidates[0]
	if candidate.Content == nil {
		return nil, apperr.Newf(apperr.KindEmptyResponse, "candidate has no content (finish reason: %s)", candidate.FinishReason)
	}

	var texts []string
	for _, part := range candidate.Content.Parts {
		if part == nil {
			continue
		}
		if part.InlineData != nil && len(part.InlineData.Data) > 0 {
			mimeType := part.InlineData.MIMEType
			if mimeType == "" {
				mimeType = defaultOutputMimeType
			}
			return &imageOutput{Data: part.InlineData.Data, MimeType: mimeType}, nil
		}
		if part.Text != "" && !part.Thought {
			texts = append(texts, part.Text)
		}
	}

	if len(texts) > 0 {
		return nil, apperr.TextInsteadOfImage(strings.Join(texts, "\n"))
	}
	return nil, apperr.Newf(apperr.KindEmptyResponse, "no image data (finish reason: %s)", candidate.FinishReason)
}
