package generator

import (
	"testing"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
)

func TestClient_ToPart(t *testing.T) {
	c := &Client{}

	t.Run("MIMEタイプ未指定なら内容から判定する", func(t *testing.T) {
		part, err := c.toPart(pngBytes(t), "")
		require.NoError(t, err)
		assert.Equal(t, "image/png", part.InlineData.MIMEType)
	})

	t.Run("指定されたMIMEタイプを優先する", func(t *testing.T) {
		part, err := c.toPart([]byte("RIFF....WEBP"), "image/webp")
		require.NoError(t, err)
		assert.Equal(t, "image/webp", part.InlineData.MIMEType)
	})

	t.Run("空データはInvalidRequest", func(t *testing.T) {
		_, err := c.toPart(nil, "image/png")
		assert.ErrorIs(t, err, apperr.ErrInvalidRequest)
	})
}

func TestClient_ParseToResponse(t *testing.T) {
	c := &Client{}

	t.Run("正常系", func(t *testing.T) {
		out, err := c.parseToResponse(imageResponse([]byte("png-data"), "image/png"))
		require.NoError(t, err)
		assert.Equal(t, []byte("png-data"), out.Data)
		assert.Equal(t, "image/png", out.MimeType)
	})

	t.Run("テキストの後ろにある画像も拾う", func(t *testing.T) {
		out, err := c.parseToResponse(partsResponse(
			&genai.Part{Text: "Here is your image"},
			&genai.Part{InlineData: &genai.Blob{Data: []byte("img")}},
		))
		require.NoError(t, err)
		assert.Equal(t, "image/png", out.MimeType, "MIMEタイプが空ならPNGとみなす")
	})

	t.Run("思考パーツはテキストとして扱わない", func(t *testing.T) {
		_, err := c.parseToResponse(partsResponse(&genai.Part{Text: "thinking...", Thought: true}))
		assert.ErrorIs(t, err, apperr.ErrEmptyResponse)
	})

	tests := []struct {
		name string
		resp *gemini.Response
	}{
		{"nil", nil},
		{"RawResponseなし", &gemini.Response{}},
		{"候補なし", &gemini.Response{RawResponse: &genai.GenerateContentResponse{}}},
		{"ブロックされた", &gemini.Response{RawResponse: &genai.GenerateContentResponse{
			PromptFeedback: &genai.GenerateContentResponsePromptFeedback{BlockReason: genai.BlockedReasonSafety},
		}}},
		{"Contentなし", &gemini.Response{RawResponse: &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: genai.FinishReasonSafety}},
		}}},
		{"パーツなし", partsResponse()},
	}
	for _, tt := range tests {
		t.Run("異常系: "+tt.name, func(t *testing.T) {
			_, err := c.parseToResponse(tt.resp)
			assert.ErrorIs(t, err, apperr.ErrEmptyResponse)
		})
	}
}
