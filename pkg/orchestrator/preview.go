package orchestrator

import (
	"log/slog"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/domain"
	"github.com/shouni/gemini-product-studio/pkg/imgutil"
)

// Preview は表示用に合成した画像です。
// 合成に失敗した場合は Composed が false で、生成画像そのものと失敗理由 Err を持ちます。
type Preview struct {
	Data     []byte
	MimeType string
	Composed bool
	Err      error
}

// Preview はソースの現在の成果物を公開先の比率に切り出し、透かしを入れます。
// 合成は純粋な処理なので、設定が変わるたびに呼び直して構いません。
func (o *Orchestrator) Preview(sourceID string, settings domain.GenerationSettings) (*Preview, error) {
	a, ok := o.Artifact(sourceID)
	if !ok {
		return nil, apperr.Newf(apperr.KindInvalidRequest, "no generated image for source %q", sourceID)
	}

	data, err := o.opts.Compositor.Compose(a.Data, settings.AspectTag, settings.WatermarkSpec())
	if err != nil {
		slog.Warn("プレビューの合成に失敗したため生成画像をそのまま表示します", "source", sourceID, "error", err)
		return &Preview{Data: a.Data, MimeType: a.MimeType, Err: err}, nil
	}
	return &Preview{Data: data, MimeType: imgutil.OutputMimeType, Composed: true}, nil
}
