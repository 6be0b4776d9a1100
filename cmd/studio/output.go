package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shouni/gemini-product-studio/pkg/domain"
	"github.com/shouni/gemini-product-studio/pkg/orchestrator"
)

// outputPath は <元のファイル名>-studio.<拡張子> を返します。
func outputPath(dir string, src domain.SourceImage, mimeType string) string {
	base := strings.TrimSuffix(src.Name, filepath.Ext(src.Name))
	if base == "" {
		base = src.ID
	}
	return filepath.Join(dir, base+"-studio"+extensionFor(mimeType))
}

// outputNamer は 1 回の実行で使った出力パスを覚えておき、
// 別ディレクトリの同名ファイルが互いを上書きしないようにします。
type outputNamer struct {
	dir   string
	taken map[string]struct{}
}

func newOutputNamer(dir string) *outputNamer {
	return &outputNamer{dir: dir, taken: make(map[string]struct{})}
}

// path は未使用の出力パスを返して予約します。
// 既に使われていればソース ID の先頭を名前に足します。
func (n *outputNamer) path(src domain.SourceImage, mimeType string) string {
	p := outputPath(n.dir, src, mimeType)
	if _, ok := n.taken[p]; ok {
		base := strings.TrimSuffix(src.Name, filepath.Ext(src.Name))
		if base == "" {
			base = "source"
		}
		id := src.ID
		if len(id) > 8 {
			id = id[:8]
		}
		ext := extensionFor(mimeType)
		p = filepath.Join(n.dir, base+"-"+id+"-studio"+ext)
		for i := 2; ; i++ {
			if _, ok := n.taken[p]; !ok {
				break
			}
			p = filepath.Join(n.dir, fmt.Sprintf("%s-%s-%d-studio%s", base, id, i, ext))
		}
	}
	n.taken[p] = struct{}{}
	return p
}

func extensionFor(mimeType string) string {
	switch mimeType {
	case "image/jpeg":
		return ".jpg"
	case "image/webp":
		return ".webp"
	default:
		return ".png"
	}
}

// writePreview はソースの現在の成果物を合成して書き出します。
// 合成に失敗した場合は生成画像そのものを書き出し、その旨を返します。
func writePreview(orch *orchestrator.Orchestrator, names *outputNamer, src domain.SourceImage, settings domain.GenerationSettings) (string, *orchestrator.Preview, error) {
	p, err := orch.Preview(src.ID, settings)
	if err != nil {
		return "", nil, err
	}
	if err := os.MkdirAll(names.dir, 0o755); err != nil {
		return "", nil, fmt.Errorf("出力ディレクトリを作成できません: %w", err)
	}
	path := names.path(src, p.MimeType)
	if err := os.WriteFile(path, p.Data, 0o644); err != nil {
		return "", nil, fmt.Errorf("%s を書き込めません: %w", path, err)
	}
	return path, p, nil
}
