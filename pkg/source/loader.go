// Package source はローカルファイルや URL から商品画像を読み込みます。
package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/shouni/gemini-product-studio/pkg/apperr"
	"github.com/shouni/gemini-product-studio/pkg/domain"
)

// HTTPClient は URL からデータを取得します。httpkit.ClientInterface が満たします。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// ImageCacher はダウンロード済み画像のキャッシュです。
// expirable.LRU[string, []byte] がそのまま使えます。
type ImageCacher interface {
	Get(key string) ([]byte, bool)
	Add(key string, value []byte) bool
}

// Loader は商品画像やモデル画像を SourceImage として読み込みます。
type Loader struct {
	httpClient HTTPClient
	cache      ImageCacher
}

// NewLoader は Loader を初期化します。
// httpClient が nil なら URL は読み込めず、cache が nil ならキャッシュしません。
func NewLoader(httpClient HTTPClient, cache ImageCacher) *Loader {
	return &Loader{httpClient: httpClient, cache: cache}
}

// Load は ref (ファイルパスまたは http(s) URL) から画像を読み込みます。
// 画像でないデータは InvalidRequest として拒否します。
func (l *Loader) Load(ctx context.Context, ref string) (*domain.SourceImage, error) {
	var (
		data []byte
		name string
		err  error
	)
	if isRemote(ref) {
		data, err = l.fetch(ctx, ref)
		name = remoteName(ref)
	} else {
		data, err = os.ReadFile(ref)
		name = filepath.Base(ref)
	}
	if err != nil {
		return nil, fmt.Errorf("画像 %q の読み込みに失敗しました: %w", ref, err)
	}

	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil, apperr.Newf(apperr.KindInvalidRequest, "%s is not an image (%s)", ref, mimeType)
	}

	return &domain.SourceImage{
		ID:       sourceID(name),
		Name:     name,
		Data:     data,
		MimeType: mimeType,
	}, nil
}

// LoadAll は refs を順に読み込みます。最初の失敗で中断します。
func (l *Loader) LoadAll(ctx context.Context, refs []string) ([]domain.SourceImage, error) {
	out := make([]domain.SourceImage, 0, len(refs))
	for _, ref := range refs {
		img, err := l.Load(ctx, ref)
		if err != nil {
			return nil, err
		}
		out = append(out, *img)
	}
	return out, nil
}

func (l *Loader) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if l.cache != nil {
		if data, ok := l.cache.Get(rawURL); ok {
			slog.DebugContext(ctx, "キャッシュから画像を取得しました", "url", rawURL)
			return data, nil
		}
	}

	if safe, err := isSafeURL(rawURL); !safe || err != nil {
		slog.WarnContext(ctx, "SSRFの可能性がある、または不正なURLをブロックしました", "url", rawURL, "error", err)
		return nil, apperr.New(apperr.KindInvalidRequest, err)
	}
	if l.httpClient == nil {
		return nil, apperr.Newf(apperr.KindInvalidRequest, "remote sources are disabled")
	}

	data, err := l.httpClient.FetchBytes(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	if l.cache != nil {
		l.cache.Add(rawURL, data)
	}
	return data, nil
}

func isRemote(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

func remoteName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "remote"
	}
	name := path.Base(u.Path)
	if name == "." || name == "/" {
		return "remote"
	}
	return name
}

// sourceID はファイル名に短い乱数を付けた ID を返します。同じファイルを 2 回読んでも別のソースになります。
func sourceID(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	if base == "" {
		base = "image"
	}
	return base + "-" + uuid.NewString()[:8]
}
