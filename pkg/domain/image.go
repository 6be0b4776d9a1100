package domain

// SourceImage はアップロードされた商品画像（またはモデル画像）です。
// 生成後は不変で、ID が同一性を表します。
type SourceImage struct {
	ID       string
	Name     string // 元のファイル名。出力ファイル名の組み立てに使う
	Data     []byte
	MimeType string
}

// GeneratedArtifact は生成サービスから返された画像です。
// SourceID ごとに「現在の」成果物は高々ひとつで、再生成や編集で置き換えられます。
type GeneratedArtifact struct {
	ID       string
	SourceID string
	Data     []byte
	MimeType string
}

// BatchProgress はバッチ実行中の進捗です。Completed は Total まで単調増加します。
type BatchProgress struct {
	Completed int
	Total     int
}

// Done は全件の試行が終わったかどうかを返します。
func (p BatchProgress) Done() bool {
	return p.Total > 0 && p.Completed >= p.Total
}
