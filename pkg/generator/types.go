package generator

const (
	// DefaultModel は画像の入出力に対応した既定のモデルです。
	DefaultModel = "gemini-2.5-flash-image-preview"

	// DefaultCompressionQuality は入力画像を JPEG に再圧縮するときの既定の品質です。
	DefaultCompressionQuality = 90

	defaultOutputMimeType = "image/png"

	processedIDPrefix = "processed-"
	editedIDPrefix    = "edited-"
)

// Options は Client の振る舞いを決める設定値です。
type Options struct {
	// APIKey が空のとき、Generate と Refine は通信せずに MissingCredential を返します。
	APIKey string
	Model  string

	// CompressInput が true なら入力画像を JPEG に再圧縮してから送信します。
	CompressInput      bool
	CompressionQuality int
}

// imageOutput は応答解析の内部結果です。
type imageOutput struct {
	Data     []byte
	MimeType string
}
