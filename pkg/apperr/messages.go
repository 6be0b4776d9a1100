package apperr

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// メッセージキー。英語の文言をそのままキーにしています。
const (
	msgMissingCredential  = "The API key is not configured. Set GEMINI_API_KEY and try again."
	msgInvalidCredential  = "The API key was rejected. Check that the key is valid."
	msgQuotaExceeded      = "The API quota has been exhausted. Please wait and try again later."
	msgRateLimited        = "Too many requests were sent. Please wait a moment and try again."
	msgServiceUnavailable = "The image service is temporarily unavailable. Please try again."
	msgTextInsteadOfImage = "The model returned text instead of an image: %s"
	msgEmptyResponse      = "The model did not return an image. Try adjusting the settings."
	msgImageDecode        = "The generated image could not be decoded."
	msgRenderSurface      = "The image could not be post-processed. Showing the original result."
	msgInProgress         = "Another operation is already in progress."
	msgInvalidRequest     = "The request was invalid. Check the input image and instructions."
	msgCanceled           = "The operation was canceled."
	msgGeneric            = "Failed to generate the image. Please try again."
)

var kindMessages = map[Kind]string{
	KindMissingCredential:        msgMissingCredential,
	KindInvalidCredential:        msgInvalidCredential,
	KindQuotaExceeded:            msgQuotaExceeded,
	KindRateLimited:              msgRateLimited,
	KindServiceUnavailable:       msgServiceUnavailable,
	KindTextInsteadOfImage:       msgTextInsteadOfImage,
	KindEmptyResponse:            msgEmptyResponse,
	KindImageDecode:              msgImageDecode,
	KindRenderSurfaceUnavailable: msgRenderSurface,
	KindOperationInProgress:      msgInProgress,
	KindInvalidRequest:           msgInvalidRequest,
	KindCanceled:                 msgCanceled,
	KindUnknown:                  msgGeneric,
}

var koreanMessages = map[string]string{
	msgMissingCredential:  "API 키가 설정되지 않았습니다. GEMINI_API_KEY를 설정한 후 다시 시도해주세요.",
	msgInvalidCredential:  "API 키가 거부되었습니다. 키가 유효한지 확인해주세요.",
	msgQuotaExceeded:      "API 할당량을 모두 사용했습니다. 잠시 후 다시 시도해주세요.",
	msgRateLimited:        "요청이 너무 많습니다. 잠시 후 다시 시도해주세요.",
	msgServiceUnavailable: "이미지 서비스를 일시적으로 사용할 수 없습니다. 다시 시도해주세요.",
	msgTextInsteadOfImage: "모델이 이미지 대신 텍스트를 반환했습니다: %s",
	msgEmptyResponse:      "모델이 이미지를 반환하지 않았습니다. 설정을 조정해 보세요.",
	msgImageDecode:        "생성된 이미지를 읽을 수 없습니다.",
	msgRenderSurface:      "후처리를 적용하지 못했습니다. 원본 결과를 표시합니다.",
	msgInProgress:         "이미 다른 작업이 진행 중입니다.",
	msgInvalidRequest:     "잘못된 요청입니다. 입력 이미지와 지시문을 확인해주세요.",
	msgCanceled:           "작업이 취소되었습니다.",
	msgGeneric:            "이미지 생성에 실패했습니다. 다시 시도해주세요.",
}

var (
	supportedLanguages = []language.Tag{language.English, language.Korean}
	languageMatcher    = language.NewMatcher(supportedLanguages)
	messageCatalog     = newCatalog()
)

func newCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for _, key := range kindMessages {
		// 英語はキー自体が文言
		_ = b.SetString(language.English, key, key)
	}
	for key, msg := range koreanMessages {
		_ = b.SetString(language.Korean, key, msg)
	}
	return b
}

// Localizer はエラーを利用者向けの文言に変換する表示段です。
type Localizer struct {
	tag     language.Tag
	printer *message.Printer
}

// NewLocalizer は "ko", "en-US" のようなロケール文字列から Localizer を作ります。
// 対応していないロケールは英語になります。
func NewLocalizer(locale string) *Localizer {
	tag := language.English
	if t, err := language.Parse(locale); err == nil {
		_, idx, _ := languageMatcher.Match(t)
		tag = supportedLanguages[idx]
	}
	return &Localizer{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(messageCatalog)),
	}
}

// Language は選ばれた言語タグを返します。
func (l *Localizer) Language() language.Tag {
	return l.tag
}

// Message は err を表示用の文言にします。分類されていないエラーは先に Classify されます。
func (l *Localizer) Message(err error) string {
	if err == nil {
		return ""
	}
	e, ok := As(Classify(err))
	if !ok {
		return l.printer.Sprintf(msgGeneric)
	}
	key, ok := kindMessages[e.Kind]
	if !ok {
		key = msgGeneric
	}
	if e.Kind == KindTextInsteadOfImage {
		return l.printer.Sprintf(key, e.Text)
	}
	return l.printer.Sprintf(key)
}
