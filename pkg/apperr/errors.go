// Package apperr は生成パイプラインの失敗を分類する型付きエラーを提供します。
//
// 分類 (Classify) と表示用メッセージ (Localizer) は別の段として分けています。
package apperr

import (
	"errors"
	"fmt"
)

// Kind はエラーの種別です。
type Kind int

const (
	KindUnknown Kind = iota
	KindMissingCredential
	KindInvalidCredential
	KindQuotaExceeded
	KindRateLimited
	KindServiceUnavailable
	KindTextInsteadOfImage
	KindEmptyResponse
	KindImageDecode
	KindRenderSurfaceUnavailable
	KindOperationInProgress
	KindInvalidRequest
	KindCanceled
)

var kindNames = map[Kind]string{
	KindUnknown:                  "Unknown",
	KindMissingCredential:        "MissingCredential",
	KindInvalidCredential:        "InvalidCredential",
	KindQuotaExceeded:            "QuotaExceeded",
	KindRateLimited:              "RateLimited",
	KindServiceUnavailable:       "ServiceUnavailable",
	KindTextInsteadOfImage:       "ModelReturnedTextInsteadOfImage",
	KindEmptyResponse:            "EmptyModelResponse",
	KindImageDecode:              "ImageDecodeError",
	KindRenderSurfaceUnavailable: "RenderSurfaceUnavailable",
	KindOperationInProgress:      "OperationAlreadyInProgress",
	KindInvalidRequest:           "InvalidRequest",
	KindCanceled:                 "Canceled",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// HardStop はバッチを即座に止めるべき種別かどうかを返します。
// 認証情報とクォータ系はインフラ側の制約なので、後続の画像を試しても失敗します。
func (k Kind) HardStop() bool {
	switch k {
	case KindMissingCredential, KindInvalidCredential, KindQuotaExceeded, KindRateLimited:
		return true
	}
	return false
}

// Retryable は自動リトライしてよい種別かどうかを返します。
func (k Kind) Retryable() bool {
	return k == KindServiceUnavailable
}

// Error はコア境界を越えるすべての失敗の表現です。
type Error struct {
	Kind Kind
	// Text はモデルが画像の代わりに返したテキストです (KindTextInsteadOfImage)。
	Text string
	// Code と Status はサービス応答から取り出せた場合のみ設定されます。
	Code   int
	Status string
	Err    error
}

// New は原因 err を持つ Error を作ります。
func New(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// Newf は書式付きの原因を持つ Error を作ります。
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

// TextInsteadOfImage はモデルがテキストしか返さなかったことを表します。
func TextInsteadOfImage(text string) *Error {
	return &Error{Kind: KindTextInsteadOfImage, Text: text}
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Code != 0 || e.Status != "" {
		msg = fmt.Sprintf("%s (code=%d status=%s)", msg, e.Code, e.Status)
	}
	if e.Text != "" {
		msg += ": " + e.Text
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is は種別が一致すれば true を返すので、センチネルとの比較に errors.Is が使えます。
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// センチネル。errors.Is(err, apperr.ErrQuotaExceeded) のように使います。
var (
	ErrMissingCredential        = &Error{Kind: KindMissingCredential}
	ErrInvalidCredential        = &Error{Kind: KindInvalidCredential}
	ErrQuotaExceeded            = &Error{Kind: KindQuotaExceeded}
	ErrRateLimited              = &Error{Kind: KindRateLimited}
	ErrServiceUnavailable       = &Error{Kind: KindServiceUnavailable}
	ErrTextInsteadOfImage       = &Error{Kind: KindTextInsteadOfImage}
	ErrEmptyResponse            = &Error{Kind: KindEmptyResponse}
	ErrImageDecode              = &Error{Kind: KindImageDecode}
	ErrRenderSurfaceUnavailable = &Error{Kind: KindRenderSurfaceUnavailable}
	ErrOperationInProgress      = &Error{Kind: KindOperationInProgress}
	ErrInvalidRequest           = &Error{Kind: KindInvalidRequest}
	ErrCanceled                 = &Error{Kind: KindCanceled}
)

// As は err の連鎖から *Error を取り出します。
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// KindOf は err の種別を返します。分類されていないエラーは KindUnknown です。
func KindOf(err error) Kind {
	if e, ok := As(err); ok {
		return e.Kind
	}
	return KindUnknown
}

// IsHardStop は err がバッチを止める種別かどうかを返します。
func IsHardStop(err error) bool {
	return err != nil && KindOf(err).HardStop()
}

// IsRetryable は err が自動リトライ対象かどうかを返します。
func IsRetryable(err error) bool {
	return err != nil && KindOf(err).Retryable()
}
