package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// serviceErrorPayload は Gemini API のエラー本文 {"error": {...}} の形です。
type serviceErrorPayload struct {
	Error struct {
		Code    int              `json:"code"`
		Message string           `json:"message"`
		Status  string           `json:"status"`
		Details []map[string]any `json:"details"`
	} `json:"error"`
}

const (
	detailTypeQuotaFailure = "type.googleapis.com/google.rpc.QuotaFailure"
	detailTypeErrorInfo    = "type.googleapis.com/google.rpc.ErrorInfo"
	reasonAPIKeyInvalid    = "API_KEY_INVALID"
)

// Classify は生のエラーを *Error に変換します。入力が nil なら nil を返します。
//
// 分類はサービス応答の構造化された code/status/details だけを見ます。
// 構造を取り出せないエラーは KindUnknown になります。
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := As(err); ok {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return New(KindCanceled, err)
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return fromStatus(apiErr.Code, apiErr.Status, apiErr.Details, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return fromStatus(apiErrPtr.Code, apiErrPtr.Status, apiErrPtr.Details, err)
	}

	if payload, ok := extractPayload(err.Error()); ok {
		return fromStatus(payload.Error.Code, payload.Error.Status, payload.Error.Details, err)
	}
	return New(KindUnknown, err)
}

// extractPayload はトランスポート層のメッセージに埋め込まれた JSON 本文を探します。
func extractPayload(msg string) (*serviceErrorPayload, bool) {
	start := strings.Index(msg, "{")
	end := strings.LastIndex(msg, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	var p serviceErrorPayload
	if err := json.Unmarshal([]byte(msg[start:end+1]), &p); err != nil {
		return nil, false
	}
	if p.Error.Code == 0 && p.Error.Status == "" {
		return nil, false
	}
	return &p, true
}

func fromStatus(code int, status string, details []map[string]any, cause error) *Error {
	status = strings.ToUpper(status)
	kind := KindUnknown

	switch {
	case hasDetailReason(details, reasonAPIKeyInvalid),
		code == http.StatusUnauthorized, code == http.StatusForbidden,
		status == "UNAUTHENTICATED", status == "PERMISSION_DENIED":
		kind = KindInvalidCredential
	case code == http.StatusTooManyRequests, status == "RESOURCE_EXHAUSTED":
		if hasDetailType(details, detailTypeQuotaFailure) {
			kind = KindQuotaExceeded
		} else {
			kind = KindRateLimited
		}
	case code == http.StatusInternalServerError, code == http.StatusBadGateway,
		code == http.StatusServiceUnavailable, code == http.StatusGatewayTimeout,
		status == "UNAVAILABLE", status == "INTERNAL", status == "DEADLINE_EXCEEDED":
		kind = KindServiceUnavailable
	case code == http.StatusBadRequest, status == "INVALID_ARGUMENT", status == "FAILED_PRECONDITION":
		kind = KindInvalidRequest
	}

	return &Error{Kind: kind, Code: code, Status: status, Err: cause}
}

func hasDetailType(details []map[string]any, typ string) bool {
	for _, d := range details {
		if t, _ := d["@type"].(string); t == typ {
			return true
		}
	}
	return false
}

func hasDetailReason(details []map[string]any, reason string) bool {
	for _, d := range details {
		if t, _ := d["@type"].(string); t != detailTypeErrorInfo {
			continue
		}
		if r, _ := d["reason"].(string); r == reason {
			return true
		}
	}
	return false
}
