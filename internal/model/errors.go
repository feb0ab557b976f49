// Package model はドメインモデルを定義する。
package model

import (
	"errors"
	"fmt"
)

// APIError は統一エラーフォーマットを表す。
// クライアントに返す原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, content, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeAuthenticationFailed      = "AUTHENTICATION_FAILED"
	ErrCodeUnauthenticated           = "UNAUTHENTICATED"
	ErrCodeNotFound                  = "NOT_FOUND"
	ErrCodeDuplicateEmail            = "DUPLICATE_EMAIL"
	ErrCodeUpstreamProfileIncomplete = "UPSTREAM_PROFILE_INCOMPLETE"
	ErrCodeStorageConflict           = "STORAGE_CONFLICT"
	ErrCodeValidationFailed          = "VALIDATION_FAILED"
	ErrCodeForbidden                 = "FORBIDDEN"
)

// ErrStorageConflict はストレージ層のユニーク制約違反を表すセンチネルエラー。
// リポジトリ実装がユニーク制約違反を検出した際にラップして返す。
// 同時UPSERTの敗者判定に使用し、errors.Isで検査する。
var ErrStorageConflict = errors.New("storage conflict")

// NewAuthenticationFailedError はローカル認証失敗エラーを生成する。
// 存在しないメールアドレスとパスワード不一致を区別しないメッセージを返す。
func NewAuthenticationFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthenticationFailed,
		Message:  "Invalid email or password.",
		Category: "auth",
		Action:   "Check your email and password and try again.",
	}
}

// NewUnauthenticatedError はセッション欠落・無効・期限切れエラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "Please Sign In First",
		Category: "auth",
		Action:   "Sign in and try again.",
	}
}

// NewNotFoundError は参照先リソースが存在しないエラーを生成する。
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("%s not found", resource),
		Category: "content",
		Action:   "Check the requested resource and try again.",
	}
}

// NewDuplicateEmailError は登録時のメールアドレス重複エラーを生成する。
func NewDuplicateEmailError() *APIError {
	return &APIError{
		Code:     ErrCodeDuplicateEmail,
		Message:  "Email already exist!",
		Category: "auth",
		Action:   "Sign in with this email or register with a different one.",
	}
}

// NewUpstreamProfileIncompleteError はプロバイダーのプロフィールペイロードに
// 必須フィールドが欠けている場合のエラーを生成する。
func NewUpstreamProfileIncompleteError(provider string) *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamProfileIncomplete,
		Message:  fmt.Sprintf("profile returned by %s is missing required fields", provider),
		Category: "auth",
		Action:   "Try signing in again, or use a different sign-in method.",
	}
}

// NewValidationError はリクエスト内容の検証エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  message,
		Category: "validation",
		Action:   "Fix the request and try again.",
	}
}

// NewForbiddenError は他ユーザーのリソースへの操作を拒否するエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "You do not have permission to perform this action.",
		Category: "auth",
		Action:   "Check that you own the resource you are modifying.",
	}
}

// IsCode はerrがAPIErrorであり、かつ指定コードを持つかを判定する。
func IsCode(err error, code string) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == code
	}
	return false
}
