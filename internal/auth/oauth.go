package auth

import "context"

// NormalizedProfile はプロバイダー毎に形の異なるプロフィールペイロードを
// 正規化した共通形。Identity Normalizerへの入力となる。
type NormalizedProfile struct {
	Provider       string // "google", "github" 等
	ProviderUserID string
	DisplayName    string
	Email          string
	ProfilePicture string
}

// OAuthProvider はOAuth認証プロバイダーのインターフェース。
// プロバイダー毎の分岐をこの抽象の背後に閉じ込め、
// UPSERTとトークン発行のロジックをプロバイダー間で共有する。
type OAuthProvider interface {
	// Name はプロバイダー名を返す。
	Name() string
	// GetLoginURL はOAuth認証URLを生成する。
	GetLoginURL(state string) string
	// ExchangeCode は認可コードをトークンに交換し、正規化済みプロフィールを取得する。
	ExchangeCode(ctx context.Context, code string) (*NormalizedProfile, error)
}
