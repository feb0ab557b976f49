// Package auth は認証フロー、セッショントークン管理を提供する。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionCookieName はセッショントークンを格納するHTTP Only Cookieの名前。
const SessionCookieName = "session_token"

var (
	// ErrTokenExpired はトークンの有効期限切れを表す。
	ErrTokenExpired = errors.New("token expired")
	// ErrTokenInvalid は署名不一致または不正な構造のトークンを表す。
	ErrTokenInvalid = errors.New("token invalid")
)

// Claims はセッショントークンに格納する最小限のクレームセット。
// UserIDとProviderUserIDはどちらか一方のみが設定される。
// UserIDはローカル認証のユーザー内部ID、ProviderUserIDは外部IdPのsubject ID。
type Claims struct {
	UserID         string `json:"userId,omitempty"`
	Provider       string `json:"provider,omitempty"`
	ProviderUserID string `json:"providerId,omitempty"`
	DisplayName    string `json:"displayName"`
	Email          string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// TokenService は署名付きセッショントークンの発行・検証を行う。
// 署名シークレットはプロセス全体で1つ（ユーザー毎の鍵は持たない）。
// 失効リストは持たず、サインアウトはクライアント側のCookie破棄のみで実現する。
// 発行済みトークンは自然満了まで暗号的に有効であり続ける（意図した制約）。
type TokenService struct {
	secret []byte
}

// NewTokenService はTokenServiceを生成する。
// secretは起動時に1回読み込まれるプロセス全体の署名シークレット。
func NewTokenService(secret string) *TokenService {
	return &TokenService{secret: []byte(secret)}
}

// Issue はクレームセットに発行時刻と有効期限を付与し、HS256で署名したトークン文字列を返す。
// 有効期限は発行時点からの固定長で、スライディングしない。
func (s *TokenService) Issue(claims Claims, lifetime time.Duration) (string, error) {
	now := time.Now()
	claims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(lifetime))

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, nil
}

// Verify はトークン文字列を検証し、クレームセットを返す。
// 有効期限切れの場合はErrTokenExpired、署名不一致・不正な構造の場合はErrTokenInvalidを返す。
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}
