// Package model はドメインモデルを定義する。
package model

import "time"

// User は正規化されたユーザーアイデンティティを表す。
// ローカル登録で作成されたユーザーはPasswordHashを持ちProviderUserIDを持たない。
// OAuthコールバックで作成されたユーザーはProviderUserIDを持ちPasswordHashを持たない。
type User struct {
	ID             string
	Email          string
	PasswordHash   string
	DisplayName    string
	ProfilePicture string
	Provider       string // "google", "github" 等。ローカルアカウントは空
	ProviderUserID string
	AvatarData     []byte
	AvatarMime     string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLocal はローカル認証アカウントかどうかを返す。
func (u *User) IsLocal() bool {
	return u.PasswordHash != ""
}
