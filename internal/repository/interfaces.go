// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"

	"github.com/hitoshi/postboard/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// FindByProvider はproviderとprovider_user_idでユーザーを検索する。
	// 見つからない場合はnilを返す。
	FindByProvider(ctx context.Context, provider, providerUserID string) (*model.User, error)

	// Create はユーザーを作成する。
	// email・(provider, provider_user_id) のユニーク制約違反は
	// model.ErrStorageConflictをラップしたエラーとして返す。
	Create(ctx context.Context, user *model.User) error

	// UpdateProfile は表示系フィールド（表示名・プロフィール画像URL）のみを更新する。
	UpdateProfile(ctx context.Context, id, displayName, profilePicture string) error

	// UpdateAvatar はキャッシュ済みアバター画像を更新する。
	UpdateAvatar(ctx context.Context, id string, data []byte, mimeType string) error
}

// LikeRepository はいいねデータの永続化インターフェース。
type LikeRepository interface {
	// FindByUserAndPost はユーザーIDと投稿IDでいいねを検索する。見つからない場合はnilを返す。
	FindByUserAndPost(ctx context.Context, userID, postID string) (*model.Like, error)

	// Create はいいねを作成する。
	// (user_id, post_id) のユニーク制約違反はmodel.ErrStorageConflictを
	// ラップしたエラーとして返す。同時トグルの敗者はこれで判定される。
	Create(ctx context.Context, like *model.Like) error

	// Delete は指定IDのいいねを物理削除する。
	Delete(ctx context.Context, id string) error
}

// PostRepository は投稿データの永続化インターフェース。
type PostRepository interface {
	// FindByID は指定IDの投稿を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Post, error)

	// Create は投稿を作成する。
	Create(ctx context.Context, post *model.Post) error

	// List は投稿を作成日時降順で返す。
	List(ctx context.Context, limit int) ([]*model.Post, error)

	// Delete は指定IDの投稿を削除する。関連するコメント・いいねはCASCADE削除される。
	Delete(ctx context.Context, id string) error
}

// CommentRepository はコメントデータの永続化インターフェース。
type CommentRepository interface {
	// FindByID は指定IDのコメントを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Comment, error)

	// Create はコメントを作成する。
	Create(ctx context.Context, comment *model.Comment) error

	// Delete は指定IDのコメントを削除する。返信はCASCADE削除される。
	Delete(ctx context.Context, id string) error
}
