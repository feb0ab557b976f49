package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/postboard/internal/avatar"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// IdentityNormalizer はプロバイダーのプロフィールを正規のUserに変換する。
// (provider, provider_user_id) をキーとした冪等なUPSERTを行う。
type IdentityNormalizer struct {
	userRepo repository.UserRepository
	avatars  avatar.FetcherService // nilの場合アバターのキャッシュは行わない
}

// NewIdentityNormalizer はIdentityNormalizerを生成する。
func NewIdentityNormalizer(userRepo repository.UserRepository, avatars avatar.FetcherService) *IdentityNormalizer {
	return &IdentityNormalizer{
		userRepo: userRepo,
		avatars:  avatars,
	}
}

// Normalize はプロフィールをUserにUPSERTして返す。
//
// 同一provider_user_idのユーザーが既に存在する場合はそれを返し、
// 表示系フィールド（表示名・プロフィール画像URL）に差分があれば更新する。
// 存在しない場合は新しい内部IDを発番して作成する。
//
// 同一provider_user_idに対する同時初回コールバックでは、ストレージ層の
// ユニーク制約が敗者のINSERTを弾く。敗者側はmodel.ErrStorageConflictを
// 受け取り、勝者のレコードを読み直して返す。このレースは正常系であり、
// 呼び出し元にエラーとして伝播しない。
func (n *IdentityNormalizer) Normalize(ctx context.Context, profile *NormalizedProfile) (*model.User, error) {
	if profile.ProviderUserID == "" || profile.DisplayName == "" {
		return nil, model.NewUpstreamProfileIncompleteError(profile.Provider)
	}

	existing, err := n.userRepo.FindByProvider(ctx, profile.Provider, profile.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by provider: %w", err)
	}

	if existing != nil {
		// 再ログイン: 表示系フィールドのみ追従する
		if existing.DisplayName != profile.DisplayName || existing.ProfilePicture != profile.ProfilePicture {
			if err := n.userRepo.UpdateProfile(ctx, existing.ID, profile.DisplayName, profile.ProfilePicture); err != nil {
				return nil, fmt.Errorf("failed to refresh user profile: %w", err)
			}
			existing.DisplayName = profile.DisplayName
			existing.ProfilePicture = profile.ProfilePicture
		}
		return existing, nil
	}

	now := time.Now()
	user := &model.User{
		ID:             uuid.New().String(),
		Email:          profile.Email,
		DisplayName:    profile.DisplayName,
		ProfilePicture: profile.ProfilePicture,
		Provider:       profile.Provider,
		ProviderUserID: profile.ProviderUserID,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// 初回のみプロフィール画像をキャッシュする。失敗してもログインは成功させる
	if n.avatars != nil && profile.ProfilePicture != "" {
		data, mimeType, err := n.avatars.Fetch(ctx, profile.ProfilePicture)
		if err == nil && data != nil {
			user.AvatarData = data
			user.AvatarMime = mimeType
		}
	}

	if err := n.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, model.ErrStorageConflict) {
			// 同時コールバックの敗者。勝者を読み直して返す
			winner, rerr := n.userRepo.FindByProvider(ctx, profile.Provider, profile.ProviderUserID)
			if rerr != nil {
				return nil, fmt.Errorf("failed to re-read user after conflict: %w", rerr)
			}
			if winner == nil {
				return nil, fmt.Errorf("user missing after storage conflict: %w", err)
			}
			slog.Info("concurrent provider upsert resolved",
				slog.String("provider", profile.Provider),
				slog.String("user_id", winner.ID),
			)
			return winner, nil
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user created",
		slog.String("user_id", user.ID),
		slog.String("provider", profile.Provider),
	)

	return user, nil
}
