package auth

import (
	"context"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// CredentialVerifier はローカル認証のemail+パスワード検証を行う。
// 読み取り以外の副作用を持たない。
type CredentialVerifier struct {
	userRepo repository.UserRepository
}

// NewCredentialVerifier はCredentialVerifierを生成する。
func NewCredentialVerifier(userRepo repository.UserRepository) *CredentialVerifier {
	return &CredentialVerifier{userRepo: userRepo}
}

// Verify はemailとパスワードを検証し、成功時にユーザーの内部IDを返す。
// emailに対応するユーザーが存在しない場合はNOT_FOUND、
// パスワードハッシュを持たないアカウント（プロバイダー専用）または
// パスワード不一致の場合はAUTHENTICATION_FAILEDを返す。
func (v *CredentialVerifier) Verify(ctx context.Context, email, password string) (string, error) {
	user, err := v.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		return "", model.NewNotFoundError("user")
	}

	// プロバイダー専用アカウントはローカル認証できない
	if user.PasswordHash == "" {
		return "", model.NewAuthenticationFailedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", model.NewAuthenticationFailedError()
	}

	return user.ID, nil
}

// HashPassword はパスワードの一方向ハッシュを生成する。
// bcryptのデフォルトコストを使用する。
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}
