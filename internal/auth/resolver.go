package auth

import (
	"context"
	"fmt"
	"net/http"

	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// State は認証解決の状態遷移を表す。
type State string

const (
	// StateNoCredential はリクエストにセッショントークンが存在しない状態。
	StateNoCredential State = "no_credential"
	// StateLocalCandidate はローカル認証クレームでユーザー照合中の状態。
	StateLocalCandidate State = "local_candidate"
	// StateProviderCandidate はプロバイダークレームでユーザー照合中の状態。
	StateProviderCandidate State = "provider_candidate"
	// StateResolved はユーザーの解決に成功した最終状態。
	StateResolved State = "resolved"
	// StateRejected は認証を拒否した最終状態。
	StateRejected State = "rejected"
)

// Resolver はリクエストからユーザーを解決する状態機械。
// Cookieのセッショントークンを検証し、クレームの種別に応じて
// ローカルユーザーまたはプロバイダーユーザーを照合する。
type Resolver struct {
	tokens   *TokenService
	userRepo repository.UserRepository
}

// NewResolver はResolverを生成する。
func NewResolver(tokens *TokenService, userRepo repository.UserRepository) *Resolver {
	return &Resolver{
		tokens:   tokens,
		userRepo: userRepo,
	}
}

// Resolve はリクエストのセッショントークンからユーザーを解決する。
// 戻り値のStateはStateResolvedまたはStateRejectedのいずれかの最終状態。
//
// トークンにUserIDとProviderUserIDの両方が含まれる異常ケースでは
// UserIDを優先する。この優先順位は固定であり、トークンの他の内容に
// 依存しない。
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) (*model.User, State, error) {
	cookie, err := req.Cookie(SessionCookieName)
	if err != nil || cookie.Value == "" {
		return nil, StateRejected, model.NewUnauthenticatedError()
	}

	claims, err := r.tokens.Verify(cookie.Value)
	if err != nil {
		// 期限切れと署名不一致は区別せず拒否する
		return nil, StateRejected, model.NewUnauthenticatedError()
	}

	if claims.UserID != "" {
		user, err := r.resolveLocal(ctx, claims)
		if err != nil {
			return nil, StateRejected, err
		}
		return user, StateResolved, nil
	}

	if claims.ProviderUserID != "" {
		user, err := r.resolveProvider(ctx, claims)
		if err != nil {
			return nil, StateRejected, err
		}
		return user, StateResolved, nil
	}

	// 有効な署名だが解決可能なクレームがない
	return nil, StateRejected, model.NewUnauthenticatedError()
}

// resolveLocal はStateLocalCandidateに対応する照合を行う。
func (r *Resolver) resolveLocal(ctx context.Context, claims *Claims) (*model.User, error) {
	user, err := r.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	if user == nil {
		// トークンは有効だがユーザーが削除済み
		return nil, model.NewUnauthenticatedError()
	}
	return user, nil
}

// resolveProvider はStateProviderCandidateに対応する照合を行う。
func (r *Resolver) resolveProvider(ctx context.Context, claims *Claims) (*model.User, error) {
	user, err := r.userRepo.FindByProvider(ctx, claims.Provider, claims.ProviderUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by provider: %w", err)
	}
	if user == nil {
		return nil, model.NewUnauthenticatedError()
	}
	return user, nil
}
