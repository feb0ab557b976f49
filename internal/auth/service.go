package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// ServiceConfig はauth.Serviceの設定。
type ServiceConfig struct {
	// TokenLifetime はセッショントークンの有効期間。
	TokenLifetime time.Duration
}

// Service は認証フロー全体を統括する。
// ローカル認証・外部プロバイダー認証の双方で、最終的に同じ
// TokenServiceからセッショントークンを発行する。
type Service struct {
	verifier   *CredentialVerifier
	normalizer *IdentityNormalizer
	tokens     *TokenService
	providers  map[string]OAuthProvider
	userRepo   repository.UserRepository
	config     ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	verifier *CredentialVerifier,
	normalizer *IdentityNormalizer,
	tokens *TokenService,
	providers []OAuthProvider,
	userRepo repository.UserRepository,
	config ServiceConfig,
) *Service {
	providerMap := make(map[string]OAuthProvider, len(providers))
	for _, p := range providers {
		providerMap[p.Name()] = p
	}
	return &Service{
		verifier:   verifier,
		normalizer: normalizer,
		tokens:     tokens,
		providers:  providerMap,
		userRepo:   userRepo,
		config:     config,
	}
}

// Register はローカルユーザーを新規登録する。
// メールアドレスが既に使用されている場合はDUPLICATE_EMAILを返す。
// displayNameが空の場合はメールアドレスのローカル部を初期表示名とする。
func (s *Service) Register(ctx context.Context, email, password, displayName string) (*model.User, error) {
	existing, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if existing != nil {
		return nil, model.NewDuplicateEmailError()
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	if displayName == "" {
		displayName = displayNameFromEmail(email)
	}

	now := time.Now()
	user := &model.User{
		ID:           uuid.New().String(),
		Email:        email,
		PasswordHash: hash,
		DisplayName:  displayName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		// 事前チェックと作成の間に同じemailで登録が成立した場合
		if errors.Is(err, model.ErrStorageConflict) {
			return nil, model.NewDuplicateEmailError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered", slog.String("user_id", user.ID))

	return user, nil
}

// Login はローカル認証を行い、成功時にセッショントークンと
// 認証済みユーザーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	userID, err := s.verifier.Verify(ctx, email, password)
	if err != nil {
		return "", nil, err
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to find user by id: %w", err)
	}
	if user == nil {
		return "", nil, model.NewUnauthenticatedError()
	}

	token, err := s.tokens.Issue(Claims{
		UserID:      user.ID,
		DisplayName: user.DisplayName,
		Email:       user.Email,
	}, s.config.TokenLifetime)
	if err != nil {
		return "", nil, err
	}

	slog.Info("user logged in", slog.String("user_id", user.ID))

	return token, user, nil
}

// Provider は指定名のOAuthプロバイダーを返す。未登録の場合はnilを返す。
func (s *Service) Provider(name string) OAuthProvider {
	return s.providers[name]
}

// HandleCallback はOAuthコールバックを処理する。
// 認可コードをプロフィールに交換し、ユーザーをUPSERTして
// セッショントークンを発行する。
func (s *Service) HandleCallback(ctx context.Context, providerName, code string) (string, *model.User, error) {
	provider := s.providers[providerName]
	if provider == nil {
		return "", nil, model.NewNotFoundError("provider")
	}

	profile, err := provider.ExchangeCode(ctx, code)
	if err != nil {
		return "", nil, fmt.Errorf("failed to exchange code: %w", err)
	}

	user, err := s.normalizer.Normalize(ctx, profile)
	if err != nil {
		return "", nil, err
	}

	token, err := s.tokens.Issue(Claims{
		Provider:       user.Provider,
		ProviderUserID: user.ProviderUserID,
		DisplayName:    user.DisplayName,
		Email:          user.Email,
	}, s.config.TokenLifetime)
	if err != nil {
		return "", nil, err
	}

	slog.Info("oauth login completed",
		slog.String("provider", providerName),
		slog.String("user_id", user.ID),
	)

	return token, user, nil
}

// displayNameFromEmail はメールアドレスのローカル部を初期表示名として使う。
func displayNameFromEmail(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
