package auth

import (
	"context"

	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// --- モック定義 ---

type mockUserRepo struct {
	findByIDFn       func(ctx context.Context, id string) (*model.User, error)
	findByEmailFn    func(ctx context.Context, email string) (*model.User, error)
	findByProviderFn func(ctx context.Context, provider, providerUserID string) (*model.User, error)
	createFn         func(ctx context.Context, user *model.User) error
	updateProfileFn  func(ctx context.Context, id, displayName, profilePicture string) error
	updateAvatarFn   func(ctx context.Context, id string, data []byte, mimeType string) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByProvider(ctx context.Context, provider, providerUserID string) (*model.User, error) {
	if m.findByProviderFn != nil {
		return m.findByProviderFn(ctx, provider, providerUserID)
	}
	return nil, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, id, displayName, profilePicture string) error {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, displayName, profilePicture)
	}
	return nil
}

func (m *mockUserRepo) UpdateAvatar(ctx context.Context, id string, data []byte, mimeType string) error {
	if m.updateAvatarFn != nil {
		return m.updateAvatarFn(ctx, id, data, mimeType)
	}
	return nil
}

type mockOAuthProvider struct {
	name           string
	getLoginURLFn  func(state string) string
	exchangeCodeFn func(ctx context.Context, code string) (*NormalizedProfile, error)
}

func (m *mockOAuthProvider) Name() string {
	if m.name != "" {
		return m.name
	}
	return "mock"
}

func (m *mockOAuthProvider) GetLoginURL(state string) string {
	if m.getLoginURLFn != nil {
		return m.getLoginURLFn(state)
	}
	return ""
}

func (m *mockOAuthProvider) ExchangeCode(ctx context.Context, code string) (*NormalizedProfile, error) {
	if m.exchangeCodeFn != nil {
		return m.exchangeCodeFn(ctx, code)
	}
	return nil, nil
}

type mockAvatarFetcher struct {
	fetchFn func(ctx context.Context, avatarURL string) ([]byte, string, error)
}

func (m *mockAvatarFetcher) Fetch(ctx context.Context, avatarURL string) ([]byte, string, error) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, avatarURL)
	}
	return nil, "", nil
}

// --- compile-time interface checks ---
var _ repository.UserRepository = (*mockUserRepo)(nil)
var _ OAuthProvider = (*mockOAuthProvider)(nil)
