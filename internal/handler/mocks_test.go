package handler

import (
	"context"
	"net/http"
	"sync"

	"github.com/hitoshi/postboard/internal/auth"
	"github.com/hitoshi/postboard/internal/middleware"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// --- モック定義 ---

type mockAuthService struct {
	registerFn       func(ctx context.Context, email, password, displayName string) (*model.User, error)
	loginFn          func(ctx context.Context, email, password string) (string, *model.User, error)
	providerFn       func(name string) auth.OAuthProvider
	handleCallbackFn func(ctx context.Context, providerName, code string) (string, *model.User, error)
}

func (m *mockAuthService) Register(ctx context.Context, email, password, displayName string) (*model.User, error) {
	if m.registerFn != nil {
		return m.registerFn(ctx, email, password, displayName)
	}
	return &model.User{ID: "new-user"}, nil
}

func (m *mockAuthService) Login(ctx context.Context, email, password string) (string, *model.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, email, password)
	}
	return "", nil, model.NewAuthenticationFailedError()
}

func (m *mockAuthService) Provider(name string) auth.OAuthProvider {
	if m.providerFn != nil {
		return m.providerFn(name)
	}
	return nil
}

func (m *mockAuthService) HandleCallback(ctx context.Context, providerName, code string) (string, *model.User, error) {
	if m.handleCallbackFn != nil {
		return m.handleCallbackFn(ctx, providerName, code)
	}
	return "", nil, model.NewUnauthenticatedError()
}

type mockResolver struct {
	resolveFn func(ctx context.Context, req *http.Request) (*model.User, auth.State, error)
}

func (m *mockResolver) Resolve(ctx context.Context, req *http.Request) (*model.User, auth.State, error) {
	if m.resolveFn != nil {
		return m.resolveFn(ctx, req)
	}
	return nil, auth.StateRejected, model.NewUnauthenticatedError()
}

type mockPostRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Post, error)
	createFn   func(ctx context.Context, post *model.Post) error
	listFn     func(ctx context.Context, limit int) ([]*model.Post, error)
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockPostRepo) FindByID(ctx context.Context, id string) (*model.Post, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockPostRepo) Create(ctx context.Context, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepo) List(ctx context.Context, limit int) ([]*model.Post, error) {
	if m.listFn != nil {
		return m.listFn(ctx, limit)
	}
	return nil, nil
}

func (m *mockPostRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockLikeRepo struct {
	findByUserAndPostFn func(ctx context.Context, userID, postID string) (*model.Like, error)
	createFn            func(ctx context.Context, like *model.Like) error
	deleteFn            func(ctx context.Context, id string) error
}

func (m *mockLikeRepo) FindByUserAndPost(ctx context.Context, userID, postID string) (*model.Like, error) {
	if m.findByUserAndPostFn != nil {
		return m.findByUserAndPostFn(ctx, userID, postID)
	}
	return nil, nil
}

func (m *mockLikeRepo) Create(ctx context.Context, like *model.Like) error {
	if m.createFn != nil {
		return m.createFn(ctx, like)
	}
	return nil
}

func (m *mockLikeRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockCommentRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Comment, error)
	createFn   func(ctx context.Context, comment *model.Comment) error
	deleteFn   func(ctx context.Context, id string) error
}

func (m *mockCommentRepo) FindByID(ctx context.Context, id string) (*model.Comment, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockCommentRepo) Create(ctx context.Context, comment *model.Comment) error {
	if m.createFn != nil {
		return m.createFn(ctx, comment)
	}
	return nil
}

func (m *mockCommentRepo) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockPublisher struct {
	mu     sync.Mutex
	events []model.NotificationEvent
}

func (m *mockPublisher) Publish(event model.NotificationEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockPublisher) published() []model.NotificationEvent {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.NotificationEvent(nil), m.events...)
}

type passthroughSanitizer struct{}

func (passthroughSanitizer) Sanitize(html string) string { return html }

// --- compile-time interface checks ---
var _ AuthServiceInterface = (*mockAuthService)(nil)
var _ middleware.IdentityResolver = (*mockResolver)(nil)
var _ repository.PostRepository = (*mockPostRepo)(nil)
var _ repository.LikeRepository = (*mockLikeRepo)(nil)
var _ repository.CommentRepository = (*mockCommentRepo)(nil)
var _ EventPublisher = (*mockPublisher)(nil)
var _ Sanitizer = (passthroughSanitizer{})
