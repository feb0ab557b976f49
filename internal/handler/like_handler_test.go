package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/postboard/internal/middleware"
	"github.com/hitoshi/postboard/internal/model"
)

// newLikeRequest はchiのURLパラメータと認証済みユーザーを設定したリクエストを生成する。
func newLikeRequest(t *testing.T, postID string, user *model.User) *http.Request {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, "/like/"+postID, nil)

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("postID", postID)
	ctx := context.WithValue(req.Context(), chi.RouteCtxKey, rctx)
	if user != nil {
		ctx = middleware.ContextWithUser(ctx, user)
	}

	return req.WithContext(ctx)
}

func TestToggle_FirstLike_CreatesAndPublishes(t *testing.T) {
	posts := &mockPostRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Post, error) {
			return &model.Post{ID: id, UserID: "author"}, nil
		},
	}
	var created *model.Like
	likes := &mockLikeRepo{
		createFn: func(ctx context.Context, like *model.Like) error {
			created = like
			return nil
		},
	}
	bus := &mockPublisher{}
	h := NewLikeHandler(posts, likes, bus)

	w := httptest.NewRecorder()
	h.Toggle(w, newLikeRequest(t, "post-1", &model.User{ID: "user-1"}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Post liked") {
		t.Errorf("body = %q, want to contain %q", w.Body.String(), "Post liked")
	}
	if created == nil || created.UserID != "user-1" || created.PostID != "post-1" {
		t.Errorf("created like = %+v, want user-1/post-1", created)
	}

	events := bus.published()
	if len(events) != 1 {
		t.Fatalf("published %d events, want 1", len(events))
	}
	if events[0].Kind != model.EventNewComment {
		t.Errorf("event kind = %q, want %q", events[0].Kind, model.EventNewComment)
	}
}

func TestToggle_ExistingLike_DeletesWithoutPublishing(t *testing.T) {
	posts := &mockPostRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Post, error) {
			return &model.Post{ID: id}, nil
		},
	}
	var deletedID string
	likes := &mockLikeRepo{
		findByUserAndPostFn: func(ctx context.Context, userID, postID string) (*model.Like, error) {
			return &model.Like{ID: "like-1", UserID: userID, PostID: postID}, nil
		},
		deleteFn: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	bus := &mockPublisher{}
	h := NewLikeHandler(posts, likes, bus)

	w := httptest.NewRecorder()
	h.Toggle(w, newLikeRequest(t, "post-1", &model.User{ID: "user-1"}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Post unliked") {
		t.Errorf("body = %q, want to contain %q", w.Body.String(), "Post unliked")
	}
	if deletedID != "like-1" {
		t.Errorf("deleted like = %q, want %q", deletedID, "like-1")
	}
	if len(bus.published()) != 0 {
		t.Error("unlike must not publish a notification")
	}
}

func TestToggle_UnknownPost_Returns404(t *testing.T) {
	h := NewLikeHandler(&mockPostRepo{}, &mockLikeRepo{}, &mockPublisher{})

	w := httptest.NewRecorder()
	h.Toggle(w, newLikeRequest(t, "missing", &model.User{ID: "user-1"}))

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestToggle_NoUserInContext_Returns401(t *testing.T) {
	h := NewLikeHandler(&mockPostRepo{}, &mockLikeRepo{}, &mockPublisher{})

	w := httptest.NewRecorder()
	h.Toggle(w, newLikeRequest(t, "post-1", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusUnauthorized)
	}
}

func TestToggle_ConcurrentCreateLoser_ReportsLikedWithoutPublishing(t *testing.T) {
	posts := &mockPostRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Post, error) {
			return &model.Post{ID: id}, nil
		},
	}
	likes := &mockLikeRepo{
		createFn: func(ctx context.Context, like *model.Like) error {
			return fmt.Errorf("insert likes: %w", model.ErrStorageConflict)
		},
	}
	bus := &mockPublisher{}
	h := NewLikeHandler(posts, likes, bus)

	w := httptest.NewRecorder()
	h.Toggle(w, newLikeRequest(t, "post-1", &model.User{ID: "user-1"}))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "Post liked") {
		t.Errorf("body = %q, want to contain %q", w.Body.String(), "Post liked")
	}
	// 勝者側が通知済みのため、敗者は発行しない
	if len(bus.published()) != 0 {
		t.Error("the race loser must not publish a notification")
	}
}
