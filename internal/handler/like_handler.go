package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/postboard/internal/middleware"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// EventPublisher は通知イベントの発行インターフェース。
// realtime.Hubの部分集合として定義する。
type EventPublisher interface {
	Publish(event model.NotificationEvent)
}

// LikeHandler はいいねトグルのHTTPハンドラー。
type LikeHandler struct {
	posts repository.PostRepository
	likes repository.LikeRepository
	bus   EventPublisher
}

// NewLikeHandler はLikeHandlerを生成する。
func NewLikeHandler(posts repository.PostRepository, likes repository.LikeRepository, bus EventPublisher) *LikeHandler {
	return &LikeHandler{
		posts: posts,
		likes: likes,
		bus:   bus,
	}
}

// Toggle はいいねの状態を反転する。
// 未いいねなら作成して通知をブロードキャストし、いいね済みなら削除する。
// 削除側では通知を発行しない。
// GET /like/{postID}
func (h *LikeHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	postID := chi.URLParam(r, "postID")

	post, err := h.posts.FindByID(r.Context(), postID)
	if err != nil {
		slog.Error("failed to find post", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if post == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("post"))
		return
	}

	existing, err := h.likes.FindByUserAndPost(r.Context(), user.ID, postID)
	if err != nil {
		slog.Error("failed to find like", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	if existing != nil {
		if err := h.likes.Delete(r.Context(), existing.ID); err != nil {
			slog.Error("failed to delete like", slog.String("error", err.Error()))
			middleware.WriteInternalServerError(w)
			return
		}
		writeLikeMessage(w, "Post unliked")
		return
	}

	like := &model.Like{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		PostID:    postID,
		CreatedAt: time.Now(),
	}

	if err := h.likes.Create(r.Context(), like); err != nil {
		// 同時トグルの敗者は「いいね済み」として成功を返す。
		// 勝者側が通知を発行済みのため、こちらでは発行しない。
		if errors.Is(err, model.ErrStorageConflict) {
			writeLikeMessage(w, "Post liked")
			return
		}
		slog.Error("failed to create like", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	h.bus.Publish(model.NotificationEvent{
		Kind: model.EventNewComment,
		Payload: map[string]interface{}{
			"id":     like.ID,
			"userId": like.UserID,
			"postId": like.PostID,
		},
	})

	writeLikeMessage(w, "Post liked")
}

// writeLikeMessage はいいねトグルの結果メッセージを書き込む。
func writeLikeMessage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"message": message,
	})
}
