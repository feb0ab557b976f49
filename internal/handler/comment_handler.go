package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/postboard/internal/middleware"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// CommentHandler はコメントCRUDのHTTPハンドラー。
// コメント作成時には通知ハブにイベントを発行する。
type CommentHandler struct {
	posts     repository.PostRepository
	comments  repository.CommentRepository
	sanitizer Sanitizer
	bus       EventPublisher
}

// NewCommentHandler はCommentHandlerを生成する。
func NewCommentHandler(posts repository.PostRepository, comments repository.CommentRepository, sanitizer Sanitizer, bus EventPublisher) *CommentHandler {
	return &CommentHandler{
		posts:     posts,
		comments:  comments,
		sanitizer: sanitizer,
		bus:       bus,
	}
}

// commentRequest はコメント作成リクエストのボディ。
type commentRequest struct {
	Content         string `json:"content"`
	ParentCommentID string `json:"parentCommentId"`
}

// Create は投稿にコメントを追加し、通知をブロードキャストする。
// parentCommentIdが指定されている場合はコメントへの返信として作成する。
// POST /comment/{postID}
func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
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

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("invalid request body"))
		return
	}
	if req.Content == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("content is required"))
		return
	}

	// 返信先コメントの存在確認
	if req.ParentCommentID != "" {
		parent, err := h.comments.FindByID(r.Context(), req.ParentCommentID)
		if err != nil {
			slog.Error("failed to find parent comment", slog.String("error", err.Error()))
			middleware.WriteInternalServerError(w)
			return
		}
		if parent == nil || parent.PostID != postID {
			middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("parent comment"))
			return
		}
	}

	comment := &model.Comment{
		ID:              uuid.New().String(),
		PostID:          postID,
		UserID:          user.ID,
		ParentCommentID: req.ParentCommentID,
		Content:         h.sanitizer.Sanitize(req.Content),
		CreatedAt:       time.Now(),
	}

	if err := h.comments.Create(r.Context(), comment); err != nil {
		slog.Error("failed to create comment", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	h.bus.Publish(model.NotificationEvent{
		Kind:    model.EventNewComment,
		Payload: commentResponse(comment),
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(commentResponse(comment))
}

// Delete はコメントを削除する。コメント投稿者本人のみが削除できる。
// 返信はCASCADE削除される。削除では通知を発行しない。
// DELETE /comment/{commentID}
func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	commentID := chi.URLParam(r, "commentID")

	comment, err := h.comments.FindByID(r.Context(), commentID)
	if err != nil {
		slog.Error("failed to find comment", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}
	if comment == nil {
		middleware.WriteErrorResponse(w, http.StatusNotFound, model.NewNotFoundError("comment"))
		return
	}
	if comment.UserID != user.ID {
		middleware.WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	if err := h.comments.Delete(r.Context(), commentID); err != nil {
		slog.Error("failed to delete comment", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// commentResponse はコメントをJSON用に整形する。
func commentResponse(comment *model.Comment) map[string]interface{} {
	return map[string]interface{}{
		"id":              comment.ID,
		"postId":          comment.PostID,
		"userId":          comment.UserID,
		"parentCommentId": comment.ParentCommentID,
		"content":         comment.Content,
		"createdAt":       comment.CreatedAt,
	}
}
