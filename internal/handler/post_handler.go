package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/postboard/internal/middleware"
	"github.com/hitoshi/postboard/internal/model"
	"github.com/hitoshi/postboard/internal/repository"
)

// defaultPostListLimit は投稿一覧のデフォルト取得件数。
const defaultPostListLimit = 50

// Sanitizer はユーザー投稿コンテンツのサニタイズインターフェース。
// security.ContentSanitizerの部分集合として定義する。
type Sanitizer interface {
	Sanitize(html string) string
}

// PostHandler は投稿CRUDのHTTPハンドラー。
type PostHandler struct {
	posts     repository.PostRepository
	sanitizer Sanitizer
}

// NewPostHandler はPostHandlerを生成する。
func NewPostHandler(posts repository.PostRepository, sanitizer Sanitizer) *PostHandler {
	return &PostHandler{
		posts:     posts,
		sanitizer: sanitizer,
	}
}

// composeRequest は投稿作成リクエストのボディ。
type composeRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// Compose は新しい投稿を作成する。
// 本文はサニタイズしてから保存する。
// POST /compose
func (h *PostHandler) Compose(w http.ResponseWriter, r *http.Request) {
	user, err := middleware.UserFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewUnauthenticatedError())
		return
	}

	var req composeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("invalid request body"))
		return
	}
	if req.Title == "" || req.Content == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewValidationError("title and content are required"))
		return
	}

	post := &model.Post{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Title:     req.Title,
		Content:   h.sanitizer.Sanitize(req.Content),
		CreatedAt: time.Now(),
	}

	if err := h.posts.Create(r.Context(), post); err != nil {
		slog.Error("failed to create post", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(postResponse(post))
}

// List は投稿一覧を作成日時降順で返す。認証不要。
// GET /posts?limit=50
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultPostListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}

	posts, err := h.posts.List(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list posts", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	responses := make([]map[string]interface{}, 0, len(posts))
	for _, post := range posts {
		responses = append(responses, postResponse(post))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

// Delete は投稿を削除する。投稿者本人のみが削除できる。
// DELETE /post/{postID}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if post.UserID != user.ID {
		middleware.WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
		return
	}

	if err := h.posts.Delete(r.Context(), postID); err != nil {
		slog.Error("failed to delete post", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// postResponse は投稿をJSON用に整形する。
func postResponse(post *model.Post) map[string]interface{} {
	return map[string]interface{}{
		"id":        post.ID,
		"userId":    post.UserID,
		"title":     post.Title,
		"content":   post.Content,
		"createdAt": post.CreatedAt,
	}
}
