package model

import "time"

// Post は投稿を表す。
type Post struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	CreatedAt time.Time
}

// Comment は投稿へのコメントを表す。
// ParentCommentIDが設定されている場合はコメントへの返信を表す。
type Comment struct {
	ID              string
	PostID          string
	UserID          string
	ParentCommentID string
	Content         string
	CreatedAt       time.Time
}

// Like はユーザーと投稿のjoinエンティティを表す。
// (user, post) ペアにつき最大1件。レコードの存在が「いいね済み」を意味する。
type Like struct {
	ID        string
	UserID    string
	PostID    string
	CreatedAt time.Time
}
