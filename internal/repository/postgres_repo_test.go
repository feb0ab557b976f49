package repository

import (
	"testing"
)

// 各Postgresリポジトリがインターフェースを満たすことをコンパイル時に検証する。
var (
	_ UserRepository    = (*PostgresUserRepo)(nil)
	_ PostRepository    = (*PostgresPostRepo)(nil)
	_ CommentRepository = (*PostgresCommentRepo)(nil)
	_ LikeRepository    = (*PostgresLikeRepo)(nil)
)

func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("NewPostgresUserRepo() returned nil")
	}
}

func TestNewPostgresPostRepo_Initializes(t *testing.T) {
	repo := NewPostgresPostRepo(nil)
	if repo == nil {
		t.Fatal("NewPostgresPostRepo() returned nil")
	}
}

func TestNewPostgresCommentRepo_Initializes(t *testing.T) {
	repo := NewPostgresCommentRepo(nil)
	if repo == nil {
		t.Fatal("NewPostgresCommentRepo() returned nil")
	}
}

func TestNewPostgresLikeRepo_Initializes(t *testing.T) {
	repo := NewPostgresLikeRepo(nil)
	if repo == nil {
		t.Fatal("NewPostgresLikeRepo() returned nil")
	}
}
