package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lib/pq"

	"github.com/hitoshi/postboard/internal/model"
)

// uniqueViolation はPostgreSQLのunique_violationエラーコード。
const uniqueViolation = pq.ErrorCode("23505")

// isUniqueViolation はerrがユニーク制約違反かどうかを判定する。
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// PostgresUserRepo はPostgreSQLを使用したユーザーリポジトリ。
type PostgresUserRepo struct {
	db *sql.DB
}

// NewPostgresUserRepo はPostgresUserRepoを生成する。
func NewPostgresUserRepo(db *sql.DB) *PostgresUserRepo {
	return &PostgresUserRepo{db: db}
}

const userColumns = `id, email, password_hash, display_name, profile_picture,
	provider, provider_user_id, avatar_data, avatar_mime, created_at, updated_at`

// scanUser は1行分のユーザーをスキャンする。NULL許容列はNullStringで受ける。
func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	var email, passwordHash, profilePicture, provider, providerUserID, avatarMime sql.NullString
	err := row.Scan(
		&user.ID, &email, &passwordHash, &user.DisplayName, &profilePicture,
		&provider, &providerUserID, &user.AvatarData, &avatarMime,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	user.Email = email.String
	user.PasswordHash = passwordHash.String
	user.ProfilePicture = profilePicture.String
	user.Provider = provider.String
	user.ProviderUserID = providerUserID.String
	user.AvatarMime = avatarMime.String
	return user, nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return user, nil
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}

	return user, nil
}

// FindByProvider はproviderとprovider_user_idでユーザーを検索する。
// 見つからない場合はnilを返す。
func (r *PostgresUserRepo) FindByProvider(ctx context.Context, provider, providerUserID string) (*model.User, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE provider = $1 AND provider_user_id = $2`,
		provider, providerUserID)

	user, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by provider: %w", err)
	}

	return user, nil
}

// Create はユーザーを作成する。
// ユニーク制約違反はmodel.ErrStorageConflictをラップして返す。
func (r *PostgresUserRepo) Create(ctx context.Context, user *model.User) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, display_name, profile_picture,
		 provider, provider_user_id, avatar_data, avatar_mime, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		user.ID,
		nullString(user.Email),
		nullString(user.PasswordHash),
		user.DisplayName,
		nullString(user.ProfilePicture),
		nullString(user.Provider),
		nullString(user.ProviderUserID),
		user.AvatarData,
		nullString(user.AvatarMime),
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("failed to insert user: %w", model.ErrStorageConflict)
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

// UpdateProfile は表示系フィールドのみを更新する。
func (r *PostgresUserRepo) UpdateProfile(ctx context.Context, id, displayName, profilePicture string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET display_name = $2, profile_picture = $3, updated_at = $4
		 WHERE id = $1`,
		id, displayName, nullString(profilePicture), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user profile: %w", err)
	}
	return nil
}

// UpdateAvatar はキャッシュ済みアバター画像を更新する。
func (r *PostgresUserRepo) UpdateAvatar(ctx context.Context, id string, data []byte, mimeType string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET avatar_data = $2, avatar_mime = $3, updated_at = $4
		 WHERE id = $1`,
		id, data, nullString(mimeType), time.Now(),
	)
	if err != nil {
		return fmt.Errorf("failed to update user avatar: %w", err)
	}
	return nil
}

// nullString は空文字列をNULLとして書き込むためのヘルパー。
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// compile-time interface check
var _ UserRepository = (*PostgresUserRepo)(nil)
