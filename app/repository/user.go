package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/meisaku/ms-go-user/app/entity"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
)

var (
	ErrUsernameExists = errors.New("username already exists")
	ErrEmailExists    = errors.New("email already exists")
)

// mysqlDupEntry is MySQL error 1062 (ER_DUP_ENTRY), raised when an insert
// violates a unique index. The unique indexes on users.username and
// user_emails.email are the authoritative duplicate check; the service-level
// lookup only narrows the race window.
const mysqlDupEntry = 1062

func isDupEntry(err error) bool {
	var mysqlErr *mysql.MySQLError
	return errors.As(err, &mysqlErr) && mysqlErr.Number == mysqlDupEntry
}

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, username, created_at, updated_at)
		VALUES (?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isDupEntry(err) {
			return ErrUsernameExists
		}
		return err
	}
	return nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `
		SELECT id, username, created_at, updated_at
		FROM users WHERE username = ?
	`
	user := &entity.User{}
	err := r.db.QueryRowContext(ctx, query, username).Scan(
		&user.ID,
		&user.Username,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `
		SELECT id, username, created_at, updated_at
		FROM users WHERE id = ?
	`
	user := &entity.User{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Username,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

type EmailRepository struct {
	db DBTX
}

func NewEmailRepository(db DBTX) *EmailRepository {
	return &EmailRepository{db: db}
}

func (r *EmailRepository) Create(ctx context.Context, email *entity.UserEmail) error {
	if email.ID == "" {
		email.ID = uuid.NewString()
	}

	query := `
		INSERT INTO user_emails (id, email, active, activation_token, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		email.ID,
		email.Email,
		email.Active,
		email.ActivationToken,
		email.UserID,
		email.CreatedAt,
		email.UpdatedAt,
	)
	if err != nil {
		if isDupEntry(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

func (r *EmailRepository) FindByEmail(ctx context.Context, address string) (*entity.UserEmail, error) {
	query := `
		SELECT id, email, active, activation_token, user_id, created_at, updated_at
		FROM user_emails WHERE email = ?
	`
	email := &entity.UserEmail{}
	err := r.db.QueryRowContext(ctx, query, address).Scan(
		&email.ID,
		&email.Email,
		&email.Active,
		&email.ActivationToken,
		&email.UserID,
		&email.CreatedAt,
		&email.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return email, nil
}

// Activate flips an email to active when the given single-use token matches.
// The active = 0 guard makes the token single-use: a second attempt with the
// same token affects zero rows.
func (r *EmailRepository) Activate(ctx context.Context, userID, token string) (int64, error) {
	query := `
		UPDATE user_emails SET active = 1, updated_at = ?
		WHERE user_id = ? AND activation_token = ? AND active = 0
	`
	result, err := r.db.ExecContext(ctx, query, time.Now(), userID, token)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

type PasswordRepository struct {
	db DBTX
}

func NewPasswordRepository(db DBTX) *PasswordRepository {
	return &PasswordRepository{db: db}
}

func (r *PasswordRepository) Create(ctx context.Context, password *entity.UserPassword) error {
	if password.ID == "" {
		password.ID = uuid.NewString()
	}

	query := `
		INSERT INTO user_passwords (id, user_id, hash, salt, reset_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		password.ID,
		password.UserID,
		password.Hash,
		password.Salt,
		password.ResetToken,
		password.CreatedAt,
		password.UpdatedAt,
	)
	return err
}

func (r *PasswordRepository) FindByUserID(ctx context.Context, userID string) (*entity.UserPassword, error) {
	query := `
		SELECT id, user_id, hash, salt, reset_token, created_at, updated_at
		FROM user_passwords WHERE user_id = ?
	`
	password := &entity.UserPassword{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(
		&password.ID,
		&password.UserID,
		&password.Hash,
		&password.Salt,
		&password.ResetToken,
		&password.CreatedAt,
		&password.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return password, nil
}
