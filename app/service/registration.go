package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/meisaku/ms-go-user/app/entity"
	"github.com/meisaku/ms-go-user/app/repository"

	"github.com/sirupsen/logrus"
)

var (
	ErrDatabase               = errors.New("database error")
	ErrSendEmail              = errors.New("failed to send activation email")
	ErrInvalidActivationToken = errors.New("invalid activation token")
)

const (
	signUpTemplate = "sign_up"
	signUpSubject  = "Welcome to the Meisaku!"
)

// SignUpData is the payload handed to the sign_up email template.
type SignUpData struct {
	Username      string
	ActivationURL string
}

// Mailer dispatches a rendered template to the given recipients.
// Implementations own template rendering and transport; a returned error
// means the recipient cannot be assumed to have received anything.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, templateName string, data any) error
}

type RegistrationResult struct {
	UserID     string
	EmailID    string
	PasswordID string
	Username   string
	Email      string
}

// RegistrationService provisions new user accounts: it validates identity
// uniqueness, derives the credential, writes the user, email and password
// records in one transaction, and dispatches the activation email. Nothing
// is committed unless every step, the email dispatch included, succeeds.
type RegistrationService struct {
	db        *sql.DB
	userRepo  *repository.UserRepository
	emailRepo *repository.EmailRepository
	hasher    *PasswordHasher
	mailer    Mailer
}

func NewRegistrationService(db *sql.DB, hasher *PasswordHasher, mailer Mailer) *RegistrationService {
	return &RegistrationService{
		db:        db,
		userRepo:  repository.NewUserRepository(db),
		emailRepo: repository.NewEmailRepository(db),
		hasher:    hasher,
		mailer:    mailer,
	}
}

// Register runs the full provisioning pipeline. baseURL is the absolute URL
// the activation link is built under. The returned result carries the three
// generated ids; hash, salt and activation token never leave the service.
//
// The uniqueness lookups run before the transaction; two registrations
// racing past them are separated by the unique indexes at insert time, so
// callers still only ever observe ErrUsernameExists or ErrEmailExists.
func (s *RegistrationService) Register(ctx context.Context, username, email, password, baseURL string) (*RegistrationResult, error) {
	if err := s.checkExisting(ctx, username, email); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	defer tx.Rollback()

	now := time.Now()

	user := &entity.User{
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
	txUserRepo := repository.NewUserRepository(tx)
	if err = txUserRepo.Create(ctx, user); err != nil {
		return nil, wrapStorageError(err)
	}

	emailRecord := &entity.UserEmail{
		Email:           email,
		Active:          false,
		ActivationToken: NewActivationToken(),
		UserID:          user.ID,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	txEmailRepo := repository.NewEmailRepository(tx)
	if err = txEmailRepo.Create(ctx, emailRecord); err != nil {
		return nil, wrapStorageError(err)
	}

	hash, salt, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	passwordRecord := &entity.UserPassword{
		UserID:    user.ID,
		Hash:      hash,
		Salt:      salt,
		CreatedAt: now,
		UpdatedAt: now,
	}
	txPasswordRepo := repository.NewPasswordRepository(tx)
	if err = txPasswordRepo.Create(ctx, passwordRecord); err != nil {
		return nil, wrapStorageError(err)
	}

	activationURL, err := buildActivationURL(baseURL, user.ID, emailRecord.ActivationToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendEmail, err)
	}

	// One attempt only. Retrying a timed-out send inside the transaction
	// risks duplicate emails for an account that may yet roll back.
	err = s.mailer.Send(ctx, []string{email}, signUpSubject, signUpTemplate, SignUpData{
		Username:      username,
		ActivationURL: activationURL,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSendEmail, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDatabase, err)
	}

	logrus.WithFields(logrus.Fields{
		"user_id":  user.ID,
		"username": username,
	}).Info("User account provisioned")

	return &RegistrationResult{
		UserID:     user.ID,
		EmailID:    emailRecord.ID,
		PasswordID: passwordRecord.ID,
		Username:   username,
		Email:      email,
	}, nil
}

// ActivateEmail redeems an activation token for the given user. The token is
// single-use: once the email is active the same pair no longer matches.
func (s *RegistrationService) ActivateEmail(ctx context.Context, userID, token string) error {
	rows, err := s.emailRepo.Activate(ctx, userID, token)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if rows == 0 {
		return ErrInvalidActivationToken
	}
	return nil
}

// checkExisting looks the candidate identity up before any transaction is
// opened. Username first, email second; the first violation wins.
func (s *RegistrationService) checkExisting(ctx context.Context, username, email string) error {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if user != nil {
		return repository.ErrUsernameExists
	}

	emailRecord, err := s.emailRepo.FindByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrDatabase, err)
	}
	if emailRecord != nil {
		return repository.ErrEmailExists
	}

	return nil
}

// wrapStorageError keeps the duplicate-identity sentinels intact and hides
// every other storage error behind ErrDatabase.
func wrapStorageError(err error) error {
	if errors.Is(err, repository.ErrUsernameExists) || errors.Is(err, repository.ErrEmailExists) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrDatabase, err)
}

func buildActivationURL(baseURL, userID, token string) (string, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return "", err
	}
	if !u.IsAbs() || u.Host == "" {
		return "", fmt.Errorf("activation base url %q is not absolute", baseURL)
	}

	u = u.JoinPath("user", "activate")
	query := url.Values{}
	query.Set("token", token)
	query.Set("user_id", userID)
	u.RawQuery = query.Encode()

	return u.String(), nil
}
