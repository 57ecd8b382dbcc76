package controller_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meisaku/ms-go-user/app/controller"
	"github.com/meisaku/ms-go-user/app/repository"
	"github.com/meisaku/ms-go-user/app/service"

	"github.com/labstack/echo/v4"
)

const testBaseURL = "https://app.meisaku.example.com"

type fakeRegistrationService struct {
	registerResult *service.RegistrationResult
	registerErr    error
	activateErr    error

	gotUsername string
	gotEmail    string
	gotPassword string
	gotBaseURL  string
	gotUserID   string
	gotToken    string
}

func (s *fakeRegistrationService) Register(_ context.Context, username, email, password, baseURL string) (*service.RegistrationResult, error) {
	s.gotUsername = username
	s.gotEmail = email
	s.gotPassword = password
	s.gotBaseURL = baseURL
	if s.registerErr != nil {
		return nil, s.registerErr
	}
	return s.registerResult, nil
}

func (s *fakeRegistrationService) ActivateEmail(_ context.Context, userID, token string) error {
	s.gotUserID = userID
	s.gotToken = token
	return s.activateErr
}

func doCreateUser(t *testing.T, svc *fakeRegistrationService, body string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/user", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	c := controller.NewUserController(svc, testBaseURL)
	if err := c.CreateUser(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func doActivateEmail(t *testing.T, svc *fakeRegistrationService, query string) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/user/activate"+query, nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	c := controller.NewUserController(svc, testBaseURL)
	if err := c.ActivateEmail(ctx); err != nil {
		t.Fatalf("handler returned error: %v", err)
	}
	return rec
}

func TestCreateUser_Success(t *testing.T) {
	svc := &fakeRegistrationService{
		registerResult: &service.RegistrationResult{
			UserID:     "0c1de8fe-1111-4a5b-9c7d-0123456789ab",
			EmailID:    "9a8b7c6d-3333-4a5b-9c7d-0123456789ab",
			PasswordID: "5e4f3a2b-4444-4a5b-9c7d-0123456789ab",
			Username:   "alice",
			Email:      "alice@example.com",
		},
	}

	rec := doCreateUser(t, svc, `{"username":"alice","email":"alice@example.com","password":"secret1"}`)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotUsername != "alice" || svc.gotEmail != "alice@example.com" || svc.gotPassword != "secret1" {
		t.Fatalf("unexpected arguments passed to service: %+v", svc)
	}
	if svc.gotBaseURL != testBaseURL {
		t.Fatalf("expected base url %q, got %q", testBaseURL, svc.gotBaseURL)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp["id"] != svc.registerResult.UserID || resp["username"] != "alice" || resp["email"] != "alice@example.com" {
		t.Fatalf("unexpected response body: %v", resp)
	}

	// Credentials and tokens never leave the service.
	body := rec.Body.String()
	for _, forbidden := range []string{"password", "hash", "salt", "token"} {
		if strings.Contains(body, forbidden) {
			t.Fatalf("response must not contain %q: %s", forbidden, body)
		}
	}
}

func TestCreateUser_InvalidBody(t *testing.T) {
	svc := &fakeRegistrationService{}

	rec := doCreateUser(t, svc, `{"username":`)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if svc.gotUsername != "" {
		t.Fatal("service must not be called for an unparsable body")
	}
}

func TestCreateUser_ValidationFailures(t *testing.T) {
	cases := map[string]string{
		"short username": `{"username":"al","email":"alice@example.com","password":"secret1"}`,
		"long username":  `{"username":"alice-has-a-very-long-name","email":"alice@example.com","password":"secret1"}`,
		"bad email":      `{"username":"alice","email":"not-an-email","password":"secret1"}`,
		"short password": `{"username":"alice","email":"alice@example.com","password":"pw"}`,
		"long password":  `{"username":"alice","email":"alice@example.com","password":"` + strings.Repeat("x", 33) + `"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &fakeRegistrationService{}
			rec := doCreateUser(t, svc, body)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d: %s", rec.Code, rec.Body.String())
			}
			if svc.gotUsername != "" {
				t.Fatal("service must not be called when validation fails")
			}
		})
	}
}

func TestCreateUser_Conflicts(t *testing.T) {
	cases := map[string]struct {
		err     error
		message string
	}{
		"duplicate username": {repository.ErrUsernameExists, "username already exists"},
		"duplicate email":    {repository.ErrEmailExists, "email already exists"},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			svc := &fakeRegistrationService{registerErr: tc.err}
			rec := doCreateUser(t, svc, `{"username":"alice","email":"alice@example.com","password":"secret1"}`)

			if rec.Code != http.StatusConflict {
				t.Fatalf("expected status 409, got %d", rec.Code)
			}
			if !strings.Contains(rec.Body.String(), tc.message) {
				t.Fatalf("expected %q in response, got: %s", tc.message, rec.Body.String())
			}
		})
	}
}

// Wrapped duplicates from a lost insert race map to 409 the same as the
// pre-check path.
func TestCreateUser_WrappedConflict(t *testing.T) {
	svc := &fakeRegistrationService{
		registerErr: errors.Join(errors.New("failed to create user"), repository.ErrUsernameExists),
	}

	rec := doCreateUser(t, svc, `{"username":"alice","email":"alice@example.com","password":"secret1"}`)

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d", rec.Code)
	}
}

func TestCreateUser_InternalError(t *testing.T) {
	svc := &fakeRegistrationService{registerErr: service.ErrSendEmail}

	rec := doCreateUser(t, svc, `{"username":"alice","email":"alice@example.com","password":"secret1"}`)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "internal server error") {
		t.Fatalf("expected an opaque error message, got: %s", rec.Body.String())
	}
}

func TestActivateEmail_Success(t *testing.T) {
	svc := &fakeRegistrationService{}

	rec := doActivateEmail(t, svc, "?token=2f37e9d8-2222-4a5b-9c7d-0123456789ab&user_id=0c1de8fe-1111-4a5b-9c7d-0123456789ab")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotUserID != "0c1de8fe-1111-4a5b-9c7d-0123456789ab" {
		t.Fatalf("unexpected user id: %q", svc.gotUserID)
	}
	if svc.gotToken != "2f37e9d8-2222-4a5b-9c7d-0123456789ab" {
		t.Fatalf("unexpected token: %q", svc.gotToken)
	}
}

func TestActivateEmail_MissingParams(t *testing.T) {
	for name, query := range map[string]string{
		"no params":  "",
		"no token":   "?user_id=0c1de8fe-1111-4a5b-9c7d-0123456789ab",
		"no user id": "?token=2f37e9d8-2222-4a5b-9c7d-0123456789ab",
	} {
		t.Run(name, func(t *testing.T) {
			svc := &fakeRegistrationService{}
			rec := doActivateEmail(t, svc, query)

			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected status 400, got %d", rec.Code)
			}
			if svc.gotUserID != "" {
				t.Fatal("service must not be called when params are missing")
			}
		})
	}
}

func TestActivateEmail_InvalidToken(t *testing.T) {
	svc := &fakeRegistrationService{activateErr: service.ErrInvalidActivationToken}

	rec := doActivateEmail(t, svc, "?token=bogus&user_id=0c1de8fe-1111-4a5b-9c7d-0123456789ab")

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "invalid activation token") {
		t.Fatalf("unexpected response: %s", rec.Body.String())
	}
}

func TestActivateEmail_InternalError(t *testing.T) {
	svc := &fakeRegistrationService{activateErr: service.ErrDatabase}

	rec := doActivateEmail(t, svc, "?token=2f37e9d8-2222-4a5b-9c7d-0123456789ab&user_id=0c1de8fe-1111-4a5b-9c7d-0123456789ab")

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected status 500, got %d", rec.Code)
	}
}
