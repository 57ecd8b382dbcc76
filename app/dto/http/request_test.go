package http_test

import (
	"strings"
	"testing"

	httpdto "github.com/meisaku/ms-go-user/app/dto/http"
)

func TestCreateUserRequestValidate(t *testing.T) {
	cases := map[string]struct {
		request httpdto.CreateUserRequest
		wantErr bool
	}{
		"valid": {
			request: httpdto.CreateUserRequest{Username: "alice", Email: "alice@example.com", Password: "secret1"},
		},
		"username at lower bound": {
			request: httpdto.CreateUserRequest{Username: "bob", Email: "bob@example.com", Password: "secret1"},
		},
		"username at upper bound": {
			request: httpdto.CreateUserRequest{Username: strings.Repeat("a", 16), Email: "alice@example.com", Password: "secret1"},
		},
		"username too short": {
			request: httpdto.CreateUserRequest{Username: "al", Email: "alice@example.com", Password: "secret1"},
			wantErr: true,
		},
		"username too long": {
			request: httpdto.CreateUserRequest{Username: strings.Repeat("a", 17), Email: "alice@example.com", Password: "secret1"},
			wantErr: true,
		},
		"username only whitespace": {
			request: httpdto.CreateUserRequest{Username: "     ", Email: "alice@example.com", Password: "secret1"},
			wantErr: true,
		},
		"email missing": {
			request: httpdto.CreateUserRequest{Username: "alice", Password: "secret1"},
			wantErr: true,
		},
		"email without domain": {
			request: httpdto.CreateUserRequest{Username: "alice", Email: "alice@", Password: "secret1"},
			wantErr: true,
		},
		"email without at sign": {
			request: httpdto.CreateUserRequest{Username: "alice", Email: "alice.example.com", Password: "secret1"},
			wantErr: true,
		},
		"password at lower bound": {
			request: httpdto.CreateUserRequest{Username: "alice", Email: "alice@example.com", Password: "123456"},
		},
		"password at upper bound": {
			request: httpdto.CreateUserRequest{Username: "alice", Email: "alice@example.com", Password: strings.Repeat("x", 32)},
		},
		"password too short": {
			request: httpdto.CreateUserRequest{Username: "alice", Email: "alice@example.com", Password: "12345"},
			wantErr: true,
		},
		"password too long": {
			request: httpdto.CreateUserRequest{Username: "alice", Email: "alice@example.com", Password: strings.Repeat("x", 33)},
			wantErr: true,
		},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			err := tc.request.Validate()
			if tc.wantErr && err == nil {
				t.Fatal("expected a validation error")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("expected request to be valid, got: %v", err)
			}
		})
	}
}

func TestActivateEmailRequestValidate(t *testing.T) {
	valid := httpdto.ActivateEmailRequest{
		Token:  "2f37e9d8-2222-4a5b-9c7d-0123456789ab",
		UserID: "0c1de8fe-1111-4a5b-9c7d-0123456789ab",
	}
	if err := valid.Validate(); err != nil {
		t.Fatalf("expected request to be valid, got: %v", err)
	}

	cases := map[string]httpdto.ActivateEmailRequest{
		"missing token":      {UserID: valid.UserID},
		"missing user id":    {Token: valid.Token},
		"whitespace token":   {Token: "   ", UserID: valid.UserID},
		"whitespace user id": {Token: valid.Token, UserID: "   "},
	}

	for name, req := range cases {
		t.Run(name, func(t *testing.T) {
			if err := req.Validate(); err == nil {
				t.Fatal("expected a validation error")
			}
		})
	}
}
