package httpapi

import (
	"context"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"rankha/backend/internal/domain"
	"rankha/backend/internal/store"
)

type fakeUserStore struct {
	users map[string]domain.UserAccount
}

func (f *fakeUserStore) GetUser(_ context.Context, username string) (*domain.UserAccount, error) {
	user, ok := f.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func newFakeUsers(t *testing.T) *fakeUserStore {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("reception-pass"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return &fakeUserStore{users: map[string]domain.UserAccount{
		"reception": {
			Username: "reception",
			Password: string(hash),
			Role:     domain.RoleReceptionist,
			StoreID:  "main-store",
			Active:   true,
		},
		"dormant": {
			Username: "dormant",
			Password: string(hash),
			Role:     domain.RoleOwner,
			Active:   false,
		},
	}}
}

func TestLoginIssuesParsableToken(t *testing.T) {
	auth := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, newFakeUsers(t))

	resp, err := auth.Login(context.Background(), domain.LoginRequest{Username: "Reception", Password: "reception-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Role != domain.RoleReceptionist || resp.StoreID != "main-store" {
		t.Fatalf("unexpected login payload %+v", resp)
	}

	actor, err := auth.ParseToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if actor.Username != "reception" || actor.Role != domain.RoleReceptionist || actor.StoreID != "main-store" {
		t.Fatalf("unexpected actor %+v", actor)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	auth := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, newFakeUsers(t))

	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "reception", Password: "nope"}); err == nil {
		t.Fatal("expected error for wrong password")
	}
	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "ghost", Password: "reception-pass"}); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestLoginRejectsInactiveAccount(t *testing.T) {
	auth := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, newFakeUsers(t))

	if _, err := auth.Login(context.Background(), domain.LoginRequest{Username: "dormant", Password: "reception-pass"}); err == nil {
		t.Fatal("expected error for inactive account")
	}
}

func TestParseTokenRejectsForeignSecret(t *testing.T) {
	users := newFakeUsers(t)
	issuer := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, users)
	verifier := NewAuthManager("ffffffffffffffffffffffffffffffff", time.Hour, users)

	resp, err := issuer.Login(context.Background(), domain.LoginRequest{Username: "reception", Password: "reception-pass"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	if _, err := verifier.ParseToken(resp.AccessToken); err == nil {
		t.Fatal("token signed with a different secret must not parse")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	auth := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, newFakeUsers(t))

	token, err := auth.sign("reception", domain.RoleReceptionist, "main-store", time.Now().UTC().Add(-time.Minute))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := auth.ParseToken(token); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	auth := NewAuthManager("0123456789abcdef0123456789abcdef", time.Hour, newFakeUsers(t))

	if _, err := auth.ParseToken("not-a-token"); err == nil {
		t.Fatal("garbage token must not parse")
	}
}
