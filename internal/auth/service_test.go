package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/summit-delegates/backend/internal/models"
)

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
	err   error
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.users[id], nil
}

func TestAuthenticate(t *testing.T) {
	jwtSvc := NewJWTService("test-secret", 1)
	user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleDelegate}
	store := &fakeUserStore{users: map[uuid.UUID]*models.User{user.ID: user}}
	svc := NewService(jwtSvc, store, nil, nil)

	token, err := jwtSvc.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	got, err := svc.Authenticate(context.Background(), token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if got.ID != user.ID {
		t.Fatalf("expected user %s, got %s", user.ID, got.ID)
	}
}

func TestAuthenticateFailures(t *testing.T) {
	jwtSvc := NewJWTService("test-secret", 1)
	user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleDelegate}

	validToken, err := jwtSvc.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	otherToken, err := NewJWTService("other-secret", 1).Generate(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tests := []struct {
		name  string
		store *fakeUserStore
		token string
	}{
		{
			name:  "malformed token",
			store: &fakeUserStore{users: map[uuid.UUID]*models.User{user.ID: user}},
			token: "garbage",
		},
		{
			name:  "wrong signing secret",
			store: &fakeUserStore{users: map[uuid.UUID]*models.User{user.ID: user}},
			token: otherToken,
		},
		{
			name:  "user deleted after issue",
			store: &fakeUserStore{users: map[uuid.UUID]*models.User{}},
			token: validToken,
		},
		{
			name:  "store failure",
			store: &fakeUserStore{err: errors.New("connection refused")},
			token: validToken,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewService(jwtSvc, tt.store, nil, nil)
			_, err := svc.Authenticate(context.Background(), tt.token)
			if !errors.Is(err, ErrUnauthenticated) {
				t.Fatalf("expected ErrUnauthenticated, got %v", err)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	tests := []struct {
		name    string
		role    models.Role
		allowed []models.Role
		wantErr bool
	}{
		{name: "delegate allowed for delegate op", role: models.RoleDelegate, allowed: []models.Role{models.RoleDelegate}},
		{name: "admin allowed for admin op", role: models.RoleAdmin, allowed: []models.Role{models.RoleAdmin}},
		{name: "super admin in two-role list", role: models.RoleSuperAdmin, allowed: []models.Role{models.RoleAdmin, models.RoleSuperAdmin}},
		{name: "delegate rejected for admin op", role: models.RoleDelegate, allowed: []models.Role{models.RoleAdmin}, wantErr: true},
		{name: "admin rejected for delegate-only op", role: models.RoleAdmin, allowed: []models.Role{models.RoleDelegate}, wantErr: true},
		{name: "super admin rejected for admin-only op", role: models.RoleSuperAdmin, allowed: []models.Role{models.RoleAdmin}, wantErr: true},
		{name: "empty allow-list rejects everyone", role: models.RoleSuperAdmin, allowed: nil, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(&models.User{ID: uuid.New(), Role: tt.role}, tt.allowed...)
			if tt.wantErr {
				if !errors.Is(err, ErrForbidden) {
					t.Fatalf("expected ErrForbidden, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected success, got %v", err)
			}
		})
	}
}

// A valid but under-privileged identity must get Forbidden, never
// Unauthenticated.
func TestAuthorizeNeverReturnsUnauthenticated(t *testing.T) {
	err := Authorize(&models.User{Role: models.RoleDelegate}, models.RoleAdmin)
	if errors.Is(err, ErrUnauthenticated) {
		t.Fatal("authorization failure must not be ErrUnauthenticated")
	}
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}
