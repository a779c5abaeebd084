package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/summit-delegates/backend/internal/auth"
	"github.com/summit-delegates/backend/internal/models"
)

type fakeUserStore struct {
	users map[uuid.UUID]*models.User
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	return f.users[id], nil
}

func setupAuth(t *testing.T) (*auth.Service, *auth.JWTService, *models.User) {
	t.Helper()
	jwtSvc := auth.NewJWTService("test-secret", 1)
	user := &models.User{ID: uuid.New(), Email: "alice@example.com", Role: models.RoleDelegate}
	store := &fakeUserStore{users: map[uuid.UUID]*models.User{user.ID: user}}
	return auth.NewService(jwtSvc, store, nil, nil), jwtSvc, user
}

func authRouter(svc *auth.Service, roles ...models.Role) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	chain := []gin.HandlerFunc{Authenticate(svc)}
	if len(roles) > 0 {
		chain = append(chain, RequireRole(roles...))
	}
	chain = append(chain, func(c *gin.Context) {
		user, _ := auth.UserFromContext(c)
		c.JSON(http.StatusOK, gin.H{"user_id": user.ID})
	})
	router.GET("/protected", chain...)
	return router
}

func request(router *gin.Engine, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateMiddleware(t *testing.T) {
	svc, jwtSvc, user := setupAuth(t)
	token, err := jwtSvc.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	router := authRouter(svc)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{name: "valid token", header: "Bearer " + token, want: http.StatusOK},
		{name: "missing header", header: "", want: http.StatusUnauthorized},
		{name: "not bearer", header: "Basic abc", want: http.StatusUnauthorized},
		{name: "garbage token", header: "Bearer garbage", want: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if rec := request(router, tt.header); rec.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestAuthenticateMiddlewareDeletedUser(t *testing.T) {
	jwtSvc := auth.NewJWTService("test-secret", 1)
	token, err := jwtSvc.Generate(uuid.New(), "ghost@example.com", models.RoleDelegate)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	svc := auth.NewService(jwtSvc, &fakeUserStore{users: map[uuid.UUID]*models.User{}}, nil, nil)
	router := authRouter(svc)

	if rec := request(router, "Bearer "+token); rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for deleted user, got %d", rec.Code)
	}
}

// A delegate hitting an admin-gated route must get 403, not 401: the
// identity is valid, only the role is insufficient.
func TestRequireRoleForbidden(t *testing.T) {
	svc, jwtSvc, user := setupAuth(t)
	token, err := jwtSvc.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	router := authRouter(svc, models.RoleAdmin)

	rec := request(router, "Bearer "+token)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", rec.Code)
	}
}

func TestRequireRoleAllows(t *testing.T) {
	svc, jwtSvc, user := setupAuth(t)
	token, err := jwtSvc.Generate(user.ID, user.Email, user.Role)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	router := authRouter(svc, models.RoleAdmin, models.RoleDelegate)

	rec := request(router, "Bearer "+token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestRequireRoleWithoutAuthenticate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", RequireRole(models.RoleAdmin), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := request(router, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without user context, got %d", rec.Code)
	}
}
