package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/sipalaciosv/inspeccion-vehicular/internal/model"
	"github.com/sipalaciosv/inspeccion-vehicular/internal/repository"
)

// fakeUserRepo serves a fixed set of user profiles
type fakeUserRepo struct {
	users map[string]*model.User
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) (*model.User, error) {
	return user, nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return user, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUserRepo) ListAll(ctx context.Context) ([]*model.User, error) {
	return nil, nil
}

func testRouter(userRepo repository.UserRepository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	authenticated := router.Group("/", Authenticate(userRepo))
	authenticated.GET("/me", func(c *gin.Context) {
		c.JSON(http.StatusOK, currentUser(c))
	})

	admin := authenticated.Group("/admin", RequireRole(model.RoleAdmin))
	admin.GET("/area", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	return router
}

func newTestUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*model.User{
		"admin-1": {
			Base:  model.Base{UUID: "admin-1"},
			Name:  "Admin One",
			Email: "admin@fleet.local",
			Role:  model.RoleAdmin,
		},
		"controller-1": {
			Base:  model.Base{UUID: "controller-1"},
			Name:  "Controller One",
			Email: "controller@fleet.local",
			Role:  model.RoleController,
		},
	}}
}

func TestAuthenticateMissingHeader(t *testing.T) {
	router := testRouter(newTestUserRepo())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/me", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthenticateUnknownUser(t *testing.T) {
	router := testRouter(newTestUserRepo())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/me", nil)
	request.Header.Set("X-User-ID", "ghost")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusUnauthorized, recorder.Code)
}

func TestAuthenticateKnownUser(t *testing.T) {
	router := testRouter(newTestUserRepo())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/me", nil)
	request.Header.Set("X-User-ID", "controller-1")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "Controller One")
}

func TestRequireRoleForbidsController(t *testing.T) {
	router := testRouter(newTestUserRepo())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/admin/area", nil)
	request.Header.Set("X-User-ID", "controller-1")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusForbidden, recorder.Code)
}

func TestRequireRoleAllowsAdmin(t *testing.T) {
	router := testRouter(newTestUserRepo())

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/admin/area", nil)
	request.Header.Set("X-User-ID", "admin-1")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func corsRouter(whitelist []string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORS(whitelist))
	router.GET("/ping", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func TestCORSAllowsWhitelistedOrigin(t *testing.T) {
	router := corsRouter([]string{"https://fleet.local"})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.Header.Set("Origin", "https://fleet.local")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, "https://fleet.local", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSIgnoresUnlistedOrigin(t *testing.T) {
	router := corsRouter([]string{"https://fleet.local"})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.Header.Set("Origin", "https://elsewhere.example")
	router.ServeHTTP(recorder, request)

	assert.Empty(t, recorder.Header().Get("Access-Control-Allow-Origin"))
	// The request itself still goes through; CORS is enforced by the browser
	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestCORSWildcardAllowsEverything(t *testing.T) {
	router := corsRouter([]string{"*"})

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/ping", nil)
	request.Header.Set("Origin", "https://elsewhere.example")
	router.ServeHTTP(recorder, request)

	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	router := corsRouter(nil)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodOptions, "/ping", nil)
	router.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
}
