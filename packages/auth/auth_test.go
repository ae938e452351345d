package auth

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"towerhub-api/packages/auth/models"
	coreModels "towerhub-api/packages/core/models"
	coreServices "towerhub-api/packages/core/services"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	r := gin.New()
	NewModule(db, coreServices.NewPlayerService(db)).SetupRoutes(r)
	return r, db
}

func send(r http.Handler, method, url, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func register(t *testing.T, r http.Handler, username, mobile string) models.AuthResponse {
	t.Helper()

	w := send(r, http.MethodPost, "/auth/register", "", models.RegisterRequest{
		Name:     "Test",
		Username: username,
		Mobile:   mobile,
		Email:    username + "@example.com",
		Password: "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register %s: %d %s", username, w.Code, w.Body.String())
	}
	var res models.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return res
}

func TestRegisterCreatesPlayer(t *testing.T) {
	r, db := newAuthRouter(t)

	res := register(t, r, "alice", "+33600000001")
	assert.NotEqual(t, "", res.AccessToken)
	assert.NotEqual(t, "", res.RefreshToken)
	assert.Equal(t, []string{models.RolePlayer}, []string(res.User.Roles))

	var player coreModels.Player
	assert.Equal(t, nil, db.First(&player, res.User.ID).Error)
	assert.Equal(t, "alice", player.Username)
	assert.Equal(t, 1, player.Level)
}

func TestRegisterDuplicates(t *testing.T) {
	r, _ := newAuthRouter(t)
	register(t, r, "alice", "+33600000001")

	w := send(r, http.MethodPost, "/auth/register", "", models.RegisterRequest{Username: "alice", Mobile: "+33600000002", Password: "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = send(r, http.MethodPost, "/auth/register", "", models.RegisterRequest{Username: "bob", Mobile: "+33600000001", Password: "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = send(r, http.MethodPost, "/auth/register", "", models.RegisterRequest{Username: "bob", Mobile: "+33600000003", Email: "ALICE@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = send(r, http.MethodPost, "/auth/register", "", models.RegisterRequest{Username: "b", Mobile: "+33600000004", Password: "secret123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoginAndMe(t *testing.T) {
	r, _ := newAuthRouter(t)
	register(t, r, "alice", "+33600000001")

	w := send(r, http.MethodPost, "/auth/login", "", models.LoginRequest{Mobile: "+33600000001", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = send(r, http.MethodPost, "/auth/login", "", models.LoginRequest{Mobile: "+33600000001", Password: "secret123"})
	assert.Equal(t, http.StatusOK, w.Code)
	var res models.AuthResponse
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &res))
	// registration counted as today's connection
	assert.Equal(t, 1, res.User.NbConnexion)

	w = send(r, http.MethodGet, "/users/me", res.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = send(r, http.MethodGet, "/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	r, _ := newAuthRouter(t)
	res := register(t, r, "alice", "+33600000001")

	body := map[string]string{"refresh_token": res.RefreshToken}
	w := send(r, http.MethodPost, "/auth/refresh", "", body)
	assert.Equal(t, http.StatusOK, w.Code)

	var rotated models.TokenResponse
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &rotated))
	assert.NotEqual(t, res.RefreshToken, rotated.RefreshToken)

	// the old token was consumed by the rotation
	w = send(r, http.MethodPost, "/auth/refresh", "", body)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminUsersRequiresSuperAdmin(t *testing.T) {
	r, db := newAuthRouter(t)
	res := register(t, r, "alice", "+33600000001")

	w := send(r, http.MethodGet, "/admin/users", res.AccessToken, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	assert.Equal(t, nil, db.Model(&models.User{}).Where("id = ?", res.User.ID).
		Update("roles", models.Roles{models.RolePlayer, models.RoleSuperAdmin}).Error)

	w = send(r, http.MethodGet, "/admin/users?search=ALI", res.AccessToken, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	var list models.UserListResponse
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Equal(t, int64(1), list.Total)
}
