package core

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	authModels "towerhub-api/packages/auth/models"
	authServices "towerhub-api/packages/auth/services"
	authUtils "towerhub-api/packages/auth/utils"
	"towerhub-api/packages/core/models"
	"towerhub-api/packages/core/testutil"

	"github.com/bmizerany/assert"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func TestCreateTournamentRouteRequiresStaffRole(t *testing.T) {
	t.Setenv("JWT_SECRET", "test-secret")
	gin.SetMode(gin.TestMode)

	db := testutil.NewDB(t)
	logger := zerolog.Nop()
	r := gin.New()
	NewModule(db, authServices.NewLogEmailService(logger), Options{RankSnapshotCron: "0 0 3 * * *"}, logger).SetupRoutes(r)

	player := testutil.CreateUser(t, db, "player")
	organizer := testutil.CreateUser(t, db, "organizer", authModels.RolePlayer, authModels.RoleOrganizer)

	post := func(p models.Player, body interface{}) *httptest.ResponseRecorder {
		token, err := authUtils.GenerateToken(authModels.User{ID: p.ID, Username: p.Username})
		assert.Equal(t, nil, err)

		var buf bytes.Buffer
		json.NewEncoder(&buf).Encode(body)
		req := httptest.NewRequest(http.MethodPost, "/tournaments", &buf)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := post(player, map[string]interface{}{"title": "Cup"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	var body map[string]interface{}
	assert.Equal(t, nil, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "Insufficient permissions", body["error"])

	// past the role gate, request validation answers
	w = post(organizer, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
