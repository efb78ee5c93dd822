package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusattend/internal/auth"
	"campusattend/internal/config"
)

func testRouter() (*gin.Engine, config.App) {
	gin.SetMode(gin.TestMode)
	cfg := config.App{
		JWTIssuer:     "campus-attendance",
		JWTSigningKey: "test-signing-key",
		AccessTTL:     time.Minute,
		RefreshTTL:    time.Hour,
	}
	h := New(cfg, nil, nil, nil, nil, nil, nil)
	r := gin.New()
	h.Register(r)
	return r, cfg
}

func token(t *testing.T, cfg config.App, staffID string, role auth.Role) string {
	t.Helper()
	pair, err := auth.Issue(staffID, role, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AccessTTL, cfg.RefreshTTL)
	require.NoError(t, err)
	return pair.AccessToken
}

func doJSON(r *gin.Engine, method, path, tok, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesRejectMissingToken(t *testing.T) {
	r, _ := testRouter()
	w := doJSON(r, http.MethodGet, "/v1/staff", "", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSetStaffPresenceRequiresSelfOrIncharge(t *testing.T) {
	r, cfg := testRouter()
	tok := token(t, cfg, "T1", auth.RoleTeacher)

	w := doJSON(r, http.MethodPost, "/v1/staff/T2/presence", tok, `{"present":true}`)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestSetStaffPresenceRejectsMissingFlag(t *testing.T) {
	// self-target clears the authority check; the flag itself must still
	// be present so an empty body cannot silently mean "absent"
	r, cfg := testRouter()
	tok := token(t, cfg, "T1", auth.RoleTeacher)

	w := doJSON(r, http.MethodPost, "/v1/staff/T1/presence", tok, `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateStaffIsPrincipalOnly(t *testing.T) {
	r, cfg := testRouter()
	body := `{"staff_id":"T9","name":"New Teacher","designation":"teacher","password":"longenough1"}`

	for _, role := range []auth.Role{auth.RoleTeacher, auth.RoleIncharge, auth.RoleHOD} {
		w := doJSON(r, http.MethodPost, "/v1/staff", token(t, cfg, "S1", role), body)
		assert.Equal(t, http.StatusForbidden, w.Code, "role %s must not provision staff", role)
	}
}

func TestHistoryRequiresIdentity(t *testing.T) {
	r, cfg := testRouter()
	tok := token(t, cfg, "T1", auth.RoleTeacher)

	w := doJSON(r, http.MethodGet, "/v1/attendance/history", tok, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(r, http.MethodGet, "/v1/attendance/history?persistent_id=zero", tok, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
