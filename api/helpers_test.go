package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bitwise74/avatar-api/db"
	"bitwise74/avatar-api/model"
	"bitwise74/avatar-api/security"
	"bitwise74/avatar-api/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newTestAPI builds a full router on a throwaway in-memory database.
// SMTP stays disabled so handlers return verification and reset links
// in their response bodies.
func newTestAPI(t *testing.T) *API {
	t.Helper()

	gin.SetMode(gin.TestMode)

	viper.Set("jwt.secret", "test-secret")
	viper.Set("smtp.enabled", false)
	viper.Set("cors.origin", "http://localhost:3000")
	viper.Set("host.domain", "localhost")
	viper.Set("host.port", 8080)
	viper.Set("host.ssl.enabled", false)
	viper.Set("limits.login_attempts", 5)
	viper.Set("limits.login_window_minutes", 15)
	viper.Set("limits.message_burst", 10)
	viper.Set("limits.message_window_seconds", 60)
	viper.Set("limits.reset_cooldown_minutes", 15)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())

	d, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(d))

	a, err := NewRouter(d)
	require.NoError(t, err)

	return a
}

func doJSON(t *testing.T, a *API, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")

	for _, ck := range cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	a.Router.ServeHTTP(w, req)

	return w
}

func parseBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	return body
}

func seedAccount(t *testing.T, a *API, email, password string, verified bool) *model.User {
	t.Helper()

	hash, err := a.Argon.GenerateFromPassword(password)
	require.NoError(t, err)

	id, err := service.NewID()
	require.NoError(t, err)

	user := &model.User{
		ID:           id,
		Name:         "Test User",
		Email:        email,
		PasswordHash: &hash,
		Role:         model.RoleUser,
	}

	if verified {
		now := time.Now()
		user.EmailVerified = &now
	}

	require.NoError(t, a.DB.Create(user).Error)

	return user
}

func sessionCookie(t *testing.T, user *model.User) *http.Cookie {
	t.Helper()

	token, err := security.MakeSessionToken(user.ID, user.Role)
	require.NoError(t, err)

	return &http.Cookie{Name: "auth_token", Value: token}
}
