package api

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAvatarCRUD(t *testing.T) {
	a := newTestAPI(t)
	user := seedAccount(t, a, "owner@example.com", "Password1", true)
	ck := sessionCookie(t, user)

	w := doJSON(t, a, http.MethodPost, "/api/avatars", gin.H{
		"name":        "  Jarvis  ",
		"description": "   ",
	}, ck)
	require.Equal(t, http.StatusCreated, w.Code)

	created := parseBody(t, w)["avatar"].(map[string]any)
	id := created["id"].(string)
	assert.Equal(t, "Jarvis", created["name"])
	// a blank description normalizes to null
	assert.Nil(t, created["description"])

	w = doJSON(t, a, http.MethodGet, "/api/avatars/"+id, nil, ck)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, a, http.MethodPut, "/api/avatars/"+id, gin.H{
		"name":        "Friday",
		"description": "The second one",
	}, ck)
	require.Equal(t, http.StatusOK, w.Code)

	updated := parseBody(t, w)["avatar"].(map[string]any)
	assert.Equal(t, "Friday", updated["name"])
	assert.Equal(t, "The second one", updated["description"])

	w = doJSON(t, a, http.MethodDelete, "/api/avatars/"+id, nil, ck)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, a, http.MethodGet, "/api/avatars/"+id, nil, ck)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvatarCreateRequiresName(t *testing.T) {
	a := newTestAPI(t)
	user := seedAccount(t, a, "owner@example.com", "Password1", true)

	w := doJSON(t, a, http.MethodPost, "/api/avatars", gin.H{
		"name": "   ",
	}, sessionCookie(t, user))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAvatarOwnership(t *testing.T) {
	a := newTestAPI(t)
	owner := seedAccount(t, a, "owner@example.com", "Password1", true)
	other := seedAccount(t, a, "other@example.com", "Password1", true)

	w := doJSON(t, a, http.MethodPost, "/api/avatars", gin.H{
		"name": "Private",
	}, sessionCookie(t, owner))
	require.Equal(t, http.StatusCreated, w.Code)

	id := parseBody(t, w)["avatar"].(map[string]any)["id"].(string)

	otherCk := sessionCookie(t, other)

	w = doJSON(t, a, http.MethodGet, "/api/avatars/"+id, nil, otherCk)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, a, http.MethodPut, "/api/avatars/"+id, gin.H{"name": "Stolen"}, otherCk)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, a, http.MethodDelete, "/api/avatars/"+id, nil, otherCk)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, a, http.MethodGet, "/api/avatars/does-not-exist", nil, otherCk)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAvatarList(t *testing.T) {
	a := newTestAPI(t)
	user := seedAccount(t, a, "owner@example.com", "Password1", true)
	other := seedAccount(t, a, "other@example.com", "Password1", true)
	ck := sessionCookie(t, user)

	for _, name := range []string{"One", "Two"} {
		w := doJSON(t, a, http.MethodPost, "/api/avatars", gin.H{"name": name}, ck)
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w := doJSON(t, a, http.MethodPost, "/api/avatars", gin.H{"name": "Theirs"}, sessionCookie(t, other))
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, a, http.MethodGet, "/api/avatars", nil, ck)
	require.Equal(t, http.StatusOK, w.Code)

	avatars := parseBody(t, w)["avatars"].([]any)
	assert.Len(t, avatars, 2)
}

func TestAvatarRequiresAuth(t *testing.T) {
	a := newTestAPI(t)

	w := doJSON(t, a, http.MethodGet, "/api/avatars", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
