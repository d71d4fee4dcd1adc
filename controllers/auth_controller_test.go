package controllers

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetRefreshCookieScope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	setRefreshCookie(c, "opaque-refresh-token")

	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	ck := cookies[0]

	assert.Equal(t, "refreshToken", ck.Name)
	assert.Equal(t, "opaque-refresh-token", ck.Value)
	// the whole /auth group, so the browser sends it to both /auth/refresh
	// and /auth/logout, and ClearRefreshCookie's path matches
	assert.Equal(t, "/auth", ck.Path)
	assert.True(t, ck.HttpOnly)
	assert.True(t, ck.Secure)
	assert.Positive(t, ck.MaxAge)
}
