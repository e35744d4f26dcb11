package util

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func newContext(header, value string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodPost, "/upload", nil)
	if header != "" {
		c.Request.Header.Set(header, value)
	}
	return c
}

func TestWantsJSON(t *testing.T) {
	assert.True(t, WantsJSON(newContext("Accept", "application/json, text/plain")))
	assert.True(t, WantsJSON(newContext("X-Requested-With", "XMLHttpRequest")))
	assert.False(t, WantsJSON(newContext("Accept", "text/html")))
	assert.False(t, WantsJSON(newContext("", "")))
}

func TestGetRequestID(t *testing.T) {
	c := newContext("", "")
	_, ok := GetRequestID(c)
	assert.False(t, ok)

	c.Set(RequestIDKey, "abc")
	id, ok := GetRequestID(c)
	assert.True(t, ok)
	assert.Equal(t, "abc", id)
}
