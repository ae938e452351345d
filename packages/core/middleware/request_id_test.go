package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bmizerany/assert"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func newRouter(buf *bytes.Buffer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID(zerolog.New(buf)))
	r.GET("/ping", func(c *gin.Context) {
		zerolog.Ctx(c.Request.Context()).Info().Msg("inside handler")
		c.String(http.StatusOK, GetRequestID(c))
	})
	return r
}

func TestRequestIDGenerated(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(&buf)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	id := w.Header().Get(HeaderRequestID)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.NotEqual(t, "", id)
	assert.Equal(t, id, w.Body.String())
	assert.Equal(t, 2, strings.Count(buf.String(), `"request_id":"`+id+`"`))
}

func TestRequestIDReused(t *testing.T) {
	var buf bytes.Buffer
	r := newRouter(&buf)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc-123", w.Header().Get(HeaderRequestID))
	assert.T(t, strings.Contains(buf.String(), `"status":200`))
	assert.T(t, strings.Contains(buf.String(), `"route":"/ping"`))
}
