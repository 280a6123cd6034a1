package endpoints

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonatech-av/cadenza/internal/http/api"
)

// routes a list handler through the endpoint adapter the way TrackModule
// does, with the cached ETag supplied directly
func newEtagRouter(etag string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api.MountGroup(r, api.GroupConfig{Prefix: ""}, api.ModuleFunc(func(c *api.Controller) {
		c.GET("/songs", func(ctx *gin.Context) (any, *api.APIError) {
			if replyNotModified(ctx, etag) {
				return nil, nil
			}
			ctx.Header("ETag", etag)
			return []string{}, nil
		})
	}))
	return r
}

func TestConditionalGetCommits304(t *testing.T) {
	r := newEtagRouter(`"abc123"`)

	req := httptest.NewRequest(http.MethodGet, "/songs", nil)
	req.Header.Set("If-None-Match", `"abc123"`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	// the adapter must not stamp a 200 or a JSON body over the 304
	require.Equal(t, http.StatusNotModified, w.Code)
	assert.Empty(t, w.Body.String())
	assert.Equal(t, `"abc123"`, w.Header().Get("ETag"))
}

func TestConditionalGetMismatchServesBody(t *testing.T) {
	r := newEtagRouter(`"abc123"`)

	req := httptest.NewRequest(http.MethodGet, "/songs", nil)
	req.Header.Set("If-None-Match", `"stale"`)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}

func TestConditionalGetWithoutHeaderServesBody(t *testing.T) {
	r := newEtagRouter(`"abc123"`)

	req := httptest.NewRequest(http.MethodGet, "/songs", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
}
