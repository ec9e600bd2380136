package rest

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func limitedEngine(rps int) *gin.Engine {
	r := gin.New()
	r.POST("/upload", RateLimit(rps), func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func TestRateLimit(t *testing.T) {
	t.Run("admits a burst then rejects", func(t *testing.T) {
		r := limitedEngine(3)

		for i := 0; i < 3; i++ {
			w := serve(r, httptest.NewRequest(http.MethodPost, "/upload", nil))
			assert.Equal(t, http.StatusOK, w.Code, "request %d", i+1)
		}

		w := serve(r, httptest.NewRequest(http.MethodPost, "/upload", nil))
		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "rate_limited", decode[map[string]string](t, w)["error"])
	})

	t.Run("zero disables the limit", func(t *testing.T) {
		r := limitedEngine(0)

		for i := 0; i < 50; i++ {
			w := serve(r, httptest.NewRequest(http.MethodPost, "/upload", nil))
			assert.Equal(t, http.StatusOK, w.Code)
		}
	})
}
