package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/daffahilmyf/go-impl-audit-trail/internal/domain/actor"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestRequestIDAssignsAndEchoes(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, c.GetString(RequestIDKey)) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, w.Header().Get(RequestIDHeader))
	assert.Equal(t, w.Header().Get(RequestIDHeader), w.Body.String())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "abc-123", w.Body.String())
}

func TestActorAttachesParsedID(t *testing.T) {
	r := gin.New()
	r.Use(Actor("X-Actor-ID"))
	r.GET("/", func(c *gin.Context) {
		id, ok := actor.FromContext(c.Request.Context())
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, "%d", id)
	})

	cases := map[string]string{
		"42":  "42",
		"":    "anonymous",
		"abc": "anonymous",
		"-1":  "anonymous",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("X-Actor-ID", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Body.String(), "header %q", header)
	}
}

func TestLoggerRecordsRouteAndActor(t *testing.T) {
	log, hook := test.NewNullLogger()
	log.SetLevel(logrus.DebugLevel)

	r := gin.New()
	r.Use(RequestID(), Logger(log, "/healthz"), Actor("X-Actor-ID"))
	r.GET("/api/audit/logs/:id", func(c *gin.Context) { c.Status(http.StatusNotFound) })
	r.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/api/audit/logs/9?x=1", nil)
	req.Header.Set("X-Actor-ID", "7")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entry := hook.LastEntry()
	require.NotNil(t, entry)
	assert.Equal(t, logrus.WarnLevel, entry.Level)
	assert.Equal(t, "/api/audit/logs/:id", entry.Data["route"])
	assert.Equal(t, int64(7), entry.Data["actor_id"])
	assert.Equal(t, "x=1", entry.Data["query"])
	assert.NotEmpty(t, entry.Data["request_id"])

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, logrus.DebugLevel, hook.LastEntry().Level)
}
