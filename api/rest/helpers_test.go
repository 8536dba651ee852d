package rest_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/ryotaku/taskforge/api/rest"
	"github.com/ryotaku/taskforge/cache"
	"github.com/ryotaku/taskforge/config"
	"github.com/ryotaku/taskforge/gamify/achievement"
	"github.com/ryotaku/taskforge/gamify/activity"
	"github.com/ryotaku/taskforge/gamify/challenge"
	"github.com/ryotaku/taskforge/gamify/engine"
	"github.com/ryotaku/taskforge/gamify/points"
	"github.com/ryotaku/taskforge/gamify/streak"
	"github.com/ryotaku/taskforge/notify"
	"github.com/ryotaku/taskforge/scheduler"
	"github.com/ryotaku/taskforge/testutil"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func nopLogger() *zap.Logger { l, _ := zap.NewDevelopment(); return l }

// env is a fully wired router plus direct access to its internals.
type env struct {
	r     *gin.Engine
	db    *gorm.DB
	cache cache.Cache
	sec   config.SecurityConfig
}

func newEnv(t *testing.T) *env {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	logger := nopLogger()
	sec := config.SecurityConfig{JWTSecret: "test-secret", JWTTTLH: 72 * time.Hour}

	notifier := notify.NewWebhooks(db, ps, notify.Options{Timeout: time.Second}, logger)
	t.Cleanup(func() { notifier.Stop(nil) })

	pointsSvc := points.NewService(db, c, logger)
	activitySvc := activity.NewService(db, logger)
	streakSvc := streak.NewService(db, activitySvc, logger)
	achievementSvc := achievement.NewService(db, pointsSvc, activitySvc, notifier, logger)
	challengeSvc := challenge.NewService(db, pointsSvc, notifier, logger)
	eng := engine.New(db, pointsSvc, activitySvc, streakSvc, achievementSvc, challengeSvc, notifier, logger)

	sched := scheduler.New(logger)
	t.Cleanup(sched.Stop)

	r := gin.New()
	rest.Mount(r, rest.Deps{
		DB:       db,
		Cache:    c,
		Sec:      sec,
		Engine:   eng,
		Activity: activitySvc,
		Sched:    sched,
		Logger:   logger,
		AdminKey: "admin-key",
	})

	return &env{r: r, db: db, cache: c, sec: sec}
}

func postJSON(r *gin.Engine, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	b, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getJSON(r *gin.Engine, path string, headers ...string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// register creates an account through the API and returns its token and id.
func register(t *testing.T, e *env, email, username string) (string, int64) {
	t.Helper()
	w := postJSON(e.r, "/api/auth/register", map[string]string{
		"email":    email,
		"username": username,
		"password": "pass12345",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	return resp["token"].(string), int64(resp["user_id"].(float64))
}

func bearer(token string) []string {
	return []string{"Authorization", "Bearer " + token}
}
