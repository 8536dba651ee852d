package integration

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
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
	"github.com/ryotaku/taskforge/gamify/hook"
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

const adminKey = "integration-admin-key"

// harness is the whole application wired against in-memory backends.
type harness struct {
	r     *gin.Engine
	db    *gorm.DB
	cache cache.Cache
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.SetupTestDB(t)
	c, ps := testutil.SetupTestCache(t)
	logger, _ := zap.NewDevelopment()
	sec := config.SecurityConfig{JWTSecret: "integration-secret", JWTTTLH: 72 * time.Hour}

	notifier := notify.NewWebhooks(db, ps, notify.Options{Timeout: 2 * time.Second}, logger)
	t.Cleanup(func() { notifier.Stop(nil) })

	pointsSvc := points.NewService(db, c, logger)
	activitySvc := activity.NewService(db, logger)
	streakSvc := streak.NewService(db, activitySvc, logger)
	achievementSvc := achievement.NewService(db, pointsSvc, activitySvc, notifier, logger)
	challengeSvc := challenge.NewService(db, pointsSvc, notifier, logger)
	eng := engine.New(db, pointsSvc, activitySvc, streakSvc, achievementSvc, challengeSvc, notifier, logger)

	feed := notify.FeedMirror(ps, logger)
	eng.Hooks().Register(hook.TaskCreated, 0, "activity_feed", feed)
	eng.Hooks().Register(hook.ProjectCreated, 0, "activity_feed", feed)

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
		AdminKey: adminKey,
	})
	return &harness{r: r, db: db, cache: c}
}

func (h *harness) do(t *testing.T, method, path string, body interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	h.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// signup registers a user and returns its bearer header plus user id.
func (h *harness) signup(t *testing.T, email, username string) ([]string, int64) {
	t.Helper()
	w := h.do(t, http.MethodPost, "/api/auth/register", map[string]interface{}{
		"email": email, "username": username, "password": "hunter2hunter2",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	resp := decode(t, w)
	token := resp["token"].(string)
	return []string{"Authorization", "Bearer " + token}, int64(resp["user_id"].(float64))
}

// webhookSink is a fake chat platform endpoint that records payloads.
type webhookSink struct {
	mu     sync.Mutex
	bodies []string
	srv    *httptest.Server
}

func newWebhookSink(t *testing.T) *webhookSink {
	s := &webhookSink{}
	s.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var buf bytes.Buffer
		buf.ReadFrom(r.Body)
		s.mu.Lock()
		s.bodies = append(s.bodies, buf.String())
		s.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(s.srv.Close)
	return s
}

func (s *webhookSink) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.bodies)
}

func (s *webhookSink) all() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.bodies...)
}
