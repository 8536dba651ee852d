package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ryotaku/taskforge/cache"
	"github.com/ryotaku/taskforge/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ActivityChannel is the pub/sub channel every event is mirrored to for the
// live feed, regardless of webhook configuration.
const ActivityChannel = "events:activity"

// Webhooks delivers events asynchronously: a background worker publishes
// each event to the activity channel and POSTs it to the matching webhook
// targets. The enqueue never blocks; when the buffer is full the event is
// dropped with a warning.
type Webhooks struct {
	db      *gorm.DB
	ps      cache.PubSub
	client  *http.Client
	ch      chan Event
	stopCh  chan struct{}
	wg      sync.WaitGroup
	logger  *zap.Logger
	nowFunc func() time.Time
}

// Options tunes the notifier. Zero values fall back to a 10s delivery
// timeout and a 256-event queue.
type Options struct {
	Timeout   time.Duration
	QueueSize int
}

// NewWebhooks creates a Webhooks notifier and starts its worker.
func NewWebhooks(db *gorm.DB, ps cache.PubSub, opts Options, logger *zap.Logger) *Webhooks {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = 256
	}
	w := &Webhooks{
		db:      db,
		ps:      ps,
		client:  &http.Client{Timeout: opts.Timeout},
		ch:      make(chan Event, opts.QueueSize),
		stopCh:  make(chan struct{}),
		logger:  logger,
		nowFunc: time.Now,
	}
	w.wg.Add(1)
	go w.worker()
	return w
}

// Notify enqueues an event for async delivery.
func (w *Webhooks) Notify(e Event) {
	select {
	case w.ch <- e:
	default:
		w.logger.Warn("notify channel full, dropping event",
			zap.String("kind", string(e.Kind)))
	}
}

// Stop drains pending events and shuts down the worker. It blocks until the
// worker goroutine has finished.
func (w *Webhooks) Stop(_ context.Context) {
	select {
	case <-w.stopCh:
	default:
		close(w.stopCh)
	}
	w.wg.Wait()
}

func (w *Webhooks) worker() {
	defer w.wg.Done()
	for {
		select {
		case e := <-w.ch:
			w.deliver(e)
		case <-w.stopCh:
			for {
				select {
				case e := <-w.ch:
					w.deliver(e)
				default:
					return
				}
			}
		}
	}
}

func (w *Webhooks) deliver(e Event) {
	ctx, cancel := context.WithTimeout(context.Background(), w.client.Timeout)
	defer cancel()

	w.publishFeed(ctx, e)

	configs, err := w.targets(ctx, e)
	if err != nil {
		w.logger.Error("webhook target lookup failed",
			zap.String("kind", string(e.Kind)), zap.Error(err))
		return
	}
	for _, cfg := range configs {
		var payload interface{}
		if cfg.Platform == model.PlatformDiscord {
			payload = discordPayload(e, w.nowFunc())
		} else {
			payload = teamsPayload(e)
		}
		w.post(ctx, cfg, payload)
	}
}

func (w *Webhooks) publishFeed(ctx context.Context, e Event) {
	raw, _ := json.Marshal(e)
	if err := w.ps.Publish(ctx, ActivityChannel, string(raw)); err != nil {
		w.logger.Warn("activity feed publish failed", zap.Error(err))
	}
}

// targets resolves the active webhook configs an event fans out to.
// User-scoped events reach the webhooks of every team the user is an active
// member of; team-scoped events reach that team's webhooks only. Team joins
// ignore the per-kind flags: every active webhook of the team fires.
func (w *Webhooks) targets(ctx context.Context, e Event) ([]model.WebhookConfig, error) {
	q := w.db.WithContext(ctx).Where("is_active = ?", true)

	switch e.Kind {
	case KindTaskCompleted, KindAchievementEarned:
		var teamIDs []int64
		err := w.db.WithContext(ctx).Model(&model.TeamMembership{}).
			Where("user_id = ?", e.UserID).
			Pluck("team_id", &teamIDs).Error
		if err != nil {
			return nil, err
		}
		if len(teamIDs) == 0 {
			return nil, nil
		}
		q = q.Where("team_id IN ?", teamIDs)
		if e.Kind == KindTaskCompleted {
			q = q.Where("notify_task_completion = ?", true)
		} else {
			q = q.Where("notify_achievements = ?", true)
		}
	case KindTeamJoined:
		q = q.Where("team_id = ?", e.TeamID)
	case KindChallengeCompleted:
		q = q.Where("team_id = ? AND notify_team_challenges = ?", e.TeamID, true)
	default:
		return nil, nil
	}

	var configs []model.WebhookConfig
	err := q.Find(&configs).Error
	return configs, err
}

func (w *Webhooks) post(ctx context.Context, cfg model.WebhookConfig, payload interface{}) {
	body, err := json.Marshal(payload)
	if err != nil {
		w.logger.Error("webhook payload marshal failed", zap.Error(err))
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		w.logger.Error("webhook request build failed",
			zap.String("webhook", cfg.Name), zap.Error(err))
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		w.logger.Warn("webhook delivery failed",
			zap.String("webhook", cfg.Name), zap.Error(err))
		return
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		w.logger.Warn("webhook rejected",
			zap.String("webhook", cfg.Name), zap.Int("status", resp.StatusCode))
	}
}
