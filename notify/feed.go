package notify

import (
	"context"
	"encoding/json"

	"github.com/ryotaku/taskforge/cache"
	"github.com/ryotaku/taskforge/gamify/hook"
	"github.com/ryotaku/taskforge/model"
	"go.uber.org/zap"
)

// FeedMirror returns a hook handler that publishes task and project
// creations to the live activity channel. Completion-style events reach
// the feed through the notifier; creations are never notified, so
// without this handler the feed would not see them at all.
func FeedMirror(ps cache.PubSub, logger *zap.Logger) hook.Func {
	return func(ctx context.Context, _ string, data interface{}) (interface{}, error) {
		var e Event
		switch v := data.(type) {
		case *model.Task:
			e = Event{Kind: KindTaskCreated, UserID: v.CreatedBy, TaskName: v.Name}
		case *model.Project:
			e = Event{Kind: KindProjectCreated, UserID: v.OwnerID, ProjectName: v.Name}
		default:
			return data, nil
		}
		raw, err := json.Marshal(e)
		if err != nil {
			return data, err
		}
		if err := ps.Publish(ctx, ActivityChannel, string(raw)); err != nil {
			logger.Warn("activity feed publish failed",
				zap.String("kind", string(e.Kind)), zap.Error(err))
		}
		return data, nil
	}
}
