package streak

import (
	"context"
	"time"

	"github.com/ryotaku/taskforge/gamify/activity"
	"github.com/ryotaku/taskforge/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service derives a user's consecutive-day completion streak from the
// activity log. Evaluation is lazy: it only runs when the user completes a
// task, so a broken streak stays at its stale value until the user's next
// completion re-triggers the check. There is no background job that
// decays streaks.
type Service struct {
	db       *gorm.DB
	activity *activity.Service
	logger   *zap.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewService creates a streak Service.
func NewService(db *gorm.DB, act *activity.Service, logger *zap.Logger) *Service {
	return &Service{db: db, activity: act, logger: logger, now: time.Now}
}

// Update re-evaluates the user's streak. Call it after the task_completed
// activity row for this event has been written; it reads today's and
// yesterday's rows. The user struct is updated in place and persisted.
func (svc *Service) Update(ctx context.Context, user *model.User) error {
	today := svc.now()
	yesterday := today.AddDate(0, 0, -1)

	hasToday, err := svc.activity.HasActivityOn(ctx, user.ID, model.ActionTaskCompleted, today)
	if err != nil {
		return err
	}
	hasYesterday, err := svc.activity.HasActivityOn(ctx, user.ID, model.ActionTaskCompleted, yesterday)
	if err != nil {
		return err
	}

	switch {
	case hasToday:
		// A continued streak increments; the first completion after a gap
		// (streak already reset to 0) starts a new one at 1.
		if hasYesterday || user.CurrentStreak == 0 {
			user.CurrentStreak++
		}
		day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
		user.LastActivityDate = &day
		if user.CurrentStreak > user.LongestStreak {
			user.LongestStreak = user.CurrentStreak
		}

	case !hasYesterday && user.CurrentStreak > 0:
		// Gap day with no completion today: streak broken.
		user.CurrentStreak = 0
	}

	return svc.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"current_streak":     user.CurrentStreak,
		"longest_streak":     user.LongestStreak,
		"last_activity_date": user.LastActivityDate,
	}).Error
}
