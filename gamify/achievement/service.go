package achievement

import (
	"context"

	"github.com/ryotaku/taskforge/gamify/activity"
	"github.com/ryotaku/taskforge/gamify/points"
	"github.com/ryotaku/taskforge/model"
	"github.com/ryotaku/taskforge/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// progressFn computes a user's current progress for one achievement type.
// Progress computation is read-only; all side effects live in Evaluate.
type progressFn func(ctx context.Context, db *gorm.DB, user *model.User) (int, error)

// progressFns maps each auto-evaluated achievement type to its formula.
// category_specific and team_challenge are absent on purpose: they have no
// formula and are awarded explicitly elsewhere.
var progressFns = map[model.AchievementType]progressFn{
	model.AchievementTaskCompletion: tasksCompleted,
	model.AchievementStreak:         currentStreak,
	model.AchievementCollaboration:  collaborativeTasksCompleted,
	model.AchievementLeadership:     projectsOwned,
}

func tasksCompleted(ctx context.Context, db *gorm.DB, user *model.User) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.Task{}).
		Where("assigned_to = ? AND status = ?", user.ID, model.TaskStatusCompleted).
		Count(&n).Error
	return int(n), err
}

func currentStreak(_ context.Context, _ *gorm.DB, user *model.User) (int, error) {
	return user.CurrentStreak, nil
}

// collaborativeTasksCompleted counts completed assignments created by
// someone else, so self-created self-assigned tasks don't count.
func collaborativeTasksCompleted(ctx context.Context, db *gorm.DB, user *model.User) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.Task{}).
		Where("assigned_to = ? AND status = ? AND created_by <> ?",
			user.ID, model.TaskStatusCompleted, user.ID).
		Count(&n).Error
	return int(n), err
}

func projectsOwned(ctx context.Context, db *gorm.DB, user *model.User) (int, error) {
	var n int64
	err := db.WithContext(ctx).Model(&model.Project{}).
		Where("owner_id = ?", user.ID).
		Count(&n).Error
	return int(n), err
}

// Service recomputes achievement progress and awards newly-qualified
// achievements exactly once per (user, achievement).
type Service struct {
	db       *gorm.DB
	points   *points.Service
	activity *activity.Service
	notifier notify.Notifier
	logger   *zap.Logger
}

// NewService creates an achievement Service.
func NewService(db *gorm.DB, pts *points.Service, act *activity.Service, n notify.Notifier, logger *zap.Logger) *Service {
	return &Service{db: db, points: pts, activity: act, notifier: n, logger: logger}
}

// Evaluate recomputes progress for every active achievement whose type has a
// formula and upserts the user's progress rows. It returns the achievements
// newly earned by this call.
//
// The award gate is the insert itself: ON CONFLICT DO NOTHING against the
// unique (user_id, achievement_id) index means two concurrent evaluations
// can both qualify but only one insert lands, and only that caller runs the
// reward side effects.
func (svc *Service) Evaluate(ctx context.Context, user *model.User) ([]model.Achievement, error) {
	var achievements []model.Achievement
	if err := svc.db.WithContext(ctx).
		Where("is_active = ?", true).
		Find(&achievements).Error; err != nil {
		return nil, err
	}

	// One progress computation per type present, not per achievement row.
	progressByType := make(map[model.AchievementType]int)
	for _, a := range achievements {
		fn, ok := progressFns[a.Type]
		if !ok {
			continue
		}
		if _, done := progressByType[a.Type]; done {
			continue
		}
		p, err := fn(ctx, svc.db, user)
		if err != nil {
			return nil, err
		}
		progressByType[a.Type] = p
	}

	var earned []model.Achievement
	for _, a := range achievements {
		progress, ok := progressByType[a.Type]
		if !ok || progress < a.RequiredValue {
			continue
		}

		row := model.UserAchievement{
			UserID:        user.ID,
			AchievementID: a.ID,
			Progress:      progress,
		}
		res := svc.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}, {Name: "achievement_id"}},
				DoNothing: true,
			}).
			Create(&row)
		if res.Error != nil {
			return earned, res.Error
		}

		if res.RowsAffected == 0 {
			// Already earned: refresh progress only. earned_at never moves.
			if err := svc.db.WithContext(ctx).Model(&model.UserAchievement{}).
				Where("user_id = ? AND achievement_id = ?", user.ID, a.ID).
				Update("progress", progress).Error; err != nil {
				return earned, err
			}
			continue
		}

		if err := svc.award(ctx, user, a); err != nil {
			return earned, err
		}
		earned = append(earned, a)
	}
	return earned, nil
}

// award runs the one-time side effects for a freshly created UserAchievement.
func (svc *Service) award(ctx context.Context, user *model.User, a model.Achievement) error {
	if err := svc.points.Credit(ctx, user.ID, a.PointsReward); err != nil {
		return err
	}
	achievementID := a.ID
	if _, err := svc.activity.Log(ctx, activity.Entry{
		UserID:        user.ID,
		Action:        model.ActionAchievementEarned,
		Points:        a.PointsReward,
		AchievementID: &achievementID,
	}); err != nil {
		return err
	}

	svc.logger.Info("achievement earned",
		zap.Int64("user_id", user.ID),
		zap.Int64("achievement_id", a.ID),
		zap.String("name", a.Name))

	svc.notifier.Notify(notify.Event{
		Kind:            notify.KindAchievementEarned,
		UserID:          user.ID,
		Username:        user.Username,
		AchievementName: a.Name,
		Description:     a.Description,
		BadgeIcon:       a.BadgeIcon,
		BadgeColor:      a.BadgeColor,
		Points:          a.PointsReward,
	})
	return nil
}
