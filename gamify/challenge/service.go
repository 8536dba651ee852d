package challenge

import (
	"context"
	"time"

	"github.com/ryotaku/taskforge/gamify/points"
	"github.com/ryotaku/taskforge/model"
	"github.com/ryotaku/taskforge/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service aggregates team challenge progress and handles status transitions.
type Service struct {
	db       *gorm.DB
	points   *points.Service
	notifier notify.Notifier
	logger   *zap.Logger
	now      func() time.Time
}

// NewService creates a challenge Service.
func NewService(db *gorm.DB, pts *points.Service, n notify.Notifier, logger *zap.Logger) *Service {
	return &Service{db: db, points: pts, notifier: n, logger: logger, now: time.Now}
}

// OnTaskCompleted advances every active tasks_completed challenge of the
// assignee's teams whose window contains now. Only the tasks_completed target
// has an automatic trigger; other target types are left untouched.
func (svc *Service) OnTaskCompleted(ctx context.Context, task *model.Task) error {
	if task.AssignedTo == nil {
		return nil
	}
	var teamIDs []int64
	err := svc.db.WithContext(ctx).Model(&model.TeamMembership{}).
		Where("user_id = ?", *task.AssignedTo).
		Pluck("team_id", &teamIDs).Error
	if err != nil {
		return err
	}
	if len(teamIDs) == 0 {
		return nil
	}

	now := svc.now()
	var challenges []model.TeamChallenge
	err = svc.db.WithContext(ctx).
		Where("team_id IN ? AND target_type = ? AND status = ? AND start_date <= ? AND end_date >= ?",
			teamIDs, model.TargetTasksCompleted, model.ChallengeStatusActive, now, now).
		Find(&challenges).Error
	if err != nil {
		return err
	}

	for i := range challenges {
		if err := svc.advance(ctx, &challenges[i]); err != nil {
			return err
		}
	}
	return nil
}

// advance bumps one challenge's progress and completes it when the target
// is reached. Both writes are guarded on status, so a challenge completed by
// a concurrent request neither increments nor pays out again; the completion
// UPDATE's row count is the payout gate.
func (svc *Service) advance(ctx context.Context, ch *model.TeamChallenge) error {
	res := svc.db.WithContext(ctx).Model(&model.TeamChallenge{}).
		Where("id = ? AND status = ?", ch.ID, model.ChallengeStatusActive).
		UpdateColumn("current_progress", gorm.Expr("current_progress + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}

	res = svc.db.WithContext(ctx).Model(&model.TeamChallenge{}).
		Where("id = ? AND status = ? AND current_progress >= target_value",
			ch.ID, model.ChallengeStatusActive).
		Update("status", model.ChallengeStatusCompleted)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return nil
	}
	return svc.complete(ctx, ch)
}

// complete pays the reward to every current team member and announces the
// completion. Runs at most once per challenge.
func (svc *Service) complete(ctx context.Context, ch *model.TeamChallenge) error {
	var memberIDs []int64
	err := svc.db.WithContext(ctx).Model(&model.TeamMembership{}).
		Where("team_id = ?", ch.TeamID).
		Pluck("user_id", &memberIDs).Error
	if err != nil {
		return err
	}
	for _, id := range memberIDs {
		if err := svc.points.Credit(ctx, id, ch.PointsReward); err != nil {
			return err
		}
	}

	var team model.Team
	if err := svc.db.WithContext(ctx).First(&team, ch.TeamID).Error; err != nil {
		return err
	}

	svc.logger.Info("team challenge completed",
		zap.Int64("challenge_id", ch.ID),
		zap.Int64("team_id", ch.TeamID),
		zap.Int("members_rewarded", len(memberIDs)))

	svc.notifier.Notify(notify.Event{
		Kind:          notify.KindChallengeCompleted,
		TeamID:        ch.TeamID,
		TeamName:      team.Name,
		ChallengeName: ch.Name,
		Points:        ch.PointsReward,
	})
	return nil
}

// ActivateDue flips upcoming challenges whose window has opened to active.
// It returns the number of challenges activated.
func (svc *Service) ActivateDue(ctx context.Context) (int64, error) {
	res := svc.db.WithContext(ctx).Model(&model.TeamChallenge{}).
		Where("status = ? AND start_date <= ?", model.ChallengeStatusUpcoming, svc.now()).
		Update("status", model.ChallengeStatusActive)
	return res.RowsAffected, res.Error
}

// ExpireEnded cancels active challenges whose window closed before the
// target was reached. It returns the number of challenges cancelled.
func (svc *Service) ExpireEnded(ctx context.Context) (int64, error) {
	res := svc.db.WithContext(ctx).Model(&model.TeamChallenge{}).
		Where("status = ? AND end_date < ?", model.ChallengeStatusActive, svc.now()).
		Update("status", model.ChallengeStatusCancelled)
	return res.RowsAffected, res.Error
}
