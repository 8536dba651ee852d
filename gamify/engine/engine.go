package engine

import (
	"context"
	"errors"

	"github.com/ryotaku/taskforge/gamify/achievement"
	"github.com/ryotaku/taskforge/gamify/activity"
	"github.com/ryotaku/taskforge/gamify/challenge"
	"github.com/ryotaku/taskforge/gamify/hook"
	"github.com/ryotaku/taskforge/gamify/points"
	"github.com/ryotaku/taskforge/gamify/streak"
	"github.com/ryotaku/taskforge/model"
	"github.com/ryotaku/taskforge/notify"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Engine runs the gamification pipeline for application events. Callers
// dispatch exactly once per event; the engine owns the ordering of the
// downstream effects.
type Engine struct {
	db           *gorm.DB
	points       *points.Service
	activity     *activity.Service
	streaks      *streak.Service
	achievements *achievement.Service
	challenges   *challenge.Service
	notifier     notify.Notifier
	hooks        *hook.Center
	logger       *zap.Logger
}

// Hooks exposes the engine's hook center so callers can register
// handlers on pipeline events.
func (e *Engine) Hooks() *hook.Center { return e.hooks }

// New assembles the pipeline.
func New(
	db *gorm.DB,
	pts *points.Service,
	act *activity.Service,
	str *streak.Service,
	ach *achievement.Service,
	chl *challenge.Service,
	n notify.Notifier,
	logger *zap.Logger,
) *Engine {
	return &Engine{
		db:           db,
		points:       pts,
		activity:     act,
		streaks:      str,
		achievements: ach,
		challenges:   chl,
		notifier:     n,
		hooks:        hook.NewCenter(),
		logger:       logger,
	}
}

// fire runs the hooks for event after the pipeline work is done. An
// ErrInterrupt only stops the remaining handlers; handler errors never
// fail the pipeline.
func (e *Engine) fire(ctx context.Context, event string, data interface{}) {
	if _, err := e.hooks.Trigger(ctx, event, data); err != nil && !errors.Is(err, hook.ErrInterrupt) {
		e.logger.Warn("hook handler failed", zap.String("event", event), zap.Error(err))
	}
}

// OnTaskCreated records the creation in the activity log. The configured
// value is logged but not credited; only completion pays out.
func (e *Engine) OnTaskCreated(ctx context.Context, task *model.Task) error {
	pts := e.points.ConfigInt(ctx, points.CfgTaskCreated, points.DefaultTaskCreated)
	taskID, projectID := task.ID, task.ProjectID
	_, err := e.activity.Log(ctx, activity.Entry{
		UserID:    task.CreatedBy,
		Action:    model.ActionTaskCreated,
		Points:    pts,
		TaskID:    &taskID,
		ProjectID: &projectID,
	})
	if err != nil {
		return err
	}
	e.fire(ctx, hook.TaskCreated, task)
	return nil
}

// OnTaskCompleted runs the full completion pipeline for the assignee:
// log, credit, streak update, achievement evaluation, challenge progress,
// then the outbound notification. The caller fires it exactly once per
// transition into completed; tasks without an assignee earn nothing.
func (e *Engine) OnTaskCompleted(ctx context.Context, task *model.Task) error {
	if task.AssignedTo == nil {
		return nil
	}
	var user model.User
	if err := e.db.WithContext(ctx).First(&user, *task.AssignedTo).Error; err != nil {
		return err
	}

	pts := e.points.CompletionPoints(ctx, task)
	taskID, projectID := task.ID, task.ProjectID
	_, err := e.activity.Log(ctx, activity.Entry{
		UserID:    user.ID,
		Action:    model.ActionTaskCompleted,
		Points:    pts,
		TaskID:    &taskID,
		ProjectID: &projectID,
		Metadata:  map[string]interface{}{"priority": task.Priority},
	})
	if err != nil {
		return err
	}
	if err := e.points.Credit(ctx, user.ID, pts); err != nil {
		return err
	}
	if task.ID != 0 {
		// Record the payout on the task itself (best-effort).
		err := e.db.WithContext(ctx).Model(&model.Task{}).
			Where("id = ?", task.ID).
			Update("experience_reward", pts).Error
		if err != nil {
			e.logger.Warn("experience reward write-back failed",
				zap.Int64("task_id", task.ID), zap.Error(err))
		}
	}
	if err := e.streaks.Update(ctx, &user); err != nil {
		return err
	}
	if _, err := e.achievements.Evaluate(ctx, &user); err != nil {
		return err
	}
	if err := e.challenges.OnTaskCompleted(ctx, task); err != nil {
		return err
	}

	var project model.Project
	if err := e.db.WithContext(ctx).First(&project, task.ProjectID).Error; err != nil {
		e.logger.Warn("project lookup for notification failed",
			zap.Int64("project_id", task.ProjectID), zap.Error(err))
	}
	ev := notify.Event{
		Kind:        notify.KindTaskCompleted,
		UserID:      user.ID,
		Username:    user.Username,
		TaskName:    task.Name,
		ProjectName: project.Name,
		Priority:    task.Priority,
		Points:      pts,
	}
	e.notifier.Notify(ev)
	e.fire(ctx, hook.TaskCompleted, ev)
	return nil
}

// OnProjectCreated records the creation in the activity log (no credit).
func (e *Engine) OnProjectCreated(ctx context.Context, project *model.Project) error {
	pts := e.points.ConfigInt(ctx, points.CfgProjectCreated, points.DefaultProjectCreated)
	projectID := project.ID
	_, err := e.activity.Log(ctx, activity.Entry{
		UserID:    project.OwnerID,
		Action:    model.ActionProjectCreated,
		Points:    pts,
		ProjectID: &projectID,
	})
	if err != nil {
		return err
	}
	e.fire(ctx, hook.ProjectCreated, project)
	return nil
}

// OnTeamJoined logs and credits the join bonus, then announces the new
// member to the team's webhooks.
func (e *Engine) OnTeamJoined(ctx context.Context, team *model.Team, user *model.User) error {
	pts := e.points.ConfigInt(ctx, points.CfgTeamJoined, points.DefaultTeamJoined)
	teamID := team.ID
	_, err := e.activity.Log(ctx, activity.Entry{
		UserID: user.ID,
		Action: model.ActionTeamJoined,
		Points: pts,
		TeamID: &teamID,
	})
	if err != nil {
		return err
	}
	if err := e.points.Credit(ctx, user.ID, pts); err != nil {
		return err
	}

	ev := notify.Event{
		Kind:     notify.KindTeamJoined,
		UserID:   user.ID,
		TeamID:   team.ID,
		Username: user.Username,
		TeamName: team.Name,
	}
	e.notifier.Notify(ev)
	e.fire(ctx, hook.TeamJoined, ev)
	return nil
}
