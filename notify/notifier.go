package notify

// EventKind identifies what happened.
type EventKind string

const (
	KindTaskCompleted      EventKind = "task_completed"
	KindAchievementEarned  EventKind = "achievement_earned"
	KindTeamJoined         EventKind = "team_joined"
	KindChallengeCompleted EventKind = "challenge_completed"

	// Feed-only kinds; they carry no webhook targets.
	KindTaskCreated    EventKind = "task_created"
	KindProjectCreated EventKind = "project_created"
)

// Event is one outbound notification. User-scoped kinds (task completion,
// achievements) fan out to the webhooks of every team the user belongs to;
// team-scoped kinds (team join, challenge completion) go to that team only,
// identified by TeamID.
type Event struct {
	Kind   EventKind `json:"kind"`
	UserID int64     `json:"user_id,omitempty"`
	TeamID int64     `json:"team_id,omitempty"`

	Username        string `json:"username,omitempty"`
	TaskName        string `json:"task_name,omitempty"`
	ProjectName     string `json:"project_name,omitempty"`
	Priority        string `json:"priority,omitempty"`
	Points          int    `json:"points,omitempty"`
	AchievementName string `json:"achievement_name,omitempty"`
	Description     string `json:"description,omitempty"`
	BadgeIcon       string `json:"badge_icon,omitempty"`
	BadgeColor      string `json:"badge_color,omitempty"`
	TeamName        string `json:"team_name,omitempty"`
	ChallengeName   string `json:"challenge_name,omitempty"`
}

// Notifier accepts events for delivery. Implementations must not block the
// caller: delivery failures are the notifier's problem, never the pipeline's.
type Notifier interface {
	Notify(e Event)
}

// Nop discards every event.
type Nop struct{}

func (Nop) Notify(Event) {}
