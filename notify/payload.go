package notify

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	colorGreen = 5763719
	colorBlue  = 3447003
	colorGold  = 16766720
)

type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbed struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Color       int            `json:"color"`
	Fields      []discordField `json:"fields,omitempty"`
	Timestamp   string         `json:"timestamp"`
}

type discordMessage struct {
	Embeds []discordEmbed `json:"embeds"`
}

type teamsFact struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type teamsSection struct {
	ActivityTitle    string      `json:"activityTitle"`
	ActivitySubtitle string      `json:"activitySubtitle,omitempty"`
	Facts            []teamsFact `json:"facts,omitempty"`
}

// teamsCard is the legacy MessageCard format still accepted by Teams
// incoming webhooks.
type teamsCard struct {
	Type       string         `json:"@type"`
	Context    string         `json:"@context"`
	ThemeColor string         `json:"themeColor"`
	Summary    string         `json:"summary"`
	Sections   []teamsSection `json:"sections"`
}

func discordPayload(e Event, now time.Time) discordMessage {
	embed := discordEmbed{Timestamp: now.UTC().Format(time.RFC3339)}

	switch e.Kind {
	case KindTaskCompleted:
		embed.Title = "Task Completed! 🎉"
		embed.Description = fmt.Sprintf("**%s** completed task: **%s**", e.Username, e.TaskName)
		embed.Color = colorGreen
		embed.Fields = []discordField{
			{Name: "Project", Value: e.ProjectName, Inline: true},
			{Name: "Priority", Value: titleCase(e.Priority), Inline: true},
			{Name: "Points Earned", Value: "+" + strconv.Itoa(e.Points), Inline: true},
		}
	case KindAchievementEarned:
		embed.Title = "Achievement Unlocked! " + e.BadgeIcon
		embed.Description = fmt.Sprintf("**%s** earned: **%s**", e.Username, e.AchievementName)
		embed.Color = badgeColorInt(e.BadgeColor)
		embed.Fields = []discordField{
			{Name: "Description", Value: e.Description},
			{Name: "Points Reward", Value: "+" + strconv.Itoa(e.Points), Inline: true},
		}
	case KindTeamJoined:
		embed.Title = "New Team Member! 👋"
		embed.Description = fmt.Sprintf("**%s** joined the team **%s**", e.Username, e.TeamName)
		embed.Color = colorBlue
	case KindChallengeCompleted:
		embed.Title = "Challenge Complete! 🏁"
		embed.Description = fmt.Sprintf("**%s** finished the challenge **%s**", e.TeamName, e.ChallengeName)
		embed.Color = colorGold
		embed.Fields = []discordField{
			{Name: "Reward", Value: fmt.Sprintf("+%d points per member", e.Points), Inline: true},
		}
	}
	return discordMessage{Embeds: []discordEmbed{embed}}
}

func teamsPayload(e Event) teamsCard {
	card := teamsCard{
		Type:    "MessageCard",
		Context: "http://schema.org/extensions",
	}

	switch e.Kind {
	case KindTaskCompleted:
		card.ThemeColor = "00FF00"
		card.Summary = "Task Completed"
		card.Sections = []teamsSection{{
			ActivityTitle:    "Task Completed! 🎉",
			ActivitySubtitle: e.Username + " completed a task",
			Facts: []teamsFact{
				{Name: "Task", Value: e.TaskName},
				{Name: "Project", Value: e.ProjectName},
				{Name: "Priority", Value: titleCase(e.Priority)},
				{Name: "Points", Value: "+" + strconv.Itoa(e.Points)},
			},
		}}
	case KindAchievementEarned:
		card.ThemeColor = strings.TrimPrefix(e.BadgeColor, "#")
		card.Summary = "Achievement Unlocked"
		card.Sections = []teamsSection{{
			ActivityTitle:    "Achievement Unlocked! " + e.BadgeIcon,
			ActivitySubtitle: e.Username + " earned a new achievement",
			Facts: []teamsFact{
				{Name: "Achievement", Value: e.AchievementName},
				{Name: "Description", Value: e.Description},
				{Name: "Points", Value: "+" + strconv.Itoa(e.Points)},
			},
		}}
	case KindTeamJoined:
		card.ThemeColor = "0076D7"
		card.Summary = "New Team Member"
		card.Sections = []teamsSection{{
			ActivityTitle:    "New Team Member! 👋",
			ActivitySubtitle: e.Username + " joined " + e.TeamName,
		}}
	case KindChallengeCompleted:
		card.ThemeColor = "FFD700"
		card.Summary = "Challenge Complete"
		card.Sections = []teamsSection{{
			ActivityTitle:    "Challenge Complete! 🏁",
			ActivitySubtitle: e.TeamName + " finished " + e.ChallengeName,
			Facts: []teamsFact{
				{Name: "Reward", Value: fmt.Sprintf("+%d points per member", e.Points)},
			},
		}}
	}
	return card
}

// badgeColorInt parses a #RRGGBB badge color for Discord embeds.
func badgeColorInt(hex string) int {
	v, err := strconv.ParseInt(strings.TrimPrefix(hex, "#"), 16, 32)
	if err != nil {
		return colorGold
	}
	return int(v)
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
