package rest_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/ryotaku/taskforge/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createCategory(t *testing.T, e *env) int64 {
	t.Helper()
	cat := model.Category{Name: "software", DisplayName: "Software"}
	require.NoError(t, e.db.Create(&cat).Error)
	return cat.ID
}

func createTeam(t *testing.T, e *env, token string, body map[string]interface{}) int64 {
	t.Helper()
	if body["category_id"] == nil {
		body["category_id"] = createCategory(t, e)
	}
	if body["name"] == nil {
		body["name"] = "Builders"
	}
	w := postJSON(e.r, "/api/teams", body, bearer(token)...)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return int64(decode(t, w)["id"].(float64))
}

func TestTeamCreate_AdminMembership(t *testing.T) {
	e := newEnv(t)
	token, userID := register(t, e, "alice@example.com", "alice")
	teamID := createTeam(t, e, token, map[string]interface{}{})

	var membership model.TeamMembership
	require.NoError(t, e.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		First(&membership).Error)
	assert.Equal(t, model.TeamRoleAdmin, membership.Role)
}

func TestTeamCreate_UnknownCategory(t *testing.T) {
	e := newEnv(t)
	token, _ := register(t, e, "alice@example.com", "alice")

	w := postJSON(e.r, "/api/teams", map[string]interface{}{
		"name": "Builders", "category_id": 9999,
	}, bearer(token)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeamJoin_CreditsBonus(t *testing.T) {
	e := newEnv(t)
	adminToken, _ := register(t, e, "alice@example.com", "alice")
	teamID := createTeam(t, e, adminToken, map[string]interface{}{})
	bobToken, bobID := register(t, e, "bob@example.com", "bob")

	w := postJSON(e.r, fmt.Sprintf("/api/teams/%d/join", teamID), nil, bearer(bobToken)...)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	assert.Equal(t, 50, userPoints(t, e, bobID))

	var logs []model.ActivityLog
	require.NoError(t, e.db.Where("action_type = ? AND user_id = ?",
		model.ActionTeamJoined, bobID).Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, 50, logs[0].PointsEarned)
}

func TestTeamJoin_AlreadyMember(t *testing.T) {
	e := newEnv(t)
	adminToken, _ := register(t, e, "alice@example.com", "alice")
	teamID := createTeam(t, e, adminToken, map[string]interface{}{})
	bobToken, bobID := register(t, e, "bob@example.com", "bob")

	postJSON(e.r, fmt.Sprintf("/api/teams/%d/join", teamID), nil, bearer(bobToken)...)
	w := postJSON(e.r, fmt.Sprintf("/api/teams/%d/join", teamID), nil, bearer(bobToken)...)
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 50, userPoints(t, e, bobID), "bonus paid once")
}

func TestTeamJoin_PrivateTeam(t *testing.T) {
	e := newEnv(t)
	adminToken, _ := register(t, e, "alice@example.com", "alice")
	isPublic := false
	teamID := createTeam(t, e, adminToken, map[string]interface{}{"is_public": isPublic})
	bobToken, _ := register(t, e, "bob@example.com", "bob")

	w := postJSON(e.r, fmt.Sprintf("/api/teams/%d/join", teamID), nil, bearer(bobToken)...)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTeamJoin_FullTeam(t *testing.T) {
	e := newEnv(t)
	adminToken, _ := register(t, e, "alice@example.com", "alice")
	teamID := createTeam(t, e, adminToken, map[string]interface{}{"max_members": 2})
	bobToken, _ := register(t, e, "bob@example.com", "bob")
	postJSON(e.r, fmt.Sprintf("/api/teams/%d/join", teamID), nil, bearer(bobToken)...)

	carolToken, _ := register(t, e, "carol@example.com", "carol")
	w := postJSON(e.r, fmt.Sprintf("/api/teams/%d/join", teamID), nil, bearer(carolToken)...)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTeamLeave(t *testing.T) {
	e := newEnv(t)
	adminToken, _ := register(t, e, "alice@example.com", "alice")
	teamID := createTeam(t, e, adminToken, map[string]interface{}{})
	bobToken, bobID := register(t, e, "bob@example.com", "bob")
	postJSON(e.r, fmt.Sprintf("/api/teams/%d/join", teamID), nil, bearer(bobToken)...)

	w := postJSON(e.r, fmt.Sprintf("/api/teams/%d/leave", teamID), nil, bearer(bobToken)...)
	require.Equal(t, http.StatusOK, w.Code)

	var count int64
	e.db.Model(&model.TeamMembership{}).
		Where("team_id = ? AND user_id = ?", teamID, bobID).Count(&count)
	assert.Zero(t, count)
}

func TestTeamLeave_AdministratorBlocked(t *testing.T) {
	e := newEnv(t)
	adminToken, _ := register(t, e, "alice@example.com", "alice")
	teamID := createTeam(t, e, adminToken, map[string]interface{}{})

	w := postJSON(e.r, fmt.Sprintf("/api/teams/%d/leave", teamID), nil, bearer(adminToken)...)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestTeamLeave_NotAMember(t *testing.T) {
	e := newEnv(t)
	adminToken, _ := register(t, e, "alice@example.com", "alice")
	teamID := createTeam(t, e, adminToken, map[string]interface{}{})
	bobToken, _ := register(t, e, "bob@example.com", "bob")

	w := postJSON(e.r, fmt.Sprintf("/api/teams/%d/leave", teamID), nil, bearer(bobToken)...)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTeamList_HidesForeignPrivateTeams(t *testing.T) {
	e := newEnv(t)
	adminToken, _ := register(t, e, "alice@example.com", "alice")
	catID := createCategory(t, e)
	createTeam(t, e, adminToken, map[string]interface{}{"name": "Open", "category_id": catID})
	isPublic := false
	createTeam(t, e, adminToken, map[string]interface{}{
		"name": "Secret", "category_id": catID, "is_public": isPublic,
	})

	bobToken, _ := register(t, e, "bob@example.com", "bob")
	w := getJSON(e.r, "/api/teams", bearer(bobToken)...)
	require.Equal(t, http.StatusOK, w.Code)
	teams := decode(t, w)["teams"].([]interface{})
	assert.Len(t, teams, 1)

	// The administrator sees both.
	w = getJSON(e.r, "/api/teams", bearer(adminToken)...)
	teams = decode(t, w)["teams"].([]interface{})
	assert.Len(t, teams, 2)
}

func TestTeamDetail(t *testing.T) {
	e := newEnv(t)
	token, _ := register(t, e, "alice@example.com", "alice")
	teamID := createTeam(t, e, token, map[string]interface{}{})

	w := getJSON(e.r, fmt.Sprintf("/api/teams/%d", teamID), bearer(token)...)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode(t, w)
	assert.NotNil(t, resp["team"])
	assert.Len(t, resp["members"].([]interface{}), 1)
}
