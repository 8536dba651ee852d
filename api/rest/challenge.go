package rest

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	mw "github.com/ryotaku/taskforge/middleware"
	"github.com/ryotaku/taskforge/model"
	"gorm.io/gorm"
)

// ChallengeHandler handles team challenge REST endpoints.
type ChallengeHandler struct {
	db *gorm.DB
}

// NewChallengeHandler creates a ChallengeHandler.
func NewChallengeHandler(db *gorm.DB) *ChallengeHandler {
	return &ChallengeHandler{db: db}
}

type createChallengeRequest struct {
	Name         string    `json:"name"         binding:"required,min=2,max=255"`
	Description  string    `json:"description"  binding:"max=2000"`
	TeamID       int64     `json:"team_id"      binding:"required"`
	TargetType   string    `json:"target_type"  binding:"required,oneof=tasks_completed projects_finished points_earned collaboration_score"`
	TargetValue  int       `json:"target_value" binding:"required,min=1"`
	StartDate    time.Time `json:"start_date"   binding:"required"`
	EndDate      time.Time `json:"end_date"     binding:"required"`
	PointsReward int       `json:"points_reward" binding:"omitempty,min=1"`
}

// Create handles POST /api/challenges. Only the team administrator may
// create a challenge for the team.
func (h *ChallengeHandler) Create(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req createChallengeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.EndDate.After(req.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be after start_date"})
		return
	}

	var team model.Team
	if err := h.db.First(&team, req.TeamID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}
	if team.AdministratorID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "only the team administrator can create challenges"})
		return
	}

	status := model.ChallengeStatusUpcoming
	if !req.StartDate.After(time.Now()) {
		status = model.ChallengeStatusActive
	}
	reward := req.PointsReward
	if reward == 0 {
		reward = 500
	}

	challenge := model.TeamChallenge{
		Name:         req.Name,
		Description:  req.Description,
		TeamID:       req.TeamID,
		TargetType:   req.TargetType,
		TargetValue:  req.TargetValue,
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		Status:       status,
		PointsReward: reward,
		CreatedBy:    userID,
	}
	if err := h.db.Create(&challenge).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, challenge)
}

// ListForTeam handles GET /api/teams/:id/challenges.
func (h *ChallengeHandler) ListForTeam(c *gin.Context) {
	teamID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	q := h.db.Where("team_id = ?", teamID)
	if status := c.Query("status"); status != "" {
		q = q.Where("status = ?", status)
	}

	var challenges []model.TeamChallenge
	if err := q.Order("start_date DESC").Find(&challenges).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"challenges": challenges})
}

// Detail handles GET /api/challenges/:id.
func (h *ChallengeHandler) Detail(c *gin.Context) {
	challengeID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var challenge model.TeamChallenge
	if err := h.db.First(&challenge, challengeID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "challenge not found"})
		return
	}
	c.JSON(http.StatusOK, challenge)
}
