package rest

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/ryotaku/taskforge/gamify/engine"
	mw "github.com/ryotaku/taskforge/middleware"
	"github.com/ryotaku/taskforge/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// TeamHandler handles team REST endpoints.
type TeamHandler struct {
	db     *gorm.DB
	engine *engine.Engine
	logger *zap.Logger
}

// NewTeamHandler creates a TeamHandler.
func NewTeamHandler(db *gorm.DB, eng *engine.Engine, logger *zap.Logger) *TeamHandler {
	return &TeamHandler{db: db, engine: eng, logger: logger}
}

type createTeamRequest struct {
	Name        string `json:"name"        binding:"required,min=2,max=255"`
	Description string `json:"description" binding:"max=2000"`
	CategoryID  int64  `json:"category_id" binding:"required"`
	Avatar      string `json:"avatar"      binding:"max=10"`
	MaxMembers  int    `json:"max_members" binding:"omitempty,min=2,max=500"`
	IsPublic    *bool  `json:"is_public"`
}

// Create handles POST /api/teams.
func (h *TeamHandler) Create(c *gin.Context) {
	userID := mw.GetUserID(c)

	var req createTeamRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MaxMembers == 0 {
		req.MaxMembers = 50
	}
	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	var category model.Category
	if err := h.db.First(&category, req.CategoryID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "category not found"})
		return
	}

	// Team and the creator's admin membership must land together; a team
	// without its administrator as a member would break the leave rules.
	var team model.Team
	if err := h.db.Transaction(func(tx *gorm.DB) error {
		team = model.Team{
			Name:            req.Name,
			Description:     req.Description,
			CategoryID:      req.CategoryID,
			AdministratorID: userID,
			Avatar:          req.Avatar,
			MaxMembers:      req.MaxMembers,
			IsPublic:        isPublic,
			IsActive:        true,
		}
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		// A false IsPublic is dropped on insert as a zero value and the
		// column default wins, so force it explicitly.
		if !isPublic {
			if err := tx.Model(&team).Update("is_public", false).Error; err != nil {
				return err
			}
		}
		return tx.Create(&model.TeamMembership{
			UserID: userID,
			TeamID: team.ID,
			Role:   model.TeamRoleAdmin,
		}).Error
	}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create failed"})
		return
	}
	c.JSON(http.StatusCreated, team)
}

// List handles GET /api/teams. Returns active public teams plus the
// caller's own teams.
func (h *TeamHandler) List(c *gin.Context) {
	userID := mw.GetUserID(c)

	var memberTeamIDs []int64
	h.db.Model(&model.TeamMembership{}).
		Where("user_id = ?", userID).
		Pluck("team_id", &memberTeamIDs)

	q := h.db.Where("is_active = ?", true)
	if len(memberTeamIDs) > 0 {
		q = q.Where("is_public = ? OR id IN ?", true, memberTeamIDs)
	} else {
		q = q.Where("is_public = ?", true)
	}

	var teams []model.Team
	if err := q.Order("created_at DESC").Find(&teams).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"teams": teams})
}

// Detail handles GET /api/teams/:id.
func (h *TeamHandler) Detail(c *gin.Context) {
	teamID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var team model.Team
	if err := h.db.First(&team, teamID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}

	var members []model.TeamMembership
	h.db.Where("team_id = ?", teamID).Find(&members)

	c.JSON(http.StatusOK, gin.H{"team": team, "members": members})
}

// Join handles POST /api/teams/:id/join.
func (h *TeamHandler) Join(c *gin.Context) {
	userID := mw.GetUserID(c)
	teamID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var team model.Team
	if err := h.db.First(&team, teamID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}
	if !team.IsActive || !team.IsPublic {
		c.JSON(http.StatusForbidden, gin.H{"error": "team is not open for joining"})
		return
	}

	var memberCount int64
	h.db.Model(&model.TeamMembership{}).Where("team_id = ?", teamID).Count(&memberCount)
	if int(memberCount) >= team.MaxMembers {
		c.JSON(http.StatusConflict, gin.H{"error": "team is full"})
		return
	}

	membership := model.TeamMembership{
		UserID: userID,
		TeamID: teamID,
		Role:   model.TeamRoleMember,
	}
	if err := h.db.Create(&membership).Error; err != nil {
		// Concurrent double-join lands here via the unique index.
		if isUniqueViolation(err) {
			c.JSON(http.StatusConflict, gin.H{"error": "already a member"})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "join failed"})
		}
		return
	}

	var user model.User
	if err := h.db.First(&user, userID).Error; err == nil {
		if err := h.engine.OnTeamJoined(c.Request.Context(), &team, &user); err != nil {
			h.logger.Warn("team join event failed",
				zap.Int64("team_id", teamID), zap.Error(err))
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "joined", "membership": membership})
}

// Leave handles POST /api/teams/:id/leave. The administrator cannot leave;
// the team would be ownerless.
func (h *TeamHandler) Leave(c *gin.Context) {
	userID := mw.GetUserID(c)
	teamID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var team model.Team
	if err := h.db.First(&team, teamID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "team not found"})
		return
	}
	if team.AdministratorID == userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "administrator cannot leave the team"})
		return
	}

	res := h.db.Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&model.TeamMembership{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "db error"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not a member"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "left"})
}
